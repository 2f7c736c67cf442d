package handler

import (
	"github.com/labstack/echo/v4"

	"basho/internal/usecase"
	"basho/pkg/response"
)

type PaymentHandler struct {
	orderUseCase *usecase.CustomOrderUseCase
}

func NewPaymentHandler(orderUseCase *usecase.CustomOrderUseCase) *PaymentHandler {
	return &PaymentHandler{
		orderUseCase: orderUseCase,
	}
}

type verifyPaymentRequest struct {
	OrderID           string `json:"order_id" validate:"required"`
	GatewayOrderRef   string `json:"gateway_order_ref" validate:"required"`
	GatewayPaymentRef string `json:"gateway_payment_ref" validate:"required"`
	Signature         string `json:"signature" validate:"required"`
}

// VerifyPayment is the gateway webhook. It is unauthenticated by
// design: the HMAC signature over the reference pair is the proof.
// Duplicate deliveries are safe.
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	var req verifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	order, err := h.orderUseCase.ConfirmPayment(
		c.Request().Context(),
		req.OrderID,
		req.GatewayOrderRef,
		req.GatewayPaymentRef,
		req.Signature,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, order)
}
