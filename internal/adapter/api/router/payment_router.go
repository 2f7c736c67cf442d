package router

import (
	"github.com/labstack/echo/v4"

	"basho/internal/adapter/api/handler"
)

// SetupPaymentRouter wires the payment webhook. No auth middleware: the
// gateway signature inside the payload is the authentication.
func SetupPaymentRouter(e *echo.Echo, paymentHandler *handler.PaymentHandler) {
	payments := e.Group("/v1/payments")

	payments.POST("/custom-order/verify", paymentHandler.VerifyPayment)
}
