package handler

import (
	"github.com/labstack/echo/v4"

	"basho/internal/domain/entity"
	"basho/internal/usecase"
	"basho/pkg/response"
	"basho/pkg/utils"
)

type CustomOrderHandler struct {
	orderUseCase *usecase.CustomOrderUseCase
}

func NewCustomOrderHandler(orderUseCase *usecase.CustomOrderUseCase) *CustomOrderHandler {
	return &CustomOrderHandler{
		orderUseCase: orderUseCase,
	}
}

type createCustomOrderRequest struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           string   `json:"phone" validate:"required"`
	Description     string   `json:"description" validate:"required"`
	ReferenceImages []string `json:"reference_images"`
	Notes           string   `json:"notes"`
}

type assignQuoteRequest struct {
	Price int64 `json:"price" validate:"required,gt=0"`
}

type advanceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=in-progress completed"`
}

// Create submits a new custom order request
func (h *CustomOrderHandler) Create(c echo.Context) error {
	var req createCustomOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	order, err := h.orderUseCase.Create(c.Request().Context(), userID, usecase.CreateCustomOrderInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Description:     req.Description,
		ReferenceImages: req.ReferenceImages,
		Notes:           req.Notes,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, order)
}

// GetByID returns one order, guarded by order access rules
func (h *CustomOrderHandler) GetByID(c echo.Context) error {
	userID := c.Get("uid").(string)

	order, err := h.orderUseCase.GetByID(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, order)
}

// ListMine returns the authenticated customer's own orders
func (h *CustomOrderHandler) ListMine(c echo.Context) error {
	userID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	orders, total, err := h.orderUseCase.ListMine(c.Request().Context(), userID, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, orders, total, pagination.Page, pagination.PageSize)
}

// AdminList returns every order for the back-office console
func (h *CustomOrderHandler) AdminList(c echo.Context) error {
	userID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	orders, total, err := h.orderUseCase.List(c.Request().Context(), userID, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, orders, total, pagination.Page, pagination.PageSize)
}

// AssignQuote sets the quoted price on a requested order
func (h *CustomOrderHandler) AssignQuote(c echo.Context) error {
	var req assignQuoteRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	order, err := h.orderUseCase.AssignQuote(c.Request().Context(), userID, c.Param("id"), req.Price)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, order)
}

// AdvanceStatus walks the fulfillment tail of the lifecycle
func (h *CustomOrderHandler) AdvanceStatus(c echo.Context) error {
	var req advanceStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	order, err := h.orderUseCase.AdvanceWorkflow(c.Request().Context(), userID, c.Param("id"), entity.OrderStatus(req.Status))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, order)
}

// Delete removes an order entirely; admin escape hatch only
func (h *CustomOrderHandler) Delete(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.orderUseCase.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"deleted": c.Param("id")})
}
