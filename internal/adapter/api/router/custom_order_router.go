package router

import (
	"github.com/labstack/echo/v4"

	"basho/internal/adapter/api/handler"
	"basho/internal/adapter/api/middleware"
)

// SetupCustomOrderRouter wires the customer-facing order routes and the
// admin back-office routes.
func SetupCustomOrderRouter(e *echo.Echo, orderHandler *handler.CustomOrderHandler, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	orders := e.Group("/v1/custom-orders")
	orders.Use(authMiddleware.Authenticate)

	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.ListMine)
	orders.GET("/:id", orderHandler.GetByID)

	admin := e.Group("/v1/admin/custom-orders")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.GET("", orderHandler.AdminList)
	admin.PATCH("/:id/quote", orderHandler.AssignQuote)
	admin.PATCH("/:id/status", orderHandler.AdvanceStatus)
	admin.DELETE("/:id", orderHandler.Delete)
}
