package router

import (
	"github.com/labstack/echo/v4"

	"basho/internal/adapter/api/handler"
	"basho/internal/adapter/api/middleware"
)

// SetupChatRouter wires the per-order message thread routes.
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chat := e.Group("/v1/custom-orders")
	chat.Use(authMiddleware.Authenticate)

	chat.GET("/unread-counts", chatHandler.UnreadCounts)
	chat.GET("/:id/messages", chatHandler.GetMessages)
	chat.POST("/:id/messages", chatHandler.SendMessage)
}
