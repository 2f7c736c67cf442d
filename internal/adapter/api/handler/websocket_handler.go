package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"basho/internal/adapter/api/middleware"
	"basho/internal/domain/repository"
	ws "basho/internal/infrastructure/websocket"
	"basho/pkg/logger"
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	wsManager      *ws.Manager
	authMiddleware *middleware.AuthMiddleware
	userRepo       repository.UserRepository
}

func NewWebSocketHandler(wsManager *ws.Manager, authMiddleware *middleware.AuthMiddleware, userRepo repository.UserRepository) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		authMiddleware: authMiddleware,
		userRepo:       userRepo,
	}
}

// HandleChat upgrades the connection and registers the client for
// new-message pushes. The ID token arrives as a query parameter since
// browsers cannot set headers on WebSocket handshakes.
func (h *WebSocketHandler) HandleChat(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token is required")
	}

	uid, err := h.authMiddleware.GetUIDFromToken(c.Request().Context(), token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
	}

	user, err := h.userRepo.GetByID(c.Request().Context(), uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Account not found")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed for user %s: %v", uid, err)
		return err
	}

	client := &ws.Client{
		UserID: uid,
		Role:   user.Role,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.wsManager.Register <- client

	go client.WritePump()
	go client.ReadPump(h.wsManager)

	return nil
}
