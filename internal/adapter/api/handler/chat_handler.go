package handler

import (
	"github.com/labstack/echo/v4"

	"basho/internal/usecase"
	"basho/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type sendMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

// GetMessages returns an order's thread oldest-first. Serving the list
// also marks the counterparty's messages read, which is what clears
// the unread badge on the other side.
func (h *ChatHandler) GetMessages(c echo.Context) error {
	userID := c.Get("uid").(string)

	messages, err := h.chatUseCase.ListMessages(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

// SendMessage appends a message to an order's thread
func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		OrderID: c.Param("id"),
		Text:    req.Message,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// UnreadCounts returns orderID -> unread message count for the badge
func (h *ChatHandler) UnreadCounts(c echo.Context) error {
	userID := c.Get("uid").(string)

	counts, err := h.chatUseCase.UnreadCounts(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, counts)
}
