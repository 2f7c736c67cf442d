package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"basho/internal/domain/entity"
	"basho/internal/domain/repository"
	"basho/internal/infrastructure/ratelimit"
	"basho/pkg/errors"
	"basho/pkg/logger"
)

type ChatUseCase struct {
	orderRepo   repository.CustomOrderRepository
	msgRepo     repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    MessageNotifier
	rateLimiter *ratelimit.RateLimiter
}

func NewChatUseCase(
	orderRepo repository.CustomOrderRepository,
	msgRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	notifier MessageNotifier,
) *ChatUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ChatUseCase{
		orderRepo:   orderRepo,
		msgRepo:     msgRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		rateLimiter: rateLimiter,
	}
}

// ListMessages returns the order's thread oldest-first and flips the
// counterparty's unread messages to read. The flip is the read receipt
// that clears the other side's badge; if it fails the listing still
// succeeds.
func (uc *ChatUseCase) ListMessages(ctx context.Context, userID, orderID string) ([]*entity.Message, error) {
	user, _, err := uc.authorize(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	messages, err := uc.msgRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	otherRole := entity.OppositeSenderType(senderTypeFor(user))

	var unreadIDs []string
	for _, m := range messages {
		if m.SenderType == otherRole && !m.Read {
			unreadIDs = append(unreadIDs, m.ID)
		}
	}

	if len(unreadIDs) > 0 {
		if err := uc.msgRepo.MarkRead(ctx, orderID, unreadIDs); err != nil {
			logger.Warn("Failed to mark messages read for order %s: %v", orderID, err)
		} else {
			for _, m := range messages {
				if m.SenderType == otherRole {
					m.Read = true
				}
			}
		}
	}

	return messages, nil
}

type SendMessageInput struct {
	OrderID string
	Text    string
}

// SendMessage appends a message to the order's thread. The sender role
// comes from the authenticated account, so a customer can never inject
// an admin-typed message.
func (uc *ChatUseCase) SendMessage(ctx context.Context, userID string, input SendMessageInput) (*entity.Message, error) {
	allowed, _ := uc.rateLimiter.Allow(userID, "send_message")
	if !allowed {
		return nil, errors.TooManyRequests("You are sending messages too quickly. Please slow down")
	}

	user, order, err := uc.authorize(ctx, userID, input.OrderID)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, errors.Validation("Message text must not be empty", []string{"message"})
	}

	message := &entity.Message{
		CustomOrderID: order.ID,
		SenderID:      senderIDFor(user),
		SenderType:    senderTypeFor(user),
		Message:       text,
		Read:          false,
	}

	if err := uc.msgRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	uc.pushMessageEvent(ctx, user, order, message)

	return message, nil
}

// UnreadCounts maps orderID to the number of unread messages the other
// party sent, restricted to orders the requester can see. One
// collection-group query; visibility filtering happens in memory.
func (uc *ChatUseCase) UnreadCounts(ctx context.Context, userID string) (map[string]int, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	otherRole := entity.OppositeSenderType(senderTypeFor(user))

	counts, err := uc.msgRepo.CountUnreadBySender(ctx, otherRole)
	if err != nil {
		return nil, err
	}

	if user.IsAdmin() {
		return counts, nil
	}

	orders, _, err := uc.orderRepo.ListByEmail(ctx, user.Email, -1, 0)
	if err != nil {
		return nil, err
	}

	visible := make(map[string]bool, len(orders))
	for _, o := range orders {
		visible[o.ID] = true
	}

	filtered := make(map[string]int)
	for orderID, n := range counts {
		if visible[orderID] {
			filtered[orderID] = n
		}
	}

	return filtered, nil
}

// authorize loads the principal and the order and applies the access
// guard. A missing order surfaces as NotFound; the old demo-data bypass
// that granted access to unpersisted orders is intentionally gone.
func (uc *ChatUseCase) authorize(ctx context.Context, userID, orderID string) (*entity.User, *entity.CustomOrder, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	if !canAccessOrder(order, user) {
		return nil, nil, errors.Forbidden("You do not have access to this order's messages", nil)
	}

	return user, order, nil
}

// pushMessageEvent notifies the counterparty over the realtime channel.
// Best-effort: a recipient without an open connection catches up via
// the unread counts.
func (uc *ChatUseCase) pushMessageEvent(ctx context.Context, sender *entity.User, order *entity.CustomOrder, message *entity.Message) {
	if uc.notifier == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type":    "new_message",
		"message": message,
	})
	if err != nil {
		return
	}

	if sender.IsAdmin() {
		customer, err := uc.userRepo.GetByEmail(ctx, order.Email)
		if err != nil {
			logger.Debug("No account found for order email %s, skipping push", order.Email)
			return
		}
		uc.notifier.SendToUser(customer.ID, payload)
		return
	}

	uc.notifier.SendToAdmins(payload)
}
