package repository

import (
	"context"

	"basho/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error

	// ListByOrder returns the full thread ordered by timestamp ascending,
	// ties broken by insertion order.
	ListByOrder(ctx context.Context, orderID string) ([]*entity.Message, error)

	// MarkRead flips read=true on the given messages of one order. The
	// flip is one-way; already-read messages are left alone.
	MarkRead(ctx context.Context, orderID string, messageIDs []string) error

	// CountUnreadBySender returns orderID -> number of unread messages
	// authored by senderType, across all orders in one query.
	CountUnreadBySender(ctx context.Context, senderType string) (map[string]int, error)
}
