package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"basho/internal/domain/entity"
	"basho/internal/domain/repository"
	"basho/pkg/errors"
	"basho/pkg/logger"
)

const messagesCollection = "messages"

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) messages(orderID string) *firestore.CollectionRef {
	return r.client.Collection(customOrdersCollection).Doc(orderID).Collection(messagesCollection)
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	message.CreatedAt = time.Now()

	_, err := r.messages(message.CustomOrderID).Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreMessageRepository) ListByOrder(ctx context.Context, orderID string) ([]*entity.Message, error) {
	iter := r.messages(orderID).OrderBy("createdAt", firestore.Asc).Documents(ctx)

	var messages []*entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating messages for order %s: %v", orderID, err)
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Warn("Skipping malformed message document %s: %v", doc.Ref.ID, err)
			continue
		}

		messages = append(messages, &message)
	}

	return messages, nil
}

func (r *firestoreMessageRepository) MarkRead(ctx context.Context, orderID string, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	bw := r.client.BulkWriter(ctx)

	jobs := make([]*firestore.BulkWriterJob, 0, len(messageIDs))
	for _, id := range messageIDs {
		job, err := bw.Update(r.messages(orderID).Doc(id), []firestore.Update{
			{Path: "read", Value: true},
		})
		if err != nil {
			bw.End()
			return errors.Internal("Failed to queue read-receipt update", err)
		}
		jobs = append(jobs, job)
	}

	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return errors.Internal("Failed to mark messages read", err)
		}
	}

	return nil
}

func (r *firestoreMessageRepository) CountUnreadBySender(ctx context.Context, senderType string) (map[string]int, error) {
	iter := r.client.CollectionGroup(messagesCollection).
		Where("senderType", "==", senderType).
		Where("read", "==", false).
		Documents(ctx)

	counts := make(map[string]int)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while counting unread messages: %v", err)
			return nil, errors.Internal("Failed to count unread messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			continue
		}

		counts[message.CustomOrderID]++
	}

	return counts, nil
}
