package repository

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"basho/internal/domain/entity"
	"basho/internal/domain/repository"
	"basho/pkg/errors"
	"basho/pkg/logger"
)

const customOrdersCollection = "custom_orders"

type firestoreCustomOrderRepository struct {
	client *firestore.Client
}

func NewFirestoreCustomOrderRepository(client *firestore.Client) repository.CustomOrderRepository {
	return &firestoreCustomOrderRepository{
		client: client,
	}
}

func (r *firestoreCustomOrderRepository) Create(ctx context.Context, order *entity.CustomOrder) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Email = strings.ToLower(order.Email)

	_, err := r.client.Collection(customOrdersCollection).Doc(order.ID).Set(ctx, order)
	if err != nil {
		return errors.Internal("Failed to create custom order", err)
	}

	return nil
}

func (r *firestoreCustomOrderRepository) GetByID(ctx context.Context, id string) (*entity.CustomOrder, error) {
	doc, err := r.client.Collection(customOrdersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Custom order", err)
		}
		return nil, errors.Internal("Failed to get custom order", err)
	}

	var order entity.CustomOrder
	if err := doc.DataTo(&order); err != nil {
		return nil, errors.Internal("Failed to parse custom order data", err)
	}

	return &order, nil
}

func (r *firestoreCustomOrderRepository) Update(ctx context.Context, order *entity.CustomOrder) error {
	order.UpdatedAt = time.Now()

	_, err := r.client.Collection(customOrdersCollection).Doc(order.ID).Set(ctx, order)
	if err != nil {
		return errors.Internal("Failed to update custom order", err)
	}

	return nil
}

func (r *firestoreCustomOrderRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(customOrdersCollection).Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete custom order", err)
	}

	return nil
}

func (r *firestoreCustomOrderRepository) ListByEmail(ctx context.Context, email string, limit, offset int) ([]*entity.CustomOrder, int64, error) {
	query := r.client.Collection(customOrdersCollection).
		Where("email", "==", strings.ToLower(email)).
		OrderBy("createdAt", firestore.Desc)

	return r.collect(ctx, query, limit, offset)
}

func (r *firestoreCustomOrderRepository) List(ctx context.Context, limit, offset int) ([]*entity.CustomOrder, int64, error) {
	query := r.client.Collection(customOrdersCollection).OrderBy("createdAt", firestore.Desc)

	return r.collect(ctx, query, limit, offset)
}

func (r *firestoreCustomOrderRepository) collect(ctx context.Context, query firestore.Query, limit, offset int) ([]*entity.CustomOrder, int64, error) {
	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while fetching custom orders: %v", err)
		return nil, 0, errors.Internal("Failed to fetch custom orders", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start < 0 || start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var orders []*entity.CustomOrder
	for i := start; i < end; i++ {
		var order entity.CustomOrder
		if err := allDocs[i].DataTo(&order); err != nil {
			logger.Warn("Skipping malformed custom order document %s: %v", allDocs[i].Ref.ID, err)
			continue
		}
		orders = append(orders, &order)
	}

	return orders, total, nil
}
