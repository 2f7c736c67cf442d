package repository

import (
	"context"

	"basho/internal/domain/entity"
)

type CustomOrderRepository interface {
	Create(ctx context.Context, order *entity.CustomOrder) error
	GetByID(ctx context.Context, id string) (*entity.CustomOrder, error)
	Update(ctx context.Context, order *entity.CustomOrder) error
	Delete(ctx context.Context, id string) error

	// ListByEmail returns orders whose email matches (case-insensitive),
	// newest first.
	ListByEmail(ctx context.Context, email string, limit, offset int) ([]*entity.CustomOrder, int64, error)
	List(ctx context.Context, limit, offset int) ([]*entity.CustomOrder, int64, error)
}
