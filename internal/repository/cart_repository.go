package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartRepository interface {
	Create(ctx context.Context, cart model.Cart) (model.Cart, error)
	FindByID(ctx context.Context, cartID string) (model.Cart, error)
	DeleteByID(ctx context.Context, cartID string) error
}
