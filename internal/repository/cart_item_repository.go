package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID string) ([]model.CartItem, error)
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
	// 同一(商品,色)は数量加算
	UpsertByCartProductColor(ctx context.Context, cartID string, productID int64, color string, addQty int64) error
	Update(ctx context.Context, cartItemID int64, qty int64, color string) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	// カートの明細を全削除
	DeleteByCartID(ctx context.Context, cartID string) error
}
