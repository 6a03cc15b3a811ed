package repository

import (
	"context"
	"time"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

type SellerOrderListFilter struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
	From          *time.Time
	To            *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	// 合計額の確定。チェックアウトのトランザクション内でだけ呼ぶ
	SetTotalAmount(ctx context.Context, orderID int64, total decimal.Decimal) error

	// 決済成功の反映（is_paid + payment_status を同時に更新）
	MarkPaid(ctx context.Context, orderID int64) error

	// 出品者用の注文一覧
	ListSeller(ctx context.Context, f SellerOrderListFilter) ([]model.Order, int64, error)
}
