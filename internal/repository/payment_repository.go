package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, p model.Payment) (model.Payment, error)
	FindByReference(ctx context.Context, reference string) (model.Payment, error)

	// 行ロック付きで取得（SELECT ... FOR UPDATE）。
	// 照合の遷移判定はこのロック下で行い、両トリガーの競合を直列化する
	LockByReference(ctx context.Context, reference string) (model.Payment, error)

	// ステータス遷移の書き込み。呼び出し側がロック下で終端チェック済みであること
	UpdateStatus(ctx context.Context, paymentID int64, status model.PaymentStatus, paystackRef *string, paidAt *time.Time) error

	ListByOrderID(ctx context.Context, orderID int64) ([]model.Payment, error)
}
