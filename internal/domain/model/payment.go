package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSuccess   PaymentStatus = "SUCCESS"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusAbandoned PaymentStatus = "ABANDONED"
)

// 終端ステータスかどうか。終端から先へは遷移しない
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed || s == PaymentStatusAbandoned
}

// 支払いの1回の試行。注文1件に複数の試行がありうる
type Payment struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//注文との紐付けはnullable（注文前の決済フローもある）
	OrderID *int64 `gorm:"index" json:"order_id"`

	//ゲート呼び出し前にローカルで採番する参照。照合のidempotencyキー
	PaymentReference string `gorm:"type:varchar(100);not null;uniqueIndex" json:"payment_reference"`

	//ゲート側の参照。確定時にだけ入る
	PaystackReference *string `gorm:"type:varchar(100)" json:"paystack_reference"`

	Amount decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Email  string          `gorm:"type:varchar(255);not null" json:"email"`
	Status PaymentStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaidAt *time.Time      `json:"paid_at"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
