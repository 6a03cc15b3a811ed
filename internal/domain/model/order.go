package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

// 配送ステータス。後戻りしない
const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
)

type Order struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//顧客情報はスナップショット（後でユーザーが変わっても注文は変わらない）
	CustomerName  string `gorm:"type:varchar(200);not null" json:"customer_name"`
	CustomerEmail string `gorm:"type:varchar(255);not null" json:"customer_email"`
	CustomerPhone string `gorm:"type:varchar(30)" json:"customer_phone"`

	AddressID int64  `gorm:"not null" json:"address_id"`
	Notes     string `gorm:"type:text" json:"notes"`

	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//チェックアウト時に確定。以後は変更しない（小計+税）
	TotalAmount decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`

	IsPaid        bool          `gorm:"not null;default:false" json:"is_paid"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
