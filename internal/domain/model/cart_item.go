package model

import "time"

// カートの明細
// (cart_id, product_id, color) は一意。同じ組み合わせの追加は数量加算
// 価格はスナップショットしない（チェックアウトまでは現在価格）
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    string    `gorm:"type:uuid;not null;index;uniqueIndex:uq_cart_product_color" json:"cart_id"`
	ProductID int64     `gorm:"not null;index;uniqueIndex:uq_cart_product_color" json:"product_id"`
	Color     string    `gorm:"type:varchar(50);not null;default:'';uniqueIndex:uq_cart_product_color" json:"color"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
