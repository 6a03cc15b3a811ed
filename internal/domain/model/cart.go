package model

import "time"

// ゲスト用カート。ユーザーには紐付けない
// IDは作成時に採番する不透明なUUID
type Cart struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
