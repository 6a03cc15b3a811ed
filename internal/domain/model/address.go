package model

import "time"

// 配送先住所。チェックアウトごとに新規作成するスナップショット
type Address struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Country    string    `gorm:"type:varchar(100);not null" json:"country"`
	Street     string    `gorm:"type:varchar(255);not null" json:"street"`
	Town       string    `gorm:"type:varchar(255);not null" json:"town"`
	State      string    `gorm:"type:varchar(100);not null" json:"state"`
	PostalCode string    `gorm:"type:varchar(20)" json:"postal_code"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
