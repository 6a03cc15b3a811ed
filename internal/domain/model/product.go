package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  *int64          `gorm:"index" json:"category_id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string          `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	Description string          `gorm:"type:text" json:"description"`
	//価格は主要通貨単位（小数2桁）。ゲート送信時だけkoboへ変換する
	Price      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Stock      int64           `gorm:"not null" json:"stock"`
	Rating     decimal.Decimal `gorm:"type:numeric(3,1);not null;default:0" json:"rating"`
	IsFeatured bool            `gorm:"not null;default:false" json:"is_featured"`
	IsActive   bool            `gorm:"not null;default:false" json:"is_active"`
	//選択可能な色（バリアント）。空なら色指定なしで購入できる
	Colors    datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"colors"`
	CreatedAt time.Time                   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time                   `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt              `gorm:"index" json:"-"`
}

// 宣言済みの色かどうか
func (p Product) HasColor(color string) bool {
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}
