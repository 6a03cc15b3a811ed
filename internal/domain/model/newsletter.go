package model

import "time"

type NewsletterSubscription struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	SubscribedAt time.Time `gorm:"not null;autoCreateTime" json:"subscribed_at"`
}
