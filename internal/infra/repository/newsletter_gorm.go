package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type NewsletterGormRepository struct {
	db *gorm.DB
}

// DI
func NewNewsletterGormRepository(db *gorm.DB) *NewsletterGormRepository {
	return &NewsletterGormRepository{db: db}
}

// 購読登録。同じemailは一度だけ
func (r *NewsletterGormRepository) Subscribe(ctx context.Context, email string) (model.NewsletterSubscription, error) {
	sub := model.NewsletterSubscription{
		Email:        email,
		SubscribedAt: time.Now(),
	}

	if err := r.db.WithContext(ctx).Create(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.NewsletterSubscription{}, repo.ErrAlreadySubscribed
		}

		//unique違反を重複として扱う（translatorが無効な構成向け）
		var existing model.NewsletterSubscription
		findErr := r.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
		if findErr == nil {
			return model.NewsletterSubscription{}, repo.ErrAlreadySubscribed
		}
		return model.NewsletterSubscription{}, err
	}

	return sub, nil
}
