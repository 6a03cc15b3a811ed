package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrAlreadySubscribed = errors.New("already subscribed")

type NewsletterRepository interface {
	Subscribe(ctx context.Context, email string) (model.NewsletterSubscription, error)
}
