package usecase

import (
	"context"
	"net/http"
	"net/mail"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type NewsletterUsecase struct {
	newsletterRepo repo.NewsletterRepository
}

func NewNewsletterUsecase(newsletterRepo repo.NewsletterRepository) *NewsletterUsecase {
	return &NewsletterUsecase{newsletterRepo: newsletterRepo}
}

func (u *NewsletterUsecase) Subscribe(ctx context.Context, email string) (model.NewsletterSubscription, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return model.NewsletterSubscription{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}

	sub, err := u.newsletterRepo.Subscribe(ctx, email)
	if err == repo.ErrAlreadySubscribed {
		return model.NewsletterSubscription{}, NewHTTPError(http.StatusConflict, "already subscribed")
	}
	if err != nil {
		return model.NewsletterSubscription{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return sub, nil
}
