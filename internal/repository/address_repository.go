package repository

import (
	"context"

	"app/internal/domain/model"
)

type AddressRepository interface {
	Create(ctx context.Context, address model.Address) (model.Address, error)
	FindByID(ctx context.Context, addressID int64) (model.Address, error)
}
