package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Create(ctx context.Context, p model.Payment) (model.Payment, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Payment{}, err
	}
	return p, nil
}

func (r *PaymentGormRepository) FindByReference(ctx context.Context, reference string) (model.Payment, error) {
	var p model.Payment

	err := r.db.WithContext(ctx).
		Where("payment_reference = ?", reference).
		First(&p).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Payment{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Payment{}, err
	}
	return p, nil
}

// 行ロック付きで取得。照合の遷移はこのロック下で直列化する
// トランザクションの中で呼ぶこと（ロックはcommit/rollbackまで保持される）
func (r *PaymentGormRepository) LockByReference(ctx context.Context, reference string) (model.Payment, error) {
	var p model.Payment

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("payment_reference = ?", reference).
		First(&p).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Payment{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Payment{}, err
	}
	return p, nil
}

// ステータス遷移の書き込み。終端チェックは呼び出し側がロック下で行う
func (r *PaymentGormRepository) UpdateStatus(ctx context.Context, paymentID int64, status model.PaymentStatus, paystackRef *string, paidAt *time.Time) error {
	values := map[string]interface{}{
		"status": status,
	}
	if paystackRef != nil {
		values["paystack_reference"] = *paystackRef
	}
	if paidAt != nil {
		values["paid_at"] = *paidAt
	}

	res := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ?", paymentID).
		Updates(values)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PaymentGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.Payment, error) {
	var payments []model.Payment

	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&payments).Error; err != nil {
		return []model.Payment{}, err
	}

	return payments, nil
}
