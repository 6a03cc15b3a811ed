package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// SellerOrderUsecase は出品者向けの注文管理。
// ステータスは前進のみ（PENDING→PROCESSING→SHIPPED→DELIVERED）で後退は拒否する
type SellerOrderUsecase struct {
	orderRepo     repo.OrderRepository
	orderItemRepo repo.OrderItemRepository
	paymentRepo   repo.PaymentRepository
}

func NewSellerOrderUsecase(
	orderRepo repo.OrderRepository,
	orderItemRepo repo.OrderItemRepository,
	paymentRepo repo.PaymentRepository,
) *SellerOrderUsecase {
	return &SellerOrderUsecase{
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		paymentRepo:   paymentRepo,
	}
}

// ステータスの順序。小さいほど前
var orderStatusRank = map[model.OrderStatus]int{
	model.OrderStatusPending:    0,
	model.OrderStatusProcessing: 1,
	model.OrderStatusShipped:    2,
	model.OrderStatusDelivered:  3,
}

type SellerOrderListInput struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
	From          *time.Time
	To            *time.Time
}

type SellerOrderListOutput struct {
	Orders []model.Order `json:"orders"`
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
}

func (u *SellerOrderUsecase) List(ctx context.Context, in SellerOrderListInput) (SellerOrderListOutput, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 || in.Limit > 100 {
		in.Limit = 20
	}
	if in.Status != "" {
		if _, ok := orderStatusRank[model.OrderStatus(in.Status)]; !ok {
			return SellerOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
	}

	orders, total, err := u.orderRepo.ListSeller(ctx, repo.SellerOrderListFilter{
		Page:          in.Page,
		Limit:         in.Limit,
		Status:        in.Status,
		PaymentStatus: in.PaymentStatus,
		From:          in.From,
		To:            in.To,
	})
	if err != nil {
		return SellerOrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return SellerOrderListOutput{
		Orders: orders,
		Total:  total,
		Page:   in.Page,
		Limit:  in.Limit,
	}, nil
}

type OrderDetailOutput struct {
	Order    model.Order       `json:"order"`
	Items    []model.OrderItem `json:"items"`
	Payments []model.Payment   `json:"payments"`
}

func (u *SellerOrderUsecase) GetDetail(ctx context.Context, orderID int64) (OrderDetailOutput, error) {
	order, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderDetailOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.orderItemRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	payments, err := u.paymentRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return OrderDetailOutput{Order: order, Items: items, Payments: payments}, nil
}

func (u *SellerOrderUsecase) UpdateStatus(ctx context.Context, orderID int64, status string) (model.Order, error) {
	next := model.OrderStatus(status)
	nextRank, ok := orderStatusRank[next]
	if !ok {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	order, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//後退は拒否。同じステータスへの更新はidempotentに成功させる
	if nextRank < orderStatusRank[order.Status] {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "cannot move order status backwards")
	}

	if err := u.orderRepo.UpdateStatus(ctx, orderID, next); err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	order.Status = next
	return order, nil
}
