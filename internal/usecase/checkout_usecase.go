package usecase

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// CheckoutUsecase はカートを注文に変換する。
// 住所スナップショット、明細の価格凍結、税込み合計の確定までを1トランザクションで行う
type CheckoutUsecase struct {
	tx      repo.TransactionManager
	taxRate decimal.Decimal
}

func NewCheckoutUsecase(tx repo.TransactionManager, taxRate decimal.Decimal) *CheckoutUsecase {
	return &CheckoutUsecase{tx: tx, taxRate: taxRate}
}

type CheckoutAddressInput struct {
	Country    string
	Street     string
	Town       string
	State      string
	PostalCode string
}

type CheckoutInput struct {
	CartID        string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       CheckoutAddressInput
	Notes         string
}

type CheckoutItemOutput struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Color     string          `json:"color"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
}

// subtotal/taxは応答にだけ載せる（Orderにはtotalのみ永続化）
type CheckoutOutput struct {
	OrderID       int64                `json:"order_id"`
	Status        string               `json:"status"`
	PaymentStatus string               `json:"payment_status"`
	Items         []CheckoutItemOutput `json:"items"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	Tax           decimal.Decimal      `json:"tax"`
	Total         decimal.Decimal      `json:"total"`
	CreatedAt     time.Time            `json:"created_at"`
}

func (u *CheckoutUsecase) Checkout(ctx context.Context, in CheckoutInput) (CheckoutOutput, error) {
	if strings.TrimSpace(in.CartID) == "" {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid cart id")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "customer_name required")
	}
	if _, err := mail.ParseAddress(in.CustomerEmail); err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if strings.TrimSpace(in.Address.Country) == "" ||
		strings.TrimSpace(in.Address.Street) == "" ||
		strings.TrimSpace(in.Address.Town) == "" ||
		strings.TrimSpace(in.Address.State) == "" {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "address incomplete")
	}

	var out CheckoutOutput

	//注文確定はトランザクション。途中失敗で部分的な行を残さない
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//カート取得
		cart, err := r.Carts().FindByID(ctx, in.CartID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "cart not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カート明細取得
		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		//住所スナップショットを保存
		now := time.Now()
		addr, err := r.Addresses().Create(ctx, model.Address{
			Country:    strings.TrimSpace(in.Address.Country),
			Street:     strings.TrimSpace(in.Address.Street),
			Town:       strings.TrimSpace(in.Address.Town),
			State:      strings.TrimSpace(in.Address.State),
			PostalCode: strings.TrimSpace(in.Address.PostalCode),
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//注文をpending/pendingで作成（合計はまだゼロ）
		orderID, err := r.Orders().Create(ctx, model.Order{
			CustomerName:  strings.TrimSpace(in.CustomerName),
			CustomerEmail: in.CustomerEmail,
			CustomerPhone: strings.TrimSpace(in.CustomerPhone),
			AddressID:     addr.ID,
			Notes:         in.Notes,
			Status:        model.OrderStatusPending,
			TotalAmount:   decimal.Zero,
			IsPaid:        false,
			PaymentStatus: model.PaymentStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//明細ごとに在庫を再チェックして減らし、現在価格で凍結する
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		subtotal := decimal.Zero

		for _, ci := range cartItems {
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}

			//在庫減算（足りないなら false）
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}

			//価格凍結ポイント。以後の商品価格変更はこの注文に影響しない
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           ci.ProductID,
				ProductNameSnapshot: p.Name,
				Color:               ci.Color,
				UnitPrice:           p.Price,
				Quantity:            ci.Quantity,
				CreatedAt:           now,
			})

			subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(ci.Quantity)))
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//合計確定: total = subtotal + subtotal × TAX_RATE（小数2桁へ丸め）
		tax := subtotal.Mul(u.taxRate).Round(2)
		total := subtotal.Add(tax)

		if err := r.Orders().SetTotalAmount(ctx, orderID, total); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カートはここでは消さない。クリアは呼び出し側の明示操作

		outItems := make([]CheckoutItemOutput, 0, len(orderItems))
		for _, it := range orderItems {
			outItems = append(outItems, CheckoutItemOutput{
				ProductID: it.ProductID,
				Name:      it.ProductNameSnapshot,
				Color:     it.Color,
				UnitPrice: it.UnitPrice,
				Quantity:  it.Quantity,
			})
		}

		out = CheckoutOutput{
			OrderID:       orderID,
			Status:        string(model.OrderStatusPending),
			PaymentStatus: string(model.PaymentStatusPending),
			Items:         outItems,
			Subtotal:      subtotal,
			Tax:           tax,
			Total:         total,
			CreatedAt:     now,
		}
		return nil
	})

	if err != nil {
		return CheckoutOutput{}, err
	}
	return out, nil
}
