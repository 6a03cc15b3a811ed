package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
// カートはゲスト用で、ユーザーには紐付けません。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

// priceは現在の商品価格。チェックアウトまではスナップショットしない
type CartItemResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

type CartResponse struct {
	ID            string             `json:"id"`
	Items         []CartItemResponse `json:"items"`
	TotalPrice    decimal.Decimal    `json:"total_price"`
	TotalQuantity int64              `json:"total_quantity"`
}

type AddCartItemInput struct {
	ProductID int64
	Quantity  int64
	Color     string
}

type UpdateCartItemInput struct {
	Quantity int64
	// nilなら色は変えない
	Color *string
}

// CreateCart は空のカートを作る
func (u *CartUsecase) CreateCart(ctx context.Context) (CartResponse, error) {
	cart, err := u.cartRepo.Create(ctx, model.Cart{})
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return CartResponse{
		ID:            cart.ID,
		Items:         []CartItemResponse{},
		TotalPrice:    decimal.Zero,
		TotalQuantity: 0,
	}, nil
}

// GetCart はカート取得
func (u *CartUsecase) GetCart(ctx context.Context, cartID string) (CartResponse, error) {
	cart, err := u.findCart(ctx, cartID)
	if err != nil {
		return CartResponse{}, err
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// AddItem はカートに追加（同一(商品,色)は数量加算）。
func (u *CartUsecase) AddItem(ctx context.Context, cartID string, in AddCartItemInput) (CartResponse, error) {
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	cart, err := u.findCart(ctx, cartID)
	if err != nil {
		return CartResponse{}, err
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	//在庫切れの商品は追加不可
	if p.Stock <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "out of stock")
	}

	//色バリアントのチェック
	color := strings.TrimSpace(in.Color)
	if len(p.Colors) > 0 {
		if color == "" {
			return CartResponse{}, NewHTTPError(http.StatusBadRequest, "color required")
		}
		if !p.HasColor(color) {
			return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid color")
		}
	} else if color != "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid color")
	}

	// 既存数量と合わせて在庫超過を弾く
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var existingQty int64 = 0
	for _, it := range items {
		if it.ProductID == in.ProductID && it.Color == color {
			existingQty = it.Quantity
			break
		}
	}

	newQty := existingQty + in.Quantity
	if newQty > p.Stock {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	// Upsert（同一(商品,色)は加算）
	if err := u.cartItemRepo.UpsertByCartProductColor(ctx, cart.ID, in.ProductID, color, in.Quantity); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 数量/色の変更（在庫チェック付き）。
func (u *CartUsecase) UpdateItem(ctx context.Context, cartID string, cartItemID int64, in UpdateCartItemInput) (CartResponse, error) {
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	cart, err := u.findCart(ctx, cartID)
	if err != nil {
		return CartResponse{}, err
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//他カートの明細は「存在しない扱い」
	if item.CartID != cart.ID {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	//商品の在庫チェック
	p, err := u.productRepo.FindByID(ctx, item.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if in.Quantity > p.Stock {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "insufficient stock")
	}

	color := item.Color
	if in.Color != nil {
		color = strings.TrimSpace(*in.Color)
		if len(p.Colors) > 0 && !p.HasColor(color) {
			return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid color")
		}
	}

	if err := u.cartItemRepo.Update(ctx, cartItemID, in.Quantity, color); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 明細削除。無い明細の削除はエラーにしない（カートが無いのは404）
func (u *CartUsecase) RemoveItem(ctx context.Context, cartID string, cartItemID int64) (CartResponse, error) {
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	cart, err := u.findCart(ctx, cartID)
	if err != nil {
		return CartResponse{}, err
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if err == repo.ErrNotFound {
		//冪等。既に無ければそのまま現状を返す
		return u.buildCartResponse(ctx, cart.ID)
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if item.CartID != cart.ID {
		return u.buildCartResponse(ctx, cart.ID)
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil && err != repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// カートを空にする。これも冪等
func (u *CartUsecase) ClearCart(ctx context.Context, cartID string) (CartResponse, error) {
	cart, err := u.findCart(ctx, cartID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := u.cartItemRepo.DeleteByCartID(ctx, cart.ID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// DeleteCart はカートそのものを破棄する。放置されたカートの掃除用
func (u *CartUsecase) DeleteCart(ctx context.Context, cartID string) error {
	if strings.TrimSpace(cartID) == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid cart id")
	}

	err := u.cartRepo.DeleteByID(ctx, cartID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "cart not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CartUsecase) findCart(ctx context.Context, cartID string) (model.Cart, error) {
	if strings.TrimSpace(cartID) == "" {
		return model.Cart{}, NewHTTPError(http.StatusBadRequest, "invalid cart id")
	}

	cart, err := u.cartRepo.FindByID(ctx, cartID)
	if err == repo.ErrNotFound {
		return model.Cart{}, NewHTTPError(http.StatusNotFound, "cart not found")
	}
	if err != nil {
		return model.Cart{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cart, nil
}

// cartIDの明細をまとめてCartResponseを作る。
// total_priceは現在価格での導出値（確定値ではない）
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID string) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	totalPrice := decimal.Zero
	var totalQty int64 = 0

	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if err != nil {
			continue
		}
		if !p.IsActive {
			continue
		}

		respItems = append(respItems, CartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      p.Name,
			Color:     it.Color,
			Price:     p.Price,
			Quantity:  it.Quantity,
		})

		totalPrice = totalPrice.Add(p.Price.Mul(decimal.NewFromInt(it.Quantity)))
		totalQty += it.Quantity
	}

	return CartResponse{
		ID:            cartID,
		Items:         respItems,
		TotalPrice:    totalPrice,
		TotalQuantity: totalQty,
	}, nil
}
