package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newCartUsecase(s *memStore) *usecase.CartUsecase {
	return usecase.NewCartUsecase(
		&memCartRepo{s: s},
		&memCartItemRepo{s: s},
		&memProductRepo{s: s},
	)
}

func seedCart(s *memStore) string {
	s.carts["c1"] = model.Cart{ID: "c1"}
	return "c1"
}

func seedProduct(s *memStore, id int64, price string, stock int64, colors ...string) {
	s.products[id] = model.Product{
		ID:       id,
		Name:     "product",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
		Colors:   datatypes.NewJSONSlice(colors),
	}
}

func TestCartAddItem_SameProductColorMergesQuantity(t *testing.T) {
	s := newMemStore()
	uc := newCartUsecase(s)
	cartID := seedCart(s)
	seedProduct(s, 1, "1000.00", 10, "red", "blue")

	ctx := context.Background()

	_, err := uc.AddItem(ctx, cartID, usecase.AddCartItemInput{ProductID: 1, Quantity: 2, Color: "red"})
	require.NoError(t, err)

	out, err := uc.AddItem(ctx, cartID, usecase.AddCartItemInput{ProductID: 1, Quantity: 3, Color: "red"})
	require.NoError(t, err)

	//同じ(商品,色)は行が増えず数量加算
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(5), out.Items[0].Quantity)
	assert.Equal(t, int64(5), out.TotalQuantity)
}

func TestCartAddItem_DifferentColorsAreSeparateLines(t *testing.T) {
	s := newMemStore()
	uc := newCartUsecase(s)
	cartID := seedCart(s)
	seedProduct(s, 1, "1000.00", 10, "red", "blue")

	ctx := context.Background()

	_, err := uc.AddItem(ctx, cartID, usecase.AddCartItemInput{ProductID: 1, Quantity: 1, Color: "red"})
	require.NoError(t, err)

	out, err := uc.AddItem(ctx, cartID, usecase.AddCartItemInput{ProductID: 1, Quantity: 1, Color: "blue"})
	require.NoError(t, err)

	assert.Len(t, out.Items, 2)
}

func TestCartAddItem_ColorValidation(t *testing.T) {
	s := newMemStore()
	uc := newCartUsecase(s)
	cartID := seedCart(s)
	seedProduct(s, 1, "1000.00", 10, "red", "blue")
	seedProduct(s, 2, "500.00", 10)

	ctx := context.Background()

	//色の宣言がある商品は色必須
	_, err := uc.AddItem(ctx, cartID, usecase.AddCartItemInput{ProductID: 1, Quantity: 1})
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 400, he.Status)

	//宣言にない色は拒否
	_, err = uc.AddItem(ctx, cartID, usecase.AddCartItemInput{ProductID: 1, Quantity: 1, Color: "green"})
	he, ok = usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 400, he.Status)

	//色の宣言がない商品への色指定は拒否
	_, err = uc.AddItem(ctx, cartID, usecase.AddCartItemInput{ProductID: 2, Quantity: 1, Color: "red"})
	he, ok = usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 400, he.Status)
}

func TestCartAddItem_StockLimit(t *testing.T) {
	s := newMemStore()
	uc := newCartUsecase(s)
	cartID := seedCart(s)
	seedProduct(s, 1, "1000.00", 3)

	ctx := context.Background()

	_, err := uc.AddItem(ctx, cartID, usecase.AddCartItemInput{ProductID: 1, Quantity: 2})
	require.NoError(t, err)

	//既存数量 + 追加 > 在庫は拒否
	_, err = uc.AddItem(ctx, cartID, usecase.AddCartItemInput{ProductID: 1, Quantity: 2})
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 400, he.Status)
}

func TestCartTotals_UseCurrentProductPrice(t *testing.T) {
	s := newMemStore()
	uc := newCartUsecase(s)
	cartID := seedCart(s)
	seedProduct(s, 1, "1000.00", 10)

	ctx := context.Background()

	_, err := uc.AddItem(ctx, cartID, usecase.AddCartItemInput{ProductID: 1, Quantity: 2})
	require.NoError(t, err)

	//チェックアウト前の値上げはカート表示に反映される
	p := s.products[1]
	p.Price = decimal.RequireFromString("1500.00")
	s.products[1] = p

	out, err := uc.GetCart(ctx, cartID)
	require.NoError(t, err)
	assert.True(t, out.TotalPrice.Equal(decimal.RequireFromString("3000.00")), "got %s", out.TotalPrice)
}

func TestCartRemoveItem_Idempotent(t *testing.T) {
	s := newMemStore()
	uc := newCartUsecase(s)
	cartID := seedCart(s)
	seedProduct(s, 1, "1000.00", 10)

	ctx := context.Background()

	out, err := uc.AddItem(ctx, cartID, usecase.AddCartItemInput{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	itemID := out.Items[0].ID

	_, err = uc.RemoveItem(ctx, cartID, itemID)
	require.NoError(t, err)

	//2回目の削除もエラーにならない
	out, err = uc.RemoveItem(ctx, cartID, itemID)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}

func TestCartGet_UnknownCartIs404(t *testing.T) {
	s := newMemStore()
	uc := newCartUsecase(s)

	_, err := uc.GetCart(context.Background(), "nope")
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestCartDelete_RemovesCartAndItems(t *testing.T) {
	s := newMemStore()
	uc := newCartUsecase(s)
	cartID := seedCart(s)
	seedProduct(s, 1, "1000.00", 10, "red")

	ctx := context.Background()

	_, err := uc.AddItem(ctx, cartID, usecase.AddCartItemInput{ProductID: 1, Quantity: 2, Color: "red"})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteCart(ctx, cartID))

	//カートも明細も消えている
	assert.Empty(t, s.carts)
	assert.Empty(t, s.cartItems)

	_, err = uc.GetCart(ctx, cartID)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestCartDelete_UnknownCartIs404(t *testing.T) {
	s := newMemStore()
	uc := newCartUsecase(s)

	err := uc.DeleteCart(context.Background(), "nope")
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 404, he.Status)
}
