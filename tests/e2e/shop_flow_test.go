package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type ProductCreateRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Stock       int64    `json:"stock"`
	IsActive    bool     `json:"is_active"`
	Colors      []string `json:"colors"`
}

type CartItemDTO struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

type CartDTO struct {
	ID            string          `json:"id"`
	Items         []CartItemDTO   `json:"items"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	TotalQuantity int64           `json:"total_quantity"`
}

type CheckoutDTO struct {
	OrderID       int64           `json:"order_id"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
}

func mustDecodeCart(t *testing.T, body []byte) CartDTO {
	t.Helper()
	var v CartDTO
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(CartDTO) failed: %v body=%s", err, string(body))
	}
	return v
}

func createTestProduct(t *testing.T, c *TestClient, ctx context.Context, access string, price string, stock int64, colors []string) int64 {
	t.Helper()

	uniqueName := "E2E-Sneaker-" + time.Now().Format("20060102-150405.000000000")
	reqBody, err := json.Marshal(ProductCreateRequest{
		Name:        uniqueName,
		Description: "x",
		Price:       price,
		Stock:       stock,
		IsActive:    true,
		Colors:      colors,
	})
	if err != nil {
		t.Fatalf("json.Marshal(ProductCreateRequest) failed: %v", err)
	}

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/seller/products", access, reqBody)
	requireStatus(t, resp, http.StatusCreated, body)

	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("json.Unmarshal(created) failed: %v body=%s", err, string(body))
	}
	return created.ID
}

func Test_GuestCart_Checkout_Flow(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	access := sellerLogin(t, c, ctx)
	productID := createTestProduct(t, c, ctx, access, "1000.00", 10, nil)

	//ゲストカート作成
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/carts", "", []byte("{}"))
	requireStatus(t, resp, http.StatusCreated, body)
	cart := mustDecodeCart(t, body)
	if cart.ID == "" {
		t.Fatalf("cart id is empty: body=%s", string(body))
	}

	//同じ商品を2回追加 → 1行に加算
	addBody, _ := json.Marshal(map[string]interface{}{"product_id": productID, "quantity": 1})
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/carts/"+cart.ID+"/items", "", addBody)
	requireStatus(t, resp, http.StatusOK, body)

	resp, body = c.doJSON(ctx, t, http.MethodPost, "/carts/"+cart.ID+"/items", "", addBody)
	requireStatus(t, resp, http.StatusOK, body)
	cart = mustDecodeCart(t, body)

	if len(cart.Items) != 1 {
		t.Fatalf("want 1 cart line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("want quantity 2, got %d", cart.Items[0].Quantity)
	}

	//チェックアウト: 2000.00 + 2% = 2040.00
	checkoutBody, _ := json.Marshal(map[string]interface{}{
		"cart_id":        cart.ID,
		"customer_name":  "Ada Obi",
		"customer_email": "ada@example.com",
		"customer_phone": "08012345678",
		"address": map[string]string{
			"country":     "Nigeria",
			"street":      "12 Marina Rd",
			"town":        "Ikeja",
			"state":       "Lagos",
			"postal_code": "100001",
		},
	})
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/checkout", "", checkoutBody)
	requireStatus(t, resp, http.StatusCreated, body)

	var out CheckoutDTO
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("json.Unmarshal(CheckoutDTO) failed: %v body=%s", err, string(body))
	}
	if !out.Total.Equal(decimal.RequireFromString("2040.00")) {
		t.Fatalf("want total 2040.00, got %s", out.Total)
	}
	if out.PaymentStatus != "PENDING" {
		t.Fatalf("want payment_status PENDING, got %s", out.PaymentStatus)
	}

	//チェックアウト後もカートは残る
	resp, body = c.doJSON(ctx, t, http.MethodGet, "/carts/"+cart.ID, "", nil)
	requireStatus(t, resp, http.StatusOK, body)
	cart = mustDecodeCart(t, body)
	if len(cart.Items) != 1 {
		t.Fatalf("cart should survive checkout, got %d lines", len(cart.Items))
	}

	//明示クリア
	resp, body = c.doJSON(ctx, t, http.MethodDelete, "/carts/"+cart.ID+"/items", "", nil)
	requireStatus(t, resp, http.StatusOK, body)
	cart = mustDecodeCart(t, body)
	if len(cart.Items) != 0 {
		t.Fatalf("cart should be empty after clear, got %d lines", len(cart.Items))
	}
}

func Test_Cart_ColorRequired(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	access := sellerLogin(t, c, ctx)
	productID := createTestProduct(t, c, ctx, access, "500.00", 10, []string{"red", "blue"})

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/carts", "", []byte("{}"))
	requireStatus(t, resp, http.StatusCreated, body)
	cart := mustDecodeCart(t, body)

	//色なしは400
	addBody, _ := json.Marshal(map[string]interface{}{"product_id": productID, "quantity": 1})
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/carts/"+cart.ID+"/items", "", addBody)
	requireStatus(t, resp, http.StatusBadRequest, body)
	if msg := mustDecodeError(t, body).Error; msg == "" {
		t.Fatalf("want error message, body=%s", string(body))
	}

	//宣言済みの色はOK
	addBody, _ = json.Marshal(map[string]interface{}{"product_id": productID, "quantity": 1, "color": "red"})
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/carts/"+cart.ID+"/items", "", addBody)
	requireStatus(t, resp, http.StatusOK, body)
}

func Test_SellerRoutes_RequireAuth(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/seller/orders", "", nil)
	requireStatus(t, resp, http.StatusUnauthorized, body)
}

func Test_Payments_Webhook_RejectsForgedSignature(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	payload := []byte(fmt.Sprintf(`{"event":"charge.success","data":{"reference":"forged-%d","amount":1000,"status":"success"}}`, time.Now().UnixNano()))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/payments/webhook", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-paystack-signature", "deadbeef")

	//偽署名 → 400
	resp, err := c.HTTP.Do(req)
	if err != nil {
		t.Fatalf("HTTP.Do failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d want=400", resp.StatusCode)
	}
}
