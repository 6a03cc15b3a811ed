package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

var errDuplicateReference = errors.New("duplicate reference")

// テスト用のインメモリ実装。
// GORM実装と同じ約束（ErrNotFound、(商品,色)の数量加算、在庫CAS）を守る
type memStore struct {
	mu sync.Mutex

	//トランザクション全体の直列化用。GORM実装の行ロックよりも粗いが、
	//「遷移判定は同時に走らない」という約束は同じ
	txMu sync.Mutex

	carts      map[string]model.Cart
	cartItems  map[int64]model.CartItem
	products   map[int64]model.Product
	orders     map[int64]model.Order
	orderItems map[int64][]model.OrderItem
	payments   map[int64]model.Payment
	addresses  map[int64]model.Address

	nextID int64

	//検証用カウンタ
	paymentUpdateCalls int
	markPaidCalls      int
}

func newMemStore() *memStore {
	return &memStore{
		carts:      map[string]model.Cart{},
		cartItems:  map[int64]model.CartItem{},
		products:   map[int64]model.Product{},
		orders:     map[int64]model.Order{},
		orderItems: map[int64][]model.OrderItem{},
		payments:   map[int64]model.Payment{},
		addresses:  map[int64]model.Address{},
	}
}

func (s *memStore) newID() int64 {
	s.nextID++
	return s.nextID
}

// --- CartRepository ---

type memCartRepo struct{ s *memStore }

func (r *memCartRepo) Create(ctx context.Context, cart model.Cart) (model.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if cart.ID == "" {
		cart.ID = "cart-fixed-id"
	}
	r.s.carts[cart.ID] = cart
	return cart, nil
}

func (r *memCartRepo) FindByID(ctx context.Context, cartID string) (model.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[cartID]
	if !ok {
		return model.Cart{}, repo.ErrNotFound
	}
	return c, nil
}

func (r *memCartRepo) DeleteByID(ctx context.Context, cartID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.carts[cartID]; !ok {
		return repo.ErrNotFound
	}
	//GORM実装と同じく明細ごと消す
	for id, it := range r.s.cartItems {
		if it.CartID == cartID {
			delete(r.s.cartItems, id)
		}
	}
	delete(r.s.carts, cartID)
	return nil
}

// --- CartItemRepository ---

type memCartItemRepo struct{ s *memStore }

func (r *memCartItemRepo) ListByCartID(ctx context.Context, cartID string) ([]model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.CartItem
	for _, ci := range r.s.cartItems {
		if ci.CartID == cartID {
			out = append(out, ci)
		}
	}
	return out, nil
}

func (r *memCartItemRepo) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ci, ok := r.s.cartItems[cartItemID]
	if !ok {
		return model.CartItem{}, repo.ErrNotFound
	}
	return ci, nil
}

func (r *memCartItemRepo) UpsertByCartProductColor(ctx context.Context, cartID string, productID int64, color string, addQty int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, ci := range r.s.cartItems {
		if ci.CartID == cartID && ci.ProductID == productID && ci.Color == color {
			ci.Quantity += addQty
			r.s.cartItems[id] = ci
			return nil
		}
	}
	id := r.s.newID()
	r.s.cartItems[id] = model.CartItem{
		ID:        id,
		CartID:    cartID,
		ProductID: productID,
		Color:     color,
		Quantity:  addQty,
	}
	return nil
}

func (r *memCartItemRepo) Update(ctx context.Context, cartItemID int64, qty int64, color string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ci, ok := r.s.cartItems[cartItemID]
	if !ok {
		return repo.ErrNotFound
	}
	ci.Quantity = qty
	ci.Color = color
	r.s.cartItems[cartItemID] = ci
	return nil
}

func (r *memCartItemRepo) DeleteByID(ctx context.Context, cartItemID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cartItems[cartItemID]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.cartItems, cartItemID)
	return nil
}

func (r *memCartItemRepo) DeleteByCartID(ctx context.Context, cartID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, ci := range r.s.cartItems {
		if ci.CartID == cartID {
			delete(r.s.cartItems, id)
		}
	}
	return nil
}

// --- ProductRepository ---

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Product
	for _, p := range r.s.products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memProductRepo) FindByID(ctx context.Context, id int64) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) FindBySlug(ctx context.Context, slug string) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return model.Product{}, repo.ErrNotFound
}

func (r *memProductRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.s.newID()
	}
	r.s.products[p.ID] = p
	return p, nil
}

func (r *memProductRepo) Update(ctx context.Context, p model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return repo.ErrNotFound
	}
	r.s.products[p.ID] = p
	return nil
}

func (r *memProductRepo) SoftDelete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

// --- InventoryRepository ---

type memInventoryRepo struct{ s *memStore }

func (r *memInventoryRepo) SetStock(ctx context.Context, productID int64, newStock int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return repo.ErrNotFound
	}
	p.Stock = newStock
	r.s.products[productID] = p
	return nil
}

func (r *memInventoryRepo) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return false, nil
	}
	if p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	r.s.products[productID] = p
	return true, nil
}

func (r *memInventoryRepo) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return repo.ErrNotFound
	}
	p.Stock += qty
	r.s.products[productID] = p
	return nil
}

// --- OrderRepository ---

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r *memOrderRepo) Create(ctx context.Context, order model.Order) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order.ID = r.s.newID()
	r.s.orders[order.ID] = order
	return order.ID, nil
}

func (r *memOrderRepo) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Status = status
	r.s.orders[orderID] = o
	return nil
}

func (r *memOrderRepo) SetTotalAmount(ctx context.Context, orderID int64, total decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.TotalAmount = total
	r.s.orders[orderID] = o
	return nil
}

func (r *memOrderRepo) MarkPaid(ctx context.Context, orderID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.IsPaid = true
	o.PaymentStatus = model.PaymentStatusSuccess
	r.s.orders[orderID] = o
	r.s.markPaidCalls++
	return nil
}

func (r *memOrderRepo) ListSeller(ctx context.Context, f repo.SellerOrderListFilter) ([]model.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Order
	for _, o := range r.s.orders {
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

// --- OrderItemRepository ---

type memOrderItemRepo struct{ s *memStore }

func (r *memOrderItemRepo) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range items {
		items[i].ID = r.s.newID()
		items[i].OrderID = orderID
	}
	r.s.orderItems[orderID] = append(r.s.orderItems[orderID], items...)
	return nil
}

func (r *memOrderItemRepo) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.orderItems[orderID], nil
}

// --- PaymentRepository ---

type memPaymentRepo struct{ s *memStore }

func (r *memPaymentRepo) Create(ctx context.Context, p model.Payment) (model.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.payments {
		if existing.PaymentReference == p.PaymentReference {
			return model.Payment{}, errDuplicateReference
		}
	}
	p.ID = r.s.newID()
	r.s.payments[p.ID] = p
	return p, nil
}

func (r *memPaymentRepo) findByRef(reference string) (model.Payment, bool) {
	for _, p := range r.s.payments {
		if p.PaymentReference == reference {
			return p, true
		}
	}
	return model.Payment{}, false
}

func (r *memPaymentRepo) FindByReference(ctx context.Context, reference string) (model.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.findByRef(reference)
	if !ok {
		return model.Payment{}, repo.ErrNotFound
	}
	return p, nil
}

func (r *memPaymentRepo) LockByReference(ctx context.Context, reference string) (model.Payment, error) {
	return r.FindByReference(ctx, reference)
}

func (r *memPaymentRepo) UpdateStatus(ctx context.Context, paymentID int64, status model.PaymentStatus, paystackRef *string, paidAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[paymentID]
	if !ok {
		return repo.ErrNotFound
	}
	p.Status = status
	if paystackRef != nil {
		p.PaystackReference = paystackRef
	}
	if paidAt != nil {
		p.PaidAt = paidAt
	}
	r.s.payments[paymentID] = p
	r.s.paymentUpdateCalls++
	return nil
}

func (r *memPaymentRepo) ListByOrderID(ctx context.Context, orderID int64) ([]model.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Payment
	for _, p := range r.s.payments {
		if p.OrderID != nil && *p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- AddressRepository ---

type memAddressRepo struct{ s *memStore }

func (r *memAddressRepo) Create(ctx context.Context, address model.Address) (model.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	address.ID = r.s.newID()
	r.s.addresses[address.ID] = address
	return address, nil
}

func (r *memAddressRepo) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.addresses[addressID]
	if !ok {
		return model.Address{}, repo.ErrNotFound
	}
	return a, nil
}

// --- TxRepos / TransactionManager ---

type memTxRepos struct{ s *memStore }

func (t *memTxRepos) Orders() repo.OrderRepository         { return &memOrderRepo{s: t.s} }
func (t *memTxRepos) OrderItems() repo.OrderItemRepository { return &memOrderItemRepo{s: t.s} }
func (t *memTxRepos) Carts() repo.CartRepository           { return &memCartRepo{s: t.s} }
func (t *memTxRepos) CartItems() repo.CartItemRepository   { return &memCartItemRepo{s: t.s} }
func (t *memTxRepos) Inventory() repo.InventoryRepository  { return &memInventoryRepo{s: t.s} }
func (t *memTxRepos) Products() repo.ProductRepository     { return &memProductRepo{s: t.s} }
func (t *memTxRepos) Payments() repo.PaymentRepository     { return &memPaymentRepo{s: t.s} }
func (t *memTxRepos) Addresses() repo.AddressRepository    { return &memAddressRepo{s: t.s} }

// rollbackは再現しない。各テストはエラー時の戻り値だけを検証する。
// LockByReferenceの行ロックに相当する直列化はtxMuで再現する
type memTxManager struct{ s *memStore }

func (m *memTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()
	return fn(&memTxRepos{s: m.s})
}
