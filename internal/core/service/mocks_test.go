package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

// Mock CatalogRepository
type mockCatalog struct {
	products map[int64]domain.Product
}

func newMockCatalog(products ...domain.Product) *mockCatalog {
	m := &mockCatalog{products: make(map[int64]domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockCatalog) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockCatalog) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

// Mock CartRepository backed by a slice of lines, like the remote service.
type mockCartRepo struct {
	mu       sync.Mutex
	lines    []domain.CartLine
	nextID   int64
	calls    int
	failNext error
	addErr   error
	clearErr error
	catalog  *mockCatalog
}

func newMockCartRepo(catalog *mockCatalog) *mockCartRepo {
	return &mockCartRepo{catalog: catalog, nextID: 100}
}

func (m *mockCartRepo) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *mockCartRepo) GetCart(ctx context.Context, sess domain.Session) ([]domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	out := make([]domain.CartLine, len(m.lines))
	copy(out, m.lines)
	return out, nil
}

func (m *mockCartRepo) AddItem(ctx context.Context, sess domain.Session, productID int64, color string, size domain.Size, quantity int) (domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.takeFailure(); err != nil {
		return domain.CartLine{}, err
	}
	if m.addErr != nil {
		return domain.CartLine{}, m.addErr
	}
	p := m.catalog.products[productID]
	m.nextID++
	line := domain.CartLine{ItemID: m.nextID, Product: p, Color: color, Size: size, Quantity: quantity, UnitPrice: p.Price}
	m.lines = append(m.lines, line)
	return line, nil
}

func (m *mockCartRepo) UpdateItem(ctx context.Context, sess domain.Session, itemID int64, quantity int) (domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.takeFailure(); err != nil {
		return domain.CartLine{}, err
	}
	for i, l := range m.lines {
		if l.ItemID == itemID {
			m.lines[i].Quantity = quantity
			return m.lines[i], nil
		}
	}
	return domain.CartLine{}, domain.ErrNotFound
}

func (m *mockCartRepo) RemoveItem(ctx context.Context, sess domain.Session, itemID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.takeFailure(); err != nil {
		return err
	}
	for i, l := range m.lines {
		if l.ItemID == itemID {
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockCartRepo) ClearCart(ctx context.Context, sess domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.clearErr != nil {
		return m.clearErr
	}
	m.lines = nil
	return nil
}

// Mock WishlistRepository
type mockWishlistRepo struct {
	lines   []domain.WishlistLine
	nextID  int64
	adds    int
	catalog *mockCatalog
}

func (m *mockWishlistRepo) GetWishlist(ctx context.Context, sess domain.Session) ([]domain.WishlistLine, error) {
	out := make([]domain.WishlistLine, len(m.lines))
	copy(out, m.lines)
	return out, nil
}

func (m *mockWishlistRepo) AddItem(ctx context.Context, sess domain.Session, productID int64, color string, size domain.Size) (domain.WishlistLine, error) {
	m.adds++
	m.nextID++
	line := domain.WishlistLine{ItemID: m.nextID, Product: m.catalog.products[productID], Color: color, Size: size}
	m.lines = append(m.lines, line)
	return line, nil
}

func (m *mockWishlistRepo) RemoveItem(ctx context.Context, sess domain.Session, itemID int64) error {
	for i, l := range m.lines {
		if l.ItemID == itemID {
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// Mock OrderRepository
type mockOrderRepo struct {
	mu          sync.Mutex
	orders      map[int64]domain.Order
	nextID      int64
	createErr   error
	updateErr   error
	getErr      error
	drafts      []domain.OrderDraft
	updateCalls int
	cancelCalls int
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[int64]domain.Order)}
}

func (m *mockOrderRepo) seed(o domain.Order) domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	if o.ID > m.nextID {
		m.nextID = o.ID
	}
	return o
}

func (m *mockOrderRepo) CreateOrder(ctx context.Context, sess domain.Session, draft domain.OrderDraft) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts = append(m.drafts, draft)
	if m.createErr != nil {
		return domain.Order{}, m.createErr
	}
	m.nextID++
	addr := draft.Address
	o := domain.Order{
		ID:        m.nextID,
		UserID:    draft.UserID,
		Status:    draft.Status,
		Total:     draft.Total,
		Lines:     draft.Lines,
		Address:   &addr,
		CreatedAt: time.Now(),
	}
	m.orders[o.ID] = o
	return o, nil
}

func (m *mockOrderRepo) GetOrder(ctx context.Context, sess domain.Session, id int64) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.Order{}, m.getErr
	}
	o, ok := m.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) ListOrders(ctx context.Context, sess domain.Session) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == sess.UserID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ListAllOrders(ctx context.Context, sess domain.Session) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, sess domain.Session, id int64, from, to domain.OrderStatus) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateErr != nil {
		return domain.Order{}, m.updateErr
	}
	o, ok := m.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if o.Status != from {
		return domain.Order{}, domain.ErrConflict
	}
	o.Status = to
	m.orders[id] = o
	return o, nil
}

func (m *mockOrderRepo) CancelOrder(ctx context.Context, sess domain.Session, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelCalls++
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = domain.OrderStatusCancelled
	m.orders[id] = o
	return nil
}

// Mock SalesRepository enforcing one record per order id.
type mockSalesRepo struct {
	mu      sync.Mutex
	records map[int64]domain.SalesRecord
	err     error
	calls   int
}

func newMockSalesRepo() *mockSalesRepo {
	return &mockSalesRepo{records: make(map[int64]domain.SalesRecord)}
}

func (m *mockSalesRepo) CreateSalesRecord(ctx context.Context, sess domain.Session, draft domain.SalesRecordDraft) (domain.SalesRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.SalesRecord{}, m.err
	}
	if _, ok := m.records[draft.OrderID]; ok {
		return domain.SalesRecord{}, domain.ErrDuplicate
	}
	r := domain.SalesRecord{
		ID:         int64(len(m.records) + 1),
		OrderID:    draft.OrderID,
		UserID:     draft.UserID,
		BuyerName:  draft.BuyerName,
		DateOfSale: draft.DateOfSale,
		Price:      draft.Price,
	}
	m.records[draft.OrderID] = r
	return r, nil
}

func (m *mockSalesRepo) ListSalesRecords(ctx context.Context, sess domain.Session) ([]domain.SalesRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SalesRecord
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

// Mock CacheRepository
type mockCacheRepo struct {
	mu             sync.Mutex
	carts          map[string][]domain.CartLine
	idempotencySet map[string]bool
	finalized      map[int64]bool
	finalizedErr   error
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{
		carts:          make(map[string][]domain.CartLine),
		idempotencySet: make(map[string]bool),
		finalized:      make(map[int64]bool),
	}
}

func (m *mockCacheRepo) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines, ok := m.carts[sessionID]
	if !ok {
		return nil, nil
	}
	return domain.RestoreCart(lines), nil
}

func (m *mockCacheRepo) SaveCart(ctx context.Context, sessionID string, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[sessionID] = cart.Lines()
	return nil
}

func (m *mockCacheRepo) DeleteCart(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

func (m *mockCacheRepo) SetIdempotency(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *mockCacheRepo) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.idempotencySet, key)
	return nil
}

func (m *mockCacheRepo) MarkFinalized(ctx context.Context, orderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finalizedErr != nil {
		return m.finalizedErr
	}
	m.finalized[orderID] = true
	return nil
}

func (m *mockCacheRepo) IsFinalized(ctx context.Context, orderID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finalizedErr != nil {
		return false, m.finalizedErr
	}
	return m.finalized[orderID], nil
}

// Mock EventPublisher
type mockPublisher struct {
	mu     sync.Mutex
	events []domain.OrderEvent
}

func (m *mockPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockPublisher) types() []domain.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EventType, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}

var (
	tee     = domain.Product{ID: 1, Name: "Tee", Price: decimal.RequireFromString("20.00")}
	hoodie  = domain.Product{ID: 2, Name: "Hoodie", Price: decimal.RequireFromString("45.50")}
	shopper = domain.Session{ID: "sess-1", UserID: 7, Role: domain.RoleCustomer, BearerToken: "jwt", Verified: true}
	admin   = domain.Session{ID: "sess-admin", UserID: 1, Role: domain.RoleAdmin, BearerToken: "jwt-admin", Verified: true}
)
