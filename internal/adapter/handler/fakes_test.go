package handler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

// fakeStore implements every storefront port in memory, roughly the way the
// owning API behaves.
type fakeStore struct {
	mu sync.Mutex

	products  map[int64]domain.Product
	cart      map[int64][]domain.CartLine
	wishlist  map[int64][]domain.WishlistLine
	addresses map[int64]domain.Address
	orders    map[int64]domain.Order
	sales     map[int64]domain.SalesRecord
	keys      map[string]bool
	finalized map[int64]bool

	nextID    int64
	createErr error
}

func newFakeStore(products ...domain.Product) *fakeStore {
	s := &fakeStore{
		products:  make(map[int64]domain.Product),
		cart:      make(map[int64][]domain.CartLine),
		wishlist:  make(map[int64][]domain.WishlistLine),
		addresses: make(map[int64]domain.Address),
		orders:    make(map[int64]domain.Order),
		sales:     make(map[int64]domain.SalesRecord),
		keys:      make(map[string]bool),
		finalized: make(map[int64]bool),
		nextID:    100,
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

// catalog

func (s *fakeStore) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Product
	for _, p := range s.products {
		if filter.MinPrice.Valid && p.Price.LessThan(filter.MinPrice.Decimal) {
			continue
		}
		if filter.MaxPrice.Valid && p.Price.GreaterThan(filter.MaxPrice.Decimal) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

// cart

type fakeCarts struct{ *fakeStore }

func (s fakeCarts) GetCart(ctx context.Context, sess domain.Session) ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartLine(nil), s.cart[sess.UserID]...), nil
}

func (s fakeCarts) AddItem(ctx context.Context, sess domain.Session, productID int64, color string, size domain.Size, quantity int) (domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[productID]
	line := domain.CartLine{ItemID: s.id(), Product: p, Color: color, Size: size, Quantity: quantity, UnitPrice: p.Price}
	s.cart[sess.UserID] = append(s.cart[sess.UserID], line)
	return line, nil
}

func (s fakeCarts) UpdateItem(ctx context.Context, sess domain.Session, itemID int64, quantity int) (domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.cart[sess.UserID]
	for i := range lines {
		if lines[i].ItemID == itemID {
			lines[i].Quantity = quantity
			return lines[i], nil
		}
	}
	return domain.CartLine{}, domain.ErrNotFound
}

func (s fakeCarts) RemoveItem(ctx context.Context, sess domain.Session, itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.cart[sess.UserID]
	for i := range lines {
		if lines[i].ItemID == itemID {
			s.cart[sess.UserID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s fakeCarts) ClearCart(ctx context.Context, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cart, sess.UserID)
	return nil
}

// wishlist

type fakeWishlists struct{ *fakeStore }

func (s fakeWishlists) GetWishlist(ctx context.Context, sess domain.Session) ([]domain.WishlistLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.WishlistLine(nil), s.wishlist[sess.UserID]...), nil
}

func (s fakeWishlists) AddItem(ctx context.Context, sess domain.Session, productID int64, color string, size domain.Size) (domain.WishlistLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := domain.WishlistLine{ItemID: s.id(), Product: s.products[productID], Color: color, Size: size}
	s.wishlist[sess.UserID] = append(s.wishlist[sess.UserID], line)
	return line, nil
}

func (s fakeWishlists) RemoveItem(ctx context.Context, sess domain.Session, itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.wishlist[sess.UserID]
	for i := range lines {
		if lines[i].ItemID == itemID {
			s.wishlist[sess.UserID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// address

func (s *fakeStore) GetAddress(ctx context.Context, sess domain.Session) (domain.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addresses[sess.UserID]
	if !ok {
		return domain.Address{}, domain.ErrNotFound
	}
	return a, nil
}

// orders

func (s *fakeStore) CreateOrder(ctx context.Context, sess domain.Session, draft domain.OrderDraft) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return domain.Order{}, s.createErr
	}
	addr := draft.Address
	o := domain.Order{
		ID:        s.id(),
		UserID:    draft.UserID,
		Status:    draft.Status,
		Total:     draft.Total,
		Lines:     draft.Lines,
		Address:   &addr,
		CreatedAt: time.Now(),
	}
	s.orders[o.ID] = o
	return o, nil
}

func (s *fakeStore) GetOrder(ctx context.Context, sess domain.Session, id int64) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || (!sess.IsOperator() && o.UserID != sess.UserID) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *fakeStore) ListOrders(ctx context.Context, sess domain.Session) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Order
	for _, o := range s.orders {
		if o.UserID == sess.UserID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeStore) ListAllOrders(ctx context.Context, sess domain.Session) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Order
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, sess domain.Session, id int64, from, to domain.OrderStatus) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if o.Status != from {
		return domain.Order{}, domain.ErrConflict
	}
	o.Status = to
	s.orders[id] = o
	return o, nil
}

func (s *fakeStore) CancelOrder(ctx context.Context, sess domain.Session, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = domain.OrderStatusCancelled
	s.orders[id] = o
	return nil
}

func (s *fakeStore) CreateSalesRecord(ctx context.Context, sess domain.Session, draft domain.SalesRecordDraft) (domain.SalesRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sales[draft.OrderID]; ok {
		return domain.SalesRecord{}, domain.ErrDuplicate
	}
	r := domain.SalesRecord{
		ID:         s.id(),
		OrderID:    draft.OrderID,
		UserID:     draft.UserID,
		BuyerName:  draft.BuyerName,
		DateOfSale: draft.DateOfSale,
		Price:      draft.Price,
	}
	s.sales[draft.OrderID] = r
	return r, nil
}

func (s *fakeStore) ListSalesRecords(ctx context.Context, sess domain.Session) ([]domain.SalesRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.SalesRecord
	for _, r := range s.sales {
		out = append(out, r)
	}
	return out, nil
}

// cache

func (s *fakeStore) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return nil, nil
}

func (s *fakeStore) SaveCart(ctx context.Context, sessionID string, cart *domain.Cart) error {
	return nil
}

func (s *fakeStore) DeleteCart(ctx context.Context, sessionID string) error {
	return nil
}

func (s *fakeStore) SetIdempotency(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *fakeStore) ReleaseIdempotency(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *fakeStore) MarkFinalized(ctx context.Context, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalized[orderID] = true
	return nil
}

func (s *fakeStore) IsFinalized(ctx context.Context, orderID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalized[orderID], nil
}

// cartCache is fakeStore with a working cart cache, shaped like the Redis
// adapter: carts are keyed by session ID only.
type cartCache struct {
	*fakeStore
	mu    sync.Mutex
	carts map[string][]domain.CartLine
}

func newCartCache(store *fakeStore) *cartCache {
	return &cartCache{fakeStore: store, carts: make(map[string][]domain.CartLine)}
}

func (c *cartCache) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines, ok := c.carts[sessionID]
	if !ok {
		return nil, nil
	}
	return domain.RestoreCart(lines), nil
}

func (c *cartCache) SaveCart(ctx context.Context, sessionID string, cart *domain.Cart) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.carts[sessionID] = cart.Lines()
	return nil
}

func (c *cartCache) DeleteCart(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.carts, sessionID)
	return nil
}

var (
	tee    = domain.Product{ID: 1, Name: "Tee", Price: decimal.RequireFromString("20.00")}
	hoodie = domain.Product{ID: 2, Name: "Hoodie", Price: decimal.RequireFromString("45.50")}
)
