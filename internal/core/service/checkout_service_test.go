package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/core/domain"
)

type checkoutFixture struct {
	svc    *CheckoutService
	carts  *CartService
	repo   *mockCartRepo
	orders *mockOrderRepo
	cache  *mockCacheRepo
	pub    *mockPublisher
}

func newCheckoutFixture(t *testing.T, status domain.OrderStatus) *checkoutFixture {
	catalog := newMockCatalog(tee, hoodie)
	repo := newMockCartRepo(catalog)
	cache := newMockCacheRepo()
	carts := NewCartService(repo, catalog, cache)
	orders := newMockOrderRepo()
	pub := &mockPublisher{}
	return &checkoutFixture{
		svc:    NewCheckoutService(orders, carts, newTestCodec(t), pub, status),
		carts:  carts,
		repo:   repo,
		orders: orders,
		cache:  cache,
		pub:    pub,
	}
}

var shippingAddress = &domain.Address{StreetAddress: "Obala 12", City: "Budva", PostalCode: "85310", Country: "ME"}

func (f *checkoutFixture) fillCart(t *testing.T) *domain.Cart {
	ctx := context.Background()
	_, err := f.carts.AddLine(ctx, shopper, tee.ID, "#fff", domain.SizeM, 2)
	require.NoError(t, err)
	cart, err := f.carts.AddLine(ctx, shopper, hoodie.ID, "#000", domain.SizeL, 1)
	require.NoError(t, err)
	return cart
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newCheckoutFixture(t, "")
	cart := f.fillCart(t)

	order, err := f.svc.PlaceOrder(context.Background(), shopper, cart, shippingAddress)
	require.NoError(t, err)

	assert.NotEmpty(t, order.Token)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("85.50")))
	assert.Len(t, order.Lines, 2)

	assert.True(t, cart.IsEmpty())
	assert.Empty(t, f.repo.lines)
	assert.Equal(t, []domain.EventType{domain.EventOrderPlaced}, f.pub.types())
}

func TestPlaceOrder_ConfiguredInitialStatus(t *testing.T) {
	f := newCheckoutFixture(t, domain.OrderStatusCreated)
	cart := f.fillCart(t)

	order, err := f.svc.PlaceOrder(context.Background(), shopper, cart, shippingAddress)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCreated, order.Status)
	require.Len(t, f.orders.drafts, 1)
	assert.Equal(t, domain.OrderStatusCreated, f.orders.drafts[0].Status)
}

func TestPlaceOrder_IncompleteMakesNoCall(t *testing.T) {
	f := newCheckoutFixture(t, "")
	cart := f.fillCart(t)
	ctx := context.Background()

	_, err := f.svc.PlaceOrder(ctx, shopper, domain.NewCart(), shippingAddress)
	assert.ErrorIs(t, err, domain.ErrIncompleteCheckout)

	_, err = f.svc.PlaceOrder(ctx, shopper, nil, shippingAddress)
	assert.ErrorIs(t, err, domain.ErrIncompleteCheckout)

	_, err = f.svc.PlaceOrder(ctx, shopper, cart, nil)
	assert.ErrorIs(t, err, domain.ErrIncompleteCheckout)

	_, err = f.svc.PlaceOrder(ctx, shopper, cart, &domain.Address{City: "Kotor"})
	assert.ErrorIs(t, err, domain.ErrIncompleteCheckout)

	assert.Empty(t, f.orders.drafts)
	assert.Equal(t, 2, cart.Len())
}

func TestPlaceOrder_FailureLeavesCart(t *testing.T) {
	f := newCheckoutFixture(t, "")
	cart := f.fillCart(t)
	f.orders.createErr = domain.ErrUnavailable

	_, err := f.svc.PlaceOrder(context.Background(), shopper, cart, shippingAddress)
	assert.ErrorIs(t, err, ErrOrderNotPlaced)
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	assert.Equal(t, 2, cart.Len())
	assert.Len(t, f.repo.lines, 2)
	assert.Empty(t, f.pub.events)
}

func TestPlaceOrder_ClearFailureStillSucceeds(t *testing.T) {
	f := newCheckoutFixture(t, "")
	cart := f.fillCart(t)
	f.repo.clearErr = errors.New("cart service down")

	order, err := f.svc.PlaceOrder(context.Background(), shopper, cart, shippingAddress)
	require.NoError(t, err)
	assert.NotEmpty(t, order.Token)

	_, cached := f.cache.carts[shopper.ID]
	assert.False(t, cached, "cart cache must be invalidated")
}

func TestPlaceOrder_SnapshotUnaffectedByLaterEdits(t *testing.T) {
	f := newCheckoutFixture(t, "")
	cart := f.fillCart(t)

	_, err := f.svc.PlaceOrder(context.Background(), shopper, cart, shippingAddress)
	require.NoError(t, err)

	_, err = f.carts.AddLine(context.Background(), shopper, tee.ID, "#fff", domain.SizeM, 5)
	require.NoError(t, err)

	draft := f.orders.drafts[0]
	assert.Equal(t, 2, draft.Lines[0].Quantity)
	assert.True(t, draft.Total.Equal(decimal.RequireFromString("85.50")))
}

func TestPlaceOrder_UntokenizableOrderStillSucceeds(t *testing.T) {
	f := newCheckoutFixture(t, "")
	cart := f.fillCart(t)
	f.orders.nextID = -5

	order, err := f.svc.PlaceOrder(context.Background(), shopper, cart, shippingAddress)
	require.NoError(t, err)
	assert.Equal(t, int64(-4), order.ID)
	assert.Empty(t, order.Token)

	assert.True(t, cart.IsEmpty())
	assert.Empty(t, f.repo.lines)
	assert.Equal(t, []domain.EventType{domain.EventOrderPlaced}, f.pub.types())
}
