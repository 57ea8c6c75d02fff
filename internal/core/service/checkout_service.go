package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/token"
	"github.com/rl1809/storefront/internal/port"
)

// CheckoutService turns a cart into an order. It performs no deduplication;
// callers that need at-most-once placement hold their own lock.
type CheckoutService struct {
	orders        port.OrderRepository
	carts         *CartService
	codec         *token.Codec
	publisher     port.EventPublisher
	initialStatus domain.OrderStatus
	now           func() time.Time
}

func NewCheckoutService(
	orders port.OrderRepository,
	carts *CartService,
	codec *token.Codec,
	publisher port.EventPublisher,
	initialStatus domain.OrderStatus,
) *CheckoutService {
	if initialStatus == "" {
		initialStatus = domain.OrderStatusPending
	}
	return &CheckoutService{
		orders:        orders,
		carts:         carts,
		codec:         codec,
		publisher:     publisherOrNop(publisher),
		initialStatus: initialStatus,
		now:           time.Now,
	}
}

// PlaceOrder creates an order from a snapshot of cart shipped to addr.
// On failure the cart is untouched and the error matches both
// ErrOrderNotPlaced and the cause. Once the order exists the call succeeds,
// even when clearing the cart afterwards fails.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sess domain.Session, cart *domain.Cart, addr *domain.Address) (domain.Order, error) {
	if cart.IsEmpty() || !addr.Complete() {
		return domain.Order{}, domain.ErrIncompleteCheckout
	}

	snap := cart.Snapshot(s.now())
	draft := domain.NewOrderDraft(sess.UserID, snap, *addr, s.initialStatus)

	order, err := s.orders.CreateOrder(ctx, sess, draft)
	if err != nil {
		return domain.Order{}, errors.Join(ErrOrderNotPlaced, err)
	}

	if tok, err := s.codec.Encode(order.ID); err != nil {
		// The order exists, so the call still succeeds without a token.
		log.Error().Err(err).Int64("order_id", order.ID).Msg("order placed without token")
	} else {
		order.Token = tok
	}

	if _, err := s.carts.Clear(ctx, sess); err != nil {
		log.Error().Err(err).Str("session", sess.ID).Int64("order_id", order.ID).
			Msg("clear cart after order failed")
		s.carts.invalidate(ctx, sess)
	} else {
		cart.Clear()
	}

	emit(ctx, s.publisher, domain.EventOrderPlaced, order, s.now())
	log.Info().Str("token", order.Token).Int64("order_id", order.ID).Str("total", order.Total.String()).Msg("order placed")
	return order, nil
}
