package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/token"
	"github.com/rl1809/storefront/internal/port"
)

// OrderService drives orders through their lifecycle. Transitions are
// validated locally before the repository is asked, and the repository's
// answer is the only state ever returned.
type OrderService struct {
	orders    port.OrderRepository
	codec     *token.Codec
	publisher port.EventPublisher
	now       func() time.Time
}

func NewOrderService(orders port.OrderRepository, codec *token.Codec, publisher port.EventPublisher) *OrderService {
	return &OrderService{
		orders:    orders,
		codec:     codec,
		publisher: publisherOrNop(publisher),
		now:       time.Now,
	}
}

func (s *OrderService) withToken(o domain.Order) (domain.Order, error) {
	tok, err := s.codec.Encode(o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	o.Token = tok
	return o, nil
}

func (s *OrderService) withTokens(orders []domain.Order) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		o, err := s.withToken(o)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// Resolve maps a public token to an internal id.
func (s *OrderService) Resolve(tok string) (int64, error) {
	id, ok := s.codec.Decode(tok)
	if !ok {
		return 0, domain.ErrInvalidToken
	}
	return id, nil
}

func (s *OrderService) Get(ctx context.Context, sess domain.Session, tok string) (domain.Order, error) {
	id, err := s.Resolve(tok)
	if err != nil {
		return domain.Order{}, err
	}
	return s.GetByID(ctx, sess, id)
}

func (s *OrderService) GetByID(ctx context.Context, sess domain.Session, id int64) (domain.Order, error) {
	o, err := s.orders.GetOrder(ctx, sess, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return s.withToken(o)
}

func (s *OrderService) List(ctx context.Context, sess domain.Session) ([]domain.Order, error) {
	orders, err := s.orders.ListOrders(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return s.withTokens(orders)
}

// ListAll is the management listing, newest first.
func (s *OrderService) ListAll(ctx context.Context, sess domain.Session) ([]domain.Order, error) {
	orders, err := s.orders.ListAllOrders(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return s.withTokens(orders)
}

// Transition moves order to target. An illegal edge fails without a
// repository call.
func (s *OrderService) Transition(ctx context.Context, sess domain.Session, order domain.Order, target domain.OrderStatus) (domain.Order, error) {
	if err := domain.ValidateTransition(order.Status, target); err != nil {
		return domain.Order{}, err
	}

	updated, err := s.orders.UpdateStatus(ctx, sess, order.ID, order.Status, target)
	if err != nil {
		return domain.Order{}, fmt.Errorf("update order status: %w", err)
	}
	updated, err = s.withToken(updated)
	if err != nil {
		return domain.Order{}, err
	}

	emit(ctx, s.publisher, domain.EventOrderStatusChanged, updated, s.now())
	return updated, nil
}

// TransitionByToken loads the current order state before validating.
func (s *OrderService) TransitionByToken(ctx context.Context, sess domain.Session, tok string, target domain.OrderStatus) (domain.Order, error) {
	order, err := s.Get(ctx, sess, tok)
	if err != nil {
		return domain.Order{}, err
	}
	return s.Transition(ctx, sess, order, target)
}

// Cancel is a transition to CANCELLED through the dedicated cancel endpoint.
// The result is re-read from the repository. A confirmed cancel stands even
// when that read fails.
func (s *OrderService) Cancel(ctx context.Context, sess domain.Session, order domain.Order) (domain.Order, error) {
	if err := domain.ValidateTransition(order.Status, domain.OrderStatusCancelled); err != nil {
		return domain.Order{}, err
	}
	if err := s.orders.CancelOrder(ctx, sess, order.ID); err != nil {
		return domain.Order{}, fmt.Errorf("cancel order: %w", err)
	}

	cancelled, err := s.GetByID(ctx, sess, order.ID)
	if err != nil {
		log.Warn().Err(err).Int64("order_id", order.ID).Msg("re-read cancelled order failed")
		cancelled = order
		cancelled.Status = domain.OrderStatusCancelled
	}
	emit(ctx, s.publisher, domain.EventOrderStatusChanged, cancelled, s.now())
	return cancelled, nil
}

func (s *OrderService) CancelByToken(ctx context.Context, sess domain.Session, tok string) (domain.Order, error) {
	order, err := s.Get(ctx, sess, tok)
	if err != nil {
		return domain.Order{}, err
	}
	return s.Cancel(ctx, sess, order)
}
