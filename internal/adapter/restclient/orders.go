package restclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rl1809/storefront/internal/core/domain"
)

type OrderClient struct {
	c *Client
}

func NewOrderClient(c *Client) *OrderClient {
	return &OrderClient{c: c}
}

func (oc *OrderClient) CreateOrder(ctx context.Context, sess domain.Session, draft domain.OrderDraft) (domain.Order, error) {
	var out orderDTO
	if err := oc.c.do(ctx, sess, http.MethodPost, "/account/orders", nil, createOrderFromDraft(draft), &out); err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	return out.toDomain()
}

// GetOrder uses the management route for operators so they can read any
// shopper's order.
func (oc *OrderClient) GetOrder(ctx context.Context, sess domain.Session, id int64) (domain.Order, error) {
	path := fmt.Sprintf("/account/order/%d/details", id)
	if sess.IsOperator() {
		path = fmt.Sprintf("/management/orders/%d", id)
	}
	var out orderDTO
	if err := oc.c.do(ctx, sess, http.MethodGet, path, nil, nil, &out); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Order{}, fmt.Errorf("get order %d: %w", id, domain.ErrOrderNotFound)
		}
		return domain.Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return out.toDomain()
}

func (oc *OrderClient) ListOrders(ctx context.Context, sess domain.Session) ([]domain.Order, error) {
	var out []orderDTO
	if err := oc.c.do(ctx, sess, http.MethodGet, "/account/orders", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return ordersToDomain(out)
}

func (oc *OrderClient) ListAllOrders(ctx context.Context, sess domain.Session) ([]domain.Order, error) {
	var out []orderDTO
	if err := oc.c.do(ctx, sess, http.MethodGet, "/management/orders", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	return ordersToDomain(out)
}

// UpdateStatus sets the status unconditionally; the API has no
// compare-and-set, so from is only used by callers for validation.
func (oc *OrderClient) UpdateStatus(ctx context.Context, sess domain.Session, id int64, from, to domain.OrderStatus) (domain.Order, error) {
	var out orderDTO
	path := fmt.Sprintf("/management/orders/%d/status", id)
	if err := oc.c.do(ctx, sess, http.MethodPut, path, nil, updateStatusRequest{Status: to.String()}, &out); err != nil {
		return domain.Order{}, fmt.Errorf("update order %d status: %w", id, err)
	}
	return out.toDomain()
}

func (oc *OrderClient) CancelOrder(ctx context.Context, sess domain.Session, id int64) error {
	if err := oc.c.do(ctx, sess, http.MethodDelete, fmt.Sprintf("/account/order/%d", id), nil, nil, nil); err != nil {
		return fmt.Errorf("cancel order %d: %w", id, err)
	}
	return nil
}
