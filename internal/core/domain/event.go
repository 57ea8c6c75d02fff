package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventOrderPlaced        EventType = "order.placed"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventSaleFinalized      EventType = "sale.finalized"
)

type OrderEvent struct {
	ID         string          `json:"id"`
	Type       EventType       `json:"type"`
	OrderID    int64           `json:"order_id"`
	Token      string          `json:"token"`
	UserID     int64           `json:"user_id"`
	Status     OrderStatus     `json:"status"`
	Total      decimal.Decimal `json:"total"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func NewOrderEvent(typ EventType, order Order, now time.Time) OrderEvent {
	return OrderEvent{
		Type:       typ,
		OrderID:    order.ID,
		Token:      order.Token,
		UserID:     order.UserID,
		Status:     order.Status,
		Total:      order.Total,
		OccurredAt: now,
	}
}
