package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated: {OrderStatusPending, OrderStatusCancelled},
	OrderStatusPending: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusDelivered},
}

// ParseOrderStatus accepts any letter case.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// ValidateTransition returns a *TransitionError for any edge outside the
// lifecycle graph, including self transitions and moves out of terminal states.
func ValidateTransition(from, to OrderStatus) error {
	if !from.Valid() || !to.Valid() {
		return ErrInvalidStatus
	}
	if !from.CanTransitionTo(to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// OrderLine is frozen at checkout; later catalog changes do not touch it.
type OrderLine struct {
	ProductID   int64
	ProductName string
	Quantity    int
	Color       string
	Size        Size
	Price       decimal.Decimal
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Buyer struct {
	FullName string
	Email    string
}

// Order as known by the owning service. ID never leaves the backend; clients
// only ever see Token.
type Order struct {
	ID        int64
	Token     string
	UserID    int64
	Status    OrderStatus
	Total     decimal.Decimal
	Lines     []OrderLine
	Address   *Address
	Buyer     Buyer
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderDraft is the creation request sent to the order repository.
type OrderDraft struct {
	UserID  int64
	Status  OrderStatus
	Total   decimal.Decimal
	Address Address
	Lines   []OrderLine
}

// NewOrderDraft freezes the snapshot into order lines. Total is the sum of
// the line subtotals.
func NewOrderDraft(userID int64, snap CartSnapshot, addr Address, status OrderStatus) OrderDraft {
	lines := make([]OrderLine, 0, len(snap.Lines))
	total := decimal.Zero
	for _, cl := range snap.Lines {
		ol := OrderLine{
			ProductID:   cl.Product.ID,
			ProductName: cl.Product.Name,
			Quantity:    cl.Quantity,
			Color:       cl.Color,
			Size:        cl.Size,
			Price:       cl.UnitPrice,
		}
		total = total.Add(ol.Subtotal())
		lines = append(lines, ol)
	}
	return OrderDraft{
		UserID:  userID,
		Status:  status,
		Total:   total,
		Address: addr,
		Lines:   lines,
	}
}
