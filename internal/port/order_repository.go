package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type OrderRepository interface {
	// CreateOrder persists the draft and returns the stored order with its id.
	CreateOrder(ctx context.Context, sess domain.Session, draft domain.OrderDraft) (domain.Order, error)

	GetOrder(ctx context.Context, sess domain.Session, id int64) (domain.Order, error)

	// ListOrders returns the session user's own orders.
	ListOrders(ctx context.Context, sess domain.Session) ([]domain.Order, error)

	// ListAllOrders is the management view, newest first.
	ListAllOrders(ctx context.Context, sess domain.Session) ([]domain.Order, error)

	// UpdateStatus moves the order from one status to another. Implementations
	// that can check the current status return domain.ErrConflict when it is
	// no longer from.
	UpdateStatus(ctx context.Context, sess domain.Session, id int64, from, to domain.OrderStatus) (domain.Order, error)

	CancelOrder(ctx context.Context, sess domain.Session, id int64) error
}

type SalesRepository interface {
	// CreateSalesRecord returns an error matching domain.ErrDuplicate when a
	// record for the order already exists.
	CreateSalesRecord(ctx context.Context, sess domain.Session, draft domain.SalesRecordDraft) (domain.SalesRecord, error)

	ListSalesRecords(ctx context.Context, sess domain.Session) ([]domain.SalesRecord, error)
}
