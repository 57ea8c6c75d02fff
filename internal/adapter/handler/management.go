package handler

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/core/token"
)

// Management backs the operator surface shared by HTTP and gRPC.
type Management struct {
	orders *service.OrderService
	sales  *service.SalesReconciler
	codec  *token.Codec
}

func NewManagement(orders *service.OrderService, sales *service.SalesReconciler, codec *token.Codec) *Management {
	return &Management{orders: orders, sales: sales, codec: codec}
}

func (m *Management) UpdateStatus(ctx context.Context, sess domain.Session, tok, status string) (OrderView, error) {
	target, err := domain.ParseOrderStatus(status)
	if err != nil {
		return OrderView{}, err
	}
	order, err := m.orders.TransitionByToken(ctx, sess, tok, target)
	RecordOrderOperation("update_status", err == nil)
	if err != nil {
		return OrderView{}, err
	}
	return newOrderView(order), nil
}

func (m *Management) Finalize(ctx context.Context, sess domain.Session, tok string) (FinalizeView, error) {
	order, err := m.orders.Get(ctx, sess, tok)
	if err != nil {
		return FinalizeView{}, err
	}

	res, err := m.sales.Finalize(ctx, sess, order)
	finalizeOutcomes.WithLabelValues(res.Outcome.String()).Inc()
	RecordOrderOperation("finalize", err == nil)
	if err != nil {
		return FinalizeView{}, err
	}

	view := FinalizeView{Outcome: res.Outcome.String()}
	if res.Record != nil {
		rec, err := newSalesRecordView(m.codec, *res.Record)
		if err != nil {
			return FinalizeView{}, err
		}
		view.Record = &rec
	}
	return view, nil
}

func (m *Management) Sales(ctx context.Context, sess domain.Session) (SalesView, error) {
	records, err := m.sales.ListSales(ctx, sess)
	if err != nil {
		return SalesView{}, err
	}
	view := SalesView{Records: make([]SalesRecordView, 0, len(records)), Total: Money{m.sales.SalesTotal(records)}}
	for _, r := range records {
		rec, err := newSalesRecordView(m.codec, r)
		if err != nil {
			return SalesView{}, err
		}
		view.Records = append(view.Records, rec)
	}
	return view, nil
}
