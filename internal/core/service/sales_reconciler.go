package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeCreated
	OutcomeAlreadyExists
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeAlreadyExists:
		return "already_exists"
	default:
		return "failed"
	}
}

type FinalizeResult struct {
	Outcome Outcome
	Record  *domain.SalesRecord // set only for OutcomeCreated
}

// SalesReconciler records each finalized order in the sales ledger at most
// once. The sales repository's uniqueness on order id is authoritative.
type SalesReconciler struct {
	sales     port.SalesRepository
	cache     port.CacheRepository
	publisher port.EventPublisher
	now       func() time.Time
}

func NewSalesReconciler(sales port.SalesRepository, cache port.CacheRepository, publisher port.EventPublisher) *SalesReconciler {
	return &SalesReconciler{
		sales:     sales,
		cache:     cache,
		publisher: publisherOrNop(publisher),
		now:       time.Now,
	}
}

// Finalize creates the sales record for order. A duplicate is reported as
// OutcomeAlreadyExists with a nil error; anything else that goes wrong is
// OutcomeFailed with the error.
func (r *SalesReconciler) Finalize(ctx context.Context, sess domain.Session, order domain.Order) (FinalizeResult, error) {
	if order.ID <= 0 || order.Status == domain.OrderStatusCancelled {
		return FinalizeResult{Outcome: OutcomeFailed}, domain.ErrNotFinalizable
	}

	logger := log.With().Int64("order_id", order.ID).Logger()

	done, err := r.cache.IsFinalized(ctx, order.ID)
	if err != nil {
		logger.Warn().Err(err).Msg("finalized marker read failed")
	}
	if done {
		return FinalizeResult{Outcome: OutcomeAlreadyExists}, nil
	}

	record, err := r.sales.CreateSalesRecord(ctx, sess, domain.NewSalesRecordDraft(order, r.now()))
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		r.mark(ctx, logger, order.ID)
		logger.Info().Str("outcome", OutcomeAlreadyExists.String()).Msg("sale already recorded")
		return FinalizeResult{Outcome: OutcomeAlreadyExists}, nil
	case err != nil:
		return FinalizeResult{Outcome: OutcomeFailed}, fmt.Errorf("create sales record: %w", err)
	}

	r.mark(ctx, logger, order.ID)
	emit(ctx, r.publisher, domain.EventSaleFinalized, order, r.now())
	logger.Info().Str("outcome", OutcomeCreated.String()).Msg("sale finalized")
	return FinalizeResult{Outcome: OutcomeCreated, Record: &record}, nil
}

func (r *SalesReconciler) mark(ctx context.Context, logger zerolog.Logger, orderID int64) {
	if err := r.cache.MarkFinalized(ctx, orderID); err != nil {
		logger.Warn().Err(err).Msg("finalized marker write failed")
	}
}

// ListSales returns the ledger newest first.
func (r *SalesReconciler) ListSales(ctx context.Context, sess domain.Session) ([]domain.SalesRecord, error) {
	records, err := r.sales.ListSalesRecords(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("list sales records: %w", err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DateOfSale.After(records[j].DateOfSale)
	})
	return records, nil
}

func (r *SalesReconciler) SalesTotal(records []domain.SalesRecord) decimal.Decimal {
	return domain.SumSales(records)
}
