package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, domain.OrderEvent) error { return nil }

func publisherOrNop(p port.EventPublisher) port.EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// emit never fails the caller; the mutation it reports is already confirmed.
func emit(ctx context.Context, p port.EventPublisher, typ domain.EventType, order domain.Order, now time.Time) {
	if err := p.Publish(ctx, domain.NewOrderEvent(typ, order, now)); err != nil {
		log.Warn().Err(err).Str("event", string(typ)).Int64("order_id", order.ID).Msg("publish event failed")
	}
}
