package port

import (
	"context"
	"time"

	"github.com/rl1809/storefront/internal/core/domain"
)

type CacheRepository interface {
	// GetCart returns nil, nil on a miss.
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	SaveCart(ctx context.Context, sessionID string, cart *domain.Cart) error
	DeleteCart(ctx context.Context, sessionID string) error

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseIdempotency(ctx context.Context, key string) error

	MarkFinalized(ctx context.Context, orderID int64) error
	IsFinalized(ctx context.Context, orderID int64) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}
