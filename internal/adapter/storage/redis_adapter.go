package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

const (
	cartKeyPrefix        = "cart:"
	idempotencyKeyPrefix = "idempotency:"
	finalizedKeyPrefix   = "sales:finalized:"

	defaultCartTTL   = 30 * time.Minute
	defaultMarkerTTL = 7 * 24 * time.Hour
)

// getAndTouchScript reads a cart and slides its expiry in one round trip.
var getAndTouchScript = redis.NewScript(`
local key = KEYS[1]
local ttl = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return false
end

redis.call('PEXPIRE', key, ttl)
return current
`)

type RedisAdapter struct {
	client    *redis.Client
	cartTTL   time.Duration
	markerTTL time.Duration
}

func NewRedisAdapter(client *redis.Client, cartTTL, markerTTL time.Duration) *RedisAdapter {
	if cartTTL <= 0 {
		cartTTL = defaultCartTTL
	}
	if markerTTL <= 0 {
		markerTTL = defaultMarkerTTL
	}
	return &RedisAdapter{client: client, cartTTL: cartTTL, markerTTL: markerTTL}
}

type cachedLine struct {
	ItemID      int64           `json:"item_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	ImageURL    string          `json:"image_url,omitempty"`
	Category    string          `json:"category,omitempty"`
	Color       string          `json:"color"`
	Size        domain.Size     `json:"size"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type cachedCart struct {
	Lines []cachedLine `json:"lines"`
}

func encodeCart(cart *domain.Cart) ([]byte, error) {
	cc := cachedCart{Lines: make([]cachedLine, 0, cart.Len())}
	for _, l := range cart.Lines() {
		cc.Lines = append(cc.Lines, cachedLine{
			ItemID:      l.ItemID,
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			ImageURL:    l.Product.ImageURL,
			Category:    l.Product.Category,
			Color:       l.Color,
			Size:        l.Size,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return json.Marshal(cc)
}

func decodeCart(raw []byte) (*domain.Cart, error) {
	var cc cachedCart
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, err
	}
	lines := make([]domain.CartLine, 0, len(cc.Lines))
	for _, l := range cc.Lines {
		lines = append(lines, domain.CartLine{
			ItemID: l.ItemID,
			Product: domain.Product{
				ID:       l.ProductID,
				Name:     l.ProductName,
				Price:    l.UnitPrice,
				ImageURL: l.ImageURL,
				Category: l.Category,
			},
			Color:     l.Color,
			Size:      l.Size,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return domain.RestoreCart(lines), nil
}

func (r *RedisAdapter) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	raw, err := getAndTouchScript.Run(ctx, r.client, []string{cartKeyPrefix + sessionID}, r.cartTTL.Milliseconds()).Text()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached cart: %w", err)
	}

	cart, err := decodeCart([]byte(raw))
	if err != nil {
		// Drop the corrupt entry so the next read is a plain miss.
		_ = r.client.Del(ctx, cartKeyPrefix+sessionID).Err()
		return nil, fmt.Errorf("decode cached cart: %w", err)
	}
	return cart, nil
}

func (r *RedisAdapter) SaveCart(ctx context.Context, sessionID string, cart *domain.Cart) error {
	raw, err := encodeCart(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return r.client.Set(ctx, cartKeyPrefix+sessionID, raw, r.cartTTL).Err()
}

func (r *RedisAdapter) DeleteCart(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, cartKeyPrefix+sessionID).Err()
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}

func finalizedKey(orderID int64) string {
	return finalizedKeyPrefix + strconv.FormatInt(orderID, 10)
}

func (r *RedisAdapter) MarkFinalized(ctx context.Context, orderID int64) error {
	return r.client.Set(ctx, finalizedKey(orderID), 1, r.markerTTL).Err()
}

func (r *RedisAdapter) IsFinalized(ctx context.Context, orderID int64) (bool, error) {
	n, err := r.client.Exists(ctx, finalizedKey(orderID)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
