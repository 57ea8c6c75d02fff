package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// CartService keeps the session's cart aggregate in line with the owning
// service. The aggregate is only changed after the remote call succeeds, and
// every mutation returns the aggregate as confirmed.
type CartService struct {
	carts   port.CartRepository
	catalog port.CatalogRepository
	cache   port.CacheRepository
}

func NewCartService(carts port.CartRepository, catalog port.CatalogRepository, cache port.CacheRepository) *CartService {
	return &CartService{
		carts:   carts,
		catalog: catalog,
		cache:   cache,
	}
}

// Load serves the cart from the cache when the session may use it and
// otherwise asks the owning service.
func (s *CartService) Load(ctx context.Context, sess domain.Session) (*domain.Cart, error) {
	if !sess.Cacheable() {
		return s.refresh(ctx, sess)
	}
	cached, err := s.cache.GetCart(ctx, sess.ID)
	if err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("cart cache read failed")
	}
	if cached != nil {
		return cached, nil
	}
	return s.refresh(ctx, sess)
}

func (s *CartService) refresh(ctx context.Context, sess domain.Session) (*domain.Cart, error) {
	lines, err := s.carts.GetCart(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	cart := domain.RestoreCart(lines)
	s.store(ctx, sess, cart)
	return cart, nil
}

func (s *CartService) store(ctx context.Context, sess domain.Session, cart *domain.Cart) {
	if !sess.Cacheable() {
		return
	}
	if err := s.cache.SaveCart(ctx, sess.ID, cart); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("cart cache write failed")
	}
}

func (s *CartService) invalidate(ctx context.Context, sess domain.Session) {
	if !sess.Cacheable() {
		return
	}
	if err := s.cache.DeleteCart(ctx, sess.ID); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("cart cache invalidate failed")
	}
}

// AddLine adds quantity of a product variant, merging with an existing line.
func (s *CartService) AddLine(ctx context.Context, sess domain.Session, productID int64, color string, size domain.Size, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	key := domain.NewLineKey(productID, color, size)
	if err := key.Validate(); err != nil {
		return nil, err
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	cart, err := s.Load(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := cart.Clone().AddLine(product, color, size, quantity); err != nil {
		return nil, err
	}

	var line domain.CartLine
	if existing, ok := cart.Line(key); ok && existing.ItemID != 0 {
		line, err = s.carts.UpdateItem(ctx, sess, existing.ItemID, existing.Quantity+quantity)
	} else {
		line, err = s.carts.AddItem(ctx, sess, productID, key.Color, size, quantity)
		if errors.Is(err, domain.ErrConflict) {
			// Our cached view missed a line the service already has.
			var fresh *domain.Cart
			fresh, line, err = s.retryAsUpdate(ctx, sess, key, quantity)
			if err == nil {
				cart = fresh
			}
		}
	}
	if err != nil {
		s.invalidate(ctx, sess)
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	if line.Product.ID == 0 {
		line.Product = product
	}
	if line.UnitPrice.IsZero() {
		line.UnitPrice = product.Price
	}
	if err := cart.PutLine(line); err != nil {
		s.invalidate(ctx, sess)
		return nil, fmt.Errorf("apply cart item: %w", err)
	}
	s.store(ctx, sess, cart)
	return cart, nil
}

func (s *CartService) retryAsUpdate(ctx context.Context, sess domain.Session, key domain.LineKey, quantity int) (*domain.Cart, domain.CartLine, error) {
	fresh, err := s.refresh(ctx, sess)
	if err != nil {
		return nil, domain.CartLine{}, err
	}
	existing, ok := fresh.Line(key)
	if !ok || existing.ItemID == 0 {
		return nil, domain.CartLine{}, domain.ErrConflict
	}
	line, err := s.carts.UpdateItem(ctx, sess, existing.ItemID, existing.Quantity+quantity)
	return fresh, line, err
}

// RemoveLine is a no-op when the line is not in the cart.
func (s *CartService) RemoveLine(ctx context.Context, sess domain.Session, key domain.LineKey) (*domain.Cart, error) {
	cart, err := s.Load(ctx, sess)
	if err != nil {
		return nil, err
	}
	line, ok := cart.Line(key)
	if !ok {
		return cart, nil
	}

	if line.ItemID != 0 {
		err := s.carts.RemoveItem(ctx, sess, line.ItemID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("remove cart item: %w", err)
		}
	}

	cart.RemoveLine(key)
	s.store(ctx, sess, cart)
	return cart, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, sess domain.Session, key domain.LineKey, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	cart, err := s.Load(ctx, sess)
	if err != nil {
		return nil, err
	}
	existing, ok := cart.Line(key)
	if !ok {
		return nil, domain.ErrLineNotFound
	}

	line, err := s.carts.UpdateItem(ctx, sess, existing.ItemID, quantity)
	if err != nil {
		s.invalidate(ctx, sess)
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	if line.Product.ID == 0 {
		line.Product = existing.Product
	}
	if line.UnitPrice.IsZero() {
		line.UnitPrice = existing.UnitPrice
	}
	if err := cart.PutLine(line); err != nil {
		return nil, fmt.Errorf("apply cart item: %w", err)
	}
	s.store(ctx, sess, cart)
	return cart, nil
}

// Clear empties the remote cart in one call.
func (s *CartService) Clear(ctx context.Context, sess domain.Session) (*domain.Cart, error) {
	if err := s.carts.ClearCart(ctx, sess); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	cart := domain.NewCart()
	s.store(ctx, sess, cart)
	return cart, nil
}
