package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type WishlistService struct {
	wishlists port.WishlistRepository
	carts     *CartService
}

func NewWishlistService(wishlists port.WishlistRepository, carts *CartService) *WishlistService {
	return &WishlistService{wishlists: wishlists, carts: carts}
}

func (s *WishlistService) Load(ctx context.Context, sess domain.Session) (*domain.Wishlist, error) {
	lines, err := s.wishlists.GetWishlist(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("get wishlist: %w", err)
	}
	return domain.RestoreWishlist(lines), nil
}

// Add does nothing when the variant is already on the wishlist.
func (s *WishlistService) Add(ctx context.Context, sess domain.Session, productID int64, color string, size domain.Size) (*domain.Wishlist, error) {
	key := domain.NewLineKey(productID, color, size)
	if err := key.Validate(); err != nil {
		return nil, err
	}

	w, err := s.Load(ctx, sess)
	if err != nil {
		return nil, err
	}
	if _, ok := w.Line(key); ok {
		return w, nil
	}

	line, err := s.wishlists.AddItem(ctx, sess, productID, key.Color, size)
	if err != nil && !errors.Is(err, domain.ErrConflict) {
		return nil, fmt.Errorf("add wishlist item: %w", err)
	}
	if err != nil {
		// Added concurrently elsewhere; the service state wins.
		return s.Load(ctx, sess)
	}
	if _, err := w.Add(line); err != nil {
		return nil, fmt.Errorf("apply wishlist item: %w", err)
	}
	return w, nil
}

// Remove is a no-op when the variant is absent.
func (s *WishlistService) Remove(ctx context.Context, sess domain.Session, key domain.LineKey) (*domain.Wishlist, error) {
	w, err := s.Load(ctx, sess)
	if err != nil {
		return nil, err
	}
	line, ok := w.Line(key)
	if !ok {
		return w, nil
	}
	if err := s.wishlists.RemoveItem(ctx, sess, line.ItemID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("remove wishlist item: %w", err)
	}
	w.Remove(key)
	return w, nil
}

// MoveToCart adds one unit of the variant to the cart and then drops it from
// the wishlist. A failed cart add leaves the wishlist as it was.
func (s *WishlistService) MoveToCart(ctx context.Context, sess domain.Session, key domain.LineKey) (*domain.Cart, *domain.Wishlist, error) {
	w, err := s.Load(ctx, sess)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := w.Line(key); !ok {
		return nil, nil, domain.ErrLineNotFound
	}

	cart, err := s.carts.AddLine(ctx, sess, key.ProductID, key.Color, key.Size, 1)
	if err != nil {
		return nil, nil, err
	}
	w, err = s.Remove(ctx, sess, key)
	if err != nil {
		return cart, nil, err
	}
	return cart, w, nil
}
