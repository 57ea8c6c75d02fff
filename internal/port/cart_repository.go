package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

// CartRepository is the owning service's cart store for the session's user.
type CartRepository interface {
	GetCart(ctx context.Context, sess domain.Session) ([]domain.CartLine, error)

	// AddItem returns the line as stored remotely, including its item id.
	AddItem(ctx context.Context, sess domain.Session, productID int64, color string, size domain.Size, quantity int) (domain.CartLine, error)

	UpdateItem(ctx context.Context, sess domain.Session, itemID int64, quantity int) (domain.CartLine, error)

	// RemoveItem returns domain.ErrNotFound for an unknown item.
	RemoveItem(ctx context.Context, sess domain.Session, itemID int64) error

	ClearCart(ctx context.Context, sess domain.Session) error
}

type WishlistRepository interface {
	GetWishlist(ctx context.Context, sess domain.Session) ([]domain.WishlistLine, error)
	AddItem(ctx context.Context, sess domain.Session, productID int64, color string, size domain.Size) (domain.WishlistLine, error)
	RemoveItem(ctx context.Context, sess domain.Session, itemID int64) error
}

type AddressRepository interface {
	// GetAddress returns domain.ErrNotFound when the user saved none.
	GetAddress(ctx context.Context, sess domain.Session) (domain.Address, error)
}
