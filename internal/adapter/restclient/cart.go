package restclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rl1809/storefront/internal/core/domain"
)

type CartClient struct {
	c *Client
}

func NewCartClient(c *Client) *CartClient {
	return &CartClient{c: c}
}

func (cc *CartClient) GetCart(ctx context.Context, sess domain.Session) ([]domain.CartLine, error) {
	var out cartDTO
	if err := cc.c.do(ctx, sess, http.MethodGet, "/account/cart", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	lines := make([]domain.CartLine, 0, len(out.Items))
	for _, it := range out.Items {
		lines = append(lines, it.toDomain())
	}
	return lines, nil
}

func (cc *CartClient) AddItem(ctx context.Context, sess domain.Session, productID int64, color string, size domain.Size, quantity int) (domain.CartLine, error) {
	req := addCartItemRequest{ProductID: productID, Quantity: quantity, Color: color, Size: string(size)}
	var out cartItemDTO
	if err := cc.c.do(ctx, sess, http.MethodPost, "/account/cart", nil, req, &out); err != nil {
		return domain.CartLine{}, fmt.Errorf("add cart item: %w", err)
	}
	return out.toDomain(), nil
}

func (cc *CartClient) UpdateItem(ctx context.Context, sess domain.Session, itemID int64, quantity int) (domain.CartLine, error) {
	var out cartItemDTO
	path := fmt.Sprintf("/account/cart/%d", itemID)
	if err := cc.c.do(ctx, sess, http.MethodPut, path, nil, updateCartItemRequest{Quantity: quantity}, &out); err != nil {
		return domain.CartLine{}, fmt.Errorf("update cart item %d: %w", itemID, err)
	}
	return out.toDomain(), nil
}

func (cc *CartClient) RemoveItem(ctx context.Context, sess domain.Session, itemID int64) error {
	if err := cc.c.do(ctx, sess, http.MethodDelete, fmt.Sprintf("/account/cart/%d", itemID), nil, nil, nil); err != nil {
		return fmt.Errorf("remove cart item %d: %w", itemID, err)
	}
	return nil
}

func (cc *CartClient) ClearCart(ctx context.Context, sess domain.Session) error {
	if err := cc.c.do(ctx, sess, http.MethodDelete, "/account/cart/clear", nil, nil, nil); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

type WishlistClient struct {
	c *Client
}

func NewWishlistClient(c *Client) *WishlistClient {
	return &WishlistClient{c: c}
}

func (wc *WishlistClient) GetWishlist(ctx context.Context, sess domain.Session) ([]domain.WishlistLine, error) {
	var out []wishlistItemDTO
	if err := wc.c.do(ctx, sess, http.MethodGet, "/account/wishlist", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("get wishlist: %w", err)
	}
	lines := make([]domain.WishlistLine, 0, len(out))
	for _, it := range out {
		lines = append(lines, it.toDomain())
	}
	return lines, nil
}

func (wc *WishlistClient) AddItem(ctx context.Context, sess domain.Session, productID int64, color string, size domain.Size) (domain.WishlistLine, error) {
	req := addWishlistItemRequest{ProductID: productID, Color: color, Size: string(size)}
	var out wishlistItemDTO
	if err := wc.c.do(ctx, sess, http.MethodPost, "/account/wishlist", nil, req, &out); err != nil {
		return domain.WishlistLine{}, fmt.Errorf("add wishlist item: %w", err)
	}
	return out.toDomain(), nil
}

func (wc *WishlistClient) RemoveItem(ctx context.Context, sess domain.Session, itemID int64) error {
	if err := wc.c.do(ctx, sess, http.MethodDelete, fmt.Sprintf("/account/wishlist/%d", itemID), nil, nil, nil); err != nil {
		return fmt.Errorf("remove wishlist item %d: %w", itemID, err)
	}
	return nil
}

type AddressClient struct {
	c *Client
}

func NewAddressClient(c *Client) *AddressClient {
	return &AddressClient{c: c}
}

func (ac *AddressClient) GetAddress(ctx context.Context, sess domain.Session) (domain.Address, error) {
	var out addressDTO
	if err := ac.c.do(ctx, sess, http.MethodGet, "/account/address", nil, nil, &out); err != nil {
		return domain.Address{}, fmt.Errorf("get address: %w", err)
	}
	return out.toDomain(), nil
}
