package service

import (
	"errors"

	"github.com/rl1809/storefront/internal/core/domain"
)

var (
	// ErrOrderNotPlaced is joined with the underlying cause when order
	// creation fails. The cart is left untouched in that case.
	ErrOrderNotPlaced = errors.New("order not placed")

	ErrCheckoutInProgress = &domain.Error{Kind: domain.ErrConflict, Msg: "checkout already in progress"}
)
