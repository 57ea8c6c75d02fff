package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by the core or classified by an adapter
// matches exactly one of these through errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("service unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	ErrInvalidQuantity    = newError(ErrValidation, "quantity must be at least 1")
	ErrInvalidVariant     = newError(ErrValidation, "color and a known size are required")
	ErrInvalidPrice       = newError(ErrValidation, "price must not be negative")
	ErrLineNotFound       = newError(ErrNotFound, "line not found")
	ErrIncompleteCheckout = newError(ErrValidation, "incomplete checkout: cart and shipping address are required")
	ErrIllegalTransition  = newError(ErrValidation, "illegal status transition")
	ErrInvalidStatus      = newError(ErrValidation, "unknown order status")
	ErrInvalidToken       = newError(ErrNotFound, "invalid order token")
	ErrOrderNotFound      = newError(ErrNotFound, "order not found")
	ErrDuplicate          = newError(ErrConflict, "already exists")
	ErrNotFinalizable     = newError(ErrValidation, "order cannot be finalized")
)

// Error is a sentinel that belongs to a kind.
type Error struct {
	Kind error
	Msg  string
}

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// TransitionError reports a rejected status change.
type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }

// KindOf returns the kind of err, or nil when err carries none.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrUnavailable, ErrUnauthorized} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
