// Package token converts internal order ids into the opaque tokens used in
// URLs and API responses.
package token

import (
	"errors"
	"fmt"

	"github.com/speps/go-hashids/v2"
)

const (
	DefaultSalt      = "ladimoodjenajjacibrendnabalkanu"
	DefaultMinLength = 20
)

var ErrNegativeID = errors.New("order id must not be negative")

// Codec is safe for concurrent use.
type Codec struct {
	h *hashids.HashID
}

func NewCodec(salt string, minLength int) (*Codec, error) {
	if salt == "" {
		return nil, errors.New("token salt is required")
	}
	if minLength < 0 {
		return nil, fmt.Errorf("token min length %d must not be negative", minLength)
	}

	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = minLength

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("init hashids: %w", err)
	}
	return &Codec{h: h}, nil
}

func (c *Codec) Encode(id int64) (string, error) {
	if id < 0 {
		return "", ErrNegativeID
	}
	tok, err := c.h.EncodeInt64([]int64{id})
	if err != nil {
		return "", fmt.Errorf("encode order id: %w", err)
	}
	return tok, nil
}

// Decode reports false for anything that is not a token this codec issued.
func (c *Codec) Decode(tok string) (int64, bool) {
	if tok == "" {
		return 0, false
	}
	ids, err := c.h.DecodeInt64WithError(tok)
	if err != nil || len(ids) != 1 || ids[0] < 0 {
		return 0, false
	}
	return ids[0], true
}
