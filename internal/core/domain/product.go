package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

func (s Size) Valid() bool {
	switch s {
	case SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL:
		return true
	}
	return false
}

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductFilter narrows a catalog listing. Zero values mean "any".
type ProductFilter struct {
	CategoryID int64
	MinPrice   decimal.NullDecimal
	MaxPrice   decimal.NullDecimal
}
