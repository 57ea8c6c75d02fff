package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const unknownBuyer = "N/A"

// SalesRecord is the ledger entry for a finalized order. At most one exists
// per OrderID.
type SalesRecord struct {
	ID         int64
	OrderID    int64
	UserID     int64
	BuyerName  string
	DateOfSale time.Time
	Price      decimal.Decimal
}

type SalesRecordDraft struct {
	OrderID    int64
	UserID     int64
	BuyerName  string
	DateOfSale time.Time
	Price      decimal.Decimal
}

func NewSalesRecordDraft(order Order, now time.Time) SalesRecordDraft {
	name := strings.TrimSpace(order.Buyer.FullName)
	if name == "" {
		name = unknownBuyer
	}
	return SalesRecordDraft{
		OrderID:    order.ID,
		UserID:     order.UserID,
		BuyerName:  name,
		DateOfSale: now,
		Price:      order.Total,
	}
}

func SumSales(records []SalesRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Price)
	}
	return total
}
