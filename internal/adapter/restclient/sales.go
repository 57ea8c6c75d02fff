package restclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rl1809/storefront/internal/core/domain"
)

type SalesClient struct {
	c *Client
}

func NewSalesClient(c *Client) *SalesClient {
	return &SalesClient{c: c}
}

func (sc *SalesClient) CreateSalesRecord(ctx context.Context, sess domain.Session, draft domain.SalesRecordDraft) (domain.SalesRecord, error) {
	req := salesRecordDTO{
		OrderID:    draft.OrderID,
		UserID:     draft.UserID,
		BuyerName:  draft.BuyerName,
		DateOfSale: apiTime{draft.DateOfSale},
		Price:      apiPrice{draft.Price},
	}
	var out salesRecordDTO
	err := sc.c.do(ctx, sess, http.MethodPost, "/management/sales", nil, req, &out)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.isDuplicate() {
		return domain.SalesRecord{}, fmt.Errorf("create sales record for order %d: %w", draft.OrderID, domain.ErrDuplicate)
	}
	if err != nil {
		return domain.SalesRecord{}, fmt.Errorf("create sales record for order %d: %w", draft.OrderID, err)
	}
	return out.toDomain(), nil
}

func (sc *SalesClient) ListSalesRecords(ctx context.Context, sess domain.Session) ([]domain.SalesRecord, error) {
	var out []salesRecordDTO
	if err := sc.c.do(ctx, sess, http.MethodGet, "/management/sales", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list sales records: %w", err)
	}
	records := make([]domain.SalesRecord, 0, len(out))
	for _, r := range out {
		records = append(records, r.toDomain())
	}
	return records, nil
}
