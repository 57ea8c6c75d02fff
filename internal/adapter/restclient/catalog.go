package restclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rl1809/storefront/internal/core/domain"
)

type CatalogClient struct {
	c *Client
}

func NewCatalogClient(c *Client) *CatalogClient {
	return &CatalogClient{c: c}
}

func (cc *CatalogClient) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	q := url.Values{}
	if filter.CategoryID > 0 {
		q.Set("category_id", strconv.FormatInt(filter.CategoryID, 10))
	}
	if filter.MinPrice.Valid {
		q.Set("min_price", filter.MinPrice.Decimal.String())
	}
	if filter.MaxPrice.Valid {
		q.Set("max_price", filter.MaxPrice.Decimal.String())
	}

	var out []productDTO
	if err := cc.c.do(ctx, domain.Session{}, http.MethodGet, "/account/products", q, nil, &out); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make([]domain.Product, 0, len(out))
	for _, p := range out {
		products = append(products, p.toDomain())
	}
	return products, nil
}

func (cc *CatalogClient) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var out productDTO
	if err := cc.c.do(ctx, domain.Session{}, http.MethodGet, fmt.Sprintf("/account/products/%d", id), nil, nil, &out); err != nil {
		return domain.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return out.toDomain(), nil
}
