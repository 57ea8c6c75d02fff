package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

// CatalogRepository reads products from the owning service. The catalog is
// read-only from the storefront's point of view.
type CatalogRepository interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
}
