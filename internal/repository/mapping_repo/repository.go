package mapping_repo

import (
	"context"

	"github.com/prem-quety/brokerband-middleware/internal/domain"
)

// MappingRepository stores the storefront-variant to distributor-SKU and
// accounting-item links populated by the catalog sync.
type MappingRepository interface {
	Upsert(ctx context.Context, mapping *domain.ItemMapping) error
	GetByVariantID(ctx context.Context, variantID string) (*domain.ItemMapping, error)
}
