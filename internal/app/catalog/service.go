package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prem-quety/brokerband-middleware/internal/domain"
	"github.com/prem-quety/brokerband-middleware/internal/infrastructure/books"
	"github.com/prem-quety/brokerband-middleware/internal/repository/mapping_repo"
)

// ItemSource is the slice of the accounting client the sync uses to locate
// item records by SKU.
type ItemSource interface {
	FindItemBySKU(ctx context.Context, sku string) (*books.Item, error)
}

// VariantInput is one storefront variant to link during a sync run.
type VariantInput struct {
	VariantID      string `json:"variant_id"`
	ProductID      string `json:"product_id"`
	SKU            string `json:"sku"`
	DistributorSKU string `json:"distributor_sku"`
}

// SyncReport summarizes one sync run.
type SyncReport struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

// Service maintains the variant-to-item mapping table the pipeline reads.
// Accounting item creation is eventually consistent after catalog pushes, so
// lookups retry a bounded number of times before marking the mapping failed.
type Service struct {
	items    ItemSource
	mappings mapping_repo.MappingRepository
	retries  int
	pause    time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(items ItemSource, mappings mapping_repo.MappingRepository, retries int, pause time.Duration, l *zap.Logger) *Service {
	if retries < 1 {
		retries = 1
	}
	return &Service{
		items:    items,
		mappings: mappings,
		retries:  retries,
		pause:    pause,
		logger:   l,
		now:      time.Now,
	}
}

// SyncVariants links each variant to its accounting item and upserts the
// mapping rows. Failures are recorded as FAILED rows rather than aborting
// the run, so one bad variant never blocks the rest of the catalog.
func (s *Service) SyncVariants(ctx context.Context, variants []VariantInput) (*SyncReport, error) {
	report := &SyncReport{}
	for _, variant := range variants {
		if err := s.syncOne(ctx, variant); err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failed++
			continue
		}
		report.Synced++
	}
	s.logger.Info("Catalog sync finished",
		zap.Int("synced", report.Synced),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (s *Service) syncOne(ctx context.Context, variant VariantInput) error {
	mapping := &domain.ItemMapping{
		VariantID:      variant.VariantID,
		ProductID:      variant.ProductID,
		SKU:            variant.SKU,
		DistributorSKU: variant.DistributorSKU,
		SyncedAt:       s.now(),
	}

	item, err := s.findItem(ctx, variant.SKU)
	if err != nil {
		s.logger.Warn("Accounting item lookup failed",
			zap.String("variant_id", variant.VariantID),
			zap.String("sku", variant.SKU),
			zap.Error(err))
		mapping.Status = domain.MappingStatusFailed
		mapping.Message = err.Error()
		if upsertErr := s.mappings.Upsert(ctx, mapping); upsertErr != nil {
			return upsertErr
		}
		return err
	}

	mapping.AccountingItemID = item.ItemID
	mapping.Status = domain.MappingStatusSynced
	mapping.Message = ""
	return s.mappings.Upsert(ctx, mapping)
}

// findItem polls the accounting system for the item, pausing between
// attempts to let a freshly pushed item become queryable.
func (s *Service) findItem(ctx context.Context, sku string) (*books.Item, error) {
	var lastErr error
	for attempt := 1; attempt <= s.retries; attempt++ {
		item, err := s.items.FindItemBySKU(ctx, sku)
		if err == nil && item != nil {
			return item, nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("no accounting item found for sku %q", sku)
		}
		if attempt < s.retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.pause):
			}
		}
	}
	return nil, lastErr
}

// Resolver adapts the mapping table to the PO encoder's SKU lookup. Only
// rows that synced cleanly and carry a distributor SKU resolve; anything
// else is an unmapped variant.
type Resolver struct {
	mappings mapping_repo.MappingRepository
}

func NewResolver(mappings mapping_repo.MappingRepository) *Resolver {
	return &Resolver{mappings: mappings}
}

func (r *Resolver) DistributorSKU(ctx context.Context, variantID string) (string, error) {
	mapping, err := r.mappings.GetByVariantID(ctx, variantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("variant %s has no mapping row", variantID)
		}
		return "", err
	}
	if mapping.DistributorSKU == "" {
		return "", fmt.Errorf("mapping for variant %s has no distributor sku", variantID)
	}
	return mapping.DistributorSKU, nil
}
