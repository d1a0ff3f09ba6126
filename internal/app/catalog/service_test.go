package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prem-quety/brokerband-middleware/internal/domain"
	"github.com/prem-quety/brokerband-middleware/internal/infrastructure/books"
)

type fakeItemSource struct {
	bySKU      map[string]*books.Item
	failsFirst int
	calls      int
}

func (f *fakeItemSource) FindItemBySKU(_ context.Context, sku string) (*books.Item, error) {
	f.calls++
	if f.calls <= f.failsFirst {
		return nil, nil
	}
	return f.bySKU[sku], nil
}

type fakeMappingRepo struct {
	upserted []*domain.ItemMapping
}

func (f *fakeMappingRepo) Upsert(_ context.Context, m *domain.ItemMapping) error {
	f.upserted = append(f.upserted, m)
	return nil
}

func (f *fakeMappingRepo) GetByVariantID(_ context.Context, variantID string) (*domain.ItemMapping, error) {
	for _, m := range f.upserted {
		if m.VariantID == variantID {
			return m, nil
		}
	}
	return nil, sql.ErrNoRows
}

func TestSyncVariantsLinksAccountingItem(t *testing.T) {
	items := &fakeItemSource{bySKU: map[string]*books.Item{
		"SHOP-1": {ItemID: "item-1", SKU: "SHOP-1"},
	}}
	mappings := &fakeMappingRepo{}
	service := NewService(items, mappings, 3, time.Millisecond, zap.NewNop())

	report, err := service.SyncVariants(context.Background(), []VariantInput{
		{VariantID: "7001", ProductID: "9001", SKU: "SHOP-1", DistributorSKU: "SYN-100"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, mappings.upserted, 1)
	m := mappings.upserted[0]
	assert.Equal(t, "item-1", m.AccountingItemID)
	assert.Equal(t, "SYN-100", m.DistributorSKU)
	assert.Equal(t, domain.MappingStatusSynced, m.Status)
}

func TestSyncVariantsRetriesUntilItemAppears(t *testing.T) {
	items := &fakeItemSource{
		bySKU:      map[string]*books.Item{"SHOP-1": {ItemID: "item-1", SKU: "SHOP-1"}},
		failsFirst: 2,
	}
	mappings := &fakeMappingRepo{}
	service := NewService(items, mappings, 3, time.Millisecond, zap.NewNop())

	report, err := service.SyncVariants(context.Background(), []VariantInput{
		{VariantID: "7001", SKU: "SHOP-1", DistributorSKU: "SYN-100"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 3, items.calls, "lookup retries until the item becomes queryable")
}

func TestSyncVariantsRecordsFailedMapping(t *testing.T) {
	items := &fakeItemSource{bySKU: map[string]*books.Item{}}
	mappings := &fakeMappingRepo{}
	service := NewService(items, mappings, 2, time.Millisecond, zap.NewNop())

	report, err := service.SyncVariants(context.Background(), []VariantInput{
		{VariantID: "7001", SKU: "MISSING", DistributorSKU: "SYN-100"},
		{VariantID: "7002", SKU: "MISSING-2", DistributorSKU: "SYN-200"},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Synced)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, mappings.upserted, 2, "failed variants still get a FAILED row")
	for _, m := range mappings.upserted {
		assert.Equal(t, domain.MappingStatusFailed, m.Status)
		assert.NotEmpty(t, m.Message)
	}
}

func TestResolverRequiresDistributorSKU(t *testing.T) {
	mappings := &fakeMappingRepo{upserted: []*domain.ItemMapping{
		{VariantID: "7001", DistributorSKU: "SYN-100", Status: domain.MappingStatusSynced},
		{VariantID: "7002", Status: domain.MappingStatusFailed, Message: "no accounting item"},
	}}
	resolver := NewResolver(mappings)

	sku, err := resolver.DistributorSKU(context.Background(), "7001")
	require.NoError(t, err)
	assert.Equal(t, "SYN-100", sku)

	_, err = resolver.DistributorSKU(context.Background(), "7002")
	require.Error(t, err)

	_, err = resolver.DistributorSKU(context.Background(), "7999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no mapping row")
}

func TestSyncVariantsItemLookupError(t *testing.T) {
	items := &erroringItemSource{err: fmt.Errorf("books: status 500")}
	mappings := &fakeMappingRepo{}
	service := NewService(items, mappings, 2, time.Millisecond, zap.NewNop())

	report, err := service.SyncVariants(context.Background(), []VariantInput{
		{VariantID: "7001", SKU: "SHOP-1", DistributorSKU: "SYN-100"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	require.Len(t, mappings.upserted, 1)
	assert.Contains(t, mappings.upserted[0].Message, "status 500")
}

type erroringItemSource struct {
	err error
}

func (e *erroringItemSource) FindItemBySKU(context.Context, string) (*books.Item, error) {
	return nil, e.err
}
