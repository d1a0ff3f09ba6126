package domain

import "time"

type MappingStatus string

const (
	MappingStatusSynced MappingStatus = "SYNCED"
	MappingStatusFailed MappingStatus = "FAILED"
)

// ItemMapping links one storefront variant to the distributor SKU used on
// purchase orders and to the accounting item used on invoice lines. Rows are
// populated by the catalog sync; the fulfillment pipeline only reads them and
// fails hard when a mapping is absent rather than guessing.
type ItemMapping struct {
	VariantID        string
	ProductID        string
	SKU              string
	DistributorSKU   string
	AccountingItemID string
	Status           MappingStatus
	Message          string
	SyncedAt         time.Time
}
