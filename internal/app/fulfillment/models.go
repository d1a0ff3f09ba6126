package fulfillment

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prem-quety/brokerband-middleware/internal/domain"
)

// Intake outcome statuses returned to the notification's caller. The caller
// always learns definitively whether the distributor was contacted.
const (
	StatusDuplicate = "duplicate"
	StatusSkipped   = "skipped"
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusQueued    = "queued"
)

// OrderEvent is one storefront order-update notification as delivered by the
// platform webhook. Numeric identifiers arrive as JSON numbers, prices as
// strings; json.Number and decimal.Decimal absorb both shapes.
type OrderEvent struct {
	ID              json.Number      `json:"id"`
	Number          int64            `json:"number"`
	Email           string           `json:"email"`
	Gateway         string           `json:"gateway"`
	FinancialStatus string           `json:"financial_status"`
	Currency        string           `json:"currency"`
	TotalPrice      decimal.Decimal  `json:"total_price"`
	SubtotalPrice   decimal.Decimal  `json:"subtotal_price"`
	TotalTax        decimal.Decimal  `json:"total_tax"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
	Customer        *domain.Customer `json:"customer"`
	ShippingAddress *domain.Address  `json:"shipping_address"`
	BillingAddress  *domain.Address  `json:"billing_address"`
	LineItems       []EventLineItem  `json:"line_items"`
}

type EventLineItem struct {
	ProductID json.Number     `json:"product_id"`
	VariantID json.Number     `json:"variant_id"`
	SKU       string          `json:"sku"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Snapshot converts the event into the canonical order snapshot, retaining
// the raw notification payload verbatim.
func (e *OrderEvent) Snapshot(raw []byte, receivedAt time.Time) *domain.OrderSnapshot {
	items := make([]domain.LineItem, 0, len(e.LineItems))
	for _, line := range e.LineItems {
		items = append(items, domain.LineItem{
			ProductID: line.ProductID.String(),
			VariantID: line.VariantID.String(),
			SKU:       line.SKU,
			Title:     line.Title,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}
	return &domain.OrderSnapshot{
		OrderID:         e.ID.String(),
		OrderNumber:     e.Number,
		Email:           e.Email,
		Gateway:         e.Gateway,
		FinancialStatus: e.FinancialStatus,
		Currency:        e.Currency,
		TotalPrice:      e.TotalPrice,
		SubtotalPrice:   e.SubtotalPrice,
		TotalTax:        e.TotalTax,
		Customer:        e.Customer,
		ShippingAddress: e.ShippingAddress,
		BillingAddress:  e.BillingAddress,
		LineItems:       items,
		SourceCreatedAt: e.CreatedAt,
		SourceUpdatedAt: e.UpdatedAt,
		ReceivedAt:      receivedAt,
		RawPayload:      raw,
	}
}

// Outcome is the definitive answer for one processed intake event.
type Outcome struct {
	Status     string                   `json:"status"`
	OrderID    string                   `json:"order_id"`
	Message    string                   `json:"message,omitempty"`
	Submission *domain.SubmissionResult `json:"submission,omitempty"`
}
