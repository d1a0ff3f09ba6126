package domain

import "time"

const (
	// FailureCategoryResolution covers customer, currency and item-mapping
	// failures raised before or during invoice creation.
	FailureCategoryResolution = "invoice_resolution"
	// FailureCategoryEmail marks an invoice that was created but could not be
	// emailed. The invoice is kept; the email needs operator follow-up.
	FailureCategoryEmail = "invoice_email"
)

// InvoiceFailure is one entry in the append-only log of failed invoicing
// attempts. The pipeline only appends; resolution is an operator action.
type InvoiceFailure struct {
	ID         string
	OrderID    string
	Category   string
	Message    string
	RetryCount int
	Resolved   bool
	TriedAt    time.Time
}
