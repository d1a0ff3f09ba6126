package domain

import (
	"strings"
	"time"
)

const (
	// SubmissionStatusAccepted is the distributor's order-level success code.
	// The source vocabulary is inconsistent across revisions; this service
	// compares against exactly this value, case-insensitively.
	SubmissionStatusAccepted = "accepted"

	// OrderTypeStandard marks a line fulfilled as a regular sales order.
	// Anything else (manual review, backorder handling) disqualifies the
	// whole submission from automatic invoicing.
	OrderTypeStandard = "SO"
)

// LineResult is the distributor's per-line outcome. Values are kept as the
// strings the wire carries; the distributor is not consistent about numeric
// formatting.
type LineResult struct {
	LineNumber        string `json:"line_number"`
	SKU               string `json:"sku"`
	Quantity          string `json:"quantity"`
	Code              string `json:"code"`
	Reason            string `json:"reason,omitempty"`
	OrderNumber       string `json:"order_number"`
	OrderType         string `json:"order_type"`
	Warehouse         string `json:"warehouse"`
	InternalReference string `json:"internal_reference"`
}

// SubmissionResult records the outcome of one submission attempt to the
// distributor. Its presence for an order id means the distributor has been
// contacted for that order; the pipeline must never submit twice for the same
// identifier. Rows are created once and never updated in place.
type SubmissionResult struct {
	OrderID         string
	PONumber        string
	CustomerNumber  string
	StatusCode      string
	RejectionReason string
	Items           []LineResult
	RawXML          string
	Decoded         []byte
	CreatedAt       time.Time
}

// Accepted reports whether the distributor fully accepted the order: the
// order-level status must be the accepted code and every line must be a
// standard sales order. Partial acceptance never triggers invoicing.
func (r *SubmissionResult) Accepted() bool {
	if !strings.EqualFold(strings.TrimSpace(r.StatusCode), SubmissionStatusAccepted) {
		return false
	}
	if len(r.Items) == 0 {
		return false
	}
	for _, item := range r.Items {
		if strings.TrimSpace(item.OrderType) != OrderTypeStandard {
			return false
		}
	}
	return true
}
