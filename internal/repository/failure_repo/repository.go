package failure_repo

import (
	"context"

	"github.com/prem-quety/brokerband-middleware/internal/domain"
)

// FailureRepository is the append-only log of failed invoicing attempts.
// Multiple rows may exist per order; the pipeline never edits them.
type FailureRepository interface {
	Append(ctx context.Context, failure *domain.InvoiceFailure) error
	ListUnresolved(ctx context.Context) ([]*domain.InvoiceFailure, error)
	ListByOrderID(ctx context.Context, orderID string) ([]*domain.InvoiceFailure, error)
}
