package order_repo

import (
	"context"

	"github.com/prem-quety/brokerband-middleware/internal/domain"
)

// OrderRepository persists canonical order snapshots keyed by the external
// order identifier. Upsert replaces all derived fields atomically.
type OrderRepository interface {
	Upsert(ctx context.Context, snapshot *domain.OrderSnapshot) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.OrderSnapshot, error)
}
