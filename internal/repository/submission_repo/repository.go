package submission_repo

import (
	"context"
	"errors"

	"github.com/prem-quety/brokerband-middleware/internal/domain"
)

// ErrAlreadySubmitted is returned by Create when a submission result already
// exists for the order identifier. The storage layer enforces this with a
// uniqueness guard so that concurrent events for the same order cannot both
// record a submission.
var ErrAlreadySubmitted = errors.New("submission result already exists for order")

type SubmissionRepository interface {
	// Create inserts the result if and only if no result exists for the
	// order identifier, otherwise ErrAlreadySubmitted.
	Create(ctx context.Context, result *domain.SubmissionResult) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.SubmissionResult, error)
}
