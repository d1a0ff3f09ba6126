package fulfillment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prem-quety/brokerband-middleware/internal/domain"
	"github.com/prem-quety/brokerband-middleware/internal/infrastructure/synnex"
	"github.com/prem-quety/brokerband-middleware/internal/repository/order_repo"
	"github.com/prem-quety/brokerband-middleware/internal/repository/submission_repo"
)

// Status code recorded when the distributor answered but its response could
// not be parsed. The raw body is still persisted so the exchange is auditable.
const statusCodeUnparseable = "unparseable"

// Encoder builds the distributor PO document for an order snapshot.
type Encoder interface {
	Encode(ctx context.Context, order *domain.OrderSnapshot) (string, error)
	PONumber(orderID string) string
}

// Submitter delivers an encoded PO payload and returns the raw response body.
type Submitter interface {
	SubmitPO(ctx context.Context, payload string) (string, error)
}

// Invoicer runs downstream invoicing for an accepted order. Implementations
// absorb their own failures; the pipeline never inspects an invoicing error.
type Invoicer interface {
	InvoiceOrder(ctx context.Context, order *domain.OrderSnapshot, submission *domain.SubmissionResult)
}

// Service runs the order fulfillment pipeline: guard the intake event,
// persist the snapshot, submit the PO to the distributor exactly once per
// order, record the outcome, and hand accepted orders to invoicing.
type Service struct {
	orders      order_repo.OrderRepository
	submissions submission_repo.SubmissionRepository
	encoder     Encoder
	transport   Submitter
	invoicer    Invoicer
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(
	orders order_repo.OrderRepository,
	submissions submission_repo.SubmissionRepository,
	encoder Encoder,
	transport Submitter,
	invoicer Invoicer,
	logger *zap.Logger,
) *Service {
	return &Service{
		orders:      orders,
		submissions: submissions,
		encoder:     encoder,
		transport:   transport,
		invoicer:    invoicer,
		logger:      logger,
		now:         time.Now,
	}
}

// ProcessOrderEvent drives one intake event through the full pipeline and
// returns a definitive outcome. The returned error is non-nil only when the
// outcome status is StatusError; duplicates and already-forwarded orders are
// reported as their own statuses, not as errors.
func (s *Service) ProcessOrderEvent(ctx context.Context, event *OrderEvent, raw []byte) (*Outcome, error) {
	orderID := event.ID.String()
	if orderID == "" {
		err := errors.New("order event has no identifier")
		return &Outcome{Status: StatusError, Message: err.Error()}, err
	}

	log := s.logger.With(zap.String("order_id", orderID))
	snapshot := event.Snapshot(raw, s.now())

	existing, err := s.orders.GetByOrderID(ctx, orderID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Error("Failed to load existing order snapshot", zap.Error(err))
		return s.failure(orderID, fmt.Errorf("loading order snapshot: %w", err))
	}
	if existing != nil && snapshot.SourceUpdatedAt != "" && existing.SourceUpdatedAt == snapshot.SourceUpdatedAt {
		log.Info("Dropping duplicate order event",
			zap.String("source_updated_at", snapshot.SourceUpdatedAt))
		return &Outcome{Status: StatusDuplicate, OrderID: orderID, Message: "event already processed"}, nil
	}

	if err := s.orders.Upsert(ctx, snapshot); err != nil {
		log.Error("Failed to persist order snapshot", zap.Error(err))
		return s.failure(orderID, fmt.Errorf("persisting order snapshot: %w", err))
	}

	if prior, err := s.submissions.GetByOrderID(ctx, orderID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Error("Failed to check for prior submission", zap.Error(err))
		return s.failure(orderID, fmt.Errorf("checking prior submission: %w", err))
	} else if prior != nil {
		log.Info("Order already forwarded to distributor, skipping",
			zap.String("po_number", prior.PONumber))
		return &Outcome{
			Status:     StatusSkipped,
			OrderID:    orderID,
			Message:    "order already forwarded to distributor",
			Submission: prior,
		}, nil
	}

	payload, err := s.encoder.Encode(ctx, snapshot)
	if err != nil {
		log.Warn("PO encoding failed", zap.Error(err))
		return s.failure(orderID, err)
	}

	rawResponse, err := s.transport.SubmitPO(ctx, payload)
	if err != nil {
		log.Error("PO submission failed", zap.Error(err))
		return s.failure(orderID, err)
	}

	result, decodeErr := synnex.DecodeResponse(orderID, rawResponse, s.now())
	if decodeErr != nil {
		// The distributor answered with something we cannot interpret. The
		// exchange still happened, so the raw body is recorded either way.
		log.Error("Distributor response could not be decoded", zap.Error(decodeErr))
		result = &domain.SubmissionResult{
			OrderID:         orderID,
			PONumber:        s.encoder.PONumber(orderID),
			StatusCode:      statusCodeUnparseable,
			RejectionReason: decodeErr.Error(),
			RawXML:          rawResponse,
			CreatedAt:       s.now(),
		}
	}

	if err := s.submissions.Create(ctx, result); err != nil {
		if errors.Is(err, submission_repo.ErrAlreadySubmitted) {
			// A concurrent event won the uniqueness race. This attempt's
			// response is dropped in favor of the recorded one.
			log.Warn("Concurrent submission already recorded for order")
			return &Outcome{
				Status:  StatusSkipped,
				OrderID: orderID,
				Message: "submission already recorded by a concurrent event",
			}, nil
		}
		log.Error("Failed to persist submission result", zap.Error(err))
		return s.failure(orderID, fmt.Errorf("persisting submission result: %w", err))
	}

	if decodeErr == nil && result.Accepted() {
		if s.invoicer != nil {
			s.invoicer.InvoiceOrder(ctx, snapshot, result)
		}
	} else {
		log.Warn("Distributor did not accept order",
			zap.String("status_code", result.StatusCode),
			zap.String("reason", result.RejectionReason))
	}

	return &Outcome{
		Status:     StatusSuccess,
		OrderID:    orderID,
		Message:    "order forwarded to distributor",
		Submission: result,
	}, nil
}

func (s *Service) failure(orderID string, err error) (*Outcome, error) {
	return &Outcome{Status: StatusError, OrderID: orderID, Message: err.Error()}, err
}
