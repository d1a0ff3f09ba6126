package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/prem-quety/brokerband-middleware/internal/domain"
	"github.com/prem-quety/brokerband-middleware/internal/repository/submission_repo"
)

type pgSubmissionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSubmissionRepository(db *sql.DB, l *zap.Logger) submission_repo.SubmissionRepository {
	return &pgSubmissionRepository{db: db, logger: l}
}

func (r *pgSubmissionRepository) Create(ctx context.Context, result *domain.SubmissionResult) error {
	items, err := json.Marshal(result.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal submission items: %w", err)
	}

	// ON CONFLICT DO NOTHING is the uniqueness guard: whichever concurrent
	// writer lands first wins, the loser sees zero rows affected.
	query := `
		INSERT INTO submission_results
			(order_id, po_number, customer_number, status_code, rejection_reason,
			 items, raw_xml, decoded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (order_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		result.OrderID, result.PONumber, result.CustomerNumber, result.StatusCode,
		result.RejectionReason, items, result.RawXML, result.Decoded, result.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert submission result", zap.String("order_id", result.OrderID), zap.Error(err))
		return fmt.Errorf("failed to insert submission result for order %s: %w", result.OrderID, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check submission insert result: %w", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("Submission result already recorded, keeping first write", zap.String("order_id", result.OrderID))
		return submission_repo.ErrAlreadySubmitted
	}

	r.logger.Debug("Submission result recorded", zap.String("order_id", result.OrderID), zap.String("po_number", result.PONumber))
	return nil
}

func (r *pgSubmissionRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.SubmissionResult, error) {
	query := `
		SELECT order_id, po_number, customer_number, status_code, rejection_reason,
		       items, raw_xml, decoded, created_at
		FROM submission_results
		WHERE order_id = $1
	`
	result := &domain.SubmissionResult{}
	var items []byte
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&result.OrderID, &result.PONumber, &result.CustomerNumber, &result.StatusCode,
		&result.RejectionReason, &items, &result.RawXML, &result.Decoded, &result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		r.logger.Error("Failed to get submission result", zap.String("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("failed to get submission result for order %s: %w", orderID, err)
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &result.Items); err != nil {
			return nil, fmt.Errorf("bad items payload for order %s: %w", orderID, err)
		}
	}
	return result, nil
}
