package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/prem-quety/brokerband-middleware/internal/domain"
	"github.com/prem-quety/brokerband-middleware/internal/repository/failure_repo"
)

type pgFailureRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewFailureRepository(db *sql.DB, l *zap.Logger) failure_repo.FailureRepository {
	return &pgFailureRepository{db: db, logger: l}
}

func (r *pgFailureRepository) Append(ctx context.Context, f *domain.InvoiceFailure) error {
	query := `
		INSERT INTO invoice_failures (id, order_id, category, message, retry_count, resolved, tried_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query, f.ID, f.OrderID, f.Category, f.Message, f.RetryCount, f.Resolved, f.TriedAt)
	if err != nil {
		r.logger.Error("Failed to append invoice failure", zap.String("order_id", f.OrderID), zap.Error(err))
		return fmt.Errorf("failed to append invoice failure for order %s: %w", f.OrderID, err)
	}
	r.logger.Debug("Invoice failure recorded", zap.String("order_id", f.OrderID), zap.String("category", f.Category))
	return nil
}

func (r *pgFailureRepository) ListUnresolved(ctx context.Context) ([]*domain.InvoiceFailure, error) {
	query := `
		SELECT id, order_id, category, message, retry_count, resolved, tried_at
		FROM invoice_failures
		WHERE resolved = FALSE
		ORDER BY tried_at ASC
	`
	return r.list(ctx, query)
}

func (r *pgFailureRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domain.InvoiceFailure, error) {
	query := `
		SELECT id, order_id, category, message, retry_count, resolved, tried_at
		FROM invoice_failures
		WHERE order_id = $1
		ORDER BY tried_at ASC
	`
	return r.list(ctx, query, orderID)
}

func (r *pgFailureRepository) list(ctx context.Context, query string, args ...any) ([]*domain.InvoiceFailure, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query invoice failures", zap.Error(err))
		return nil, fmt.Errorf("failed to query invoice failures: %w", err)
	}
	defer rows.Close()

	var failures []*domain.InvoiceFailure
	for rows.Next() {
		f := &domain.InvoiceFailure{}
		if err := rows.Scan(&f.ID, &f.OrderID, &f.Category, &f.Message, &f.RetryCount, &f.Resolved, &f.TriedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice failure row: %w", err)
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return failures, nil
}
