package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/prem-quety/brokerband-middleware/internal/domain"
	"github.com/prem-quety/brokerband-middleware/internal/repository/mapping_repo"
)

type pgMappingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewMappingRepository(db *sql.DB, l *zap.Logger) mapping_repo.MappingRepository {
	return &pgMappingRepository{db: db, logger: l}
}

func (r *pgMappingRepository) Upsert(ctx context.Context, m *domain.ItemMapping) error {
	query := `
		INSERT INTO item_mappings
			(variant_id, product_id, sku, distributor_sku, accounting_item_id, status, message, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (variant_id) DO UPDATE SET
			product_id         = EXCLUDED.product_id,
			sku                = EXCLUDED.sku,
			distributor_sku    = EXCLUDED.distributor_sku,
			accounting_item_id = EXCLUDED.accounting_item_id,
			status             = EXCLUDED.status,
			message            = EXCLUDED.message,
			synced_at          = EXCLUDED.synced_at
	`
	_, err := r.db.ExecContext(ctx, query,
		m.VariantID, m.ProductID, m.SKU, m.DistributorSKU, m.AccountingItemID, m.Status, m.Message, m.SyncedAt)
	if err != nil {
		r.logger.Error("Failed to upsert item mapping", zap.String("variant_id", m.VariantID), zap.Error(err))
		return fmt.Errorf("failed to upsert item mapping %s: %w", m.VariantID, err)
	}
	r.logger.Debug("Item mapping upserted", zap.String("variant_id", m.VariantID), zap.String("distributor_sku", m.DistributorSKU))
	return nil
}

func (r *pgMappingRepository) GetByVariantID(ctx context.Context, variantID string) (*domain.ItemMapping, error) {
	query := `
		SELECT variant_id, product_id, sku, distributor_sku, accounting_item_id, status, message, synced_at
		FROM item_mappings
		WHERE variant_id = $1
	`
	m := &domain.ItemMapping{}
	err := r.db.QueryRowContext(ctx, query, variantID).Scan(
		&m.VariantID, &m.ProductID, &m.SKU, &m.DistributorSKU, &m.AccountingItemID, &m.Status, &m.Message, &m.SyncedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		r.logger.Error("Failed to get item mapping", zap.String("variant_id", variantID), zap.Error(err))
		return nil, fmt.Errorf("failed to get item mapping %s: %w", variantID, err)
	}
	return m, nil
}
