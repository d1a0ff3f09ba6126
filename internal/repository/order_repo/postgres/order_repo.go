package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/prem-quety/brokerband-middleware/internal/domain"
	"github.com/prem-quety/brokerband-middleware/internal/repository/order_repo"
)

type pgOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewOrderRepository(db *sql.DB, l *zap.Logger) order_repo.OrderRepository {
	return &pgOrderRepository{db: db, logger: l}
}

func (r *pgOrderRepository) Upsert(ctx context.Context, s *domain.OrderSnapshot) error {
	customer, err := json.Marshal(s.Customer)
	if err != nil {
		return fmt.Errorf("failed to marshal customer block: %w", err)
	}
	shipping, err := json.Marshal(s.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}
	billing, err := json.Marshal(s.BillingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal billing address: %w", err)
	}
	lineItems, err := json.Marshal(s.LineItems)
	if err != nil {
		return fmt.Errorf("failed to marshal line items: %w", err)
	}

	query := `
		INSERT INTO order_snapshots
			(order_id, order_number, email, gateway, financial_status, currency,
			 total_price, subtotal_price, total_tax,
			 customer, shipping_address, billing_address, line_items,
			 source_created_at, source_updated_at, received_at, raw_payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (order_id) DO UPDATE SET
			order_number      = EXCLUDED.order_number,
			email             = EXCLUDED.email,
			gateway           = EXCLUDED.gateway,
			financial_status  = EXCLUDED.financial_status,
			currency          = EXCLUDED.currency,
			total_price       = EXCLUDED.total_price,
			subtotal_price    = EXCLUDED.subtotal_price,
			total_tax         = EXCLUDED.total_tax,
			customer          = EXCLUDED.customer,
			shipping_address  = EXCLUDED.shipping_address,
			billing_address   = EXCLUDED.billing_address,
			line_items        = EXCLUDED.line_items,
			source_created_at = EXCLUDED.source_created_at,
			source_updated_at = EXCLUDED.source_updated_at,
			received_at       = EXCLUDED.received_at,
			raw_payload       = EXCLUDED.raw_payload
	`
	_, err = r.db.ExecContext(ctx, query,
		s.OrderID, s.OrderNumber, s.Email, s.Gateway, s.FinancialStatus, s.Currency,
		s.TotalPrice.String(), s.SubtotalPrice.String(), s.TotalTax.String(),
		customer, shipping, billing, lineItems,
		s.SourceCreatedAt, s.SourceUpdatedAt, s.ReceivedAt, s.RawPayload,
	)
	if err != nil {
		r.logger.Error("Failed to upsert order snapshot", zap.String("order_id", s.OrderID), zap.Error(err))
		return fmt.Errorf("failed to upsert order snapshot %s: %w", s.OrderID, err)
	}
	r.logger.Debug("Order snapshot upserted", zap.String("order_id", s.OrderID))
	return nil
}

func (r *pgOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.OrderSnapshot, error) {
	query := `
		SELECT order_id, order_number, email, gateway, financial_status, currency,
		       total_price, subtotal_price, total_tax,
		       customer, shipping_address, billing_address, line_items,
		       source_created_at, source_updated_at, received_at, raw_payload
		FROM order_snapshots
		WHERE order_id = $1
	`
	s := &domain.OrderSnapshot{}
	var totalPrice, subtotalPrice, totalTax string
	var customer, shipping, billing, lineItems []byte

	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&s.OrderID, &s.OrderNumber, &s.Email, &s.Gateway, &s.FinancialStatus, &s.Currency,
		&totalPrice, &subtotalPrice, &totalTax,
		&customer, &shipping, &billing, &lineItems,
		&s.SourceCreatedAt, &s.SourceUpdatedAt, &s.ReceivedAt, &s.RawPayload,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		r.logger.Error("Failed to get order snapshot", zap.String("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("failed to get order snapshot %s: %w", orderID, err)
	}

	if s.TotalPrice, err = parseDecimal(totalPrice); err != nil {
		return nil, fmt.Errorf("bad total_price for order %s: %w", orderID, err)
	}
	if s.SubtotalPrice, err = parseDecimal(subtotalPrice); err != nil {
		return nil, fmt.Errorf("bad subtotal_price for order %s: %w", orderID, err)
	}
	if s.TotalTax, err = parseDecimal(totalTax); err != nil {
		return nil, fmt.Errorf("bad total_tax for order %s: %w", orderID, err)
	}

	if err := unmarshalNullable(customer, &s.Customer); err != nil {
		return nil, fmt.Errorf("bad customer block for order %s: %w", orderID, err)
	}
	if err := unmarshalNullable(shipping, &s.ShippingAddress); err != nil {
		return nil, fmt.Errorf("bad shipping address for order %s: %w", orderID, err)
	}
	if err := unmarshalNullable(billing, &s.BillingAddress); err != nil {
		return nil, fmt.Errorf("bad billing address for order %s: %w", orderID, err)
	}
	if len(lineItems) > 0 {
		if err := json.Unmarshal(lineItems, &s.LineItems); err != nil {
			return nil, fmt.Errorf("bad line items for order %s: %w", orderID, err)
		}
	}
	return s, nil
}

func unmarshalNullable[T any](raw []byte, dst **T) error {
	if len(raw) == 0 || string(raw) == "null" {
		*dst = nil
		return nil
	}
	value := new(T)
	if err := json.Unmarshal(raw, value); err != nil {
		return err
	}
	*dst = value
	return nil
}
