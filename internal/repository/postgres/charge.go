package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/HubertasVin/pos-1206-sub000/internal/domain"
	"github.com/HubertasVin/pos-1206-sub000/pkg/database"
	apperrors "github.com/HubertasVin/pos-1206-sub000/pkg/errors"
)

// ChargeRepository implements repository.ChargeRepository using PostgreSQL.
// Rates are stored as JSONB so the percent/fixed distinction survives the
// round trip without a pair of nullable numeric columns.
type ChargeRepository struct {
	pool database.DBTX
}

// NewChargeRepository creates a new PostgreSQL-backed charge repository.
func NewChargeRepository(pool database.DBTX) *ChargeRepository {
	return &ChargeRepository{pool: pool}
}

// Create inserts a new charge definition.
func (r *ChargeRepository) Create(ctx context.Context, c *domain.Charge) error {
	rateJSON, err := json.Marshal(c.Rate)
	if err != nil {
		return fmt.Errorf("marshal charge rate: %w", err)
	}

	query := `
		INSERT INTO charges (id, merchant_id, name, type, rate, scope, valid_from, valid_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.pool.Exec(ctx, query,
		c.ID,
		c.MerchantID,
		c.Name,
		c.Type,
		rateJSON,
		c.Scope,
		c.ValidFrom,
		c.ValidUntil,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert charge: %w", err)
	}

	return nil
}

// GetByID retrieves a charge by its ID.
func (r *ChargeRepository) GetByID(ctx context.Context, id string) (*domain.Charge, error) {
	query := `
		SELECT id, merchant_id, name, type, rate, scope, valid_from, valid_until, created_at, updated_at
		FROM charges
		WHERE id = $1`

	var (
		c        domain.Charge
		rateJSON []byte
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.MerchantID,
		&c.Name,
		&c.Type,
		&rateJSON,
		&c.Scope,
		&c.ValidFrom,
		&c.ValidUntil,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("charge", id)
		}
		return nil, fmt.Errorf("scan charge: %w", err)
	}

	if err := json.Unmarshal(rateJSON, &c.Rate); err != nil {
		return nil, fmt.Errorf("unmarshal charge rate: %w", err)
	}

	return &c, nil
}

// ListByMerchant returns a merchant's charges with the total count.
func (r *ChargeRepository) ListByMerchant(ctx context.Context, merchantID string, offset, limit int) ([]domain.Charge, int, error) {
	query := `
		SELECT id, merchant_id, name, type, rate, scope, valid_from, valid_until, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM charges
		WHERE merchant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, merchantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list charges: %w", err)
	}
	defer rows.Close()

	var totalCount int
	charges := make([]domain.Charge, 0)

	for rows.Next() {
		c, err := scanChargeRow(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		charges = append(charges, c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate charge rows: %w", err)
	}

	return charges, totalCount, nil
}

// Delete removes a charge definition along with its attachments.
func (r *ChargeRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM charges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete charge: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("charge", id)
	}

	return nil
}

// AttachToOrder links a charge to an order.
func (r *ChargeRepository) AttachToOrder(ctx context.Context, orderID, chargeID string) error {
	query := `INSERT INTO orders_order_charges (order_id, charge_id) VALUES ($1, $2)`

	if _, err := r.pool.Exec(ctx, query, orderID, chargeID); err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("order charge", "charge_id", chargeID)
		}
		return fmt.Errorf("attach charge to order: %w", err)
	}

	return nil
}

// DetachFromOrder unlinks a charge from an order.
func (r *ChargeRepository) DetachFromOrder(ctx context.Context, orderID, chargeID string) error {
	query := `DELETE FROM orders_order_charges WHERE order_id = $1 AND charge_id = $2`

	ct, err := r.pool.Exec(ctx, query, orderID, chargeID)
	if err != nil {
		return fmt.Errorf("detach charge from order: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order charge", chargeID)
	}

	return nil
}

// ListByOrder returns the charges attached to an order.
func (r *ChargeRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.Charge, error) {
	query := `
		SELECT c.id, c.merchant_id, c.name, c.type, c.rate, c.scope, c.valid_from, c.valid_until, c.created_at, c.updated_at
		FROM charges c
		JOIN orders_order_charges ooc ON ooc.charge_id = c.id
		WHERE ooc.order_id = $1
		ORDER BY c.created_at, c.id`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order charges: %w", err)
	}
	defer rows.Close()

	charges := make([]domain.Charge, 0)
	for rows.Next() {
		c, err := scanChargeRow(rows, nil)
		if err != nil {
			return nil, err
		}
		charges = append(charges, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order charge rows: %w", err)
	}

	return charges, nil
}

// AttachToItem links a charge to a single order line.
func (r *ChargeRepository) AttachToItem(ctx context.Context, itemID, chargeID string) error {
	query := `INSERT INTO order_items_charges (order_item_id, charge_id) VALUES ($1, $2)`

	if _, err := r.pool.Exec(ctx, query, itemID, chargeID); err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("order item charge", "charge_id", chargeID)
		}
		return fmt.Errorf("attach charge to order item: %w", err)
	}

	return nil
}

// DetachFromItem unlinks a charge from a single order line.
func (r *ChargeRepository) DetachFromItem(ctx context.Context, itemID, chargeID string) error {
	query := `DELETE FROM order_items_charges WHERE order_item_id = $1 AND charge_id = $2`

	ct, err := r.pool.Exec(ctx, query, itemID, chargeID)
	if err != nil {
		return fmt.Errorf("detach charge from order item: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order item charge", chargeID)
	}

	return nil
}

// ListByOrderItems returns item-scoped charges for every line of an order,
// keyed by item id.
func (r *ChargeRepository) ListByOrderItems(ctx context.Context, orderID string) (map[string][]domain.Charge, error) {
	query := `
		SELECT oic.order_item_id, c.id, c.merchant_id, c.name, c.type, c.rate, c.scope, c.valid_from, c.valid_until, c.created_at, c.updated_at
		FROM order_items_charges oic
		JOIN charges c ON c.id = oic.charge_id
		JOIN order_items oi ON oi.id = oic.order_item_id
		WHERE oi.order_id = $1
		ORDER BY oic.order_item_id, c.created_at, c.id`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order item charges: %w", err)
	}
	defer rows.Close()

	byItem := make(map[string][]domain.Charge)
	for rows.Next() {
		var (
			itemID   string
			c        domain.Charge
			rateJSON []byte
		)

		if err := rows.Scan(
			&itemID,
			&c.ID,
			&c.MerchantID,
			&c.Name,
			&c.Type,
			&rateJSON,
			&c.Scope,
			&c.ValidFrom,
			&c.ValidUntil,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item charge: %w", err)
		}

		if err := json.Unmarshal(rateJSON, &c.Rate); err != nil {
			return nil, fmt.Errorf("unmarshal charge rate: %w", err)
		}

		byItem[itemID] = append(byItem[itemID], c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item charge rows: %w", err)
	}

	return byItem, nil
}

// scanChargeRow scans a charge row. When totalCount is non-nil the row is
// expected to carry a trailing count(*) OVER() column.
func scanChargeRow(rows pgx.Rows, totalCount *int) (domain.Charge, error) {
	var (
		c        domain.Charge
		rateJSON []byte
	)

	dest := []any{
		&c.ID,
		&c.MerchantID,
		&c.Name,
		&c.Type,
		&rateJSON,
		&c.Scope,
		&c.ValidFrom,
		&c.ValidUntil,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
	if totalCount != nil {
		dest = append(dest, totalCount)
	}

	if err := rows.Scan(dest...); err != nil {
		return domain.Charge{}, fmt.Errorf("scan charge row: %w", err)
	}

	if err := json.Unmarshal(rateJSON, &c.Rate); err != nil {
		return domain.Charge{}, fmt.Errorf("unmarshal charge rate: %w", err)
	}

	return c, nil
}
