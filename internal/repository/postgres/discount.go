package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/HubertasVin/pos-1206-sub000/internal/domain"
	"github.com/HubertasVin/pos-1206-sub000/pkg/database"
	apperrors "github.com/HubertasVin/pos-1206-sub000/pkg/errors"
)

// DiscountRepository implements repository.DiscountRepository using PostgreSQL.
type DiscountRepository struct {
	pool database.DBTX
}

// NewDiscountRepository creates a new PostgreSQL-backed discount repository.
func NewDiscountRepository(pool database.DBTX) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// Create inserts a new discount definition.
func (r *DiscountRepository) Create(ctx context.Context, d *domain.Discount) error {
	rateJSON, err := json.Marshal(d.Rate)
	if err != nil {
		return fmt.Errorf("marshal discount rate: %w", err)
	}

	query := `
		INSERT INTO discounts (id, merchant_id, name, rate, valid_from, valid_until, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.pool.Exec(ctx, query,
		d.ID,
		d.MerchantID,
		d.Name,
		rateJSON,
		d.ValidFrom,
		d.ValidUntil,
		d.IsActive,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert discount: %w", err)
	}

	return nil
}

// GetByID retrieves a discount by its ID, soft-deleted rows included.
func (r *DiscountRepository) GetByID(ctx context.Context, id string) (*domain.Discount, error) {
	query := `
		SELECT id, merchant_id, name, rate, valid_from, valid_until, is_active, created_at, updated_at
		FROM discounts
		WHERE id = $1`

	var (
		d        domain.Discount
		rateJSON []byte
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.MerchantID,
		&d.Name,
		&rateJSON,
		&d.ValidFrom,
		&d.ValidUntil,
		&d.IsActive,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("discount", id)
		}
		return nil, fmt.Errorf("scan discount: %w", err)
	}

	if err := json.Unmarshal(rateJSON, &d.Rate); err != nil {
		return nil, fmt.Errorf("unmarshal discount rate: %w", err)
	}

	return &d, nil
}

// ListByMerchant returns a merchant's discounts with the total count.
// Soft-deleted rows are excluded unless includeInactive is set.
func (r *DiscountRepository) ListByMerchant(ctx context.Context, merchantID string, includeInactive bool, offset, limit int) ([]domain.Discount, int, error) {
	activeClause := ""
	if !includeInactive {
		activeClause = "AND is_active"
	}

	query := fmt.Sprintf(`
		SELECT id, merchant_id, name, rate, valid_from, valid_until, is_active, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM discounts
		WHERE merchant_id = $1 %s
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		activeClause,
	)

	rows, err := r.pool.Query(ctx, query, merchantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list discounts: %w", err)
	}
	defer rows.Close()

	var totalCount int
	discounts := make([]domain.Discount, 0)

	for rows.Next() {
		d, err := scanDiscountRow(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		discounts = append(discounts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate discount rows: %w", err)
	}

	return discounts, totalCount, nil
}

// Update overwrites a discount's definition.
func (r *DiscountRepository) Update(ctx context.Context, d *domain.Discount) error {
	rateJSON, err := json.Marshal(d.Rate)
	if err != nil {
		return fmt.Errorf("marshal discount rate: %w", err)
	}

	query := `
		UPDATE discounts
		SET name = $1, rate = $2, valid_from = $3, valid_until = $4, is_active = $5, updated_at = $6
		WHERE id = $7`

	ct, err := r.pool.Exec(ctx, query,
		d.Name,
		rateJSON,
		d.ValidFrom,
		d.ValidUntil,
		d.IsActive,
		time.Now().UTC(),
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("update discount: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("discount", d.ID)
	}

	return nil
}

// SoftDelete flips is_active to false; the row is retained so closed orders
// keep pricing history.
func (r *DiscountRepository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE discounts
		SET is_active = false, updated_at = $1
		WHERE id = $2`

	ct, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("soft delete discount: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("discount", id)
	}

	return nil
}

// AttachToOrder links a discount to an order.
func (r *DiscountRepository) AttachToOrder(ctx context.Context, orderID, discountID string) error {
	query := `INSERT INTO orders_discounts (order_id, discount_id) VALUES ($1, $2)`

	if _, err := r.pool.Exec(ctx, query, orderID, discountID); err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("order discount", "discount_id", discountID)
		}
		return fmt.Errorf("attach discount to order: %w", err)
	}

	return nil
}

// DetachFromOrder unlinks a discount from an order.
func (r *DiscountRepository) DetachFromOrder(ctx context.Context, orderID, discountID string) error {
	query := `DELETE FROM orders_discounts WHERE order_id = $1 AND discount_id = $2`

	ct, err := r.pool.Exec(ctx, query, orderID, discountID)
	if err != nil {
		return fmt.Errorf("detach discount from order: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order discount", discountID)
	}

	return nil
}

// ListByOrder returns the discounts attached to an order, soft-deleted rows
// included so the pricing pipeline can decide activity itself.
func (r *DiscountRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.Discount, error) {
	query := `
		SELECT d.id, d.merchant_id, d.name, d.rate, d.valid_from, d.valid_until, d.is_active, d.created_at, d.updated_at
		FROM discounts d
		JOIN orders_discounts od ON od.discount_id = d.id
		WHERE od.order_id = $1
		ORDER BY d.created_at, d.id`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order discounts: %w", err)
	}
	defer rows.Close()

	discounts := make([]domain.Discount, 0)
	for rows.Next() {
		d, err := scanDiscountRow(rows, nil)
		if err != nil {
			return nil, err
		}
		discounts = append(discounts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order discount rows: %w", err)
	}

	return discounts, nil
}

func scanDiscountRow(rows pgx.Rows, totalCount *int) (domain.Discount, error) {
	var (
		d        domain.Discount
		rateJSON []byte
	)

	dest := []any{
		&d.ID,
		&d.MerchantID,
		&d.Name,
		&rateJSON,
		&d.ValidFrom,
		&d.ValidUntil,
		&d.IsActive,
		&d.CreatedAt,
		&d.UpdatedAt,
	}
	if totalCount != nil {
		dest = append(dest, totalCount)
	}

	if err := rows.Scan(dest...); err != nil {
		return domain.Discount{}, fmt.Errorf("scan discount row: %w", err)
	}

	if err := json.Unmarshal(rateJSON, &d.Rate); err != nil {
		return domain.Discount{}, fmt.Errorf("unmarshal discount rate: %w", err)
	}

	return d, nil
}
