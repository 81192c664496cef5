package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/HubertasVin/pos-1206-sub000/internal/domain"
	"github.com/HubertasVin/pos-1206-sub000/internal/repository"
	"github.com/HubertasVin/pos-1206-sub000/pkg/database"
)

// InventoryLogRepository implements repository.InventoryLogRepository using
// PostgreSQL. The ledger is append-only; there is no update or delete.
type InventoryLogRepository struct {
	pool database.DBTX
}

// NewInventoryLogRepository creates a new PostgreSQL-backed inventory log repository.
func NewInventoryLogRepository(pool database.DBTX) *InventoryLogRepository {
	return &InventoryLogRepository{pool: pool}
}

// Create appends a ledger entry.
func (r *InventoryLogRepository) Create(ctx context.Context, e *domain.InventoryLogEntry) error {
	query := `
		INSERT INTO inventory_logs (id, merchant_id, type, product_id, product_variation_id, adjustment, order_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		e.ID,
		e.MerchantID,
		e.Type,
		textOrNil(e.ProductID),
		textOrNil(e.ProductVariationID),
		e.Adjustment,
		textOrNil(e.OrderID),
		e.UserID,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inventory log entry: %w", err)
	}

	return nil
}

// List returns ledger entries matching the filter with the total count,
// newest first.
func (r *InventoryLogRepository) List(ctx context.Context, filter repository.InventoryLogFilter) ([]domain.InventoryLogEntry, int, error) {
	conditions := []string{"merchant_id = $1"}
	args := []any{filter.MerchantID}
	argIndex := 2

	if filter.ProductID != nil {
		conditions = append(conditions, fmt.Sprintf("product_id = $%d", argIndex))
		args = append(args, *filter.ProductID)
		argIndex++
	}

	if filter.ProductVariationID != nil {
		conditions = append(conditions, fmt.Sprintf("product_variation_id = $%d", argIndex))
		args = append(args, *filter.ProductVariationID)
		argIndex++
	}

	if filter.OrderID != nil {
		conditions = append(conditions, fmt.Sprintf("order_id = $%d", argIndex))
		args = append(args, *filter.OrderID)
		argIndex++
	}

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT id, merchant_id, type, product_id, product_variation_id, adjustment, order_id, user_id, created_at,
			   count(*) OVER() AS total_count
		FROM inventory_logs
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		strings.Join(conditions, " AND "), argIndex, argIndex+1,
	)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory logs: %w", err)
	}
	defer rows.Close()

	var totalCount int
	entries := make([]domain.InventoryLogEntry, 0)

	for rows.Next() {
		var (
			e                              domain.InventoryLogEntry
			productID, variationID, ordrID *string
		)

		if err := rows.Scan(
			&e.ID,
			&e.MerchantID,
			&e.Type,
			&productID,
			&variationID,
			&e.Adjustment,
			&ordrID,
			&e.UserID,
			&e.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan inventory log row: %w", err)
		}

		e.ProductID = derefString(productID)
		e.ProductVariationID = derefString(variationID)
		e.OrderID = derefString(ordrID)

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate inventory log rows: %w", err)
	}

	return entries, totalCount, nil
}

// CountByOrder returns the number of ledger entries referencing an order.
func (r *InventoryLogRepository) CountByOrder(ctx context.Context, orderID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM inventory_logs WHERE order_id = $1`, orderID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count inventory logs by order: %w", err)
	}

	return count, nil
}
