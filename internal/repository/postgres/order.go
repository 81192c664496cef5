package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/HubertasVin/pos-1206-sub000/internal/domain"
	"github.com/HubertasVin/pos-1206-sub000/internal/repository"
	"github.com/HubertasVin/pos-1206-sub000/pkg/database"
	apperrors "github.com/HubertasVin/pos-1206-sub000/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts a new, empty open order.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	query := `
		INSERT INTO orders (id, merchant_id, status, tip, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		o.ID,
		o.MerchantID,
		o.Status,
		o.Tip,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID, eagerly loading its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, merchant_id, status, tip, created_at, updated_at
		FROM orders
		WHERE id = $1`

	var (
		o   domain.Order
		tip decimal.NullDecimal
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.MerchantID,
		&o.Status,
		&tip,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if tip.Valid {
		o.Tip = &tip.Decimal
	}

	items, err := r.loadOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

// List returns orders matching the given filter with the total count.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	conditions := []string{"merchant_id = $1"}
	args := []any{filter.MerchantID}
	argIndex := 2

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.CreatedFrom != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIndex))
		args = append(args, *filter.CreatedFrom)
		argIndex++
	}

	if filter.CreatedUntil != nil {
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", argIndex))
		args = append(args, *filter.CreatedUntil)
		argIndex++
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT id, merchant_id, status, tip, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM orders
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		strings.Join(conditions, " AND "), argIndex, argIndex+1,
	)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders := make([]domain.Order, 0)

	for rows.Next() {
		var (
			o   domain.Order
			tip decimal.NullDecimal
		)

		if err := rows.Scan(
			&o.ID,
			&o.MerchantID,
			&o.Status,
			&tip,
			&o.CreatedAt,
			&o.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}

		if tip.Valid {
			o.Tip = &tip.Decimal
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	// Batch-load items for all orders in a single query to avoid N+1.
	if len(orders) > 0 {
		orderIDs := make([]string, len(orders))
		for i := range orders {
			orderIDs[i] = orders[i].ID
		}

		itemsQuery := `
			SELECT id, order_id, product_id, product_variation_id, reservation_id, quantity, created_at, updated_at
			FROM order_items
			WHERE order_id = ANY($1)
			ORDER BY created_at, id`

		itemRows, err := r.pool.Query(ctx, itemsQuery, orderIDs)
		if err != nil {
			return nil, 0, fmt.Errorf("batch load order items: %w", err)
		}
		defer itemRows.Close()

		itemsByOrderID := make(map[string][]domain.OrderItem, len(orders))
		for itemRows.Next() {
			item, err := scanOrderItem(itemRows)
			if err != nil {
				return nil, 0, err
			}
			itemsByOrderID[item.OrderID] = append(itemsByOrderID[item.OrderID], item)
		}
		if err := itemRows.Err(); err != nil {
			return nil, 0, fmt.Errorf("iterate batch order item rows: %w", err)
		}

		for i := range orders {
			if items, ok := itemsByOrderID[orders[i].ID]; ok {
				orders[i].Items = items
			} else {
				orders[i].Items = []domain.OrderItem{}
			}
		}
	}

	return orders, totalCount, nil
}

// SetTip stores the order's tip amount.
func (r *OrderRepository) SetTip(ctx context.Context, id string, tip decimal.Decimal) error {
	query := `
		UPDATE orders
		SET tip = $1, updated_at = $2
		WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, tip, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set order tip: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// Close flips an open order to closed and appends the inventory ledger
// entries in the same transaction. The status guard in the UPDATE makes sure
// only one of two concurrent closers wins; the loser gets ErrConflict.
func (r *OrderRepository) Close(ctx context.Context, id string, entries []domain.InventoryLogEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	closeQuery := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`

	ct, err := tx.Exec(ctx, closeQuery, domain.OrderStatusClosed, time.Now().UTC(), id, domain.OrderStatusOpen)
	if err != nil {
		return fmt.Errorf("close order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}

	entryQuery := `
		INSERT INTO inventory_logs (id, merchant_id, type, product_id, product_variation_id, adjustment, order_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, e := range entries {
		_, err = tx.Exec(ctx, entryQuery,
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
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// TransitionStatus flips the order from one exact status to another. The
// from-status guard turns lost races into ErrConflict instead of silent
// double transitions.
func (r *OrderRepository) TransitionStatus(ctx context.Context, id, from, to string) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`

	ct, err := r.pool.Exec(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("transition order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}

	return nil
}

// Delete removes the order. Items, attachments and transactions go with it
// via ON DELETE CASCADE.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// loadOrderItems retrieves all items belonging to a given order.
func (r *OrderRepository) loadOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_variation_id, reservation_id, quantity, created_at, updated_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}

	return items, nil
}

func scanOrderItem(rows pgx.Rows) (domain.OrderItem, error) {
	var (
		item                              domain.OrderItem
		productID, variationID, reservaID *string
	)

	if err := rows.Scan(
		&item.ID,
		&item.OrderID,
		&productID,
		&variationID,
		&reservaID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return domain.OrderItem{}, fmt.Errorf("scan order item: %w", err)
	}

	item.ProductID = derefString(productID)
	item.ProductVariationID = derefString(variationID)
	item.ReservationID = derefString(reservaID)

	return item, nil
}
