package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/HubertasVin/pos-1206-sub000/internal/domain"
	"github.com/HubertasVin/pos-1206-sub000/pkg/database"
	apperrors "github.com/HubertasVin/pos-1206-sub000/pkg/errors"
)

// OrderItemRepository implements repository.OrderItemRepository using PostgreSQL.
type OrderItemRepository struct {
	pool database.DBTX
}

// NewOrderItemRepository creates a new PostgreSQL-backed order item repository.
func NewOrderItemRepository(pool database.DBTX) *OrderItemRepository {
	return &OrderItemRepository{pool: pool}
}

// Create appends a new line to its order.
func (r *OrderItemRepository) Create(ctx context.Context, item *domain.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, product_variation_id, reservation_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.OrderID,
		textOrNil(item.ProductID),
		textOrNil(item.ProductVariationID),
		textOrNil(item.ReservationID),
		item.Quantity,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}

	return nil
}

// GetByID retrieves a single line by its identifier.
func (r *OrderItemRepository) GetByID(ctx context.Context, id string) (*domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_variation_id, reservation_id, quantity, created_at, updated_at
		FROM order_items
		WHERE id = $1`

	var (
		item                              domain.OrderItem
		productID, variationID, reservaID *string
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.OrderID,
		&productID,
		&variationID,
		&reservaID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order item", id)
		}
		return nil, fmt.Errorf("scan order item: %w", err)
	}

	item.ProductID = derefString(productID)
	item.ProductVariationID = derefString(variationID)
	item.ReservationID = derefString(reservaID)

	return &item, nil
}

// ListByOrder returns all lines of an order in insertion order.
func (r *OrderItemRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
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

// Update overwrites the line's unit reference and quantity in place.
func (r *OrderItemRepository) Update(ctx context.Context, item *domain.OrderItem) error {
	query := `
		UPDATE order_items
		SET product_id = $1, product_variation_id = $2, reservation_id = $3, quantity = $4, updated_at = $5
		WHERE id = $6`

	ct, err := r.pool.Exec(ctx, query,
		textOrNil(item.ProductID),
		textOrNil(item.ProductVariationID),
		textOrNil(item.ReservationID),
		item.Quantity,
		time.Now().UTC(),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update order item: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order item", item.ID)
	}

	return nil
}

// Delete removes a line by its identifier.
func (r *OrderItemRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM order_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order item: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order item", id)
	}

	return nil
}
