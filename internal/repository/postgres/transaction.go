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

// TransactionRepository implements repository.TransactionRepository using
// PostgreSQL.
type TransactionRepository struct {
	pool database.DBTX
}

// NewTransactionRepository creates a new PostgreSQL-backed transaction repository.
func NewTransactionRepository(pool database.DBTX) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts a new payment transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, order_id, status, payment_method, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		tx.ID,
		tx.OrderID,
		tx.Status,
		tx.PaymentMethod,
		tx.Amount,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `
		SELECT id, order_id, status, payment_method, amount, created_at, updated_at
		FROM transactions
		WHERE id = $1`

	var tx domain.Transaction

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&tx.ID,
		&tx.OrderID,
		&tx.Status,
		&tx.PaymentMethod,
		&tx.Amount,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("transaction", id)
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	return &tx, nil
}

// ListByOrder returns an order's transactions matching the filter with the
// total count.
func (r *TransactionRepository) ListByOrder(ctx context.Context, orderID string, filter repository.TransactionFilter) ([]domain.Transaction, int, error) {
	conditions := []string{"order_id = $1"}
	args := []any{orderID}
	argIndex := 2

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.PaymentMethod != nil {
		conditions = append(conditions, fmt.Sprintf("payment_method = $%d", argIndex))
		args = append(args, *filter.PaymentMethod)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT id, order_id, status, payment_method, amount, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM transactions
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		strings.Join(conditions, " AND "), argIndex, argIndex+1,
	)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var totalCount int
	txs := make([]domain.Transaction, 0)

	for rows.Next() {
		var tx domain.Transaction
		if err := rows.Scan(
			&tx.ID,
			&tx.OrderID,
			&tx.Status,
			&tx.PaymentMethod,
			&tx.Amount,
			&tx.CreatedAt,
			&tx.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return txs, totalCount, nil
}

// UpdateStatus flips the transaction from one exact status to another. The
// from-status guard keeps two concurrent settlement attempts from both
// succeeding.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id, from, to string) error {
	query := `
		UPDATE transactions
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`

	ct, err := r.pool.Exec(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}

	return nil
}

// SumCompletedByOrder returns the total of the order's completed
// transactions.
func (r *TransactionRepository) SumCompletedByOrder(ctx context.Context, orderID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE order_id = $1 AND status = $2`

	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, orderID, domain.TransactionStatusCompleted).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum completed transactions: %w", err)
	}

	return sum, nil
}
