package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HubertasVin/pos-1206-sub000/internal/domain"
	"github.com/HubertasVin/pos-1206-sub000/internal/repository"
	"github.com/HubertasVin/pos-1206-sub000/pkg/database"
	apperrors "github.com/HubertasVin/pos-1206-sub000/pkg/errors"
)

func newTestTransactionRepo(t *testing.T) (*TransactionRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewTransactionRepository(mock)
	return repo, mock
}

func sampleTransaction() *domain.Transaction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Transaction{
		ID:            "txn-001",
		OrderID:       "order-001",
		Status:        domain.TransactionStatusPending,
		PaymentMethod: domain.PaymentMethodCash,
		Amount:        decimal.RequireFromString("20.00"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func transactionColumns() []string {
	return []string{"id", "order_id", "status", "payment_method", "amount", "created_at", "updated_at"}
}

func TestTransactionRepository_Create_Success(t *testing.T) {
	repo, mock := newTestTransactionRepo(t)

	tx := sampleTransaction()

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(tx.ID, tx.OrderID, tx.Status, tx.PaymentMethod, tx.Amount, tx.CreatedAt, tx.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), tx)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_GetByID_Success(t *testing.T) {
	repo, mock := newTestTransactionRepo(t)

	now := time.Now().UTC()
	amount := decimal.RequireFromString("20.00")

	mock.ExpectQuery("SELECT (.+) FROM transactions").
		WithArgs("txn-001").
		WillReturnRows(pgxmock.NewRows(transactionColumns()).
			AddRow("txn-001", "order-001", domain.TransactionStatusPending, domain.PaymentMethodCash, amount, now, now))

	tx, err := repo.GetByID(context.Background(), "txn-001")
	require.NoError(t, err)

	assert.Equal(t, "order-001", tx.OrderID)
	assert.True(t, tx.Amount.Equal(amount))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newTestTransactionRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM transactions").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(transactionColumns()))

	tx, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, tx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_ListByOrder_WithFilters(t *testing.T) {
	repo, mock := newTestTransactionRepo(t)

	now := time.Now().UTC()
	status := domain.TransactionStatusCompleted
	method := domain.PaymentMethodPaymentCard

	mock.ExpectQuery("SELECT (.+) FROM transactions").
		WithArgs("order-001", status, method, 10, 0).
		WillReturnRows(pgxmock.NewRows(append(transactionColumns(), "total_count")).
			AddRow("txn-002", "order-001", status, method, decimal.RequireFromString("19.02"), now, now, 1))

	txs, total, err := repo.ListByOrder(context.Background(), "order-001", repository.TransactionFilter{
		Status:        &status,
		PaymentMethod: &method,
		Offset:        0,
		Limit:         10,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, total)
	require.Len(t, txs, 1)
	assert.Equal(t, "txn-002", txs[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_UpdateStatus_Success(t *testing.T) {
	repo, mock := newTestTransactionRepo(t)

	mock.ExpectExec("UPDATE transactions").
		WithArgs(domain.TransactionStatusCompleted, pgxmock.AnyArg(), "txn-001", domain.TransactionStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateStatus(context.Background(), "txn-001", domain.TransactionStatusPending, domain.TransactionStatusCompleted)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_UpdateStatus_LostRace(t *testing.T) {
	repo, mock := newTestTransactionRepo(t)

	mock.ExpectExec("UPDATE transactions").
		WithArgs(domain.TransactionStatusCompleted, pgxmock.AnyArg(), "txn-001", domain.TransactionStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), "txn-001", domain.TransactionStatusPending, domain.TransactionStatusCompleted)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_SumCompletedByOrder(t *testing.T) {
	repo, mock := newTestTransactionRepo(t)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("order-001", domain.TransactionStatusCompleted).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(decimal.RequireFromString("39.02")))

	sum, err := repo.SumCompletedByOrder(context.Background(), "order-001")
	require.NoError(t, err)

	assert.True(t, sum.Equal(decimal.RequireFromString("39.02")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_SumCompletedByOrder_NoPayments(t *testing.T) {
	repo, mock := newTestTransactionRepo(t)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("order-001", domain.TransactionStatusCompleted).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(decimal.Zero))

	sum, err := repo.SumCompletedByOrder(context.Background(), "order-001")
	require.NoError(t, err)

	assert.True(t, sum.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}
