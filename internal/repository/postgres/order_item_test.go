package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HubertasVin/pos-1206-sub000/internal/domain"
	"github.com/HubertasVin/pos-1206-sub000/pkg/database"
	apperrors "github.com/HubertasVin/pos-1206-sub000/pkg/errors"
)

func newTestOrderItemRepo(t *testing.T) (*OrderItemRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewOrderItemRepository(mock)
	return repo, mock
}

func sampleOrderItem() *domain.OrderItem {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.OrderItem{
		ID:        "item-001",
		OrderID:   "order-001",
		ProductID: "prod-001",
		Quantity:  3,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderItemRepository_Create_Success(t *testing.T) {
	repo, mock := newTestOrderItemRepo(t)

	item := sampleOrderItem()

	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(item.ID, item.OrderID, "prod-001", nil, nil, item.Quantity, item.CreatedAt, item.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), item)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderItemRepository_Create_ReservationLine(t *testing.T) {
	repo, mock := newTestOrderItemRepo(t)

	item := sampleOrderItem()
	item.ProductID = ""
	item.ReservationID = "res-001"
	item.Quantity = 1

	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(item.ID, item.OrderID, nil, nil, "res-001", 1, item.CreatedAt, item.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), item)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderItemRepository_GetByID_Success(t *testing.T) {
	repo, mock := newTestOrderItemRepo(t)

	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM order_items").
		WithArgs("item-001").
		WillReturnRows(pgxmock.NewRows(orderItemColumns()).
			AddRow("item-001", "order-001", strPtr("prod-001"), strPtr("var-001"), nil, 2, now, now))

	item, err := repo.GetByID(context.Background(), "item-001")
	require.NoError(t, err)

	assert.Equal(t, "order-001", item.OrderID)
	assert.Equal(t, "prod-001", item.ProductID)
	assert.Equal(t, "var-001", item.ProductVariationID)
	assert.Empty(t, item.ReservationID)
	assert.Equal(t, 2, item.Quantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderItemRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newTestOrderItemRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM order_items").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(orderItemColumns()))

	item, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, item)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderItemRepository_ListByOrder_Success(t *testing.T) {
	repo, mock := newTestOrderItemRepo(t)

	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM order_items").
		WithArgs("order-001").
		WillReturnRows(pgxmock.NewRows(orderItemColumns()).
			AddRow("item-001", "order-001", strPtr("prod-001"), nil, nil, 1, now, now).
			AddRow("item-002", "order-001", nil, nil, strPtr("res-001"), 1, now, now))

	items, err := repo.ListByOrder(context.Background(), "order-001")
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "item-001", items[0].ID)
	assert.Equal(t, "res-001", items[1].ReservationID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderItemRepository_Update_Success(t *testing.T) {
	repo, mock := newTestOrderItemRepo(t)

	item := sampleOrderItem()
	item.Quantity = 5

	mock.ExpectExec("UPDATE order_items").
		WithArgs("prod-001", nil, nil, 5, pgxmock.AnyArg(), item.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), item)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderItemRepository_Update_NotFound(t *testing.T) {
	repo, mock := newTestOrderItemRepo(t)

	item := sampleOrderItem()

	mock.ExpectExec("UPDATE order_items").
		WithArgs("prod-001", nil, nil, item.Quantity, pgxmock.AnyArg(), item.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), item)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderItemRepository_Delete_Success(t *testing.T) {
	repo, mock := newTestOrderItemRepo(t)

	mock.ExpectExec("DELETE FROM order_items").
		WithArgs("item-001").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), "item-001")
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderItemRepository_Delete_QueryError(t *testing.T) {
	repo, mock := newTestOrderItemRepo(t)

	mock.ExpectExec("DELETE FROM order_items").
		WithArgs("item-001").
		WillReturnError(errors.New("connection refused"))

	err := repo.Delete(context.Background(), "item-001")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "delete order item")

	assert.NoError(t, mock.ExpectationsWereMet())
}
