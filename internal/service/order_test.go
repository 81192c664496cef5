package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/HubertasVin/pos-1206-sub000/internal/domain"
	"github.com/HubertasVin/pos-1206-sub000/internal/repository"
	apperrors "github.com/HubertasVin/pos-1206-sub000/pkg/errors"
)

func newOrderFixture(t *testing.T) (*OrderService, *mockOrderRepository, *mockQuoter) {
	t.Helper()
	repo := new(mockOrderRepository)
	quoter := new(mockQuoter)
	svc := NewOrderService(repo, quoter, newTestProducer(), newTestLogger())
	return svc, repo, quoter
}

func openOrder() *domain.Order {
	now := time.Now().UTC()
	return &domain.Order{
		ID:         "order-001",
		MerchantID: "merch-001",
		Status:     domain.OrderStatusOpen,
		Items: []domain.OrderItem{
			{ID: "item-001", OrderID: "order-001", ProductID: "prod-001", Quantity: 2},
			{ID: "item-002", OrderID: "order-001", ProductID: "prod-002", ProductVariationID: "var-001", Quantity: 1},
			{ID: "item-003", OrderID: "order-001", ReservationID: "res-001", Quantity: 1},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	svc, repo, _ := newOrderFixture(t)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.MerchantID == "merch-001" && o.Status == domain.OrderStatusOpen && len(o.Items) == 0
	})).Return(nil)

	order, err := svc.CreateOrder(context.Background(), testActor())
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, domain.OrderStatusOpen, order.Status)
	assert.Nil(t, order.Tip)

	repo.AssertExpectations(t)
}

func TestOrderService_GetOrder_CrossMerchantNotFound(t *testing.T) {
	svc, repo, _ := newOrderFixture(t)

	other := openOrder()
	other.MerchantID = "merch-999"
	repo.On("GetByID", mock.Anything, "order-001").Return(other, nil)

	order, err := svc.GetOrder(context.Background(), testActor(), "order-001")
	assert.Nil(t, order)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	repo.AssertExpectations(t)
}

func TestOrderService_ListOrders_ScopedAndClamped(t *testing.T) {
	svc, repo, _ := newOrderFixture(t)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.OrderFilter) bool {
		return f.MerchantID == "merch-001" && f.Limit == 100 && f.Offset == 0
	})).Return([]domain.Order{}, 0, nil)

	_, _, err := svc.ListOrders(context.Background(), testActor(), repository.OrderFilter{
		MerchantID: "merch-999", // ignored: scope always comes from the actor
		Offset:     -5,
		Limit:      5000,
	})
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestOrderService_ListOrders_InvalidStatus(t *testing.T) {
	svc, _, _ := newOrderFixture(t)

	bogus := "shipped"
	_, _, err := svc.ListOrders(context.Background(), testActor(), repository.OrderFilter{Status: &bogus})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestOrderService_SetTip_Success(t *testing.T) {
	svc, repo, _ := newOrderFixture(t)

	tip := decimal.RequireFromString("5.00")
	repo.On("GetByID", mock.Anything, "order-001").Return(openOrder(), nil)
	repo.On("SetTip", mock.Anything, "order-001", tip).Return(nil)

	order, err := svc.SetTip(context.Background(), testActor(), "order-001", tip)
	require.NoError(t, err)
	require.NotNil(t, order.Tip)
	assert.True(t, order.Tip.Equal(tip))

	repo.AssertExpectations(t)
}

func TestOrderService_SetTip_NegativeTip(t *testing.T) {
	svc, _, _ := newOrderFixture(t)

	_, err := svc.SetTip(context.Background(), testActor(), "order-001", decimal.RequireFromString("-1"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestOrderService_SetTip_NotOpen(t *testing.T) {
	svc, repo, _ := newOrderFixture(t)

	closed := openOrder()
	closed.Status = domain.OrderStatusClosed
	repo.On("GetByID", mock.Anything, "order-001").Return(closed, nil)

	_, err := svc.SetTip(context.Background(), testActor(), "order-001", decimal.RequireFromString("5.00"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	repo.AssertExpectations(t)
}

func TestOrderService_SetTip_WrongMerchant(t *testing.T) {
	svc, repo, _ := newOrderFixture(t)

	other := openOrder()
	other.MerchantID = "merch-999"
	repo.On("GetByID", mock.Anything, "order-001").Return(other, nil)

	_, err := svc.SetTip(context.Background(), testActor(), "order-001", decimal.RequireFromString("5.00"))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	repo.AssertExpectations(t)
}

func TestOrderService_CloseOrder_Success(t *testing.T) {
	svc, repo, quoter := newOrderFixture(t)

	order := openOrder()
	repo.On("GetByID", mock.Anything, "order-001").Return(order, nil)
	quoter.On("QuoteOrder", mock.Anything, order).Return(domain.Quote{Total: decimal.RequireFromString("39.02")}, nil)

	repo.On("Close", mock.Anything, "order-001", mock.MatchedBy(func(entries []domain.InventoryLogEntry) bool {
		// One entry per stock-backed item; the reservation line writes none.
		if len(entries) != 2 {
			return false
		}
		return entries[0].Adjustment == -2 && entries[0].Type == domain.InventoryTypeProduct &&
			entries[1].Adjustment == -1 && entries[1].Type == domain.InventoryTypeProductVariation
	})).Return(nil)

	closed, err := svc.CloseOrder(context.Background(), testActor(), "order-001")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusClosed, closed.Status)

	repo.AssertExpectations(t)
	quoter.AssertExpectations(t)
}

func TestOrderService_CloseOrder_AlreadyClosed(t *testing.T) {
	svc, repo, _ := newOrderFixture(t)

	closed := openOrder()
	closed.Status = domain.OrderStatusClosed
	repo.On("GetByID", mock.Anything, "order-001").Return(closed, nil)

	_, err := svc.CloseOrder(context.Background(), testActor(), "order-001")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	repo.AssertNotCalled(t, "Close", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_CloseOrder_LostRace(t *testing.T) {
	svc, repo, quoter := newOrderFixture(t)

	order := openOrder()
	repo.On("GetByID", mock.Anything, "order-001").Return(order, nil)
	quoter.On("QuoteOrder", mock.Anything, order).Return(domain.Quote{}, nil)
	repo.On("Close", mock.Anything, "order-001", mock.Anything).Return(apperrors.ErrConflict)

	_, err := svc.CloseOrder(context.Background(), testActor(), "order-001")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState, "a losing closer observes the not-open error")

	repo.AssertExpectations(t)
}

func TestOrderService_CloseOrder_PricingFailureStillCloses(t *testing.T) {
	svc, repo, quoter := newOrderFixture(t)

	order := openOrder()
	repo.On("GetByID", mock.Anything, "order-001").Return(order, nil)
	quoter.On("QuoteOrder", mock.Anything, order).Return(domain.Quote{}, apperrors.ServiceUnavailable("catalog unavailable"))
	repo.On("Close", mock.Anything, "order-001", mock.Anything).Return(nil)

	closed, err := svc.CloseOrder(context.Background(), testActor(), "order-001")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusClosed, closed.Status)

	repo.AssertExpectations(t)
}

func TestOrderService_CancelOrder_Success(t *testing.T) {
	svc, repo, _ := newOrderFixture(t)

	repo.On("GetByID", mock.Anything, "order-001").Return(openOrder(), nil)
	repo.On("TransitionStatus", mock.Anything, "order-001", domain.OrderStatusOpen, domain.OrderStatusCancelled).Return(nil)

	cancelled, err := svc.CancelOrder(context.Background(), testActor(), "order-001")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	// No ledger write path exists on cancel.
	repo.AssertNotCalled(t, "Close", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestOrderService_CancelOrder_Terminal(t *testing.T) {
	svc, repo, _ := newOrderFixture(t)

	cancelled := openOrder()
	cancelled.Status = domain.OrderStatusCancelled
	repo.On("GetByID", mock.Anything, "order-001").Return(cancelled, nil)

	_, err := svc.CancelOrder(context.Background(), testActor(), "order-001")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	repo.AssertExpectations(t)
}

func TestOrderService_DeleteOrder_AnyStatus(t *testing.T) {
	svc, repo, _ := newOrderFixture(t)

	closed := openOrder()
	closed.Status = domain.OrderStatusClosed
	repo.On("GetByID", mock.Anything, "order-001").Return(closed, nil)
	repo.On("Delete", mock.Anything, "order-001").Return(nil)

	err := svc.DeleteOrder(context.Background(), testActor(), "order-001")
	assert.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestOrderService_DeleteOrder_WrongMerchant(t *testing.T) {
	svc, repo, _ := newOrderFixture(t)

	other := openOrder()
	other.MerchantID = "merch-999"
	repo.On("GetByID", mock.Anything, "order-001").Return(other, nil)

	err := svc.DeleteOrder(context.Background(), testActor(), "order-001")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
