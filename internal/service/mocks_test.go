package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/HubertasVin/pos-1206-sub000/internal/auth"
	"github.com/HubertasVin/pos-1206-sub000/internal/catalog"
	"github.com/HubertasVin/pos-1206-sub000/internal/domain"
	"github.com/HubertasVin/pos-1206-sub000/internal/event"
	"github.com/HubertasVin/pos-1206-sub000/internal/repository"
	pkgkafka "github.com/HubertasVin/pos-1206-sub000/pkg/kafka"
)

// --- Mock Repositories ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) SetTip(ctx context.Context, id string, tip decimal.Decimal) error {
	args := m.Called(ctx, id, tip)
	return args.Error(0)
}

func (m *mockOrderRepository) Close(ctx context.Context, id string, entries []domain.InventoryLogEntry) error {
	args := m.Called(ctx, id, entries)
	return args.Error(0)
}

func (m *mockOrderRepository) TransitionStatus(ctx context.Context, id, from, to string) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *mockOrderRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockOrderItemRepository struct {
	mock.Mock
}

func (m *mockOrderItemRepository) Create(ctx context.Context, item *domain.OrderItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockOrderItemRepository) GetByID(ctx context.Context, id string) (*domain.OrderItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderItem), args.Error(1)
}

func (m *mockOrderItemRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderItem), args.Error(1)
}

func (m *mockOrderItemRepository) Update(ctx context.Context, item *domain.OrderItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockOrderItemRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockChargeRepository struct {
	mock.Mock
}

func (m *mockChargeRepository) Create(ctx context.Context, charge *domain.Charge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}

func (m *mockChargeRepository) GetByID(ctx context.Context, id string) (*domain.Charge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Charge), args.Error(1)
}

func (m *mockChargeRepository) ListByMerchant(ctx context.Context, merchantID string, offset, limit int) ([]domain.Charge, int, error) {
	args := m.Called(ctx, merchantID, offset, limit)
	return args.Get(0).([]domain.Charge), args.Int(1), args.Error(2)
}

func (m *mockChargeRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockChargeRepository) AttachToOrder(ctx context.Context, orderID, chargeID string) error {
	args := m.Called(ctx, orderID, chargeID)
	return args.Error(0)
}

func (m *mockChargeRepository) DetachFromOrder(ctx context.Context, orderID, chargeID string) error {
	args := m.Called(ctx, orderID, chargeID)
	return args.Error(0)
}

func (m *mockChargeRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.Charge, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Charge), args.Error(1)
}

func (m *mockChargeRepository) AttachToItem(ctx context.Context, itemID, chargeID string) error {
	args := m.Called(ctx, itemID, chargeID)
	return args.Error(0)
}

func (m *mockChargeRepository) DetachFromItem(ctx context.Context, itemID, chargeID string) error {
	args := m.Called(ctx, itemID, chargeID)
	return args.Error(0)
}

func (m *mockChargeRepository) ListByOrderItems(ctx context.Context, orderID string) (map[string][]domain.Charge, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.Charge), args.Error(1)
}

type mockDiscountRepository struct {
	mock.Mock
}

func (m *mockDiscountRepository) Create(ctx context.Context, discount *domain.Discount) error {
	args := m.Called(ctx, discount)
	return args.Error(0)
}

func (m *mockDiscountRepository) GetByID(ctx context.Context, id string) (*domain.Discount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Discount), args.Error(1)
}

func (m *mockDiscountRepository) ListByMerchant(ctx context.Context, merchantID string, includeInactive bool, offset, limit int) ([]domain.Discount, int, error) {
	args := m.Called(ctx, merchantID, includeInactive, offset, limit)
	return args.Get(0).([]domain.Discount), args.Int(1), args.Error(2)
}

func (m *mockDiscountRepository) Update(ctx context.Context, discount *domain.Discount) error {
	args := m.Called(ctx, discount)
	return args.Error(0)
}

func (m *mockDiscountRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockDiscountRepository) AttachToOrder(ctx context.Context, orderID, discountID string) error {
	args := m.Called(ctx, orderID, discountID)
	return args.Error(0)
}

func (m *mockDiscountRepository) DetachFromOrder(ctx context.Context, orderID, discountID string) error {
	args := m.Called(ctx, orderID, discountID)
	return args.Error(0)
}

func (m *mockDiscountRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.Discount, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Discount), args.Error(1)
}

type mockTransactionRepository struct {
	mock.Mock
}

func (m *mockTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *mockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *mockTransactionRepository) ListByOrder(ctx context.Context, orderID string, filter repository.TransactionFilter) ([]domain.Transaction, int, error) {
	args := m.Called(ctx, orderID, filter)
	return args.Get(0).([]domain.Transaction), args.Int(1), args.Error(2)
}

func (m *mockTransactionRepository) UpdateStatus(ctx context.Context, id, from, to string) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *mockTransactionRepository) SumCompletedByOrder(ctx context.Context, orderID string) (decimal.Decimal, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockInventoryLogRepository struct {
	mock.Mock
}

func (m *mockInventoryLogRepository) Create(ctx context.Context, entry *domain.InventoryLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockInventoryLogRepository) List(ctx context.Context, filter repository.InventoryLogFilter) ([]domain.InventoryLogEntry, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.InventoryLogEntry), args.Int(1), args.Error(2)
}

func (m *mockInventoryLogRepository) CountByOrder(ctx context.Context, orderID string) (int, error) {
	args := m.Called(ctx, orderID)
	return args.Int(0), args.Error(1)
}

// --- Mock Catalog Resolver ---

type mockCatalogResolver struct {
	mock.Mock
}

func (m *mockCatalogResolver) ResolveProduct(ctx context.Context, id string) (*catalog.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Unit), args.Error(1)
}

func (m *mockCatalogResolver) ResolveVariation(ctx context.Context, id string) (*catalog.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Unit), args.Error(1)
}

func (m *mockCatalogResolver) ResolveReservation(ctx context.Context, id string) (*catalog.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Unit), args.Error(1)
}

// --- Mock Quoter ---

type mockQuoter struct {
	mock.Mock
}

func (m *mockQuoter) QuoteOrder(ctx context.Context, order *domain.Order) (domain.Quote, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(domain.Quote), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestProducer returns an event producer with no reachable broker.
// Publish failures are logged by the services, never returned.
func newTestProducer() *event.Producer {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

func testActor() auth.Actor {
	return auth.Actor{
		UserID:     "user-001",
		MerchantID: "merch-001",
		Role:       "manager",
	}
}
