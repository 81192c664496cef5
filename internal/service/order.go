package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/HubertasVin/pos-1206-sub000/internal/auth"
	"github.com/HubertasVin/pos-1206-sub000/internal/domain"
	"github.com/HubertasVin/pos-1206-sub000/internal/event"
	"github.com/HubertasVin/pos-1206-sub000/internal/repository"
	apperrors "github.com/HubertasVin/pos-1206-sub000/pkg/errors"
)

// Quoter prices an order's current snapshot. Implemented by PricingService.
type Quoter interface {
	QuoteOrder(ctx context.Context, order *domain.Order) (domain.Quote, error)
}

// OrderService implements the business logic for order lifecycle operations.
type OrderService struct {
	orders   repository.OrderRepository
	quoter   Quoter
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orders repository.OrderRepository, quoter Quoter, producer *event.Producer, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		quoter:   quoter,
		producer: producer,
		logger:   logger,
	}
}

// CreateOrder creates a new empty open order under the actor's merchant.
func (s *OrderService) CreateOrder(ctx context.Context, actor auth.Actor) (*domain.Order, error) {
	now := time.Now().UTC()
	order := &domain.Order{
		ID:         uuid.New().String(),
		MerchantID: actor.MerchantID,
		Status:     domain.OrderStatusOpen,
		Items:      []domain.OrderItem{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order, actor.UserID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("merchant_id", order.MerchantID),
	)

	return order, nil
}

// GetOrder retrieves an order by its ID. Orders under a different merchant
// are reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, actor auth.Actor, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	if !actor.CanAccess(order.MerchantID) {
		return nil, apperrors.NotFound("order", id)
	}

	return order, nil
}

// ListOrders returns the actor's merchant's orders matching the filter.
func (s *OrderService) ListOrders(ctx context.Context, actor auth.Actor, filter repository.OrderFilter) ([]domain.Order, int, error) {
	filter.MerchantID = actor.MerchantID

	if filter.Status != nil && !domain.IsValidStatus(*filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status %q, must be one of: %s", *filter.Status, strings.Join(domain.ValidStatuses(), ", ")))
	}

	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

// SetTip stores the tip amount on an open order.
func (s *OrderService) SetTip(ctx context.Context, actor auth.Actor, id string, tip decimal.Decimal) (*domain.Order, error) {
	if tip.IsNegative() {
		return nil, apperrors.InvalidInput("Tip must not be negative")
	}

	order, err := s.ownedOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if !order.IsOpen() {
		return nil, apperrors.InvalidState("Order is not open")
	}

	if err := s.orders.SetTip(ctx, id, tip); err != nil {
		return nil, fmt.Errorf("set order tip: %w", err)
	}

	s.logger.InfoContext(ctx, "order tip set",
		slog.String("order_id", id),
		slog.String("tip", tip.String()),
	)

	order.Tip = &tip
	return order, nil
}

// CloseOrder atomically flips an open order to closed and writes one
// inventory ledger entry per stock-backed item. A losing concurrent closer
// observes the not-open error and writes nothing.
func (s *OrderService) CloseOrder(ctx context.Context, actor auth.Actor, id string) (*domain.Order, error) {
	order, err := s.ownedOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if !order.IsOpen() {
		return nil, apperrors.InvalidState("Order is not open")
	}

	// Priced snapshot for the close event, taken before the flip. Pricing
	// failures must not block closing.
	quote, quoteErr := s.quoter.QuoteOrder(ctx, order)
	if quoteErr != nil {
		s.logger.WarnContext(ctx, "could not price order for close event",
			slog.String("order_id", id),
			slog.String("error", quoteErr.Error()),
		)
	}

	entries := closeLedgerEntries(order, actor.UserID)

	if err := s.orders.Close(ctx, id, entries); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, s.explainLostRace(ctx, id)
		}
		return nil, fmt.Errorf("close order: %w", err)
	}

	order.Status = domain.OrderStatusClosed

	if quoteErr == nil {
		if err := s.producer.PublishOrderClosed(ctx, order, quote); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order.closed event",
				slog.String("order_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "order closed",
		slog.String("order_id", id),
		slog.Int("ledger_entries", len(entries)),
	)

	return order, nil
}

// CancelOrder cancels an open order. Items are cancelled with it; no
// inventory ledger entries are written.
func (s *OrderService) CancelOrder(ctx context.Context, actor auth.Actor, id string) (*domain.Order, error) {
	order, err := s.ownedOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if !order.CanTransitionTo(domain.OrderStatusCancelled) {
		return nil, apperrors.InvalidState("Order is not open")
	}

	if err := s.orders.TransitionStatus(ctx, id, domain.OrderStatusOpen, domain.OrderStatusCancelled); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, s.explainLostRace(ctx, id)
		}
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	order.Status = domain.OrderStatusCancelled

	if err := s.producer.PublishOrderCancelled(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.cancelled event",
			slog.String("order_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order cancelled",
		slog.String("order_id", id),
		slog.Int("item_count", len(order.Items)),
	)

	return order, nil
}

// DeleteOrder removes an order in any status, cascading its items and
// transactions.
func (s *OrderService) DeleteOrder(ctx context.Context, actor auth.Actor, id string) error {
	if _, err := s.ownedOrder(ctx, actor, id); err != nil {
		return err
	}

	if err := s.orders.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	s.logger.InfoContext(ctx, "order deleted",
		slog.String("order_id", id),
	)

	return nil
}

// ownedOrder loads an order for mutation: a missing order is not found, an
// order under another merchant is forbidden.
func (s *OrderService) ownedOrder(ctx context.Context, actor auth.Actor, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	if !actor.CanAccess(order.MerchantID) {
		return nil, apperrors.Forbidden("merchant scope does not match order")
	}

	return order, nil
}

// explainLostRace turns a guarded-update miss into the error the caller can
// act on: not found if the order vanished, not-open otherwise.
func (s *OrderService) explainLostRace(ctx context.Context, id string) error {
	if _, err := s.orders.GetByID(ctx, id); err != nil {
		return fmt.Errorf("get order after lost race: %w", err)
	}
	return apperrors.InvalidState("Order is not open")
}

// closeLedgerEntries builds one negative-adjustment ledger entry per
// stock-backed item. Reservation lines track no stock unit and are skipped.
func closeLedgerEntries(order *domain.Order, userID string) []domain.InventoryLogEntry {
	now := time.Now().UTC()
	entries := make([]domain.InventoryLogEntry, 0, len(order.Items))

	for _, item := range order.Items {
		if item.IsReservation() {
			continue
		}
		entries = append(entries, domain.InventoryLogEntry{
			ID:                 uuid.New().String(),
			MerchantID:         order.MerchantID,
			Type:               item.UnitType(),
			ProductID:          item.ProductID,
			ProductVariationID: item.ProductVariationID,
			Adjustment:         -item.Quantity,
			OrderID:            order.ID,
			UserID:             userID,
			CreatedAt:          now,
		})
	}

	return entries
}
