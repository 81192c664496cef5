package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/HubertasVin/pos-1206-sub000/internal/auth"
	"github.com/HubertasVin/pos-1206-sub000/internal/catalog"
	"github.com/HubertasVin/pos-1206-sub000/internal/domain"
	"github.com/HubertasVin/pos-1206-sub000/internal/repository"
	apperrors "github.com/HubertasVin/pos-1206-sub000/pkg/errors"
)

// OrderItemInput holds the parameters for adding or replacing an order line.
// Exactly one of ProductID or ReservationID must be set; ProductVariationID
// is only meaningful alongside ProductID.
type OrderItemInput struct {
	ProductID          string
	ProductVariationID string
	ReservationID      string
	Quantity           int
}

// OrderItemService implements the business logic for order line operations.
type OrderItemService struct {
	orders  repository.OrderRepository
	items   repository.OrderItemRepository
	catalog catalog.Resolver
	logger  *slog.Logger
}

// NewOrderItemService creates a new order item service.
func NewOrderItemService(orders repository.OrderRepository, items repository.OrderItemRepository, resolver catalog.Resolver, logger *slog.Logger) *OrderItemService {
	return &OrderItemService{
		orders:  orders,
		items:   items,
		catalog: resolver,
		logger:  logger,
	}
}

// ListItems returns an order's lines. Orders under a different merchant are
// reported as not found.
func (s *OrderItemService) ListItems(ctx context.Context, actor auth.Actor, orderID string) ([]domain.OrderItem, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	if !actor.CanAccess(order.MerchantID) {
		return nil, apperrors.NotFound("order", orderID)
	}

	items, err := s.items.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	return items, nil
}

// AddItem appends a new line to an open order.
func (s *OrderItemService) AddItem(ctx context.Context, actor auth.Actor, orderID string, input OrderItemInput) (*domain.OrderItem, error) {
	order, err := s.openOwnedOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.validateItemInput(ctx, actor, &input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &domain.OrderItem{
		ID:                 uuid.New().String(),
		OrderID:            order.ID,
		ProductID:          input.ProductID,
		ProductVariationID: input.ProductVariationID,
		ReservationID:      input.ReservationID,
		Quantity:           input.Quantity,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create order item: %w", err)
	}

	s.logger.InfoContext(ctx, "order item added",
		slog.String("order_id", orderID),
		slog.String("item_id", item.ID),
		slog.Int("quantity", item.Quantity),
	)

	return item, nil
}

// ReplaceItem overwrites a line in place, keeping its identity. A line that
// does not exist, or belongs to a different order, is not found.
func (s *OrderItemService) ReplaceItem(ctx context.Context, actor auth.Actor, orderID, itemID string, input OrderItemInput) (*domain.OrderItem, error) {
	if _, err := s.openOwnedOrder(ctx, actor, orderID); err != nil {
		return nil, err
	}

	item, err := s.orderLine(ctx, orderID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.validateItemInput(ctx, actor, &input); err != nil {
		return nil, err
	}

	item.ProductID = input.ProductID
	item.ProductVariationID = input.ProductVariationID
	item.ReservationID = input.ReservationID
	item.Quantity = input.Quantity

	if err := s.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update order item: %w", err)
	}

	s.logger.InfoContext(ctx, "order item replaced",
		slog.String("order_id", orderID),
		slog.String("item_id", itemID),
	)

	return item, nil
}

// RemoveItem deletes a line from an open order under the same cross-order
// guards as ReplaceItem.
func (s *OrderItemService) RemoveItem(ctx context.Context, actor auth.Actor, orderID, itemID string) error {
	if _, err := s.openOwnedOrder(ctx, actor, orderID); err != nil {
		return err
	}

	if _, err := s.orderLine(ctx, orderID, itemID); err != nil {
		return err
	}

	if err := s.items.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("delete order item: %w", err)
	}

	s.logger.InfoContext(ctx, "order item removed",
		slog.String("order_id", orderID),
		slog.String("item_id", itemID),
	)

	return nil
}

// openOwnedOrder loads an order for line mutation: missing is not found,
// another merchant's is forbidden, not open is an invalid state.
func (s *OrderItemService) openOwnedOrder(ctx context.Context, actor auth.Actor, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	if !actor.CanAccess(order.MerchantID) {
		return nil, apperrors.Forbidden("merchant scope does not match order")
	}

	if !order.IsOpen() {
		return nil, apperrors.InvalidState("Order is not open")
	}

	return order, nil
}

// orderLine loads a line and rejects cross-order references as not found.
func (s *OrderItemService) orderLine(ctx context.Context, orderID, itemID string) (*domain.OrderItem, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get order item by id: %w", err)
	}

	if item.OrderID != orderID {
		return nil, apperrors.NotFound("order item", itemID)
	}

	return item, nil
}

// validateItemInput enforces unit exclusivity, quantity bounds and catalog
// consistency. Reservation lines are pinned to quantity 1.
func (s *OrderItemService) validateItemInput(ctx context.Context, actor auth.Actor, input *OrderItemInput) error {
	hasProduct := input.ProductID != ""
	hasReservation := input.ReservationID != ""

	if hasProduct == hasReservation {
		return apperrors.InvalidInput("Either productId or reservationId must be provided")
	}
	if input.ProductVariationID != "" && !hasProduct {
		return apperrors.InvalidInput("productVariationId requires productId")
	}

	if hasReservation {
		unit, err := s.catalog.ResolveReservation(ctx, input.ReservationID)
		if err != nil {
			return fmt.Errorf("resolve reservation: %w", err)
		}
		if !actor.CanAccess(unit.MerchantID) {
			return apperrors.NotFound("reservation", input.ReservationID)
		}
		// A reservation is a single booking, never a counted line.
		input.Quantity = 1
		return nil
	}

	if input.Quantity <= 0 {
		return apperrors.InvalidInput("Quantity must be greater than zero")
	}

	product, err := s.catalog.ResolveProduct(ctx, input.ProductID)
	if err != nil {
		return fmt.Errorf("resolve product: %w", err)
	}
	if !actor.CanAccess(product.MerchantID) {
		return apperrors.NotFound("product", input.ProductID)
	}

	if input.ProductVariationID != "" {
		variation, err := s.catalog.ResolveVariation(ctx, input.ProductVariationID)
		if err != nil {
			return fmt.Errorf("resolve product variation: %w", err)
		}
		if variation.ProductID != input.ProductID {
			return apperrors.InvalidInput("Variation does not belong to the given product")
		}
	}

	return nil
}
