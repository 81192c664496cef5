package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/HubertasVin/pos-1206-sub000/internal/auth"
	"github.com/HubertasVin/pos-1206-sub000/internal/domain"
	"github.com/HubertasVin/pos-1206-sub000/internal/repository"
	apperrors "github.com/HubertasVin/pos-1206-sub000/pkg/errors"
)

// CreateChargeInput holds the parameters for a new charge definition.
// Exactly one of Percent or Amount must be set.
type CreateChargeInput struct {
	Name       string
	Type       string
	Scope      string
	Percent    *decimal.Decimal
	Amount     *decimal.Decimal
	ValidFrom  *time.Time
	ValidUntil *time.Time
}

// ChargeService implements the business logic for charge definitions and
// their order/item attachments.
type ChargeService struct {
	orders  repository.OrderRepository
	items   repository.OrderItemRepository
	charges repository.ChargeRepository
	logger  *slog.Logger
}

// NewChargeService creates a new charge service.
func NewChargeService(orders repository.OrderRepository, items repository.OrderItemRepository, charges repository.ChargeRepository, logger *slog.Logger) *ChargeService {
	return &ChargeService{
		orders:  orders,
		items:   items,
		charges: charges,
		logger:  logger,
	}
}

// CreateCharge creates a charge definition under the actor's merchant.
func (s *ChargeService) CreateCharge(ctx context.Context, actor auth.Actor, input CreateChargeInput) (*domain.Charge, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if !domain.IsValidChargeType(input.Type) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid charge type %q, must be one of: %s", input.Type, strings.Join(domain.ValidChargeTypes(), ", ")))
	}
	if input.Scope != domain.ChargeScopeOrder && input.Scope != domain.ChargeScopeItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid charge scope %q", input.Scope))
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && !input.ValidUntil.After(*input.ValidFrom) {
		return nil, apperrors.InvalidInput("validUntil must be after validFrom")
	}

	rate, err := domain.NewRate(input.Percent, input.Amount)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	now := time.Now().UTC()
	charge := &domain.Charge{
		ID:         uuid.New().String(),
		MerchantID: actor.MerchantID,
		Name:       input.Name,
		Type:       input.Type,
		Rate:       rate,
		Scope:      input.Scope,
		ValidFrom:  input.ValidFrom,
		ValidUntil: input.ValidUntil,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.charges.Create(ctx, charge); err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}

	s.logger.InfoContext(ctx, "charge created",
		slog.String("charge_id", charge.ID),
		slog.String("type", charge.Type),
		slog.String("rate", charge.Rate.String()),
	)

	return charge, nil
}

// GetCharge retrieves a charge. Another merchant's charge is not found.
func (s *ChargeService) GetCharge(ctx context.Context, actor auth.Actor, id string) (*domain.Charge, error) {
	charge, err := s.charges.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get charge by id: %w", err)
	}

	if !actor.CanAccess(charge.MerchantID) {
		return nil, apperrors.NotFound("charge", id)
	}

	return charge, nil
}

// ListCharges returns the actor's merchant's charge definitions.
func (s *ChargeService) ListCharges(ctx context.Context, actor auth.Actor, offset, limit int) ([]domain.Charge, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	charges, total, err := s.charges.ListByMerchant(ctx, actor.MerchantID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list charges: %w", err)
	}

	return charges, total, nil
}

// DeleteCharge removes a charge definition and its attachments.
func (s *ChargeService) DeleteCharge(ctx context.Context, actor auth.Actor, id string) error {
	if _, err := s.GetCharge(ctx, actor, id); err != nil {
		return err
	}

	if err := s.charges.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete charge: %w", err)
	}

	s.logger.InfoContext(ctx, "charge deleted",
		slog.String("charge_id", id),
	)

	return nil
}

// AttachChargeToOrder links a charge to an open order. Attaching the same
// charge twice is rejected.
func (s *ChargeService) AttachChargeToOrder(ctx context.Context, actor auth.Actor, orderID, chargeID string) error {
	if err := s.openOwnedOrderForCharge(ctx, actor, orderID); err != nil {
		return err
	}

	if _, err := s.GetCharge(ctx, actor, chargeID); err != nil {
		return err
	}

	if err := s.charges.AttachToOrder(ctx, orderID, chargeID); err != nil {
		return fmt.Errorf("attach charge to order: %w", err)
	}

	s.logger.InfoContext(ctx, "charge attached to order",
		slog.String("order_id", orderID),
		slog.String("charge_id", chargeID),
	)

	return nil
}

// DetachChargeFromOrder unlinks a charge from an open order.
func (s *ChargeService) DetachChargeFromOrder(ctx context.Context, actor auth.Actor, orderID, chargeID string) error {
	if err := s.openOwnedOrderForCharge(ctx, actor, orderID); err != nil {
		return err
	}

	if err := s.charges.DetachFromOrder(ctx, orderID, chargeID); err != nil {
		return fmt.Errorf("detach charge from order: %w", err)
	}

	return nil
}

// ListOrderCharges returns the charges attached to an order.
func (s *ChargeService) ListOrderCharges(ctx context.Context, actor auth.Actor, orderID string) ([]domain.Charge, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	if !actor.CanAccess(order.MerchantID) {
		return nil, apperrors.NotFound("order", orderID)
	}

	charges, err := s.charges.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order charges: %w", err)
	}

	return charges, nil
}

// AttachChargeToItem links a charge to a single line of an open order.
func (s *ChargeService) AttachChargeToItem(ctx context.Context, actor auth.Actor, orderID, itemID, chargeID string) error {
	if err := s.openOwnedOrderForCharge(ctx, actor, orderID); err != nil {
		return err
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("get order item by id: %w", err)
	}
	if item.OrderID != orderID {
		return apperrors.NotFound("order item", itemID)
	}

	if _, err := s.GetCharge(ctx, actor, chargeID); err != nil {
		return err
	}

	if err := s.charges.AttachToItem(ctx, itemID, chargeID); err != nil {
		return fmt.Errorf("attach charge to order item: %w", err)
	}

	return nil
}

// DetachChargeFromItem unlinks a charge from a single line of an open order.
func (s *ChargeService) DetachChargeFromItem(ctx context.Context, actor auth.Actor, orderID, itemID, chargeID string) error {
	if err := s.openOwnedOrderForCharge(ctx, actor, orderID); err != nil {
		return err
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("get order item by id: %w", err)
	}
	if item.OrderID != orderID {
		return apperrors.NotFound("order item", itemID)
	}

	if err := s.charges.DetachFromItem(ctx, itemID, chargeID); err != nil {
		return fmt.Errorf("detach charge from order item: %w", err)
	}

	return nil
}

func (s *ChargeService) openOwnedOrderForCharge(ctx context.Context, actor auth.Actor, orderID string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order by id: %w", err)
	}

	if !actor.CanAccess(order.MerchantID) {
		return apperrors.Forbidden("merchant scope does not match order")
	}

	if !order.IsOpen() {
		return apperrors.InvalidState("Order is not open")
	}

	return nil
}
