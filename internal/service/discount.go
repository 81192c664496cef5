package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/HubertasVin/pos-1206-sub000/internal/auth"
	"github.com/HubertasVin/pos-1206-sub000/internal/domain"
	"github.com/HubertasVin/pos-1206-sub000/internal/repository"
	apperrors "github.com/HubertasVin/pos-1206-sub000/pkg/errors"
)

// DiscountInput holds the parameters for creating or updating a discount.
// Exactly one of Percent or Amount must be set.
type DiscountInput struct {
	Name       string
	Percent    *decimal.Decimal
	Amount     *decimal.Decimal
	ValidFrom  *time.Time
	ValidUntil *time.Time
}

// DiscountService implements the business logic for discount definitions and
// their order attachments.
type DiscountService struct {
	orders    repository.OrderRepository
	discounts repository.DiscountRepository
	logger    *slog.Logger
}

// NewDiscountService creates a new discount service.
func NewDiscountService(orders repository.OrderRepository, discounts repository.DiscountRepository, logger *slog.Logger) *DiscountService {
	return &DiscountService{
		orders:    orders,
		discounts: discounts,
		logger:    logger,
	}
}

// CreateDiscount creates an active discount under the actor's merchant.
func (s *DiscountService) CreateDiscount(ctx context.Context, actor auth.Actor, input DiscountInput) (*domain.Discount, error) {
	rate, err := s.validateInput(input)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	discount := &domain.Discount{
		ID:         uuid.New().String(),
		MerchantID: actor.MerchantID,
		Name:       input.Name,
		Rate:       rate,
		ValidFrom:  input.ValidFrom,
		ValidUntil: input.ValidUntil,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.discounts.Create(ctx, discount); err != nil {
		return nil, fmt.Errorf("create discount: %w", err)
	}

	s.logger.InfoContext(ctx, "discount created",
		slog.String("discount_id", discount.ID),
		slog.String("rate", discount.Rate.String()),
	)

	return discount, nil
}

// GetDiscount retrieves a discount. Another merchant's discount is not found.
func (s *DiscountService) GetDiscount(ctx context.Context, actor auth.Actor, id string) (*domain.Discount, error) {
	discount, err := s.discounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get discount by id: %w", err)
	}

	if !actor.CanAccess(discount.MerchantID) {
		return nil, apperrors.NotFound("discount", id)
	}

	return discount, nil
}

// ListDiscounts returns the actor's merchant's discounts. Soft-deleted
// discounts are included only when includeInactive is set.
func (s *DiscountService) ListDiscounts(ctx context.Context, actor auth.Actor, includeInactive bool, offset, limit int) ([]domain.Discount, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	discounts, total, err := s.discounts.ListByMerchant(ctx, actor.MerchantID, includeInactive, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list discounts: %w", err)
	}

	return discounts, total, nil
}

// UpdateDiscount overwrites a discount's definition.
func (s *DiscountService) UpdateDiscount(ctx context.Context, actor auth.Actor, id string, input DiscountInput) (*domain.Discount, error) {
	discount, err := s.GetDiscount(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	rate, err := s.validateInput(input)
	if err != nil {
		return nil, err
	}

	discount.Name = input.Name
	discount.Rate = rate
	discount.ValidFrom = input.ValidFrom
	discount.ValidUntil = input.ValidUntil

	if err := s.discounts.Update(ctx, discount); err != nil {
		return nil, fmt.Errorf("update discount: %w", err)
	}

	s.logger.InfoContext(ctx, "discount updated",
		slog.String("discount_id", id),
	)

	return discount, nil
}

// DeleteDiscount soft-deletes a discount. The row stays so closed orders
// keep their pricing history; the pricing pipeline just stops applying it.
func (s *DiscountService) DeleteDiscount(ctx context.Context, actor auth.Actor, id string) error {
	if _, err := s.GetDiscount(ctx, actor, id); err != nil {
		return err
	}

	if err := s.discounts.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("soft delete discount: %w", err)
	}

	s.logger.InfoContext(ctx, "discount deactivated",
		slog.String("discount_id", id),
	)

	return nil
}

// AttachDiscountToOrder links a discount to an open order.
func (s *DiscountService) AttachDiscountToOrder(ctx context.Context, actor auth.Actor, orderID, discountID string) error {
	if err := s.openOwnedOrder(ctx, actor, orderID); err != nil {
		return err
	}

	if _, err := s.GetDiscount(ctx, actor, discountID); err != nil {
		return err
	}

	if err := s.discounts.AttachToOrder(ctx, orderID, discountID); err != nil {
		return fmt.Errorf("attach discount to order: %w", err)
	}

	s.logger.InfoContext(ctx, "discount attached to order",
		slog.String("order_id", orderID),
		slog.String("discount_id", discountID),
	)

	return nil
}

// DetachDiscountFromOrder unlinks a discount from an open order.
func (s *DiscountService) DetachDiscountFromOrder(ctx context.Context, actor auth.Actor, orderID, discountID string) error {
	if err := s.openOwnedOrder(ctx, actor, orderID); err != nil {
		return err
	}

	if err := s.discounts.DetachFromOrder(ctx, orderID, discountID); err != nil {
		return fmt.Errorf("detach discount from order: %w", err)
	}

	return nil
}

// ListOrderDiscounts returns the discounts attached to an order.
func (s *DiscountService) ListOrderDiscounts(ctx context.Context, actor auth.Actor, orderID string) ([]domain.Discount, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	if !actor.CanAccess(order.MerchantID) {
		return nil, apperrors.NotFound("order", orderID)
	}

	discounts, err := s.discounts.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order discounts: %w", err)
	}

	return discounts, nil
}

func (s *DiscountService) validateInput(input DiscountInput) (domain.Rate, error) {
	if input.Name == "" {
		return domain.Rate{}, apperrors.InvalidInput("name is required")
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && !input.ValidUntil.After(*input.ValidFrom) {
		return domain.Rate{}, apperrors.InvalidInput("validUntil must be after validFrom")
	}

	rate, err := domain.NewRate(input.Percent, input.Amount)
	if err != nil {
		return domain.Rate{}, apperrors.InvalidInput(err.Error())
	}

	return rate, nil
}

func (s *DiscountService) openOwnedOrder(ctx context.Context, actor auth.Actor, orderID string) error {
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
