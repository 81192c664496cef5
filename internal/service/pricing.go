package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/HubertasVin/pos-1206-sub000/internal/auth"
	"github.com/HubertasVin/pos-1206-sub000/internal/catalog"
	"github.com/HubertasVin/pos-1206-sub000/internal/domain"
	"github.com/HubertasVin/pos-1206-sub000/internal/repository"
	apperrors "github.com/HubertasVin/pos-1206-sub000/pkg/errors"
)

// PricingService computes an order's payable amount. It is a pure read over
// the current item/charge snapshot: unit prices come from the catalog at
// quote time, never from the stored lines.
type PricingService struct {
	orders       repository.OrderRepository
	charges      repository.ChargeRepository
	discounts    repository.DiscountRepository
	transactions repository.TransactionRepository
	catalog      catalog.Resolver
	logger       *slog.Logger
}

// NewPricingService creates a new pricing service.
func NewPricingService(
	orders repository.OrderRepository,
	charges repository.ChargeRepository,
	discounts repository.DiscountRepository,
	transactions repository.TransactionRepository,
	resolver catalog.Resolver,
	logger *slog.Logger,
) *PricingService {
	return &PricingService{
		orders:       orders,
		charges:      charges,
		discounts:    discounts,
		transactions: transactions,
		catalog:      resolver,
		logger:       logger,
	}
}

// Quote prices an order on behalf of an actor. The actor must be scoped to
// the order's merchant.
func (s *PricingService) Quote(ctx context.Context, actor auth.Actor, orderID string) (domain.Quote, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("get order by id: %w", err)
	}

	if !actor.CanAccess(order.MerchantID) {
		return domain.Quote{}, apperrors.Forbidden("merchant scope does not match order")
	}

	return s.QuoteOrder(ctx, order)
}

// QuoteOrder prices an already-loaded order snapshot. Deterministic for a
// fixed snapshot: repeated calls with no intervening mutation return the
// identical breakdown.
func (s *PricingService) QuoteOrder(ctx context.Context, order *domain.Order) (domain.Quote, error) {
	itemCharges, err := s.charges.ListByOrderItems(ctx, order.ID)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("list order item charges: %w", err)
	}

	priced := make([]domain.PricedItem, 0, len(order.Items))
	for _, item := range order.Items {
		unit, err := s.resolveUnit(ctx, item)
		if err != nil {
			return domain.Quote{}, err
		}
		priced = append(priced, domain.PricedItem{
			Item:      item,
			UnitPrice: unit.Price,
			Charges:   itemCharges[item.ID],
		})
	}

	orderCharges, err := s.charges.ListByOrder(ctx, order.ID)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("list order charges: %w", err)
	}

	orderDiscounts, err := s.discounts.ListByOrder(ctx, order.ID)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("list order discounts: %w", err)
	}

	quote := domain.ComputeQuote(priced, orderDiscounts, orderCharges, order.Tip, time.Now().UTC())

	paid, err := s.transactions.SumCompletedByOrder(ctx, order.ID)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("sum completed transactions: %w", err)
	}
	quote.AmountPaid = paid

	s.logger.DebugContext(ctx, "order priced",
		slog.String("order_id", order.ID),
		slog.String("total", quote.Total.String()),
	)

	return quote, nil
}

// resolveUnit resolves a line's current unit price: the reservation for a
// reservation line, otherwise the variation price when one is attached,
// falling back to the base product price.
func (s *PricingService) resolveUnit(ctx context.Context, item domain.OrderItem) (*catalog.Unit, error) {
	switch {
	case item.IsReservation():
		unit, err := s.catalog.ResolveReservation(ctx, item.ReservationID)
		if err != nil {
			return nil, fmt.Errorf("resolve reservation %s: %w", item.ReservationID, err)
		}
		return unit, nil
	case item.ProductVariationID != "":
		unit, err := s.catalog.ResolveVariation(ctx, item.ProductVariationID)
		if err != nil {
			return nil, fmt.Errorf("resolve product variation %s: %w", item.ProductVariationID, err)
		}
		return unit, nil
	default:
		unit, err := s.catalog.ResolveProduct(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolve product %s: %w", item.ProductID, err)
		}
		return unit, nil
	}
}
