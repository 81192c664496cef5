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
	"github.com/HubertasVin/pos-1206-sub000/internal/event"
	"github.com/HubertasVin/pos-1206-sub000/internal/repository"
	apperrors "github.com/HubertasVin/pos-1206-sub000/pkg/errors"
)

// AdjustStockInput holds the parameters for a direct stock correction
// outside the order flow. Exactly one of ProductID or ProductVariationID
// must be set; Adjustment is a signed quantity delta.
type AdjustStockInput struct {
	ProductID          string
	ProductVariationID string
	Adjustment         int
}

// InventoryService implements the business logic for the append-only stock
// adjustment ledger.
type InventoryService struct {
	logs     repository.InventoryLogRepository
	catalog  catalog.Resolver
	producer *event.Producer
	logger   *slog.Logger
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(logs repository.InventoryLogRepository, resolver catalog.Resolver, producer *event.Producer, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		logs:     logs,
		catalog:  resolver,
		producer: producer,
		logger:   logger,
	}
}

// AdjustStock appends a direct correction entry: signed adjustment, no order
// reference. The unit's owning merchant must match the actor.
func (s *InventoryService) AdjustStock(ctx context.Context, actor auth.Actor, input AdjustStockInput) (*domain.InventoryLogEntry, error) {
	hasProduct := input.ProductID != ""
	hasVariation := input.ProductVariationID != ""

	if hasProduct == hasVariation {
		return nil, apperrors.InvalidInput("Either productId or productVariationId must be provided")
	}
	if input.Adjustment == 0 {
		return nil, apperrors.InvalidInput("Adjustment must not be zero")
	}

	entryType := domain.InventoryTypeProduct
	var unit *catalog.Unit
	var err error
	if hasVariation {
		entryType = domain.InventoryTypeProductVariation
		unit, err = s.catalog.ResolveVariation(ctx, input.ProductVariationID)
		if err != nil {
			return nil, fmt.Errorf("resolve product variation: %w", err)
		}
	} else {
		unit, err = s.catalog.ResolveProduct(ctx, input.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolve product: %w", err)
		}
	}

	if !actor.CanAccess(unit.MerchantID) {
		return nil, apperrors.NotFound("inventory unit", unit.ID)
	}

	entry := &domain.InventoryLogEntry{
		ID:                 uuid.New().String(),
		MerchantID:         actor.MerchantID,
		Type:               entryType,
		ProductID:          input.ProductID,
		ProductVariationID: input.ProductVariationID,
		Adjustment:         input.Adjustment,
		UserID:             actor.UserID,
		CreatedAt:          time.Now().UTC(),
	}

	if err := s.logs.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create inventory log entry: %w", err)
	}

	if err := s.producer.PublishInventoryAdjusted(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish inventory.adjusted event",
			slog.String("entry_id", entry.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "stock adjusted",
		slog.String("entry_id", entry.ID),
		slog.String("type", entry.Type),
		slog.Int("adjustment", entry.Adjustment),
	)

	return entry, nil
}

// GetLogs returns the actor's merchant's ledger entries matching the filter.
func (s *InventoryService) GetLogs(ctx context.Context, actor auth.Actor, filter repository.InventoryLogFilter) ([]domain.InventoryLogEntry, int, error) {
	filter.MerchantID = actor.MerchantID

	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	entries, total, err := s.logs.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory logs: %w", err)
	}

	return entries, total, nil
}
