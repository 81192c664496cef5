package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/HubertasVin/pos-1206-sub000/internal/domain"
	pkgkafka "github.com/HubertasVin/pos-1206-sub000/pkg/kafka"
)

// Kafka topics for POS domain events.
var (
	TopicOrderCreated             = pkgkafka.Topic("order", "created")
	TopicOrderClosed              = pkgkafka.Topic("order", "closed")
	TopicOrderCancelled           = pkgkafka.Topic("order", "cancelled")
	TopicTransactionRecorded      = pkgkafka.Topic("transaction", "recorded")
	TopicTransactionStatusChanged = pkgkafka.Topic("transaction", "status_changed")
	TopicInventoryAdjusted        = pkgkafka.Topic("inventory", "adjusted")
)

// Aggregate type constants.
const (
	AggregateTypeOrder       = "order"
	AggregateTypeTransaction = "transaction"
	AggregateTypeInventory   = "inventory"
)

// Source identifier for events originating from this service.
const SourcePOSService = "pos-service"

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	OrderID    string `json:"order_id"`
	MerchantID string `json:"merchant_id"`
	UserID     string `json:"user_id"`
}

// OrderClosedData is the payload for an order.closed event. It carries the
// priced snapshot taken at close time so consumers never have to re-price.
type OrderClosedData struct {
	OrderID       string          `json:"order_id"`
	MerchantID    string          `json:"merchant_id"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	ChargeTotal   decimal.Decimal `json:"charge_total"`
	Tip           decimal.Decimal `json:"tip"`
	Total         decimal.Decimal `json:"total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	ClosedAt      time.Time       `json:"closed_at"`
}

// OrderCancelledData is the payload for an order.cancelled event.
type OrderCancelledData struct {
	OrderID    string `json:"order_id"`
	MerchantID string `json:"merchant_id"`
	ItemCount  int    `json:"item_count"`
}

// TransactionRecordedData is the payload for a transaction.recorded event.
type TransactionRecordedData struct {
	TransactionID string          `json:"transaction_id"`
	OrderID       string          `json:"order_id"`
	PaymentMethod string          `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
}

// TransactionStatusChangedData is the payload for a
// transaction.status_changed event.
type TransactionStatusChangedData struct {
	TransactionID string `json:"transaction_id"`
	OrderID       string `json:"order_id"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
}

// InventoryAdjustedData is the payload for an inventory.adjusted event.
type InventoryAdjustedData struct {
	EntryID            string `json:"entry_id"`
	MerchantID         string `json:"merchant_id"`
	Type               string `json:"type"`
	ProductID          string `json:"product_id,omitempty"`
	ProductVariationID string `json:"product_variation_id,omitempty"`
	Adjustment         int    `json:"adjustment"`
	OrderID            string `json:"order_id,omitempty"`
	UserID             string `json:"user_id"`
}

// Producer publishes POS domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order, userID string) error {
	data := OrderCreatedData{
		OrderID:    order.ID,
		MerchantID: order.MerchantID,
		UserID:     userID,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, SourcePOSService, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
	)

	return nil
}

// PublishOrderClosed publishes an order.closed event with the priced
// snapshot.
func (p *Producer) PublishOrderClosed(ctx context.Context, order *domain.Order, quote domain.Quote) error {
	data := OrderClosedData{
		OrderID:       order.ID,
		MerchantID:    order.MerchantID,
		Subtotal:      quote.Subtotal,
		DiscountTotal: quote.DiscountTotal,
		ChargeTotal:   quote.ChargeTotal,
		Tip:           quote.Tip,
		Total:         quote.Total,
		AmountPaid:    quote.AmountPaid,
		ClosedAt:      time.Now().UTC(),
	}

	event, err := pkgkafka.NewEvent(TopicOrderClosed, order.ID, AggregateTypeOrder, SourcePOSService, data)
	if err != nil {
		return fmt.Errorf("create order.closed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderClosed, event); err != nil {
		return fmt.Errorf("publish order.closed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.closed event",
		slog.String("order_id", order.ID),
	)

	return nil
}

// PublishOrderCancelled publishes an order.cancelled event.
func (p *Producer) PublishOrderCancelled(ctx context.Context, order *domain.Order) error {
	data := OrderCancelledData{
		OrderID:    order.ID,
		MerchantID: order.MerchantID,
		ItemCount:  len(order.Items),
	}

	event, err := pkgkafka.NewEvent(TopicOrderCancelled, order.ID, AggregateTypeOrder, SourcePOSService, data)
	if err != nil {
		return fmt.Errorf("create order.cancelled event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCancelled, event); err != nil {
		return fmt.Errorf("publish order.cancelled event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.cancelled event",
		slog.String("order_id", order.ID),
	)

	return nil
}

// PublishTransactionRecorded publishes a transaction.recorded event.
func (p *Producer) PublishTransactionRecorded(ctx context.Context, tx *domain.Transaction) error {
	data := TransactionRecordedData{
		TransactionID: tx.ID,
		OrderID:       tx.OrderID,
		PaymentMethod: tx.PaymentMethod,
		Amount:        tx.Amount,
	}

	event, err := pkgkafka.NewEvent(TopicTransactionRecorded, tx.ID, AggregateTypeTransaction, SourcePOSService, data)
	if err != nil {
		return fmt.Errorf("create transaction.recorded event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicTransactionRecorded, event); err != nil {
		return fmt.Errorf("publish transaction.recorded event: %w", err)
	}

	return nil
}

// PublishTransactionStatusChanged publishes a transaction.status_changed
// event.
func (p *Producer) PublishTransactionStatusChanged(ctx context.Context, tx *domain.Transaction, oldStatus string) error {
	data := TransactionStatusChangedData{
		TransactionID: tx.ID,
		OrderID:       tx.OrderID,
		OldStatus:     oldStatus,
		NewStatus:     tx.Status,
	}

	event, err := pkgkafka.NewEvent(TopicTransactionStatusChanged, tx.ID, AggregateTypeTransaction, SourcePOSService, data)
	if err != nil {
		return fmt.Errorf("create transaction.status_changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicTransactionStatusChanged, event); err != nil {
		return fmt.Errorf("publish transaction.status_changed event: %w", err)
	}

	return nil
}

// PublishInventoryAdjusted publishes an inventory.adjusted event.
func (p *Producer) PublishInventoryAdjusted(ctx context.Context, entry *domain.InventoryLogEntry) error {
	data := InventoryAdjustedData{
		EntryID:            entry.ID,
		MerchantID:         entry.MerchantID,
		Type:               entry.Type,
		ProductID:          entry.ProductID,
		ProductVariationID: entry.ProductVariationID,
		Adjustment:         entry.Adjustment,
		OrderID:            entry.OrderID,
		UserID:             entry.UserID,
	}

	event, err := pkgkafka.NewEvent(TopicInventoryAdjusted, entry.ID, AggregateTypeInventory, SourcePOSService, data)
	if err != nil {
		return fmt.Errorf("create inventory.adjusted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicInventoryAdjusted, event); err != nil {
		return fmt.Errorf("publish inventory.adjusted event: %w", err)
	}

	return nil
}
