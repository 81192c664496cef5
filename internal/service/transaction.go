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

// CreateTransactionInput holds the parameters for recording a payment
// transaction.
type CreateTransactionInput struct {
	PaymentMethod string
	Amount        decimal.Decimal
}

// TransactionService implements the business logic for payment transaction
// records. It records what happened at the till; it does not execute
// payments or reconcile amounts against the order total.
type TransactionService struct {
	orders       repository.OrderRepository
	transactions repository.TransactionRepository
	producer     *event.Producer
	logger       *slog.Logger
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(orders repository.OrderRepository, transactions repository.TransactionRepository, producer *event.Producer, logger *slog.Logger) *TransactionService {
	return &TransactionService{
		orders:       orders,
		transactions: transactions,
		producer:     producer,
		logger:       logger,
	}
}

// CreateTransaction records a pending transaction against an order.
func (s *TransactionService) CreateTransaction(ctx context.Context, actor auth.Actor, orderID string, input CreateTransactionInput) (*domain.Transaction, error) {
	if !domain.IsValidPaymentMethod(input.PaymentMethod) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid payment method %q, must be one of: %s", input.PaymentMethod, strings.Join(domain.ValidPaymentMethods(), ", ")))
	}
	if !input.Amount.IsPositive() {
		return nil, apperrors.InvalidInput("Amount must be greater than zero")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	if !actor.CanAccess(order.MerchantID) {
		return nil, apperrors.Forbidden("merchant scope does not match order")
	}
	if order.Status == domain.OrderStatusCancelled || order.Status == domain.OrderStatusRefunded {
		return nil, apperrors.InvalidState("Order does not accept payments")
	}

	now := time.Now().UTC()
	tx := &domain.Transaction{
		ID:            uuid.New().String(),
		OrderID:       orderID,
		Status:        domain.TransactionStatusPending,
		PaymentMethod: input.PaymentMethod,
		Amount:        input.Amount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	if err := s.producer.PublishTransactionRecorded(ctx, tx); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish transaction.recorded event",
			slog.String("transaction_id", tx.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "transaction recorded",
		slog.String("transaction_id", tx.ID),
		slog.String("order_id", orderID),
		slog.String("payment_method", tx.PaymentMethod),
		slog.String("amount", tx.Amount.String()),
	)

	return tx, nil
}

// GetTransaction retrieves a transaction by its ID. Another merchant's
// transaction is not found.
func (s *TransactionService) GetTransaction(ctx context.Context, actor auth.Actor, id string) (*domain.Transaction, error) {
	tx, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}

	order, err := s.orders.GetByID(ctx, tx.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get order for transaction: %w", err)
	}
	if !actor.CanAccess(order.MerchantID) {
		return nil, apperrors.NotFound("transaction", id)
	}

	return tx, nil
}

// ListTransactions returns an order's transactions matching the filter.
func (s *TransactionService) ListTransactions(ctx context.Context, actor auth.Actor, orderID string, filter repository.TransactionFilter) ([]domain.Transaction, int, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, 0, fmt.Errorf("get order by id: %w", err)
	}
	if !actor.CanAccess(order.MerchantID) {
		return nil, 0, apperrors.NotFound("order", orderID)
	}

	if filter.Status != nil && !domain.IsValidTransactionStatus(*filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status %q, must be one of: %s", *filter.Status, strings.Join(domain.ValidTransactionStatuses(), ", ")))
	}
	if filter.PaymentMethod != nil && !domain.IsValidPaymentMethod(*filter.PaymentMethod) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid payment method %q", *filter.PaymentMethod))
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

	txs, total, err := s.transactions.ListByOrder(ctx, orderID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}

	return txs, total, nil
}

// UpdateTransactionStatus moves a transaction through the settlement
// machine: pending → completed/declined/abandoned, completed →
// refunded/disputed.
func (s *TransactionService) UpdateTransactionStatus(ctx context.Context, actor auth.Actor, id, newStatus string) (*domain.Transaction, error) {
	if !domain.IsValidTransactionStatus(newStatus) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q, must be one of: %s", newStatus, strings.Join(domain.ValidTransactionStatuses(), ", ")))
	}

	tx, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}

	order, err := s.orders.GetByID(ctx, tx.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get order for transaction: %w", err)
	}
	if !actor.CanAccess(order.MerchantID) {
		return nil, apperrors.NotFound("transaction", id)
	}

	if !tx.CanTransitionTo(newStatus) {
		return nil, apperrors.InvalidState(fmt.Sprintf("cannot transition transaction from %q to %q", tx.Status, newStatus))
	}

	oldStatus := tx.Status

	if err := s.transactions.UpdateStatus(ctx, id, oldStatus, newStatus); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.Conflict("transaction was updated concurrently")
		}
		return nil, fmt.Errorf("update transaction status: %w", err)
	}

	tx.Status = newStatus

	if err := s.producer.PublishTransactionStatusChanged(ctx, tx, oldStatus); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish transaction.status_changed event",
			slog.String("transaction_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "transaction status updated",
		slog.String("transaction_id", id),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	return tx, nil
}
