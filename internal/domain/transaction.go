package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction status constants.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusDeclined  = "declined"
	TransactionStatusRefunded  = "refunded"
	TransactionStatusDisputed  = "disputed"
	TransactionStatusAbandoned = "abandoned"
)

// Payment method constants.
const (
	PaymentMethodCash        = "cash"
	PaymentMethodPaymentCard = "payment_card"
	PaymentMethodGiftCard    = "gift_card"
)

// Transaction records one payment attempt against an order.
type Transaction struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ValidTransactionStatuses returns all valid transaction statuses.
func ValidTransactionStatuses() []string {
	return []string{
		TransactionStatusPending,
		TransactionStatusCompleted,
		TransactionStatusDeclined,
		TransactionStatusRefunded,
		TransactionStatusDisputed,
		TransactionStatusAbandoned,
	}
}

// IsValidTransactionStatus checks if a status string is valid.
func IsValidTransactionStatus(status string) bool {
	for _, s := range ValidTransactionStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// ValidPaymentMethods returns all valid payment methods.
func ValidPaymentMethods() []string {
	return []string{PaymentMethodCash, PaymentMethodPaymentCard, PaymentMethodGiftCard}
}

// IsValidPaymentMethod checks if a payment method string is valid.
func IsValidPaymentMethod(method string) bool {
	for _, m := range ValidPaymentMethods() {
		if m == method {
			return true
		}
	}
	return false
}

// AllowedTransactionTransitions defines the settlement state machine. A
// transaction never returns to pending; declined, refunded, disputed, and
// abandoned are terminal.
func AllowedTransactionTransitions() map[string][]string {
	return map[string][]string{
		TransactionStatusPending:   {TransactionStatusCompleted, TransactionStatusDeclined, TransactionStatusAbandoned},
		TransactionStatusCompleted: {TransactionStatusRefunded, TransactionStatusDisputed},
		TransactionStatusDeclined:  {},
		TransactionStatusRefunded:  {},
		TransactionStatusDisputed:  {},
		TransactionStatusAbandoned: {},
	}
}

// CanTransitionTo checks if the transaction can transition to the target status.
func (t *Transaction) CanTransitionTo(target string) bool {
	allowed, ok := AllowedTransactionTransitions()[t.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}
