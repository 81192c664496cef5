package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status constants.
const (
	OrderStatusOpen      = "open"
	OrderStatusClosed    = "closed"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
)

// Order represents a single checkout session owned by a merchant.
type Order struct {
	ID         string           `json:"id"`
	MerchantID string           `json:"merchant_id"`
	Status     string           `json:"status"`
	Tip        *decimal.Decimal `json:"tip,omitempty"`
	Items      []OrderItem      `json:"items"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// ValidStatuses returns all valid order statuses.
func ValidStatuses() []string {
	return []string{
		OrderStatusOpen,
		OrderStatusClosed,
		OrderStatusCancelled,
		OrderStatusRefunded,
	}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// AllowedTransitions defines which status transitions are valid. There is no
// path back to open: closed and cancelled orders are never resurrected.
func AllowedTransitions() map[string][]string {
	return map[string][]string{
		OrderStatusOpen:      {OrderStatusClosed, OrderStatusCancelled},
		OrderStatusClosed:    {OrderStatusRefunded},
		OrderStatusCancelled: {},
		OrderStatusRefunded:  {},
	}
}

// CanTransitionTo checks if the order can transition to the target status.
func (o *Order) CanTransitionTo(target string) bool {
	allowed, ok := AllowedTransitions()[o.Status]
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

// IsOpen reports whether the order accepts item, charge, and tip mutations.
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusOpen
}
