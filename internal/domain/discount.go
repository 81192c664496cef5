package domain

import "time"

// Discount is a merchant-owned price reduction sharing the charge shape. It
// is soft-deleted: IsActive=false keeps the row for financial history while
// excluding it from every pricing evaluation.
type Discount struct {
	ID         string     `json:"id"`
	MerchantID string     `json:"merchant_id"`
	Name       string     `json:"name"`
	Rate       Rate       `json:"rate"`
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsActiveAt reports whether the discount participates in pricing at the
// given instant: the soft-delete flag is set and the validity window covers it.
func (d *Discount) IsActiveAt(at time.Time) bool {
	if !d.IsActive {
		return false
	}
	if d.ValidFrom != nil && at.Before(*d.ValidFrom) {
		return false
	}
	if d.ValidUntil != nil && !at.Before(*d.ValidUntil) {
		return false
	}
	return true
}
