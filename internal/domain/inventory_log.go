package domain

import "time"

// Inventory log entry type constants.
const (
	InventoryTypeProduct          = "product"
	InventoryTypeProductVariation = "product_variation"
)

// InventoryLogEntry is one append-only audit record of a stock quantity
// change: a negative adjustment per item when an order closes, or an
// arbitrary signed adjustment for a direct stock correction (no order ref).
// Entries are never updated or deleted.
type InventoryLogEntry struct {
	ID                 string    `json:"id"`
	MerchantID         string    `json:"merchant_id"`
	Type               string    `json:"type"`
	ProductID          string    `json:"product_id,omitempty"`
	ProductVariationID string    `json:"product_variation_id,omitempty"`
	Adjustment         int       `json:"adjustment"`
	OrderID            string    `json:"order_id,omitempty"`
	UserID             string    `json:"user_id"`
	CreatedAt          time.Time `json:"created_at"`
}

// ValidInventoryTypes returns all valid inventory unit kinds.
func ValidInventoryTypes() []string {
	return []string{InventoryTypeProduct, InventoryTypeProductVariation}
}

// IsValidInventoryType checks if a unit kind string is valid.
func IsValidInventoryType(t string) bool {
	for _, v := range ValidInventoryTypes() {
		if v == t {
			return true
		}
	}
	return false
}
