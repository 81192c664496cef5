package domain

import "time"

// OrderItem represents one line of an order. Each line references exactly one
// sellable unit: a catalog product (optionally narrowed to a variation) or a
// reservation.
type OrderItem struct {
	ID                 string    `json:"id"`
	OrderID            string    `json:"order_id"`
	ProductID          string    `json:"product_id,omitempty"`
	ProductVariationID string    `json:"product_variation_id,omitempty"`
	ReservationID      string    `json:"reservation_id,omitempty"`
	Quantity           int       `json:"quantity"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsReservation reports whether the line references a reservation rather
// than a catalog product.
func (i *OrderItem) IsReservation() bool {
	return i.ReservationID != ""
}

// UnitType returns the inventory unit kind consumed by this line.
func (i *OrderItem) UnitType() string {
	if i.ProductVariationID != "" {
		return InventoryTypeProductVariation
	}
	return InventoryTypeProduct
}

// UnitID returns the identifier of the inventory unit consumed by this line:
// the variation id when one is attached, the product id otherwise.
func (i *OrderItem) UnitID() string {
	if i.ProductVariationID != "" {
		return i.ProductVariationID
	}
	return i.ProductID
}
