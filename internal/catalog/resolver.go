package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Unit is a sellable unit resolved from the catalog: a product, a product
// variation, or a reservation. Price and owning merchant are resolved at
// evaluation time, never cached on order lines.
type Unit struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id,omitempty"`
	MerchantID string          `json:"merchant_id"`
	Price      decimal.Decimal `json:"price"`
}

// Resolver resolves catalog references to priced units. Implementations talk
// to the catalog service; tests substitute their own.
type Resolver interface {
	ResolveProduct(ctx context.Context, id string) (*Unit, error)
	// ResolveVariation returns the variation's unit; ProductID is set to the
	// variation's parent product.
	ResolveVariation(ctx context.Context, id string) (*Unit, error)
	ResolveReservation(ctx context.Context, id string) (*Unit, error)
}
