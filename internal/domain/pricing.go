package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricedItem pairs an order line with the unit price resolved at quote time
// and any item-scoped charges attached to the line. The unit price is never
// cached on the item itself.
type PricedItem struct {
	Item      OrderItem
	UnitPrice decimal.Decimal
	Charges   []Charge
}

// LineTotal returns unit price × quantity.
func (p PricedItem) LineTotal() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Item.Quantity)))
}

// Quote is the priced projection of an order snapshot. All amounts carry two
// decimal places.
type Quote struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	ChargeTotal   decimal.Decimal `json:"charge_total"`
	Tip           decimal.Decimal `json:"tip"`
	Total         decimal.Decimal `json:"total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
}

// ComputeQuote runs the pricing pipeline over a fixed order snapshot. The
// composition order is deliberate and load-bearing:
//
//  1. subtotal = Σ unit price × quantity
//  2. subtract every active discount, cumulatively, floored at zero
//  3. add every active charge: order-scoped percent charges compute off the
//     discounted base, item-scoped ones off their own line total, fixed
//     charges add their literal value
//  4. add the tip, if set
//  5. round half-up to two decimal places
//
// The function is a pure projection: it never mutates its inputs and repeated
// calls over the same snapshot return the identical quote.
func ComputeQuote(items []PricedItem, discounts []Discount, charges []Charge, tip *decimal.Decimal, at time.Time) Quote {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}

	discountTotal := decimal.Zero
	for _, d := range discounts {
		if !d.IsActiveAt(at) {
			continue
		}
		discountTotal = discountTotal.Add(d.Rate.ApplyTo(subtotal))
	}

	discounted := subtotal.Sub(discountTotal)
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}

	chargeTotal := decimal.Zero
	for _, c := range charges {
		if c.Type == ChargeTypeDiscount || !c.IsActiveAt(at) {
			continue
		}
		if c.Scope == ChargeScopeOrder {
			chargeTotal = chargeTotal.Add(c.Rate.ApplyTo(discounted))
		}
	}
	for _, it := range items {
		lineTotal := it.LineTotal()
		for _, c := range it.Charges {
			if c.Type == ChargeTypeDiscount || !c.IsActiveAt(at) {
				continue
			}
			chargeTotal = chargeTotal.Add(c.Rate.ApplyTo(lineTotal))
		}
	}

	tipAmount := decimal.Zero
	if tip != nil {
		tipAmount = *tip
	}

	total := discounted.Add(chargeTotal).Add(tipAmount)

	return Quote{
		Subtotal:      subtotal.Round(2),
		DiscountTotal: discountTotal.Round(2),
		ChargeTotal:   chargeTotal.Round(2),
		Tip:           tipAmount.Round(2),
		Total:         total.Round(2),
		AmountPaid:    decimal.Zero.Round(2),
	}
}
