package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Charge type constants.
const (
	ChargeTypeTax           = "tax"
	ChargeTypeServiceCharge = "service_charge"
	ChargeTypeTip           = "tip"
	ChargeTypeDiscount      = "discount"
)

// Charge scope constants.
const (
	ChargeScopeOrder = "order"
	ChargeScopeItem  = "item"
)

// Rate validation errors.
var (
	ErrRatePercentRange = errors.New("percent must be greater than 0 and at most 100")
	ErrRateAmountRange  = errors.New("amount must be greater than 0")
	ErrRateExclusivity  = errors.New("exactly one of percent or amount must be set")
)

type rateKind int

const (
	ratePercent rateKind = iota + 1
	rateFixed
)

// Rate is a percent-or-fixed monetary modifier. The two forms are mutually
// exclusive and the invalid states (both set, neither set) are unrepresentable:
// values are built only through PercentRate and FixedRate.
type Rate struct {
	kind  rateKind
	value decimal.Decimal
}

// PercentRate builds a percentage rate. Percent must be in (0, 100].
func PercentRate(percent decimal.Decimal) (Rate, error) {
	if percent.LessThanOrEqual(decimal.Zero) || percent.GreaterThan(decimal.NewFromInt(100)) {
		return Rate{}, ErrRatePercentRange
	}
	return Rate{kind: ratePercent, value: percent}, nil
}

// FixedRate builds a fixed-amount rate. Amount must be greater than zero.
func FixedRate(amount decimal.Decimal) (Rate, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Rate{}, ErrRateAmountRange
	}
	return Rate{kind: rateFixed, value: amount}, nil
}

// IsZero reports whether the rate was never set.
func (r Rate) IsZero() bool {
	return r.kind == 0
}

// IsPercent reports whether the rate is percentage-based.
func (r Rate) IsPercent() bool {
	return r.kind == ratePercent
}

// Percent returns the percentage value; zero for fixed rates.
func (r Rate) Percent() decimal.Decimal {
	if r.kind != ratePercent {
		return decimal.Zero
	}
	return r.value
}

// Amount returns the fixed amount; zero for percent rates.
func (r Rate) Amount() decimal.Decimal {
	if r.kind != rateFixed {
		return decimal.Zero
	}
	return r.value
}

// ApplyTo returns the monetary portion this rate yields against the given
// base: base×percent/100 for percent rates, the literal amount for fixed.
func (r Rate) ApplyTo(base decimal.Decimal) decimal.Decimal {
	switch r.kind {
	case ratePercent:
		return base.Mul(r.value).Div(decimal.NewFromInt(100))
	case rateFixed:
		return r.value
	default:
		return decimal.Zero
	}
}

// String implements fmt.Stringer.
func (r Rate) String() string {
	switch r.kind {
	case ratePercent:
		return r.value.String() + "%"
	case rateFixed:
		return r.value.String()
	default:
		return "unset"
	}
}

type rateJSON struct {
	Percent *decimal.Decimal `json:"percent,omitempty"`
	Amount  *decimal.Decimal `json:"amount,omitempty"`
}

// MarshalJSON encodes the rate as {"percent": p} or {"amount": a}.
func (r Rate) MarshalJSON() ([]byte, error) {
	out := rateJSON{}
	switch r.kind {
	case ratePercent:
		out.Percent = &r.value
	case rateFixed:
		out.Amount = &r.value
	default:
		return nil, ErrRateExclusivity
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a rate, enforcing percent-XOR-amount.
func (r *Rate) UnmarshalJSON(data []byte) error {
	var in rateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decode rate: %w", err)
	}
	parsed, err := NewRate(in.Percent, in.Amount)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// NewRate builds a rate from a nullable percent/amount pair, enforcing the
// exclusivity and range invariants. Exactly one of the two must be non-nil.
func NewRate(percent, amount *decimal.Decimal) (Rate, error) {
	switch {
	case percent != nil && amount != nil:
		return Rate{}, ErrRateExclusivity
	case percent != nil:
		return PercentRate(*percent)
	case amount != nil:
		return FixedRate(*amount)
	default:
		return Rate{}, ErrRateExclusivity
	}
}

// Charge is a percent-or-fixed modifier applied to an order or to specific
// items: a tax, service charge, tip, or discount definition owned by a
// merchant. A charge may be attached to many orders; the order never owns it.
type Charge struct {
	ID         string     `json:"id"`
	MerchantID string     `json:"merchant_id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Rate       Rate       `json:"rate"`
	Scope      string     `json:"scope"`
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ValidChargeTypes returns all valid charge type tags.
func ValidChargeTypes() []string {
	return []string{ChargeTypeTax, ChargeTypeServiceCharge, ChargeTypeTip, ChargeTypeDiscount}
}

// IsValidChargeType checks if a type tag is valid.
func IsValidChargeType(t string) bool {
	for _, v := range ValidChargeTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// IsActiveAt reports whether the charge's validity window [valid_from,
// valid_until) covers the given instant. Nil bounds are open-ended.
func (c *Charge) IsActiveAt(at time.Time) bool {
	if c.ValidFrom != nil && at.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && !at.Before(*c.ValidUntil) {
		return false
	}
	return true
}
