package cart

import "github.com/roach88/solaris/internal/money"

// Policy holds the pricing constants.
type Policy struct {
	FreeShippingThreshold money.Amount
	FlatShippingFee       money.Amount
	TaxRate               money.Amount
}

// DefaultPolicy is the storefront's pricing: free shipping from 100.00,
// otherwise 14.95 flat; 8.25% tax on merchandise only.
func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThreshold: money.MustParse("100.00"),
		FlatShippingFee:       money.MustParse("14.95"),
		TaxRate:               money.MustParse("0.0825"),
	}
}

// CanonicalValue implements canonical.Valuer. Amounts keep every digit.
func (p Policy) CanonicalValue() any {
	return map[string]any{
		"free_shipping_threshold": p.FreeShippingThreshold.Exact(),
		"flat_shipping_fee":       p.FlatShippingFee.Exact(),
		"tax_rate":                p.TaxRate.Exact(),
	}
}

// Totals is the price breakdown of a cart at full precision.
type Totals struct {
	Subtotal money.Amount
	Shipping money.Amount
	Tax      money.Amount
	Total    money.Amount
}

// Totals prices s. Shipping is untaxed; nothing is rounded here.
func (e *Engine) Totals(s State) Totals {
	subtotal := money.Zero()
	for _, it := range s.items {
		subtotal = subtotal.Add(it.LineTotal())
	}

	shipping := money.Zero()
	if !s.IsEmpty() && subtotal.Cmp(e.policy.FreeShippingThreshold) < 0 {
		shipping = e.policy.FlatShippingFee
	}

	tax := subtotal.Mul(e.policy.TaxRate)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// RemainingForFreeShipping is how much more merchandise unlocks free
// shipping, never negative.
func (e *Engine) RemainingForFreeShipping(subtotal money.Amount) money.Amount {
	return money.Max(money.Zero(), e.policy.FreeShippingThreshold.Sub(subtotal))
}

// FreeShippingProgress is subtotal as a whole percentage of the
// threshold, capped at 100.
func (e *Engine) FreeShippingProgress(subtotal money.Amount) int {
	if e.policy.FreeShippingThreshold.Sign() <= 0 {
		return 100
	}
	pct := subtotal.Quo(e.policy.FreeShippingThreshold).Mul(money.FromInt(100)).Int64()
	return int(min(pct, 100))
}
