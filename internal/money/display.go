package money

import (
	"strings"

	"golang.org/x/text/currency"
)

// Rate is a fixed display multiplier from USD into another currency.
// Rates are presentation-only; nothing converted with them flows back into
// cart state or totals.
type Rate struct {
	Unit       currency.Unit
	Symbol     string
	Multiplier Amount
}

// Base is the settlement currency every catalog price is expressed in.
var Base = Rate{
	Unit:       currency.MustParseISO("USD"),
	Symbol:     "$",
	Multiplier: MustParse("1"),
}

// DisplayRates are the auxiliary currencies shown beside USD prices.
var DisplayRates = []Rate{
	{Unit: currency.MustParseISO("MXN"), Symbol: "$", Multiplier: MustParse("18.00")},
	{Unit: currency.MustParseISO("EUR"), Symbol: "€", Multiplier: MustParse("0.92")},
}

// Converted is one amount rendered in a display currency.
type Converted struct {
	Unit   currency.Unit
	Symbol string
	Amount Amount
}

// Code returns the ISO 4217 code, e.g. "MXN".
func (c Converted) Code() string {
	return c.Unit.String()
}

// String renders "$180.00 MXN".
func (c Converted) String() string {
	return c.Symbol + c.Amount.String() + " " + c.Code()
}

// Convert returns usd expressed in each of DisplayRates, rounded to cents.
func Convert(usd Amount) []Converted {
	out := make([]Converted, 0, len(DisplayRates))
	for _, r := range DisplayRates {
		out = append(out, convert(usd, r))
	}
	return out
}

func convert(usd Amount, r Rate) Converted {
	return Converted{
		Unit:   r.Unit,
		Symbol: r.Symbol,
		Amount: usd.Mul(r.Multiplier).Round(),
	}
}

// PriceLine renders usd followed by its display conversions:
//
//	$10.00 USD • $180.00 MXN • €9.20 EUR
func PriceLine(usd Amount) string {
	parts := []string{convert(usd, Base).String()}
	for _, c := range Convert(usd) {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " • ")
}
