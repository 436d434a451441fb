// Package money provides exact decimal currency amounts.
//
// Amounts accumulate in full precision; rounding to cents happens only when
// a figure is rendered (String, Round). This keeps sums of line totals and
// tax free of compounding rounding error.
package money

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Cents is the exponent amounts are quantized to for presentation.
const Cents int32 = -2

// arith is the shared decimal context. Precision 34 matches decimal128,
// far beyond any cart this engine will see.
var arith = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(34)
	c.Rounding = apd.RoundHalfUp
	return c
}()

// Amount is an immutable decimal value. The zero value is 0.
type Amount struct {
	d *apd.Decimal
}

// Zero returns the zero amount.
func Zero() Amount {
	return Amount{}
}

// Parse reads a decimal string such as "85.00" or "0.0825".
func Parse(s string) (Amount, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.Form != apd.Finite {
		return Amount{}, fmt.Errorf("parse amount %q: not a finite number", s)
	}
	return Amount{d: d}, nil
}

// MustParse is Parse for constants. Panics on malformed input.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromInt returns n as an amount.
func FromInt(n int64) Amount {
	return Amount{d: apd.New(n, 0)}
}

func (a Amount) dec() *apd.Decimal {
	if a.d == nil {
		return apd.New(0, 0)
	}
	return a.d
}

type binaryOp func(d, x, y *apd.Decimal) (apd.Condition, error)

func (a Amount) apply(op binaryOp, b Amount) Amount {
	res := new(apd.Decimal)
	if _, err := op(res, a.dec(), b.dec()); err != nil {
		// Only reachable on division by zero or overflow of a 34-digit
		// context, neither of which a valid cart can produce.
		panic(fmt.Sprintf("money: %v", err))
	}
	return Amount{d: res}
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount { return a.apply(arith.Add, b) }

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount { return a.apply(arith.Sub, b) }

// Mul returns a × b.
func (a Amount) Mul(b Amount) Amount { return a.apply(arith.Mul, b) }

// MulInt returns a × n.
func (a Amount) MulInt(n int) Amount { return a.Mul(FromInt(int64(n))) }

// Quo returns a ÷ b. Panics when b is zero.
func (a Amount) Quo(b Amount) Amount { return a.apply(arith.Quo, b) }

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.dec().Cmp(b.dec())
}

// Sign returns -1, 0 or +1.
func (a Amount) Sign() int {
	return a.dec().Sign()
}

// IsZero reports whether a == 0.
func (a Amount) IsZero() bool {
	return a.dec().IsZero()
}

// RoundTo quantizes a to the given exponent using half-up rounding.
// RoundTo(0) rounds to a whole number, RoundTo(Cents) to two decimals.
func (a Amount) RoundTo(exp int32) Amount {
	res := new(apd.Decimal)
	if _, err := arith.Quantize(res, a.dec(), exp); err != nil {
		panic(fmt.Sprintf("money: quantize: %v", err))
	}
	return Amount{d: res}
}

// Round quantizes a to cents.
func (a Amount) Round() Amount {
	return a.RoundTo(Cents)
}

// Int64 rounds a half-up to a whole number and returns it.
func (a Amount) Int64() int64 {
	n, err := a.RoundTo(0).d.Int64()
	if err != nil {
		panic(fmt.Sprintf("money: %v", err))
	}
	return n
}

// String renders a rounded to two decimals, e.g. "15.26".
func (a Amount) String() string {
	return a.Round().d.Text('f')
}

// Exact renders a with every digit it carries, e.g. "15.2625".
func (a Amount) Exact() string {
	return a.dec().Text('f')
}

// Max returns the larger of a and b.
func Max(a, b Amount) Amount {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
