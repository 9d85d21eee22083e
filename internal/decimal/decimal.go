// Package decimal provides the evaluator's exact base-10 numeric type.
//
// It wraps github.com/shopspring/decimal to pin down the one behavior the
// library doesn't give us for free: half-to-even (banker's) rounding,
// which is the default rounding mode for every decimal operation in the
// expression language.
package decimal

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// divPrecision is the number of fractional digits division computes before
// the result is used; it is intentionally generous (inexact quotients like
// 1/3 never terminate) and callers round explicitly where a fixed scale
// is needed (e.g. currency output at 5 decimal places).
const divPrecision = 34

// Decimal is an arbitrary-precision base-10 number.
type Decimal struct {
	d decimal.Decimal
}

var Zero = Decimal{d: decimal.Zero}

func NewFromString(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{d: d}, nil
}

func NewFromInt(i int64) Decimal {
	return Decimal{d: decimal.NewFromInt(i)}
}

func NewFromFloat(f float64) Decimal {
	return Decimal{d: decimal.NewFromFloat(f)}
}

func (a Decimal) IsZero() bool { return a.d.IsZero() }

func (a Decimal) Sign() int { return a.d.Sign() }

func (a Decimal) Add(b Decimal) Decimal { return Decimal{d: a.d.Add(b.d)} }

func (a Decimal) Sub(b Decimal) Decimal { return Decimal{d: a.d.Sub(b.d)} }

func (a Decimal) Mul(b Decimal) Decimal { return Decimal{d: a.d.Mul(b.d)} }

func (a Decimal) Neg() Decimal { return Decimal{d: a.d.Neg()} }

func (a Decimal) Abs() Decimal { return Decimal{d: a.d.Abs()} }

// ErrDivByZero is returned by Div; callers surface it as diag.DivByZero.
type ErrDivByZero struct{}

func (ErrDivByZero) Error() string { return "division by zero" }

func (a Decimal) Div(b Decimal) (Decimal, error) {
	if b.d.IsZero() {
		return Decimal{}, ErrDivByZero{}
	}
	return Decimal{d: a.d.DivRound(b.d, divPrecision)}, nil
}

// Pow raises a to the power of b. A non-negative integer exponent is
// applied exactly; any other exponent (negative, or fractional as in
// $sqrt's 0.5) goes through the library's general Pow.
func (a Decimal) Pow(b Decimal) Decimal {
	exp := b.d.Truncate(0).BigInt()
	if b.d.IsInteger() && exp.Sign() >= 0 && exp.IsInt64() {
		return Decimal{d: a.d.Pow(decimal.NewFromBigInt(exp, 0))}
	}
	return Decimal{d: a.d.Pow(b.d)}
}

func (a Decimal) Cmp(b Decimal) int { return a.d.Cmp(b.d) }

func (a Decimal) Equal(b Decimal) bool { return a.d.Equal(b.d) }

// Round applies half-to-even rounding at the given number of fractional
// digits. Negative places round to the left of the decimal point.
func (a Decimal) Round(places int32) Decimal {
	return Decimal{d: bankersRound(a.d, places)}
}

// Truncate drops digits beyond places without rounding (used for the
// 5-decimal-place currency truncation rule).
func (a Decimal) Truncate(places int32) Decimal {
	return Decimal{d: a.d.Truncate(places)}
}

func (a Decimal) Float64() float64 {
	f, _ := a.d.Float64()
	return f
}

func (a Decimal) String() string { return a.d.String() }

// StringFixed formats with exactly `places` fractional digits.
func (a Decimal) StringFixed(places int32) string { return a.d.StringFixed(places) }

func bankersRound(d decimal.Decimal, places int32) decimal.Decimal {
	r := d.Rat()
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt(scale))

	num := scaled.Num()
	den := scaled.Denom()
	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))

	if rem.Sign() != 0 {
		twiceRem := new(big.Int).Abs(new(big.Int).Mul(rem, big.NewInt(2)))
		absDen := new(big.Int).Abs(den)
		switch twiceRem.Cmp(absDen) {
		case 1:
			q = bump(q, num.Sign())
		case 0:
			if q.Bit(0) == 1 {
				q = bump(q, num.Sign())
			}
		}
	}

	return decimal.NewFromBigInt(q, -places)
}

func bump(q *big.Int, sign int) *big.Int {
	if sign < 0 {
		return new(big.Int).Sub(q, big.NewInt(1))
	}
	return new(big.Int).Add(q, big.NewInt(1))
}

// IsFiniteFloat reports whether f can be represented as a Decimal; NaN and
// ±Inf are rejected since non-finite floats serialize to null.
func IsFiniteFloat(f float64) bool {
	return f == f && f >= -maxFloat && f <= maxFloat
}

const maxFloat = math.MaxFloat64
