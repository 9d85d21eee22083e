// Package units implements the unit registry, dimension vectors, compound
// unit parsing, and quantity arithmetic.
package units

import (
	"fmt"

	"github.com/ldcrun/ldc/internal/decimal"
)

// Dim is a dimension vector: dimension name -> exponent. A Dim with no
// entries is the dimensionless base unit.
type Dim map[string]int

func (d Dim) clone() Dim {
	out := make(Dim, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Equal reports whether two dimension vectors are the same, ignoring
// zero-exponent entries (which Simplify removes anyway).
func (d Dim) Equal(o Dim) bool {
	if len(d) != len(o) {
		return false
	}
	for k, v := range d {
		if o[k] != v {
			return false
		}
	}
	return true
}

// Simplify returns a copy of d with every zero-exponent key removed:
// after any quantity op, dim keys with exponent 0 are dropped.
func (d Dim) Simplify() Dim {
	out := make(Dim, len(d))
	for k, v := range d {
		if v != 0 {
			out[k] = v
		}
	}
	return out
}

func addDim(a, b Dim) Dim {
	out := a.clone()
	for k, v := range b {
		out[k] += v
	}
	return out.Simplify()
}

func subDim(a, b Dim) Dim {
	out := a.clone()
	for k, v := range b {
		out[k] -= v
	}
	return out.Simplify()
}

// ConvFunc converts a magnitude to or from a unit's base representation.
type ConvFunc func(decimal.Decimal) decimal.Decimal

// Unit is an atomic or compound unit of measure.
type Unit struct {
	Name     string
	Dim      Dim
	ToBase   ConvFunc
	FromBase ConvFunc
}

// Base is the dimensionless identity unit ("1").
var Base = Unit{
	Name:     "1",
	Dim:      Dim{},
	ToBase:   identity,
	FromBase: identity,
}

func identity(x decimal.Decimal) decimal.Decimal { return x }

func linear(factor decimal.Decimal) (ConvFunc, ConvFunc) {
	return func(x decimal.Decimal) decimal.Decimal { return x.Mul(factor) },
		func(x decimal.Decimal) (r decimal.Decimal) {
			r, _ = x.Div(factor)
			return r
		}
}

// Registry resolves unit names (atomic or compound) to Units. The host
// supplies a Registry through the evaluation context.
type Registry interface {
	Get(name string) (Unit, bool)
	List() []string
}

// ErrUnitMismatch is returned by dimension-checked quantity operations.
type ErrUnitMismatch struct {
	A, B Dim
}

func (e ErrUnitMismatch) Error() string {
	return fmt.Sprintf("incompatible dimensions: %v vs %v", Dim(e.A).Simplify(), Dim(e.B).Simplify())
}

// Quantity pairs a magnitude with a unit.
type Quantity struct {
	Magnitude decimal.Decimal
	Unit      Unit
}

func (q Quantity) base() decimal.Decimal { return q.Unit.ToBase(q.Magnitude) }

// Add requires equal dimension vectors.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	if !q.Unit.Dim.Simplify().Equal(o.Unit.Dim.Simplify()) {
		return Quantity{}, ErrUnitMismatch{A: q.Unit.Dim, B: o.Unit.Dim}
	}
	sum := q.base().Add(o.base())
	return Quantity{Magnitude: q.Unit.FromBase(sum), Unit: q.Unit}, nil
}

func (q Quantity) Sub(o Quantity) (Quantity, error) {
	if !q.Unit.Dim.Simplify().Equal(o.Unit.Dim.Simplify()) {
		return Quantity{}, ErrUnitMismatch{A: q.Unit.Dim, B: o.Unit.Dim}
	}
	diff := q.base().Sub(o.base())
	return Quantity{Magnitude: q.Unit.FromBase(diff), Unit: q.Unit}, nil
}

// Mul multiplies two quantities, adding their dimension vectors.
func (q Quantity) Mul(o Quantity) Quantity {
	mag := q.base().Mul(o.base())
	dim := addDim(q.Unit.Dim, o.Unit.Dim)
	u := compoundBaseUnit(dim)
	return Quantity{Magnitude: u.FromBase(mag), Unit: u}
}

// Div divides two quantities, subtracting their dimension vectors.
func (q Quantity) Div(o Quantity) (Quantity, error) {
	if o.base().IsZero() {
		return Quantity{}, decimal.ErrDivByZero{}
	}
	mag, err := q.base().Div(o.base())
	if err != nil {
		return Quantity{}, err
	}
	dim := subDim(q.Unit.Dim, o.Unit.Dim)
	u := compoundBaseUnit(dim)
	return Quantity{Magnitude: u.FromBase(mag), Unit: u}, nil
}

// Scale multiplies the magnitude by a plain scalar, preserving the unit.
func (q Quantity) Scale(s decimal.Decimal) Quantity {
	return Quantity{Magnitude: q.Magnitude.Mul(s), Unit: q.Unit}
}

// compoundBaseUnit synthesizes a unit for a dimension vector produced by
// quantity multiplication/division. Its name is the canonical dimension
// string (e.g. "length*time^-1"); its conversion functions are the identity
// since the magnitude is already tracked in base units after Mul/Div.
func compoundBaseUnit(dim Dim) Unit {
	return Unit{
		Name:     dimString(dim.Simplify()),
		Dim:      dim.Simplify(),
		ToBase:   identity,
		FromBase: identity,
	}
}
