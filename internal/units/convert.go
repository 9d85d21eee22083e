package units

import (
	"fmt"

	"github.com/ldcrun/ldc/internal/decimal"
)

// ErrUnknownUnit is returned by Convert when either unit name is not
// registered or not parseable as a compound unit.
type ErrUnknownUnit struct{ Name string }

func (e ErrUnknownUnit) Error() string { return fmt.Sprintf("unknown unit %q", e.Name) }

// Convert implements the $convert built-in's conversion table: it
// dispatches purely on the registry's dimension vectors, so it
// automatically covers length/mass/time/volume plus temperature's affine
// rules without a separate lookup table.
func Convert(n decimal.Decimal, from, to string, reg Registry) (decimal.Decimal, error) {
	fu, ok := ParseCompound(from, reg)
	if !ok {
		return decimal.Decimal{}, ErrUnknownUnit{Name: from}
	}
	tu, ok := ParseCompound(to, reg)
	if !ok {
		return decimal.Decimal{}, ErrUnknownUnit{Name: to}
	}
	if !fu.Dim.Simplify().Equal(tu.Dim.Simplify()) {
		return decimal.Decimal{}, ErrUnitMismatch{A: fu.Dim, B: tu.Dim}
	}
	return tu.FromBase(fu.ToBase(n)), nil
}
