package builtins

import (
	"github.com/ldcrun/ldc/internal/diag"
	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/units"
)

// registerConvert wires the closed registry's one conversion built-in:
// $convert(n, from, to) against a built-in conversion table spanning
// length, mass, time, volume, and temperature's affine rules. There is
// no $quantity built-in — it is not part of the enumerated set.
func (r *Registry) registerConvert() {
	r.add("$convert", func(args []document.Value, _ *document.Value) (document.Value, error) {
		n, ok := arg(args, 0).AsDecimal()
		from, ok2 := str(arg(args, 1))
		to, ok3 := str(arg(args, 2))
		if !ok || !ok2 || !ok3 {
			return document.Value{}, diag.New(diag.ExprErr, "", "$convert expects (number, from unit string, to unit string)")
		}
		out, err := units.Convert(n, from, to, r.units)
		if err != nil {
			return document.Value{}, diag.New(diag.UnitMismatch, "", "%v", err)
		}
		toUnit, found := units.ParseCompound(to, r.units)
		if !found {
			return document.Value{}, diag.New(diag.UnitMismatch, "", "unknown unit %q", to)
		}
		return document.Quantity(units.Quantity{Magnitude: out, Unit: toUnit}), nil
	})
}
