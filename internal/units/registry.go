package units

import (
	"github.com/ldcrun/ldc/internal/decimal"
)

type registry struct {
	atoms map[string]Unit
}

// DefaultRegistry builds the registry that $convert and quantity
// literals draw from: length, mass, time, volume, temperature, and a
// handful of currency codes.
//
// Currencies are each given their own single-entry dimension (e.g. USD's
// Dim is {"USD": 1}), not a shared "currency" dimension. That is a
// deliberate default: without a live exchange-rate feed the registry
// cannot know a correct USD<->EUR factor, so treating different
// currencies as dimensionally incompatible is the conservative choice —
// "100 USD" + "50 EUR" raises LDC_UNIT_MISMATCH unless a host replaces
// the registry with one that defines real exchange rates.
func DefaultRegistry() Registry {
	r := &registry{atoms: map[string]Unit{}}

	r.addLinear("m", "length", decimal.NewFromInt(1))
	r.addLinear("km", "length", mustDec("1000"))
	r.addLinear("cm", "length", mustDec("0.01"))
	r.addLinear("mm", "length", mustDec("0.001"))
	r.addLinear("in", "length", mustDec("0.0254"))
	r.addLinear("ft", "length", mustDec("0.3048"))
	r.addLinear("mi", "length", mustDec("1609.344"))

	r.addLinear("g", "mass", decimal.NewFromInt(1))
	r.addLinear("kg", "mass", mustDec("1000"))
	r.addLinear("mg", "mass", mustDec("0.001"))
	r.addLinear("lb", "mass", mustDec("453.59237"))
	r.addLinear("oz", "mass", mustDec("28.349523125"))

	r.addLinear("s", "time", decimal.NewFromInt(1))
	r.addLinear("ms", "time", mustDec("0.001"))
	r.addLinear("min", "time", mustDec("60"))
	r.addLinear("h", "time", mustDec("3600"))
	r.addLinear("d", "time", mustDec("86400"))

	r.addLinear("L", "volume", decimal.NewFromInt(1))
	r.addLinear("mL", "volume", mustDec("0.001"))
	r.addLinear("gal", "volume", mustDec("3.785411784"))
	r.addLinear("qt", "volume", mustDec("0.946352946"))
	r.addLinear("pt", "volume", mustDec("0.473176473"))
	r.addLinear("cup", "volume", mustDec("0.2365882365"))
	r.addLinear("floz", "volume", mustDec("0.0295735295625"))

	// Temperature is affine: base unit is Kelvin.
	r.atoms["K"] = Unit{Name: "K", Dim: Dim{"temperature": 1}, ToBase: identity, FromBase: identity}
	r.atoms["C"] = Unit{
		Name: "C", Dim: Dim{"temperature": 1},
		ToBase:   func(x decimal.Decimal) decimal.Decimal { return x.Add(mustDec("273.15")) },
		FromBase: func(x decimal.Decimal) decimal.Decimal { return x.Sub(mustDec("273.15")) },
	}
	r.atoms["F"] = Unit{
		Name: "F", Dim: Dim{"temperature": 1},
		ToBase: func(x decimal.Decimal) decimal.Decimal {
			celsius := x.Sub(mustDec("32")).Mul(mustDec("5"))
			celsius, _ = celsius.Div(mustDec("9"))
			return celsius.Add(mustDec("273.15"))
		},
		FromBase: func(x decimal.Decimal) decimal.Decimal {
			celsius := x.Sub(mustDec("273.15"))
			f := celsius.Mul(mustDec("9"))
			f, _ = f.Div(mustDec("5"))
			return f.Add(mustDec("32"))
		},
	}

	for _, code := range []string{"USD", "EUR", "GBP", "JPY"} {
		r.addLinear(code, code, decimal.NewFromInt(1))
	}

	return r
}

func (r *registry) addLinear(name, dimName string, factor decimal.Decimal) {
	toBase, fromBase := linear(factor)
	r.atoms[name] = Unit{Name: name, Dim: Dim{dimName: 1}, ToBase: toBase, FromBase: fromBase}
}

func (r *registry) Get(name string) (Unit, bool) {
	u, ok := r.atoms[name]
	return u, ok
}

func (r *registry) List() []string {
	out := make([]string, 0, len(r.atoms))
	for k := range r.atoms {
		out = append(out, k)
	}
	return out
}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsCurrency reports whether name is a registered single-currency atomic
// unit (used by the triple serializer's "<5dp> <code>" shortcut rule).
func IsCurrency(u Unit) bool {
	if len(u.Dim) != 1 {
		return false
	}
	for k, v := range u.Dim {
		if v != 1 {
			return false
		}
		switch k {
		case "USD", "EUR", "GBP", "JPY":
			return true
		}
	}
	return false
}

// CurrencyCode returns the single currency dimension name of u, if any.
func CurrencyCode(u Unit) (string, bool) {
	if !IsCurrency(u) {
		return "", false
	}
	for k := range u.Dim {
		return k, true
	}
	return "", false
}
