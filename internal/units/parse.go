package units

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ldcrun/ldc/internal/decimal"
)

// ParseCompound parses a compound unit name against the grammar
// `term (('*'|'/') term)*`, `term := name('^' int)?`. Parsing failure
// returns (Unit{}, false) rather than an error; callers treat an
// unparseable unit string as opaque.
//
// Compound units are only composed from the registry's linear (purely
// multiplicative) atoms: length, mass, time, and volume. None of those
// atoms are affine, so the combined to-base factor is just the product
// of each atom's to-base factor raised to its signed exponent; this lets
// the parser synthesize ToBase/FromBase without special-casing affine
// units like temperature, which callers never need to compound.
func ParseCompound(name string, reg Registry) (Unit, bool) {
	if u, ok := reg.Get(name); ok {
		return u, true
	}

	toks, ok := tokenizeCompound(name)
	if !ok || len(toks) == 0 {
		return Unit{}, false
	}

	dim := Dim{}
	factor := decimal.NewFromInt(1)
	one := decimal.NewFromInt(1)

	for _, tok := range toks {
		atomName, exp, ok := parseTerm(tok.term)
		if !ok {
			return Unit{}, false
		}
		atom, ok := reg.Get(atomName)
		if !ok {
			return Unit{}, false
		}
		signedExp := exp
		if tok.op == '/' {
			signedExp = -exp
		}
		for k, v := range atom.Dim {
			dim[k] += v * signedExp
		}

		atomFactor := atom.ToBase(one)
		for n := 0; n < abs(signedExp); n++ {
			if signedExp > 0 {
				factor = factor.Mul(atomFactor)
			} else {
				var err error
				factor, err = factor.Div(atomFactor)
				if err != nil {
					return Unit{}, false
				}
			}
		}
	}

	dim = dim.Simplify()
	toBase, fromBase := linear(factor)
	return Unit{Name: name, Dim: dim, ToBase: toBase, FromBase: fromBase}, true
}

// ParseQuantityString parses a document string of the form
// "<decimal> <unit-name>" (the triple-object encoding a quantity
// round-trips through) into a Quantity. Anything other than exactly two
// whitespace-separated fields, a non-decimal magnitude, or an
// unregistered/unparseable unit returns (Quantity{}, false) so callers
// can treat an ordinary string as just a string.
func ParseQuantityString(s string, reg Registry) (Quantity, bool) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Quantity{}, false
	}
	mag, err := decimal.NewFromString(fields[0])
	if err != nil {
		return Quantity{}, false
	}
	u, ok := ParseCompound(fields[1], reg)
	if !ok {
		return Quantity{}, false
	}
	return Quantity{Magnitude: mag, Unit: u}, true
}

type compoundTerm struct {
	op   byte // 0 for the first term, '*' or '/' thereafter
	term string
}

func tokenizeCompound(name string) ([]compoundTerm, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}

	var toks []compoundTerm
	op := byte(0)
	start := 0
	for i := 0; i <= len(name); i++ {
		if i == len(name) || name[i] == '*' || name[i] == '/' {
			term := strings.TrimSpace(name[start:i])
			if term == "" {
				return nil, false
			}
			toks = append(toks, compoundTerm{op: op, term: term})
			if i < len(name) {
				op = name[i]
			}
			start = i + 1
		}
	}
	return toks, true
}

func parseTerm(term string) (name string, exp int, ok bool) {
	if idx := strings.IndexByte(term, '^'); idx >= 0 {
		name = strings.TrimSpace(term[:idx])
		expStr := strings.TrimSpace(term[idx+1:])
		n, err := strconv.Atoi(expStr)
		if err != nil || name == "" {
			return "", 0, false
		}
		return name, n, true
	}
	if term == "" {
		return "", 0, false
	}
	return term, 1, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func dimString(dim Dim) string {
	if len(dim) == 0 {
		return "1"
	}
	keys := make([]string, 0, len(dim))
	for k := range dim {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("*")
		}
		exp := dim[k]
		if exp == 1 {
			b.WriteString(k)
		} else {
			fmt.Fprintf(&b, "%s^%d", k, exp)
		}
	}
	return b.String()
}
