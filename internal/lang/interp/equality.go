package interp

import "github.com/ldcrun/ldc/internal/document"

// valuesEqual implements "==" across the value union. Int and Decimal
// compare numerically; Quantity compares dimension and magnitude;
// everything else compares by kind and structural content.
func valuesEqual(l, r document.Value) bool {
	if l.IsNumeric() && r.IsNumeric() {
		ld, _ := l.AsDecimal()
		rd, _ := r.AsDecimal()
		return ld.Equal(rd)
	}
	if l.Kind != r.Kind {
		return false
	}
	switch l.Kind {
	case document.KindNull:
		return true
	case document.KindBool:
		return l.B == r.B
	case document.KindString:
		return l.S == r.S
	case document.KindTimestamp:
		return l.Ts.Equal(r.Ts)
	case document.KindQuantity:
		return l.Q.Unit.Dim.Simplify().Equal(r.Q.Unit.Dim.Simplify()) && l.Q.Magnitude.Equal(r.Q.Magnitude)
	case document.KindArray:
		if len(l.Arr) != len(r.Arr) {
			return false
		}
		for i := range l.Arr {
			if !valuesEqual(l.Arr[i], r.Arr[i]) {
				return false
			}
		}
		return true
	case document.KindObject:
		if l.Obj.Len() != r.Obj.Len() {
			return false
		}
		for _, k := range l.Obj.Keys() {
			lv, _ := l.Obj.Get(k)
			rv, ok := r.Obj.Get(k)
			if !ok || !valuesEqual(lv, rv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// stringify renders a value for "+" string concatenation.
func stringify(v document.Value) string {
	if s, ok := document.SerializeTripleObject(v); ok {
		return s
	}
	return ""
}
