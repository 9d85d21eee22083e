// Package document implements the LD-C data model: the tagged Value
// union, the ordered Object map that documents are built from, and the
// context map used to expand CURIEs to IRIs.
package document

import (
	"time"

	"github.com/ldcrun/ldc/internal/decimal"
	"github.com/ldcrun/ldc/internal/units"
)

type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDecimal
	KindString
	KindTimestamp
	KindArray
	KindObject
	KindFunction
	KindQuantity
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindTimestamp:
		return "timestamp"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindQuantity:
		return "quantity"
	default:
		return "unknown"
	}
}

// Callable is implemented by built-in functions and interpreter closures.
// document has no dependency on the expression language; internal/lang/interp
// provides the concrete implementations.
type Callable interface {
	Call(args []Value, this *Value) (Value, error)
	String() string
}

// Value is the tagged union every document property's parsed form takes.
type Value struct {
	Kind Kind

	B bool
	I int64
	D decimal.Decimal
	S string
	Ts time.Time
	Arr []Value
	Obj *Object
	Fn Callable
	Q units.Quantity
}

func Null() Value                      { return Value{Kind: KindNull} }
func Bool(b bool) Value                { return Value{Kind: KindBool, B: b} }
func Int(i int64) Value                { return Value{Kind: KindInt, I: i} }
func Dec(d decimal.Decimal) Value      { return Value{Kind: KindDecimal, D: d} }
func Str(s string) Value               { return Value{Kind: KindString, S: s} }
func Timestamp(t time.Time) Value      { return Value{Kind: KindTimestamp, Ts: t.UTC()} }
func Array(vs []Value) Value           { return Value{Kind: KindArray, Arr: vs} }
func Obj(o *Object) Value              { return Value{Kind: KindObject, Obj: o} }
func Func(c Callable) Value            { return Value{Kind: KindFunction, Fn: c} }
func Quantity(q units.Quantity) Value  { return Value{Kind: KindQuantity, Q: q} }

func (v Value) IsNull() bool { return v.Kind == KindNull }

// Truthy implements the language's boolean coercion for conditions
// (ternary, &&/||, $if, @constraint). Null, false, zero, and empty
// string/array are falsy; everything else is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindBool:
		return v.B
	case KindInt:
		return v.I != 0
	case KindDecimal:
		return !v.D.IsZero()
	case KindString:
		return v.S != ""
	case KindArray:
		return len(v.Arr) > 0
	case KindObject:
		return v.Obj != nil
	case KindQuantity:
		return !v.Q.Magnitude.IsZero()
	default:
		return true
	}
}

// AsDecimal lifts an Int or Decimal value to Decimal. Other kinds return
// (Decimal{}, false).
func (v Value) AsDecimal() (decimal.Decimal, bool) {
	switch v.Kind {
	case KindInt:
		return decimal.NewFromInt(v.I), true
	case KindDecimal:
		return v.D, true
	default:
		return decimal.Decimal{}, false
	}
}

func (v Value) IsNumeric() bool {
	return v.Kind == KindInt || v.Kind == KindDecimal
}
