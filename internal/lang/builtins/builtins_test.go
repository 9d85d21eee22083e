package builtins

import (
	"testing"

	"github.com/ldcrun/ldc/internal/decimal"
	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/units"
)

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func call(t *testing.T, reg *Registry, name string, args []document.Value, this *document.Value) document.Value {
	t.Helper()
	fn, ok := reg.Resolve(name)
	if !ok {
		t.Fatalf("builtin %s not registered", name)
	}
	v, err := fn.Call(args, this)
	if err != nil {
		t.Fatalf("%s(%v) failed: %v", name, args, err)
	}
	return v
}

func TestRoundUsesBankersRounding(t *testing.T) {
	reg := New(units.DefaultRegistry())
	v := call(t, reg, "$round", []document.Value{document.Dec(mustDec("2.5")), document.Int(0)}, nil)
	if v.D.String() != "2" {
		t.Fatalf("got %s, want 2", v.D.String())
	}
}

func TestSumOverArray(t *testing.T) {
	reg := New(units.DefaultRegistry())
	arr := document.Array([]document.Value{document.Int(1), document.Int(2), document.Int(3)})
	v := call(t, reg, "$sum", []document.Value{arr}, nil)
	if v.D.String() != "6" {
		t.Fatalf("got %s, want 6", v.D.String())
	}
}

func TestStringBuiltins(t *testing.T) {
	reg := New(units.DefaultRegistry())
	v := call(t, reg, "$upper", []document.Value{document.Str("abc")}, nil)
	if v.S != "ABC" {
		t.Fatalf("got %s", v.S)
	}
}

func TestConvertBetweenLengthUnits(t *testing.T) {
	reg := New(units.DefaultRegistry())
	v := call(t, reg, "$convert", []document.Value{document.Dec(mustDec("1")), document.Str("km"), document.Str("m")}, nil)
	if v.Kind != document.KindQuantity || v.Q.Magnitude.String() != "1000" {
		t.Fatalf("got %+v", v)
	}
}

func TestConvertUnknownUnitFails(t *testing.T) {
	reg := New(units.DefaultRegistry())
	fn, ok := reg.Resolve("$convert")
	if !ok {
		t.Fatal("$convert not registered")
	}
	if _, err := fn.Call([]document.Value{document.Dec(mustDec("1")), document.Str("m"), document.Str("parsec")}, nil); err == nil {
		t.Fatal("expected an error converting to an unknown unit")
	}
}
