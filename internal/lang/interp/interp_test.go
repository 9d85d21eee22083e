package interp

import (
	"testing"

	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/lang/parser"
	"github.com/ldcrun/ldc/internal/units"
)

type nopBuiltins struct{}

func (nopBuiltins) Resolve(name string) (document.Callable, bool) { return nil, false }

func eval(t *testing.T, src string, this *document.Value) document.Value {
	t.Helper()
	e, err := parser.ParseExpr(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	it := New(nopBuiltins{}, units.DefaultRegistry())
	v, err := it.Eval(e, NewScope(nil), this)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return v
}

func TestArithmeticPrecedence(t *testing.T) {
	v := eval(t, "100000 * (1 + 0.15)", nil)
	if v.Kind != document.KindDecimal || v.D.String() != "115000" {
		t.Fatalf("got %+v, want decimal 115000", v)
	}
}

func TestStringConcatCoercesOtherOperand(t *testing.T) {
	v := eval(t, `"total: " + 5`, nil)
	if v.Kind != document.KindString || v.S != "total: 5" {
		t.Fatalf("got %+v", v)
	}
}

func TestTernaryAndComparison(t *testing.T) {
	v := eval(t, "1 < 2 ? \"yes\" : \"no\"", nil)
	if v.S != "yes" {
		t.Fatalf("got %+v", v)
	}
}

func TestNullishCoalescing(t *testing.T) {
	v := eval(t, "null ?? 42", nil)
	if v.Kind != document.KindInt || v.I != 42 {
		t.Fatalf("got %+v", v)
	}
}

func TestShortCircuitAnd(t *testing.T) {
	v := eval(t, "false && (1/0 == 0)", nil)
	if v.Kind != document.KindBool || v.B != false {
		t.Fatalf("got %+v, want false without evaluating RHS", v)
	}
}

func TestDivisionByZeroIsDiagnostic(t *testing.T) {
	e, err := parser.ParseExpr("1 / 0")
	if err != nil {
		t.Fatal(err)
	}
	it := New(nopBuiltins{}, units.DefaultRegistry())
	_, err = it.Eval(e, NewScope(nil), nil)
	if err == nil {
		t.Fatal("expected division-by-zero error")
	}
}

func TestMemberAccessOnThis(t *testing.T) {
	obj := document.NewObject()
	obj.Set("price", document.Int(10))
	this := document.Obj(obj)
	v := eval(t, "price * 2", &this)
	if v.Kind != document.KindInt || v.I != 20 {
		t.Fatalf("got %+v", v)
	}
}

func TestLambdaCallsAsClosure(t *testing.T) {
	e, err := parser.ParseExpr("(x, y) => x + y")
	if err != nil {
		t.Fatal(err)
	}
	it := New(nopBuiltins{}, units.DefaultRegistry())
	fnVal, err := it.Eval(e, NewScope(nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	result, err := fnVal.Fn.Call([]document.Value{document.Int(3), document.Int(4)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.I != 7 {
		t.Fatalf("got %+v, want 7", result)
	}
}
