package eval

import (
	"context"
	"strings"
	"testing"

	"github.com/ldcrun/ldc/internal/diag"
	"github.com/ldcrun/ldc/internal/document"
)

func parseDoc(t *testing.T, src string) document.Value {
	t.Helper()
	v, err := document.ParseJSON(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestArithmeticDirectiveProducesExpectedValue(t *testing.T) {
	doc := parseDoc(t, `{
		"revenue": 100000,
		"growth": 0.15,
		"total": {"@expr": "revenue * (1 + growth)"}
	}`)
	ev := New(NewOptions())
	res, err := ev.Evaluate(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := res.Value.Obj.Get("total")
	if !ok {
		t.Fatal("missing total")
	}
	if v.D.String() != "115000" {
		t.Fatalf("got %s, want 115000", v.D.String())
	}
}

func TestFailingConstraintEmitsDiagnosticAndNoTriple(t *testing.T) {
	doc := parseDoc(t, `{
		"revenue": -5,
		"mustBePositive": {"@constraint": "revenue > 0"}
	}`)
	ev := New(NewOptions())
	res, err := ev.Evaluate(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, d := range res.Diagnostics {
		if d.Code == diag.ConstraintFailed {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s diagnostic, got %+v", diag.ConstraintFailed, res.Diagnostics)
	}
	for _, tr := range res.Triples {
		if strings.Contains(tr.P, "mustBePositive") {
			t.Fatalf("constraint should not emit a triple, got %+v", tr)
		}
	}
}

func TestCurrencyStringAdditionProducesQuantitySum(t *testing.T) {
	doc := parseDoc(t, `{
		"a": "100 USD",
		"b": "50 USD",
		"sum": {"@expr": "a + b"}
	}`)
	ev := New(NewOptions())
	res, err := ev.Evaluate(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := res.Value.Obj.Get("sum")
	if !ok {
		t.Fatal("missing sum")
	}
	if v.Kind != document.KindQuantity {
		t.Fatalf("expected sum to be a quantity, got %v", v.Kind)
	}
	var object string
	for _, tr := range res.Triples {
		if strings.Contains(tr.P, "sum") {
			object = tr.O
		}
	}
	if object != "150.00000 USD" {
		t.Fatalf("got triple object %q, want %q", object, "150.00000 USD")
	}
}

func TestCurrencyStringAdditionMismatchedCurrencyEmitsUnitMismatch(t *testing.T) {
	doc := parseDoc(t, `{
		"a": "100 USD",
		"b": "50 EUR",
		"sum": {"@expr": "a + b"}
	}`)
	ev := New(NewOptions())
	res, err := ev.Evaluate(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, d := range res.Diagnostics {
		if d.Code == diag.UnitMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s diagnostic, got %+v", diag.UnitMismatch, res.Diagnostics)
	}
}

func TestFixpointCycleEmitsLimitDiagnosticAndNoValue(t *testing.T) {
	doc := parseDoc(t, `{
		"a": {"@expr": "b + 1"},
		"b": {"@expr": "a - 1"}
	}`)
	ev := New(NewOptions())
	res, err := ev.Evaluate(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, d := range res.Diagnostics {
		if d.Code == diag.FixpointLimit {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s diagnostic, got %+v", diag.FixpointLimit, res.Diagnostics)
	}
}
