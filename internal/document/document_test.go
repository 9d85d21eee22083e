package document

import (
	"strings"
	"testing"

	"github.com/ldcrun/ldc/internal/decimal"
	"github.com/ldcrun/ldc/internal/units"
)

func TestParseJSONPreservesKeyOrder(t *testing.T) {
	v, err := ParseJSON(strings.NewReader(`{"z":1,"a":2,"m":3}`))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	got := v.Obj.Keys()
	want := []string{"z", "a", "m"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys = %v, want %v", got, want)
		}
	}
}

func TestParseJSONDistinguishesIntFromDecimal(t *testing.T) {
	v, err := ParseJSON(strings.NewReader(`{"n":100000,"g":0.15}`))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	n, _ := v.Obj.Get("n")
	if n.Kind != KindInt || n.I != 100000 {
		t.Errorf("expected int 100000, got %+v", n)
	}
	g, _ := v.Obj.Get("g")
	if g.Kind != KindDecimal {
		t.Errorf("expected decimal, got %+v", g)
	}
}

func TestContextExpandUsesFirstEntryForPlainKeys(t *testing.T) {
	ctxVal, err := ParseJSON(strings.NewReader(`{"ex":"https://ex/","other":"https://other/"}`))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	ctx := ParseContext(ctxVal)

	if got := ctx.Expand("a"); got != "https://ex/a" {
		t.Errorf("expected https://ex/a, got %s", got)
	}
	if got := ctx.Expand("other:b"); got != "https://other/b" {
		t.Errorf("expected https://other/b, got %s", got)
	}
}

func TestSerializeTripleObjectArraysProduceNoTriple(t *testing.T) {
	if _, ok := SerializeTripleObject(Array([]Value{Int(1)})); ok {
		t.Error("expected array to not serialize to a triple object")
	}
}

// TestSerializeTripleObjectCurrencySumTruncatesTo5DP checks a worked
// currency scenario: a="100 USD", b="50 USD", sum=a+b serializes to the
// 5-decimal-place truncated string "150.00000 USD".
func TestSerializeTripleObjectCurrencySumTruncatesTo5DP(t *testing.T) {
	reg := units.DefaultRegistry()
	usd, ok := units.ParseCompound("USD", reg)
	if !ok {
		t.Fatal("USD did not parse")
	}
	a := units.Quantity{Magnitude: decimal.NewFromInt(100), Unit: usd}
	b := units.Quantity{Magnitude: decimal.NewFromInt(50), Unit: usd}
	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	s, ok := SerializeTripleObject(Quantity(sum))
	if !ok {
		t.Fatal("expected a triple object")
	}
	if s != "150.00000 USD" {
		t.Errorf("got %q, want %q", s, "150.00000 USD")
	}
}

// TestQuantityAddMismatchedCurrencyFailsWhenIncompatible checks that
// the default registry marks distinct currencies as dimensionally
// incompatible, so Add must fail rather than silently mixing units.
func TestQuantityAddMismatchedCurrencyFailsWhenIncompatible(t *testing.T) {
	reg := units.DefaultRegistry()
	usd, ok := units.ParseCompound("USD", reg)
	if !ok {
		t.Fatal("USD did not parse")
	}
	eur, ok := units.ParseCompound("EUR", reg)
	if !ok {
		t.Fatal("EUR did not parse")
	}
	a := units.Quantity{Magnitude: decimal.NewFromInt(100), Unit: usd}
	b := units.Quantity{Magnitude: decimal.NewFromInt(50), Unit: eur}
	if _, err := a.Add(b); err == nil {
		t.Fatal("expected USD+EUR to fail as a unit mismatch")
	}
}
