package decimal

import "testing"

func mustParse(t *testing.T, s string) Decimal {
	t.Helper()
	d, err := NewFromString(s)
	if err != nil {
		t.Fatalf("NewFromString(%q) failed: %v", s, err)
	}
	return d
}

func TestRoundBankersRoundsHalfToEven(t *testing.T) {
	cases := []struct {
		in     string
		places int32
		want   string
	}{
		{"0.5", 0, "0"},
		{"1.5", 0, "2"},
		{"2.5", 0, "2"},
		{"-0.5", 0, "0"},
		{"-1.5", 0, "-2"},
		{"1.125", 2, "1.12"},
		{"1.135", 2, "1.14"},
		{"100000", 2, "100000.00"},
	}

	for _, c := range cases {
		got := mustParse(t, c.in).Round(c.places)
		if got.StringFixed(c.places) != c.want {
			t.Errorf("Round(%s, %d) = %s, want %s", c.in, c.places, got.StringFixed(c.places), c.want)
		}
	}
}

func TestDivByZero(t *testing.T) {
	a := mustParse(t, "1")
	b := Zero

	_, err := a.Div(b)
	if err == nil {
		t.Fatal("expected division by zero error")
	}
	if _, ok := err.(ErrDivByZero); !ok {
		t.Fatalf("expected ErrDivByZero, got %T", err)
	}
}

func TestMixedArithmetic(t *testing.T) {
	revenue := mustParse(t, "100000")
	growth := mustParse(t, "0.15")
	one := NewFromInt(1)

	next := revenue.Mul(one.Add(growth))
	if next.String() != "115000" {
		t.Errorf("expected 115000, got %s", next.String())
	}
}

func TestPowInteger(t *testing.T) {
	base := mustParse(t, "2")
	exp := NewFromInt(10)
	got := base.Pow(exp)
	if got.String() != "1024" {
		t.Errorf("expected 1024, got %s", got.String())
	}
}

func TestIsFiniteFloat(t *testing.T) {
	zero := 0.0
	nan := zero / zero
	if IsFiniteFloat(nan) {
		t.Error("NaN should not be finite")
	}
	if !IsFiniteFloat(3.14) {
		t.Error("3.14 should be finite")
	}
}
