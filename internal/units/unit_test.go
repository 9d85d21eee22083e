package units

import (
	"testing"

	"github.com/ldcrun/ldc/internal/decimal"
)

func qty(t *testing.T, mag string, unitName string, reg Registry) Quantity {
	t.Helper()
	d, err := decimal.NewFromString(mag)
	if err != nil {
		t.Fatalf("bad magnitude %q: %v", mag, err)
	}
	u, ok := ParseCompound(unitName, reg)
	if !ok {
		t.Fatalf("unit %q did not parse", unitName)
	}
	return Quantity{Magnitude: d, Unit: u}
}

func TestQuantityAddSameDim(t *testing.T) {
	reg := DefaultRegistry()
	a := qty(t, "1", "km", reg)
	b := qty(t, "500", "m", reg)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if sum.Magnitude.String() != "1.5" {
		t.Errorf("expected 1.5 km, got %s %s", sum.Magnitude.String(), sum.Unit.Name)
	}
}

func TestQuantityAddMismatchedDim(t *testing.T) {
	reg := DefaultRegistry()
	a := qty(t, "1", "USD", reg)
	b := qty(t, "1", "EUR", reg)

	if _, err := a.Add(b); err == nil {
		t.Fatal("expected unit mismatch error")
	}
}

func TestQuantityDivDividesCorrectly(t *testing.T) {
	reg := DefaultRegistry()
	distance := qty(t, "100", "m", reg)
	time := qty(t, "10", "s", reg)

	speed, err := distance.Div(time)
	if err != nil {
		t.Fatalf("Div failed: %v", err)
	}
	if speed.Magnitude.String() != "10" {
		t.Errorf("expected magnitude 10, got %s", speed.Magnitude.String())
	}
	if speed.Unit.Dim["length"] != 1 || speed.Unit.Dim["time"] != -1 {
		t.Errorf("expected dim length^1 * time^-1, got %v", speed.Unit.Dim)
	}
}

func TestTemperatureConversion(t *testing.T) {
	reg := DefaultRegistry()
	got, err := Convert(decimal.NewFromInt(0), "C", "F", reg)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if got.String() != "32" {
		t.Errorf("expected 32, got %s", got.String())
	}
}

func TestCompoundUnitParsing(t *testing.T) {
	reg := DefaultRegistry()
	u, ok := ParseCompound("km/h", reg)
	if !ok {
		t.Fatal("expected km/h to parse")
	}
	if u.Dim["length"] != 1 || u.Dim["time"] != -1 {
		t.Errorf("unexpected dim: %v", u.Dim)
	}
}

func TestParseCompoundUndefinedOnGarbage(t *testing.T) {
	reg := DefaultRegistry()
	if _, ok := ParseCompound("not a unit!!", reg); ok {
		t.Fatal("expected garbage unit string to fail to parse")
	}
}
