package compose

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/lang/builtins"
	"github.com/ldcrun/ldc/internal/lang/interp"
	"github.com/ldcrun/ldc/internal/units"
)

func parseDoc(t *testing.T, src string) document.Value {
	t.Helper()
	v, err := document.ParseJSON(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func newInterp() *interp.Interpreter {
	return interp.New(builtins.New(units.DefaultRegistry()), units.DefaultRegistry())
}

func TestRollupSumWithFilterMatchesSpecScenario(t *testing.T) {
	projects := parseDoc(t, `{"items": [
		{"budget": 100, "status": "active"},
		{"budget": 50, "status": "archived"}
	]}`)
	main := parseDoc(t, `{
		"@relations": {"projects": "projects.json"},
		"totalActive": {"@rollup": "projects.items.budget:sum", "filter": "status == 'active'"}
	}`)

	loader := func(alias, path string) (document.Value, error) {
		if alias == "projects" {
			return projects, nil
		}
		return document.Null(), fmt.Errorf("unknown relation %s", alias)
	}

	out, diags := Compose(main, loader, newInterp())
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	v, ok := out.Obj.Get("totalActive")
	if !ok {
		t.Fatal("missing totalActive")
	}
	if v.D.String() != "100" {
		t.Fatalf("got %s, want 100", v.D.String())
	}
}

func TestRefResolvesDottedPathWithIndex(t *testing.T) {
	team := parseDoc(t, `{"members": [{"name": "alice"}, {"name": "bob"}]}`)
	main := parseDoc(t, `{
		"@relations": {"team": "team.json"},
		"lead": {"@ref": "team.members[0].name"}
	}`)
	loader := func(alias, path string) (document.Value, error) { return team, nil }

	out, diags := Compose(main, loader, newInterp())
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	v, _ := out.Obj.Get("lead")
	if v.S != "alice" {
		t.Fatalf("got %+v", v)
	}
}

func TestRefMissingSegmentYieldsNullNotError(t *testing.T) {
	team := parseDoc(t, `{"members": []}`)
	main := parseDoc(t, `{
		"@relations": {"team": "team.json"},
		"missing": {"@ref": "team.nope.deeper"}
	}`)
	loader := func(alias, path string) (document.Value, error) { return team, nil }

	out, diags := Compose(main, loader, newInterp())
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	v, _ := out.Obj.Get("missing")
	if v.Kind != document.KindNull {
		t.Fatalf("got %+v, want null", v)
	}
}
