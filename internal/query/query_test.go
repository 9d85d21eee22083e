package query

import (
	"strings"
	"testing"

	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/lang/builtins"
	"github.com/ldcrun/ldc/internal/lang/interp"
	"github.com/ldcrun/ldc/internal/store"
	"github.com/ldcrun/ldc/internal/units"
)

func newInterp() *interp.Interpreter {
	return interp.New(builtins.New(units.DefaultRegistry()), units.DefaultRegistry())
}

func TestFilteredSumAggregate(t *testing.T) {
	st := store.New()
	st.Add(store.Triple{S: "ex:p1", P: "ex:status", O: "active"})
	st.Add(store.Triple{S: "ex:p1", P: "ex:budget", O: "100"})
	st.Add(store.Triple{S: "ex:p2", P: "ex:status", O: "active"})
	st.Add(store.Triple{S: "ex:p2", P: "ex:budget", O: "50"})
	st.Add(store.Triple{S: "ex:p3", P: "ex:status", O: "archived"})
	st.Add(store.Triple{S: "ex:p3", P: "ex:budget", O: "999"})

	raw, err := document.ParseJSON(strings.NewReader(`{
		"patterns": [
			{"s": "?p", "p": "ex:status", "o": "?status"},
			{"s": "?p", "p": "ex:budget", "o": "?budget"}
		],
		"filters": ["status == \"active\""],
		"select": [{"agg": "sum", "expr": "?budget", "as": "total"}]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	ast, err := ParseDirective(raw, nil)
	if err != nil {
		t.Fatal(err)
	}

	it := newInterp()
	rows, err := Execute(ast, st, it)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	total := rows[0]["total"]
	if total.D.String() != "150" {
		t.Fatalf("got %s, want 150", total.D.String())
	}
}

func TestOptionalLeftJoinPreservesUnmatchedRow(t *testing.T) {
	st := store.New()
	st.Add(store.Triple{S: "ex:a", P: "ex:name", O: "alice"})

	raw, err := document.ParseJSON(strings.NewReader(`{
		"patterns": [
			{"s": "?x", "p": "ex:name", "o": "?n"},
			{"optional": [{"s": "?x", "p": "ex:age", "o": "?age"}]}
		],
		"select": ["?n", "?age"]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	ast, err := ParseDirective(raw, nil)
	if err != nil {
		t.Fatal(err)
	}
	it := newInterp()
	rows, err := Execute(ast, st, it)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0]["n"].S != "alice" {
		t.Fatalf("got %+v", rows[0])
	}
}
