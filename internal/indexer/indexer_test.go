package indexer

import (
	"strings"
	"testing"

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

func TestExprDirectiveBecomesNode(t *testing.T) {
	doc := parseDoc(t, `{
		"revenue": 100000,
		"growth": 0.15,
		"total": {"@expr": "revenue * (1 + growth)"}
	}`)
	ctx := document.NewContext()
	res, err := Index(doc, ctx, "ex:doc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(res.Nodes))
	}
	n := res.Nodes[0]
	if n.PlainKey != "total" || n.Kind != KindExpr {
		t.Fatalf("unexpected node %+v", n)
	}
	want := map[string]bool{"revenue": true, "growth": true}
	if len(n.Reads) != 2 || !want[n.Reads[0]] || !want[n.Reads[1]] {
		t.Fatalf("got reads %v", n.Reads)
	}
	// revenue/growth are root scalars, not seeded.
	if len(res.Seeds) != 0 {
		t.Fatalf("got %d seeds, want 0", len(res.Seeds))
	}
}

func TestNestedObjectScalarsSeededUnderSyntheticSubject(t *testing.T) {
	doc := parseDoc(t, `{
		"address": {"city": "Paris", "zip": "75001"}
	}`)
	ctx := document.NewContext()
	res, err := Index(doc, ctx, "ex:doc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Seeds) != 2 {
		t.Fatalf("got %d seeds, want 2", len(res.Seeds))
	}
	for _, s := range res.Seeds {
		if s.S != "ex:doc1/address" {
			t.Fatalf("got subject %s, want ex:doc1/address", s.S)
		}
	}
}

func TestArrayElementScalarsSeededUnderIndexedSubject(t *testing.T) {
	doc := parseDoc(t, `{
		"items": [{"name": "a"}, {"name": "b"}]
	}`)
	ctx := document.NewContext()
	res, err := Index(doc, ctx, "ex:doc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Seeds) != 2 {
		t.Fatalf("got %d seeds, want 2", len(res.Seeds))
	}
	subjects := map[string]bool{}
	for _, s := range res.Seeds {
		subjects[s.S] = true
	}
	if !subjects["ex:doc1/items/0"] || !subjects["ex:doc1/items/1"] {
		t.Fatalf("got subjects %v", subjects)
	}
}

func TestAmbiguousDirectiveWarnsAndPicksFirst(t *testing.T) {
	doc := parseDoc(t, `{
		"x": {"@expr": "1 + 1", "@constraint": "x > 0"}
	}`)
	ctx := document.NewContext()
	res, err := Index(doc, ctx, "ex:doc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Nodes) != 1 || res.Nodes[0].Kind != KindExpr {
		t.Fatalf("expected single @expr node, got %+v", res.Nodes)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Severity != "warning" {
		t.Fatalf("expected one warning diagnostic, got %+v", res.Diagnostics)
	}
}

func TestConstraintDirectiveParsed(t *testing.T) {
	doc := parseDoc(t, `{
		"positive": {"@constraint": "revenue > 0"},
		"revenue": 10
	}`)
	ctx := document.NewContext()
	res, err := Index(doc, ctx, "ex:doc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Nodes) != 1 || res.Nodes[0].Kind != KindConstraint {
		t.Fatalf("got %+v", res.Nodes)
	}
}
