package scheduler

import (
	"context"
	"testing"

	"github.com/ldcrun/ldc/internal/diag"
	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/indexer"
)

func node(id string, reads []string) *indexer.Node {
	return &indexer.Node{
		ID:       id,
		PlainKey: id,
		Kind:     indexer.KindExpr,
		Reads:    reads,
		Writes:   []indexer.Write{{PlainKey: id, IRI: id}},
	}
}

func TestLayerOrdersByDependency(t *testing.T) {
	a := node("a", nil)
	b := node("b", []string{"a"})
	c := node("c", []string{"b"})
	layers := Layer([]*indexer.Node{c, a, b})
	if len(layers.Stages) != 3 {
		t.Fatalf("got %d stages, want 3", len(layers.Stages))
	}
	if layers.Stages[0][0].ID != "a" || layers.Stages[1][0].ID != "b" || layers.Stages[2][0].ID != "c" {
		t.Fatalf("unexpected stage order: %+v", layers.Stages)
	}
	if len(layers.FixpointLayer) != 0 {
		t.Fatalf("expected no fixpoint layer, got %+v", layers.FixpointLayer)
	}
}

func TestCycleBecomesFixpointLayer(t *testing.T) {
	a := node("a", []string{"b"})
	b := node("b", []string{"a"})
	layers := Layer([]*indexer.Node{a, b})
	if len(layers.Stages) != 0 {
		t.Fatalf("expected no acyclic stages, got %+v", layers.Stages)
	}
	if len(layers.FixpointLayer) != 2 {
		t.Fatalf("expected both nodes in fixpoint layer, got %+v", layers.FixpointLayer)
	}
}

func TestRunSettlesFixpointWhenValuesStabilize(t *testing.T) {
	a := node("a", []string{"b"})
	b := node("b", []string{"a"})
	layers := Layer([]*indexer.Node{a, b})

	calls := 0
	eval := func(ctx context.Context, n *indexer.Node, iteration int) (document.Value, error) {
		calls++
		return document.Int(1), nil
	}
	values, diags, aborted := Run(context.Background(), layers, eval)
	if aborted {
		t.Fatal("did not expect abort")
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if values["a"].I != 1 || values["b"].I != 1 {
		t.Fatalf("got %+v", values)
	}
	// two nodes, should settle after the second iteration (first
	// iteration always "changes" since nothing existed before).
	if calls != 4 {
		t.Fatalf("got %d eval calls, want 4", calls)
	}
}

func TestRunEmitsFixpointLimitWhenNeverStable(t *testing.T) {
	a := node("a", []string{"b"})
	b := node("b", []string{"a"})
	layers := Layer([]*indexer.Node{a, b})

	n := 0
	eval := func(ctx context.Context, node *indexer.Node, iteration int) (document.Value, error) {
		n++
		return document.Int(int64(n)), nil
	}
	values, diags, _ := Run(context.Background(), layers, eval)
	if len(values) != 0 {
		t.Fatalf("expected no surviving values, got %+v", values)
	}
	found := false
	for _, d := range diags {
		if d.Code == diag.FixpointLimit {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s diagnostic, got %+v", diag.FixpointLimit, diags)
	}
}
