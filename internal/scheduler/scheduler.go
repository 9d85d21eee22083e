// Package scheduler implements topological layering of the indexer's
// DAG nodes by read/write dependency, plus bounded fixpoint iteration
// for the nodes a pure layering can't resolve.
//
// It uses a context.Context-driven "Execute" shape, generalized from a
// single all-at-once pass into a multi-layer, cancellation-aware
// evaluation loop.
package scheduler

import (
	"context"

	"github.com/ldcrun/ldc/internal/canon"
	"github.com/ldcrun/ldc/internal/diag"
	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/indexer"
)

// MaxFixpointIterations bounds how many times the fixpoint layer is
// re-evaluated before its nodes are declared unsettled.
const MaxFixpointIterations = 10

// Layers is the output of a pure topological layering pass.
type Layers struct {
	Stages        [][]*indexer.Node
	FixpointLayer []*indexer.Node
}

// Layer computes in-degrees from the "A reads a name among B's writes"
// relation and drains zero-in-degree nodes repeatedly. Whatever remains
// after draining forms the fixpoint layer.
func Layer(nodes []*indexer.Node) *Layers {
	writers := map[string]*indexer.Node{}
	for _, n := range nodes {
		for _, w := range n.Writes {
			writers[w.PlainKey] = n
			writers[w.IRI] = n
		}
	}

	indegree := map[*indexer.Node]int{}
	dependents := map[*indexer.Node][]*indexer.Node{}
	for _, n := range nodes {
		for _, r := range n.Reads {
			producer, ok := writers[r]
			if !ok || producer == n {
				continue
			}
			indegree[n]++
			dependents[producer] = append(dependents[producer], n)
		}
	}

	remaining := map[*indexer.Node]bool{}
	for _, n := range nodes {
		remaining[n] = true
	}

	var stages [][]*indexer.Node
	for len(remaining) > 0 {
		var ready []*indexer.Node
		for _, n := range nodes {
			if remaining[n] && indegree[n] == 0 {
				ready = append(ready, n)
			}
		}
		if len(ready) == 0 {
			break
		}
		for _, n := range ready {
			delete(remaining, n)
			for _, dep := range dependents[n] {
				indegree[dep]--
			}
		}
		stages = append(stages, ready)
	}

	var fixpoint []*indexer.Node
	for _, n := range nodes {
		if remaining[n] {
			fixpoint = append(fixpoint, n)
		}
	}
	return &Layers{Stages: stages, FixpointLayer: fixpoint}
}

// EvalFunc evaluates one node's directive and returns its resulting
// value, or a diag.EvalError for a document-local failure.
type EvalFunc func(ctx context.Context, node *indexer.Node, iteration int) (document.Value, error)

// Run drains the layers in order, then iterates the fixpoint layer up
// to MaxFixpointIterations times, stopping early once no node's
// canonical JSON changes between iterations. A node whose evaluation
// fails in an iteration counts as changed, and only the last
// iteration's evaluation errors are reported.
func Run(ctx context.Context, layers *Layers, eval EvalFunc) (values map[string]document.Value, diagnostics []diag.Diagnostic, aborted bool) {
	values = map[string]document.Value{}

	for _, stage := range layers.Stages {
		if ctx.Err() != nil {
			return values, append(diagnostics, diag.New(diag.Timeout, "", "evaluation cancelled").Diagnostic()), true
		}
		for _, n := range stage {
			v, err := eval(ctx, n, 0)
			if err != nil {
				diagnostics = append(diagnostics, toDiagnostic(n, err))
				continue
			}
			values[n.ID] = v
		}
	}

	if len(layers.FixpointLayer) == 0 {
		return values, diagnostics, false
	}

	prev := map[string]document.Value{}
	settled := false
	var iterDiags []diag.Diagnostic
	iter := 0
	for ; iter < MaxFixpointIterations; iter++ {
		if ctx.Err() != nil {
			return values, append(diagnostics, diag.New(diag.Timeout, "", "evaluation cancelled").Diagnostic()), true
		}
		changed := false
		next := map[string]document.Value{}
		iterDiags = nil
		for _, n := range layers.FixpointLayer {
			v, err := eval(ctx, n, iter)
			if err != nil {
				iterDiags = append(iterDiags, toDiagnostic(n, err))
				changed = true
				continue
			}
			next[n.ID] = v
			old, existed := prev[n.ID]
			if !existed || !canon.Equal(old, v) {
				changed = true
			}
		}
		for id, v := range next {
			values[id] = v
		}
		prev = next
		if !changed {
			settled = true
			break
		}
	}
	diagnostics = append(diagnostics, iterDiags...)

	if !settled {
		for _, n := range layers.FixpointLayer {
			delete(values, n.ID)
			diagnostics = append(diagnostics, diag.New(diag.FixpointLimit, n.ID, "fixpoint layer did not settle within %d iterations", MaxFixpointIterations).Diagnostic())
		}
	}

	return values, diagnostics, false
}

func toDiagnostic(n *indexer.Node, err error) diag.Diagnostic {
	if ee, ok := err.(diag.EvalError); ok {
		return ee.Diagnostic()
	}
	return diag.New(diag.ExprErr, n.ID, "%v", err).Diagnostic()
}
