package eval

import (
	"context"

	"github.com/google/uuid"

	"github.com/ldcrun/ldc/internal/compose"
	"github.com/ldcrun/ldc/internal/diag"
	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/indexer"
	"github.com/ldcrun/ldc/internal/lang/builtins"
	"github.com/ldcrun/ldc/internal/lang/interp"
	"github.com/ldcrun/ldc/internal/query"
	"github.com/ldcrun/ldc/internal/scheduler"
	"github.com/ldcrun/ldc/internal/store"
	"github.com/ldcrun/ldc/internal/units"
)

// State names the evaluator façade's state machine:
// Indexing -> Scheduled -> (Layering | Fixpoint(iter)) -> Signing -> Done,
// with Aborted reachable from any middle state.
type State string

const (
	StateIndexing  State = "Indexing"
	StateScheduled State = "Scheduled"
	StateLayering  State = "Layering"
	StateFixpoint  State = "Fixpoint"
	StateSigning   State = "Signing"
	StateDone      State = "Done"
	StateAborted   State = "Aborted"
)

// Result is what the core hands back to the host.
type Result struct {
	Triples     []store.Triple
	Diagnostics []diag.Diagnostic
	Value       document.Value
	Provenance  []string
	State       State
	// TraceID identifies one evaluation run for logs and the HTTP
	// envelope. It is generated fresh per call and never enters the
	// canonicalized/signed Value.
	TraceID string
}

// Evaluator runs one document's evaluation; each call owns its own
// triple store, state map, and diagnostics vector — no process-wide
// mutable state.
type Evaluator struct {
	opts Options
}

func New(opts Options) *Evaluator {
	return &Evaluator{opts: opts}
}

// Evaluate orchestrates Composer -> Indexer -> Scheduler -> per-layer
// evaluation for one document. It does not canonicalize or sign the
// result; that is done by packages canon and sign.
func (ev *Evaluator) Evaluate(ctx context.Context, doc document.Value) (Result, error) {
	traceID := uuid.NewString()
	log := ev.opts.Logger.With("trace_id", traceID)
	st := store.New()
	it := interp.New(builtins.New(ev.opts.Units), ev.opts.Units)

	loader := ev.opts.Loader
	if loader == nil {
		loader = func(alias, path string) (document.Value, error) {
			return document.Null(), diag.New(diag.BadRef, alias, "no loader configured for relation %q", alias)
		}
	}
	composed, diags := compose.Compose(doc, loader, it)

	lctx := documentContext(composed)
	subjectIRI := rootSubjectIRI(composed, lctx)

	log.Debugw("indexing", "subject", subjectIRI)
	idxResult, err := indexer.Index(composed, lctx, subjectIRI)
	if err != nil {
		diags = append(diags, diag.New(diag.SchemaError, subjectIRI, "%v", err).Diagnostic())
		return Result{Diagnostics: diags, State: StateAborted, TraceID: traceID}, err
	}
	diags = append(diags, idxResult.Diagnostics...)

	for _, t := range idxResult.Seeds {
		st.Add(t)
	}

	state := initialState(composed, ev.opts.Units)
	var provenance []string

	exprNodes, queryNodes := partitionNodes(idxResult.Nodes)

	log.Debugw("scheduling", "nodes", len(idxResult.Nodes))
	layers := scheduler.Layer(exprNodes)

	if aborted := runAcyclicStages(ctx, layers.Stages, it, st, state, subjectIRI, &provenance, &diags); aborted {
		return abortedResult(st, diags, composed, state, provenance, traceID), nil
	}

	if aborted := runFixpointLayer(ctx, layers.FixpointLayer, it, st, state, subjectIRI, &provenance, &diags); aborted {
		return abortedResult(st, diags, composed, state, provenance, traceID), nil
	}

	if len(queryNodes) > 0 {
		log.Debugw("evaluating query directives", "count", len(queryNodes))
		if aborted := runQueryNodes(ctx, queryNodes, it, st, state, subjectIRI, &provenance, &diags); aborted {
			return abortedResult(st, diags, composed, state, provenance, traceID), nil
		}
	}

	log.Debugw("done", "triples", st.Len())
	return Result{
		Triples:     st.All(),
		Diagnostics: diags,
		Value:       rootValue(composed, state),
		Provenance:  provenance,
		State:       StateDone,
		TraceID:     traceID,
	}, nil
}

func abortedResult(st *store.Store, diags []diag.Diagnostic, composed document.Value, state map[string]document.Value, provenance []string, traceID string) Result {
	return Result{
		Triples:     st.All(),
		Diagnostics: diags,
		Value:       rootValue(composed, state),
		Provenance:  provenance,
		State:       StateAborted,
		TraceID:     traceID,
	}
}

// runAcyclicStages evaluates each dependency-ordered stage in turn.
// Reads within a stage see only the state committed by earlier stages
// (I1): the scope snapshot is frozen before the stage starts and
// results are merged into state only once the whole stage completes.
func runAcyclicStages(ctx context.Context, stages [][]*indexer.Node, it *interp.Interpreter, st *store.Store, state map[string]document.Value, subjectIRI string, provenance *[]string, diags *[]diag.Diagnostic) (aborted bool) {
	for _, stage := range stages {
		if ctx.Err() != nil {
			*diags = append(*diags, diag.New(diag.Timeout, "", "evaluation cancelled").Diagnostic())
			return true
		}
		snapshot := cloneState(state)
		updates := map[string]document.Value{}
		for _, n := range stage {
			v, err := evalExprValue(it, snapshot, n)
			if err != nil {
				*diags = append(*diags, toDiagnostic(n, err))
				continue
			}
			updates[n.PlainKey] = v
			updates[n.ID] = v
			emitTriple(st, subjectIRI, n, v, provenance)
		}
		for k, v := range updates {
			state[k] = v
		}
	}
	return false
}

// runFixpointLayer iterates the fixpoint layer up to
// scheduler.MaxFixpointIterations times, committing each iteration's results only after the whole
// iteration finishes (same I1 discipline as an acyclic stage), and
// emits triples once per settled node rather than once per iteration.
func runFixpointLayer(ctx context.Context, nodes []*indexer.Node, it *interp.Interpreter, st *store.Store, state map[string]document.Value, subjectIRI string, provenance *[]string, diags *[]diag.Diagnostic) (aborted bool) {
	if len(nodes) == 0 {
		return false
	}
	for _, n := range nodes {
		if _, ok := state[n.PlainKey]; !ok {
			state[n.PlainKey] = document.Null()
		}
		if _, ok := state[n.ID]; !ok {
			state[n.ID] = document.Null()
		}
	}

	// committed/pending double buffer keyed off the iteration index
	// scheduler.Run passes to eval: every node within one iteration
	// reads the same frozen committed snapshot (no intra-iteration
	// leakage, I1's spirit applied to the fixpoint layer), and a new
	// iteration first folds the previous iteration's writes into
	// committed before anything runs.
	committed := cloneState(state)
	pending := map[string]document.Value{}
	lastIter := -1

	eval := func(ctx context.Context, n *indexer.Node, iteration int) (document.Value, error) {
		if iteration != lastIter {
			for k, v := range pending {
				committed[k] = v
			}
			pending = map[string]document.Value{}
			lastIter = iteration
			it.InvalidateMemo()
		}
		v, err := evalExprValue(it, committed, n)
		if err != nil {
			return document.Null(), err
		}
		pending[n.PlainKey] = v
		pending[n.ID] = v
		return v, nil
	}

	layers := &scheduler.Layers{FixpointLayer: nodes}
	values, schedDiags, schedAborted := scheduler.Run(ctx, layers, eval)
	*diags = append(*diags, schedDiags...)
	if schedAborted {
		return true
	}

	for _, n := range nodes {
		v, settled := values[n.ID]
		if !settled {
			delete(state, n.PlainKey)
			delete(state, n.ID)
			continue
		}
		state[n.PlainKey] = v
		state[n.ID] = v
		emitTriple(st, subjectIRI, n, v, provenance)
	}
	return false
}

func runQueryNodes(ctx context.Context, nodes []*indexer.Node, it *interp.Interpreter, st *store.Store, state map[string]document.Value, subjectIRI string, provenance *[]string, diags *[]diag.Diagnostic) (aborted bool) {
	if ctx.Err() != nil {
		*diags = append(*diags, diag.New(diag.Timeout, "", "evaluation cancelled").Diagnostic())
		return true
	}
	for _, n := range nodes {
		v, err := evalQueryDirective(it, st, subjectIRI, n, provenance)
		if err != nil {
			*diags = append(*diags, toDiagnostic(n, err))
			continue
		}
		state[n.PlainKey] = v
		state[n.ID] = v
	}
	return false
}

func cloneState(state map[string]document.Value) map[string]document.Value {
	out := make(map[string]document.Value, len(state))
	for k, v := range state {
		out[k] = v
	}
	return out
}

func toDiagnostic(n *indexer.Node, err error) diag.Diagnostic {
	if ee, ok := err.(diag.EvalError); ok {
		return ee.Diagnostic()
	}
	return diag.New(diag.ExprErr, n.ID, "%v", err).Diagnostic()
}

func emitTriple(st *store.Store, subjectIRI string, n *indexer.Node, v document.Value, provenance *[]string) {
	if n.Kind == indexer.KindConstraint {
		return
	}
	if s, ok := document.SerializeTripleObject(v); ok {
		st.Add(store.Triple{S: subjectIRI, P: n.ID, O: s})
		*provenance = append(*provenance, "compute")
	}
}

// documentContext extracts the @context map, if any.
func documentContext(doc document.Value) *document.Context {
	if doc.Kind != document.KindObject {
		return document.NewContext()
	}
	if v, ok := doc.Obj.Get("@context"); ok {
		return document.ParseContext(v)
	}
	return document.NewContext()
}

// rootSubjectIRI resolves @id, expanding it through the context; falls
// back to an opaque document-local subject if @id is absent.
func rootSubjectIRI(doc document.Value, ctx *document.Context) string {
	if doc.Kind == document.KindObject {
		if v, ok := doc.Obj.Get("@id"); ok && v.Kind == document.KindString {
			return ctx.Expand(v.S)
		}
	}
	return "urn:ldc:doc"
}

// initialState seeds the scope with every inert root property so that
// directive expressions can read them by plain key, before any
// computed value overwrites the placeholder. A string of the form
// "<decimal> <unit-name>" is materialized as a quantity, the same
// coercion the triple store's serialization inverts, so an expression
// like a+b over two currency-string properties does quantity addition
// rather than string concatenation.
func initialState(doc document.Value, reg units.Registry) map[string]document.Value {
	state := map[string]document.Value{}
	if doc.Kind != document.KindObject {
		return state
	}
	for _, key := range doc.Obj.Keys() {
		if reservedRootKey(key) {
			continue
		}
		v, _ := doc.Obj.Get(key)
		if isDirectiveValue(v) {
			continue
		}
		state[key] = coerceQuantityString(v, reg)
	}
	return state
}

// coerceQuantityString recognizes a document string encoding a
// quantity (the same "<decimal> <unit-name>" shape SerializeTripleObject
// produces) and lifts it to a quantity value; anything else, including a
// string that merely fails to parse that way, passes through unchanged.
func coerceQuantityString(v document.Value, reg units.Registry) document.Value {
	if v.Kind != document.KindString {
		return v
	}
	if q, ok := units.ParseQuantityString(v.S, reg); ok {
		return document.Quantity(q)
	}
	return v
}

func reservedRootKey(key string) bool {
	switch key {
	case "@id", "@context", "@type", "@relations", "@stable":
		return true
	default:
		return false
	}
}

func isDirectiveValue(v document.Value) bool {
	if v.Kind != document.KindObject {
		return false
	}
	return v.Obj.Has("@expr") || v.Obj.Has("@view") || v.Obj.Has("@constraint") || v.Obj.Has("@query")
}

func partitionNodes(nodes []*indexer.Node) (expr, queries []*indexer.Node) {
	for _, n := range nodes {
		if n.Kind == indexer.KindQuery {
			queries = append(queries, n)
		} else {
			expr = append(expr, n)
		}
	}
	return expr, queries
}

// evalExprValue evaluates an @expr/@view/@constraint node's expression
// against a frozen scope snapshot. A falsy @constraint yields
// LDC_CONSTRAINT_FAILED; the value itself is still returned so the
// caller can record it for visibility even though no triple is emitted.
func evalExprValue(it *interp.Interpreter, scopeState map[string]document.Value, n *indexer.Node) (document.Value, error) {
	scope := interp.NewScope(nil)
	for k, v := range scopeState {
		scope.Set(k, v)
	}

	v, err := it.EvalDirective(n.Expr, scope, nil)
	if err != nil {
		if _, ok := err.(diag.EvalError); ok {
			return document.Null(), err
		}
		return document.Null(), diag.New(diag.ExprErr, n.ID, "%v", err)
	}

	if n.Kind == indexer.KindConstraint && !v.Truthy() {
		return v, diag.New(diag.ConstraintFailed, n.ID, "constraint failed")
	}
	return v, nil
}

// evalQueryDirective runs a @query directive against the now-complete
// triple store; the first column of the first row becomes the
// property's value.
func evalQueryDirective(it *interp.Interpreter, st *store.Store, subjectIRI string, n *indexer.Node, provenance *[]string) (document.Value, error) {
	rows, err := query.Execute(n.Query, st, it)
	if err != nil {
		if qe, ok := err.(query.QueryError); ok {
			return document.Null(), diag.New(diag.QueryErr, n.ID, "%s", qe.Message)
		}
		return document.Null(), diag.New(diag.QueryErr, n.ID, "%v", err)
	}
	if len(rows) == 0 || len(n.Query.Select) == 0 {
		return document.Null(), nil
	}
	v := rows[0][n.Query.Select[0].Alias]
	if s, ok := document.SerializeTripleObject(v); ok {
		st.Add(store.Triple{S: subjectIRI, P: n.ID, O: s})
		*provenance = append(*provenance, "fetch")
	}
	return v, nil
}

// rootValue builds the result's value map: the composed document's
// root properties with every computed node's placeholder replaced by
// its resolved value.
func rootValue(doc document.Value, state map[string]document.Value) document.Value {
	if doc.Kind != document.KindObject {
		return doc
	}
	out := document.NewObject()
	for _, key := range doc.Obj.Keys() {
		if reservedRootKey(key) {
			continue
		}
		if v, ok := state[key]; ok {
			out.Set(key, v)
			continue
		}
		v, _ := doc.Obj.Get(key)
		out.Set(key, v)
	}
	return document.Obj(out)
}
