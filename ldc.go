// Package ldc is the module's top-level façade: load a linked-data
// computation document, evaluate it, and marshal the result.
package ldc

import (
	"context"
	"encoding/json"
	"os"

	"github.com/ldcrun/ldc/internal/canon"
	"github.com/ldcrun/ldc/internal/diag"
	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/eval"
	"github.com/ldcrun/ldc/internal/sign"
	"github.com/ldcrun/ldc/internal/store"
)

type (
	Result = eval.Result
	Options = eval.Options
	Option  = eval.Option
	State   = eval.State
)

// Re-exported option constructors, so a host never needs to import
// internal/eval directly.
var (
	WithFixpointLimit = eval.WithFixpointLimit
	WithLayerTimeout  = eval.WithLayerTimeout
	WithNow           = eval.WithNow
	WithUnits         = eval.WithUnits
	WithLoader        = eval.WithLoader
	WithLogger        = eval.WithLogger
	WithSigning       = eval.WithSigning
)

// LDC evaluates documents under one fixed set of options. Each
// Evaluate call is independent and safe to run concurrently: the
// evaluator allocates a fresh triple store and scope per call.
type LDC struct {
	ev   *eval.Evaluator
	opts eval.Options
}

func New(opts ...Option) *LDC {
	o := eval.NewOptions(opts...)
	return &LDC{ev: eval.New(o), opts: o}
}

// LoadOptionsFile builds an LDC from a YAML options file.
func LoadOptionsFile(path string) (*LDC, error) {
	o, err := eval.LoadOptionsFile(path)
	if err != nil {
		return nil, err
	}
	return &LDC{ev: eval.New(o), opts: o}, nil
}

// Load parses a document from raw JSON bytes.
func Load(b []byte) (document.Value, error) {
	return document.ParseJSONBytes(b)
}

// LoadFile reads and parses a document from disk.
func LoadFile(path string) (document.Value, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return document.Value{}, err
	}
	return Load(b)
}

// Evaluate runs one document through Composer -> Indexer -> Scheduler
// -> per-layer evaluation. It does not sign the result; Sign produces
// the HMAC header over the canonical value separately.
func (l *LDC) Evaluate(ctx context.Context, doc document.Value) (Result, error) {
	return l.ev.Evaluate(ctx, doc)
}

// Sign produces an HMAC signature header for a result's canonical
// value, using the LDC's configured key. Returns an empty string if no
// signing key was configured.
func (l *LDC) Sign(res Result) (string, error) {
	if l.opts.SignKeyID == "" {
		return "", nil
	}
	payload, err := canon.Marshal(res.Value)
	if err != nil {
		return "", err
	}
	return sign.Header(payload, l.opts.SignKeyID, l.opts.SignSecret), nil
}

// jsonResult is the wire shape MarshalResultJSON produces: the
// canonical value plus the diagnostics, triples, and provenance a host
// needs to render or audit the evaluation. TraceID is envelope-only: it
// rides alongside the canonical value but, unlike Value, is never part
// of the signed payload.
type jsonResult struct {
	State       eval.State        `json:"state"`
	TraceID     string            `json:"trace_id,omitempty"`
	Value       json.RawMessage   `json:"value"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
	Triples     []store.Triple    `json:"triples,omitempty"`
	Provenance  []string          `json:"provenance,omitempty"`
	Signature   string            `json:"signature,omitempty"`
}

// MarshalResultJSON renders a Result as JSON, with Value canonicalized
// via internal/canon rather than encoding/json's own map ordering.
func MarshalResultJSON(res Result, signature string) ([]byte, error) {
	valueJSON, err := canon.Marshal(res.Value)
	if err != nil {
		return nil, err
	}
	jr := jsonResult{
		State:       res.State,
		TraceID:     res.TraceID,
		Value:       valueJSON,
		Diagnostics: res.Diagnostics,
		Triples:     res.Triples,
		Provenance:  res.Provenance,
		Signature:   signature,
	}
	return json.Marshal(jr)
}
