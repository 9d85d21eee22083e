// Package eval implements the evaluator façade: Composer -> Indexer ->
// Scheduler -> per-layer evaluation, driven by an
// Options struct in the small-typed-config style used throughout this
// module.
package eval

import (
	"time"

	"github.com/ldcrun/ldc/internal/compose"
	"github.com/ldcrun/ldc/internal/units"
	"go.uber.org/zap"
)

// Options configures one evaluation run. Build it with NewOptions, which
// fills in a zap.NewNop() logger and the default unit registry; the zero
// value leaves Logger and Units nil. Evaluate does not read
// FixpointLimit, LayerTimeout or Now: the fixpoint cap is always
// scheduler.MaxFixpointIterations, no per-layer timeout is applied, and
// $now reads the system clock.
type Options struct {
	FixpointLimit int
	LayerTimeout  time.Duration
	Now           time.Time
	Units         units.Registry
	Loader        compose.Loader
	Logger        *zap.SugaredLogger
	SignKeyID     string
	SignSecret    string
}

// Option mutates an Options value, in the functional-option idiom for
// small config structs.
type Option func(*Options)

func WithFixpointLimit(n int) Option { return func(o *Options) { o.FixpointLimit = n } }
func WithLayerTimeout(d time.Duration) Option {
	return func(o *Options) { o.LayerTimeout = d }
}
func WithNow(t time.Time) Option           { return func(o *Options) { o.Now = t } }
func WithUnits(r units.Registry) Option    { return func(o *Options) { o.Units = r } }
func WithLoader(l compose.Loader) Option   { return func(o *Options) { o.Loader = l } }
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *Options) { o.Logger = l }
}
func WithSigning(keyID, secret string) Option {
	return func(o *Options) { o.SignKeyID, o.SignSecret = keyID, secret }
}

// NewOptions builds an Options value with spec defaults plus whatever
// the caller overrides.
func NewOptions(opts ...Option) Options {
	o := Options{
		FixpointLimit: 10,
		Now:           time.Now().UTC(),
		Units:         units.DefaultRegistry(),
		Logger:        zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	if o.Units == nil {
		o.Units = units.DefaultRegistry()
	}
	return o
}
