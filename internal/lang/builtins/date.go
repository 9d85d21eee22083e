package builtins

import (
	"time"

	"github.com/ldcrun/ldc/internal/diag"
	"github.com/ldcrun/ldc/internal/document"
)

func (r *Registry) registerDate() {
	r.add("$now", func(args []document.Value, _ *document.Value) (document.Value, error) {
		return document.Timestamp(time.Now().UTC()), nil
	})
	r.add("$parseDate", func(args []document.Value, _ *document.Value) (document.Value, error) {
		s, ok := str(arg(args, 0))
		if !ok {
			return document.Value{}, diag.New(diag.ExprErr, "", "$parseDate expects a string")
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return document.Value{}, diag.New(diag.ExprErr, "", "cannot parse %q as RFC3339", s)
		}
		return document.Timestamp(t), nil
	})
	r.add("$formatDate", func(args []document.Value, _ *document.Value) (document.Value, error) {
		v := arg(args, 0)
		if v.Kind != document.KindTimestamp {
			return document.Value{}, diag.New(diag.ExprErr, "", "$formatDate expects a timestamp")
		}
		layout := time.RFC3339
		if l, ok := str(arg(args, 1)); ok {
			layout = goLayout(l)
		}
		return document.Str(v.Ts.Format(layout)), nil
	})
	r.add("$dateAdd", func(args []document.Value, _ *document.Value) (document.Value, error) {
		v := arg(args, 0)
		if v.Kind != document.KindTimestamp {
			return document.Value{}, diag.New(diag.ExprErr, "", "$dateAdd expects a timestamp")
		}
		amount := arg(args, 1)
		unit, _ := str(arg(args, 2))
		n := int64(0)
		switch {
		case amount.Kind == document.KindInt:
			n = amount.I
		default:
			if d, ok := amount.AsDecimal(); ok {
				n = int64(d.Float64())
			}
		}
		var dur time.Duration
		switch unit {
		case "seconds", "second":
			dur = time.Duration(n) * time.Second
		case "minutes", "minute":
			dur = time.Duration(n) * time.Minute
		case "hours", "hour":
			dur = time.Duration(n) * time.Hour
		case "days", "day", "":
			dur = time.Duration(n) * 24 * time.Hour
		default:
			return document.Value{}, diag.New(diag.ExprErr, "", "unknown date unit %q", unit)
		}
		return document.Timestamp(v.Ts.Add(dur)), nil
	})
	r.add("$dateDiff", func(args []document.Value, _ *document.Value) (document.Value, error) {
		a, b := arg(args, 0), arg(args, 1)
		if a.Kind != document.KindTimestamp || b.Kind != document.KindTimestamp {
			return document.Value{}, diag.New(diag.ExprErr, "", "$dateDiff expects two timestamps")
		}
		unit, _ := str(arg(args, 2))
		diffSeconds := a.Ts.Sub(b.Ts).Seconds()
		switch unit {
		case "seconds", "second", "":
			return document.Int(int64(diffSeconds)), nil
		case "minutes", "minute":
			return document.Int(int64(diffSeconds / 60)), nil
		case "hours", "hour":
			return document.Int(int64(diffSeconds / 3600)), nil
		case "days", "day":
			return document.Int(int64(diffSeconds / 86400)), nil
		default:
			return document.Value{}, diag.New(diag.ExprErr, "", "unknown date unit %q", unit)
		}
	})
}

// goLayout maps a handful of strftime-ish tokens the documents are
// expected to use onto Go's reference-time layout strings.
func goLayout(l string) string {
	switch l {
	case "date":
		return "2006-01-02"
	case "datetime":
		return "2006-01-02 15:04:05"
	default:
		return l
	}
}
