package document

import (
	"strconv"
	"time"

	"github.com/ldcrun/ldc/internal/units"
)

// SerializeTripleObject converts a Value to its triple-object string
// encoding. Arrays and objects do not produce triples; ok is false for
// those (and for functions).
func SerializeTripleObject(v Value) (s string, ok bool) {
	switch v.Kind {
	case KindNull:
		return "null", true
	case KindBool:
		if v.B {
			return "true", true
		}
		return "false", true
	case KindInt:
		return strconv.FormatInt(v.I, 10), true
	case KindDecimal:
		return v.D.String(), true
	case KindString:
		return v.S, true
	case KindTimestamp:
		return v.Ts.UTC().Format(time.RFC3339), true
	case KindQuantity:
		if code, isCur := units.CurrencyCode(v.Q.Unit); isCur {
			return v.Q.Magnitude.Truncate(5).StringFixed(5) + " " + code, true
		}
		return v.Q.Magnitude.String() + " " + v.Q.Unit.Name, true
	default:
		return "", false
	}
}
