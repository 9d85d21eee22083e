// Package canon implements canonical JSON encoding: sorted object keys
// at every level, no insignificant whitespace, numbers rendered without
// exponents at up to 15 significant digits, and NaN/Inf folded to null.
// It reaches for encoding/json to do the string-escaping grunt work,
// but the object/number walk is hand-rolled so key order and number
// format are under our control rather than encoding/json's.
package canon

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ldcrun/ldc/internal/decimal"
	"github.com/ldcrun/ldc/internal/document"
)

// Marshal renders v as canonical JSON bytes.
func Marshal(v document.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := write(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Equal reports whether two values have identical canonical JSON — the
// "changed" test the scheduler's fixpoint layer uses.
func Equal(a, b document.Value) bool {
	ab, err1 := Marshal(a)
	bb, err2 := Marshal(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

func write(buf *bytes.Buffer, v document.Value) error {
	switch v.Kind {
	case document.KindNull:
		buf.WriteString("null")
	case document.KindBool:
		if v.B {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case document.KindInt:
		buf.WriteString(strconv.FormatInt(v.I, 10))
	case document.KindDecimal:
		writeDecimal(buf, v)
	case document.KindString:
		return writeString(buf, v.S)
	case document.KindTimestamp:
		return writeString(buf, v.Ts.UTC().Format(time.RFC3339Nano))
	case document.KindQuantity:
		return writeQuantity(buf, v)
	case document.KindArray:
		return writeArray(buf, v.Arr)
	case document.KindObject:
		return writeObject(buf, v.Obj)
	default:
		buf.WriteString("null")
	}
	return nil
}

func writeDecimal(buf *bytes.Buffer, v document.Value) {
	s := v.D.String()
	f, _ := strconv.ParseFloat(s, 64)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		buf.WriteString("null")
		return
	}
	if strings.Contains(s, ".") {
		// Non-integers: round to 15 significant digits, then print the
		// rounded value in plain (non-exponent) notation.
		if r, err := decimal.NewFromString(strconv.FormatFloat(f, 'g', 15, 64)); err == nil {
			s = r.String()
		}
	}
	buf.WriteString(s)
}

func writeString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func writeQuantity(buf *bytes.Buffer, v document.Value) error {
	buf.WriteByte('{')
	buf.WriteString(`"magnitude":`)
	writeDecimal(buf, document.Dec(v.Q.Magnitude))
	buf.WriteString(`,"unit":`)
	if err := writeString(buf, v.Q.Unit.Name); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func writeArray(buf *bytes.Buffer, arr []document.Value) error {
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := write(buf, elem); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeObject(buf *bytes.Buffer, obj *document.Object) error {
	buf.WriteByte('{')
	keys := append([]string(nil), obj.Keys()...)
	sort.Strings(keys)
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		val, _ := obj.Get(k)
		if err := write(buf, val); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}
