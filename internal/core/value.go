package core

// value.go defines the scalar cell type shared by every conversion.
//
// A Value is exactly one of Null, Integer, Real or Text. Drivers and JSON
// decoders hand back loosely typed Go values; ValueOf folds them into this
// closed set so type dispatch (schema inference, CSV and JSON rendering)
// is an exhaustive switch on Kind.

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindReal
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindText:
		return "text"
	default:
		return "null"
	}
}

// Value is a single cell: null, integer, real or text.
// The zero Value is Null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: KindInteger, i: i} }

// Real returns a floating-point Value.
func Real(f float64) Value { return Value{kind: KindReal, f: f} }

// Text returns a text Value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int64 returns the integer payload and whether v is an Integer.
func (v Value) Int64() (int64, bool) { return v.i, v.kind == KindInteger }

// Float64 returns the real payload and whether v is a Real.
func (v Value) Float64() (float64, bool) { return v.f, v.kind == KindReal }

// Str returns the text payload and whether v is Text.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindText }

// Any returns the payload as a plain Go value for driver binding.
func (v Value) Any() any {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindReal:
		return v.f
	case KindText:
		return v.s
	default:
		return nil
	}
}

// String returns the CSV form: Null is empty, Real keeps a ".0" when integral.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return formatReal(v.f)
	case KindText:
		return v.s
	default:
		return ""
	}
}

// keyString is the form used for keyed JSON object keys.
func (v Value) keyString() string {
	if v.kind == KindNull {
		return "null"
	}
	return v.String()
}

// MarshalJSON renders v as a JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInteger:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindReal:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("unsupported real value %v", v.f)
		}
		return []byte(formatReal(v.f)), nil
	case KindText:
		return json.Marshal(v.s)
	default:
		return []byte("null"), nil
	}
}

// Equal reports whether v and o hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.i == o.i
	case KindReal:
		return v.f == o.f
	case KindText:
		return v.s == o.s
	default:
		return true
	}
}

// formatReal uses the shortest round-tripping form and keeps a trailing
// ".0" for integral values so a real never reads back as an integer.
func formatReal(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		format = 'g'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// ValueOf converts a driver or decoder value into a Value.
//
// Integers of every width become Integer, floats become Real, strings and
// byte slices become Text and nil becomes Null. Booleans become the Text
// "true"/"false"; times become RFC 3339 Text. json.Number becomes Integer
// when it parses as one, Text when it is an integer past int64, and Real
// otherwise. Anything else is rendered as JSON
// (or with fmt when that fails) and stored as Text.
func ValueOf(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint:
		if uint64(t) > math.MaxInt64 {
			return Text(strconv.FormatUint(uint64(t), 10))
		}
		return Int(int64(t))
	case uint64:
		if t > math.MaxInt64 {
			return Text(strconv.FormatUint(t, 10))
		}
		return Int(int64(t))
	case float32:
		return Real(float64(t))
	case float64:
		return Real(t)
	case string:
		return Text(t)
	case []byte:
		return Text(string(t))
	case bool:
		return Text(strconv.FormatBool(t))
	case time.Time:
		return Text(t.Format(time.RFC3339Nano))
	case json.Number:
		return numberValue(t)
	default:
		if b, err := json.Marshal(t); err == nil {
			return Text(string(b))
		}
		return Text(fmt.Sprint(t))
	}
}

// numberValue classifies a JSON number literal.
func numberValue(n json.Number) Value {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i)
		}
		// past int64: keep every digit
		return Text(s)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Real(f)
	}
	return Text(s)
}

// ValuesOf converts a row of driver values.
func ValuesOf(row []any) []Value {
	out := make([]Value, len(row))
	for i, x := range row {
		out[i] = ValueOf(x)
	}
	return out
}

// Args unwraps a row of Values for a driver call.
func Args(row []Value) []any {
	args := make([]any, len(row))
	for i, v := range row {
		args[i] = v.Any()
	}
	return args
}
