package core

import (
	"fmt"
	"math"
	"strconv"
)

type valueKind uint8

const (
	nullKind valueKind = iota
	stringKind
	intKind
	boolKind
)

// Value is an attribute value: null, string, integer or boolean.
// The zero Value is null.
type Value struct {
	kind valueKind
	s    string
	i    int64
	b    bool
}

// Null returns the null Value.
func Null() Value { return Value{} }

// String returns a string Value.
func String(s string) Value { return Value{kind: stringKind, s: s} }

// Int returns an integer Value.
func Int(i int) Value { return Value{kind: intKind, i: int64(i)} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: boolKind, b: b} }

// ValueOf converts a decoded scalar (as produced by YAML or JSON decoders)
// into a Value. Floats must be integral; anything else is rejected.
func ValueOf(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(v), nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(v), nil
	case int64:
		return Value{kind: intKind, i: v}, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return Value{}, fmt.Errorf("unsupported attribute value %v", v)
		}
		return Value{kind: intKind, i: int64(v)}, nil
	default:
		return Value{}, fmt.Errorf("unsupported attribute value of type %T", x)
	}
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == nullKind }

// Integer returns the integer held by v, if any.
func (v Value) Integer() (int64, bool) { return v.i, v.kind == intKind }

// String renders v the way it would appear in AsciiDoc source.
// Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case stringKind:
		return v.s
	case intKind:
		return strconv.FormatInt(v.i, 10)
	case boolKind:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case stringKind:
		return EncodeJSON(v.s, "")
	case intKind:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case boolKind:
		return []byte(strconv.FormatBool(v.b)), nil
	default:
		return []byte("null"), nil
	}
}

// Attributes maps attribute names to values.
type Attributes map[string]Value

// Get returns the value stored under key.
func (a Attributes) Get(key string) (Value, bool) {
	v, ok := a[key]
	return v, ok
}

// Lookup returns the non-null value under key rendered as a string.
func (a Attributes) Lookup(key string) (string, bool) {
	v, ok := a[key]
	if !ok || v.IsNull() {
		return "", false
	}
	return v.String(), true
}

// Has reports whether key is set.
func (a Attributes) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Clone returns a shallow copy of a. A nil map clones to an empty map so the
// result always serializes as an object.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
