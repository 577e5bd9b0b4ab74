package conditions

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the kind of a Value. Number and Any appear only in function
// signatures; no Value has those kinds.
type Kind int8

const (
	// Bool is the kind of true and false. The zero Value is a Bool.
	Bool Kind = iota
	// Int is the kind of 64-bit signed integers.
	Int
	// Float is the kind of 64-bit floating-point numbers.
	Float
	// String is the kind of strings.
	String

	// Number matches Int or Float in a Signature.
	Number
	// Any matches every kind in a Signature.
	Any
)

var kindnames = [...]string{
	Bool:   "bool",
	Int:    "int",
	Float:  "float",
	String: "string",
	Number: "number",
	Any:    "any",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindnames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindnames[k]
}

// accepts reports whether a value of kind v satisfies k in a signature.
func (k Kind) accepts(v Kind) bool {
	switch k {
	case Any:
		return true
	case Number:
		return v == Int || v == Float
	default:
		return k == v
	}
}

// Value is a runtime value. It is always exactly one of a bool, an int64, a
// float64, or a string.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// BoolValue creates a Bool value.
func BoolValue(b bool) Value {
	if b {
		return Value{kind: Bool, i: 1}
	}
	return Value{kind: Bool}
}

// IntValue creates an Int value.
func IntValue(i int64) Value {
	return Value{kind: Int, i: i}
}

// FloatValue creates a Float value.
func FloatValue(f float64) Value {
	return Value{kind: Float, f: f}
}

// StringValue creates a String value.
func StringValue(s string) Value {
	return Value{kind: String, s: s}
}

// Kind returns the kind of v.
func (v Value) Kind() Kind {
	return v.kind
}

// Bool returns v's boolean if it is a Bool.
func (v Value) Bool() (b, ok bool) {
	return v.i != 0, v.kind == Bool
}

// Int returns v's integer if it is an Int.
func (v Value) Int() (int64, bool) {
	return v.i, v.kind == Int
}

// Float returns v's float if it is a Float.
func (v Value) Float() (float64, bool) {
	return v.f, v.kind == Float
}

// Str returns v's string if it is a String.
func (v Value) Str() (string, bool) {
	return v.s, v.kind == String
}

// Interface returns v as a bool, int64, float64, or string.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.i != 0
	case Int:
		return v.i
	case Float:
		return v.f
	case String:
		return v.s
	default:
		panic("conditions: invalid value kind " + v.kind.String())
	}
}

// String formats v the same way ToString converts it.
func (v Value) String() string {
	return ToString(v)
}

// GoString formats v with strings quoted, so that "1" and 1 are distinct.
func (v Value) GoString() string {
	if v.kind == String {
		return strconv.Quote(v.s)
	}
	return ToString(v)
}

// Equal reports whether v and w have the same kind and the same value.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case Float:
		return v.f == w.f
	case String:
		return v.s == w.s
	default:
		return v.i == w.i
	}
}

// ToBool converts v to a truth value. Numbers are true when nonzero. Strings
// are true when they are "true" in any case or exactly "1".
func ToBool(v Value) bool {
	switch v.kind {
	case Bool, Int:
		return v.i != 0
	case Float:
		return v.f != 0
	case String:
		return strings.EqualFold(v.s, "true") || v.s == "1"
	default:
		panic("conditions: invalid value kind " + v.kind.String())
	}
}

// ToNumber converts v to an Int or Float. Booleans become 0 or 1. Strings are
// parsed as integers if possible and as floats otherwise; a string that is
// neither results in a *TypeError.
func ToNumber(v Value) (Value, error) {
	switch v.kind {
	case Bool:
		return IntValue(v.i), nil
	case Int, Float:
		return v, nil
	case String:
		s := strings.TrimSpace(v.s)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return IntValue(i), nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return FloatValue(f), nil
		}
		return Value{}, &TypeError{Want: Number, Got: v}
	default:
		panic("conditions: invalid value kind " + v.kind.String())
	}
}

// ToString converts v to a string. Floats always include a decimal point
// when they are finite.
func ToString(v Value) string {
	switch v.kind {
	case Bool:
		if v.i != 0 {
			return "true"
		}
		return "false"
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return formatFloat(v.f)
	case String:
		return v.s
	default:
		panic("conditions: invalid value kind " + v.kind.String())
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// asFloat returns the float64 value of an Int or Float.
func (v Value) asFloat() float64 {
	if v.kind == Int {
		return float64(v.i)
	}
	return v.f
}

// ValueOf converts a Go value to a Value. It accepts Value, bool, string, and
// any built-in integer or floating-point type. Unsigned integers too large
// for int64 become floats. Other types result in a *TypeError.
func ValueOf(x any) (Value, error) {
	switch x := x.(type) {
	case Value:
		return x, nil
	case bool:
		return BoolValue(x), nil
	case string:
		return StringValue(x), nil
	case int:
		return IntValue(int64(x)), nil
	case int8:
		return IntValue(int64(x)), nil
	case int16:
		return IntValue(int64(x)), nil
	case int32:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case uint:
		return unsigned(uint64(x)), nil
	case uint8:
		return IntValue(int64(x)), nil
	case uint16:
		return IntValue(int64(x)), nil
	case uint32:
		return IntValue(int64(x)), nil
	case uint64:
		return unsigned(x), nil
	case float32:
		return FloatValue(float64(x)), nil
	case float64:
		return FloatValue(x), nil
	default:
		return Value{}, &TypeError{Want: Any, Native: x}
	}
}

func unsigned(u uint64) Value {
	if u > math.MaxInt64 {
		return FloatValue(float64(u))
	}
	return IntValue(int64(u))
}
