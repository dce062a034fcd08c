// Copyright 2025 The luaq Authors
// SPDX-License-Identifier: MIT

package luaq

import (
	"io"
	"math"
	"strconv"
	"strings"

	"luaq.dev/pkg/lualex"
)

// Kind identifies the variant held by a [Value].
type Kind int

// Kinds of values, named after the Lua types they represent.
// Integers and floats are distinct kinds,
// matching Lua 5.4's two number subtypes.
const (
	KindNil Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindTable
)

// String returns the Lua-facing name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTable:
		return "table"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

type valueType byte

const (
	valueTypeNil     valueType = 0
	valueTypeBoolean valueType = 1
	valueTypeNumber  valueType = 3
	valueTypeString  valueType = 4
	valueTypeTable   valueType = 5
)

// Variants.
const (
	valueTypeFalse   = valueTypeBoolean
	valueTypeTrue    = valueTypeBoolean | (1 << 4)
	valueTypeFloat   = valueTypeNumber
	valueTypeInteger = valueTypeNumber | (1 << 4)
)

func (t valueType) noVariant() valueType {
	return t & 0x0f
}

// Value is a single Lua data value:
// nil, a boolean, an integer, a float, a string, or a table.
// The zero value is nil.
//
// Strings hold arbitrary bytes and need not be valid UTF-8.
// Values other than tables can be compared with == ;
// two table values are == only if they are the same table.
type Value struct {
	bits uint64
	s    string
	tab  *Table
	t    valueType
}

// Nil is the nil value.
// It is the zero [Value] and is provided for readability.
var Nil = Value{}

// BoolValue converts a boolean to a [Value].
func BoolValue(b bool) Value {
	if b {
		return Value{t: valueTypeTrue}
	}
	return Value{t: valueTypeFalse}
}

// IntegerValue converts an integer to a [Value].
func IntegerValue(i int64) Value {
	return Value{
		t:    valueTypeInteger,
		bits: uint64(i),
	}
}

// FloatValue converts a floating-point number to a [Value].
func FloatValue(f float64) Value {
	return Value{
		t:    valueTypeFloat,
		bits: math.Float64bits(f),
	}
}

// StringValue converts a string to a [Value].
// The string is an arbitrary byte sequence; no encoding is assumed.
func StringValue(s string) Value {
	return Value{
		t: valueTypeString,
		s: s,
	}
}

// BytesValue converts a byte slice to a string [Value], copying it.
func BytesValue(b []byte) Value {
	return StringValue(string(b))
}

// TableValue converts a table to a [Value].
// A nil *Table is treated as an empty table.
func TableValue(tab *Table) Value {
	if tab == nil {
		tab = new(Table)
	}
	return Value{t: valueTypeTable, tab: tab}
}

// Kind returns the kind of value held.
func (v Value) Kind() Kind {
	switch v.t {
	case valueTypeNil:
		return KindNil
	case valueTypeFalse, valueTypeTrue:
		return KindBoolean
	case valueTypeInteger:
		return KindInteger
	case valueTypeFloat:
		return KindFloat
	case valueTypeString:
		return KindString
	case valueTypeTable:
		return KindTable
	default:
		return KindNil
	}
}

// IsNil reports whether v is the zero value.
func (v Value) IsNil() bool {
	return v.t == valueTypeNil
}

// IsNumber reports whether the value is a number.
func (v Value) IsNumber() bool {
	return v.t.noVariant() == valueTypeNumber
}

// IsInteger reports whether the value is an integer.
func (v Value) IsInteger() bool {
	return v.t == valueTypeInteger
}

// IsString reports whether the value is a string.
func (v Value) IsString() bool {
	return v.t.noVariant() == valueTypeString
}

// IsBoolean reports whether the value is a boolean.
func (v Value) IsBoolean() bool {
	return v.t.noVariant() == valueTypeBoolean
}

// IsTable reports whether the value is a table.
func (v Value) IsTable() bool {
	return v.t == valueTypeTable
}

// IsNaN reports whether the value is a floating-point NaN.
func (v Value) IsNaN() bool {
	f, isFloat := v.floatBits()
	return isFloat && math.IsNaN(f)
}

func (v Value) floatBits() (float64, bool) {
	if v.t != valueTypeFloat {
		return 0, false
	}
	return math.Float64frombits(v.bits), true
}

// Bool reports whether the value tests true in Lua
// and whether the value is a boolean.
func (v Value) Bool() (_ bool, isBool bool) {
	return v.t != valueTypeNil && v.t != valueTypeFalse, v.t.noVariant() == valueTypeBoolean
}

// Float64 returns the value as a floating-point number
// and reports whether the value is a number.
// Integers are widened; no other coercion occurs.
func (v Value) Float64() (_ float64, isNumber bool) {
	switch v.t {
	case valueTypeInteger:
		return float64(int64(v.bits)), true
	case valueTypeFloat:
		return math.Float64frombits(v.bits), true
	default:
		return 0, false
	}
}

// Int64 returns the value as an integer
// and reports whether the value is an integer.
// Floats are not converted; see [FloatToInteger].
func (v Value) Int64() (_ int64, isInteger bool) {
	if v.t != valueTypeInteger {
		return 0, false
	}
	return int64(v.bits), true
}

// Unquoted returns the value as a string
// and reports whether the value is a string.
// Numbers are coerced to their decimal text,
// but isString will be false.
func (v Value) Unquoted() (s string, isString bool) {
	switch v.t {
	case valueTypeString:
		return v.s, true
	case valueTypeFloat:
		return formatFloat(math.Float64frombits(v.bits)), false
	case valueTypeInteger:
		return strconv.FormatInt(int64(v.bits), 10), false
	default:
		return "", false
	}
}

// Table returns the value's table
// and reports whether the value is a table.
func (v Value) Table() (_ *Table, isTable bool) {
	if v.t != valueTypeTable {
		return nil, false
	}
	return v.tab, true
}

// Equal reports whether two values are equivalent according to [Lua equality],
// with two extensions for deterministic comparison of parsed data:
// tables are compared by their entries (same length, same pairs, same order)
// rather than by identity,
// and two NaN floats are considered equal when their bit patterns match.
//
// [Lua equality]: https://lua.org/manual/5.4/manual.html#3.4.4
func (v Value) Equal(v2 Value) bool {
	switch v.t {
	case valueTypeNil, valueTypeFalse, valueTypeTrue:
		return v.t == v2.t
	case valueTypeFloat, valueTypeInteger:
		if v.t == v2.t {
			if v.bits == v2.bits {
				return true
			}
			if v.t == valueTypeFloat {
				f1, _ := v.floatBits()
				f2, _ := v2.floatBits()
				return f1 == f2
			}
			return false
		}
		// Mixed integer/float comparison is exact:
		// the float must have the integer's mathematical value.
		// math.MaxInt64 is not equal to 2^63.0.
		iv, fv := v, v2
		if v.t == valueTypeFloat {
			iv, fv = v2, v
		}
		i, isInteger := iv.Int64()
		f, isFloat := fv.floatBits()
		if !isInteger || !isFloat {
			return false
		}
		i2, ok := FloatToInteger(f)
		return ok && i2 == i
	case valueTypeString:
		return v2.IsString() && v.s == v2.s
	case valueTypeTable:
		t2, ok := v2.Table()
		if !ok || v.tab.Len() != t2.Len() {
			return false
		}
		for i, ent := range v.tab.entries {
			ent2 := t2.entries[i]
			if !ent.Key.Equal(ent2.Key) || !ent.Value.Equal(ent2.Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the value as a Lua data literal
// that the parser reads back to an equal value.
// Strings use %q-style quoting,
// NaN renders as "(0/0)",
// and infinities render as "1e9999" and "-1e9999".
func (v Value) String() string {
	sb := new(strings.Builder)
	v.appendLua(sb)
	return sb.String()
}

// WriteTo writes the value to w as a Lua data literal,
// in the same form as [Value.String].
// It implements [io.WriterTo].
func (v Value) WriteTo(w io.Writer) (int64, error) {
	sb := new(strings.Builder)
	v.appendLua(sb)
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func (v Value) appendLua(sb *strings.Builder) {
	switch v.t {
	case valueTypeNil:
		sb.WriteString("nil")
	case valueTypeFalse:
		sb.WriteString("false")
	case valueTypeTrue:
		sb.WriteString("true")
	case valueTypeInteger:
		sb.WriteString(strconv.FormatInt(int64(v.bits), 10))
	case valueTypeFloat:
		f := math.Float64frombits(v.bits)
		switch {
		case math.IsNaN(f):
			sb.WriteString("(0/0)")
		case math.IsInf(f, 1):
			sb.WriteString("1e9999")
		case math.IsInf(f, -1):
			sb.WriteString("-1e9999")
		default:
			sb.WriteString(formatFloat(f))
		}
	case valueTypeString:
		sb.WriteString(lualex.Quote(v.s))
	case valueTypeTable:
		v.tab.appendLua(sb)
	default:
		sb.WriteString("<invalid value>")
	}
}

// formatFloat renders a finite float with enough digits to read back exactly,
// always marking it as a float (trailing ".0" when there is no point or exponent).
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// FloatToInteger attempts to convert a floating-point number
// to the exactly equal integer.
// It reports failure for NaN, infinities, non-integral values,
// and values outside the int64 range.
func FloatToInteger(f float64) (_ int64, ok bool) {
	if math.Floor(f) != f {
		return 0, false
	}
	// math.MinInt64 has an exact float representation;
	// math.MaxInt64 does not, so compare against -MinInt64 exclusively.
	if !(math.MinInt64 <= f && f < -math.MinInt64) {
		return 0, false
	}
	return int64(f), true
}
