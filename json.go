// Copyright 2025 The luaq Authors
// SPDX-License-Identifier: MIT

package luaq

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// ToJSON renders a value as JSON.
//
// The mapping is lossy:
// NaN, infinities, non-UTF-8 strings,
// and tables whose keys are neither a 1..n sequence
// nor wholly strings/integers are errors.
// Integer table keys render as decimal strings in objects.
// Object keys appear in the table's insertion order.
func ToJSON(v Value) ([]byte, error) {
	return jsonv2.Marshal(v)
}

// ToJSONLossy renders a value as JSON like [ToJSON],
// but strings that are not valid UTF-8 are not an error:
// invalid byte sequences are replaced with U+FFFD.
// See [Value.WithLossyStrings] for the caveats of the replacement.
func ToJSONLossy(v Value) ([]byte, error) {
	return jsonv2.Marshal(v.WithLossyStrings())
}

// WithLossyStrings returns a value in which every string,
// including table keys, has invalid UTF-8 byte sequences
// replaced with the replacement character U+FFFD.
// The result always satisfies the string requirements of [ToJSON].
//
// The replacement loses data:
// distinct invalid keys may collide after replacement,
// in which case the later entry wins.
// Values without strings are returned unchanged.
func (v Value) WithLossyStrings() Value {
	switch v.t {
	case valueTypeString:
		if utf8.ValidString(v.s) {
			return v
		}
		return StringValue(strings.ToValidUTF8(v.s, string(utf8.RuneError)))
	case valueTypeTable:
		out := NewTable(v.tab.Len())
		for key, value := range v.tab.All() {
			out.Set(key.WithLossyStrings(), value.WithLossyStrings())
		}
		return TableValue(out)
	default:
		return v
	}
}

// FromJSON parses a JSON document into a value.
// The mapping is total:
// arrays become tables with implicit integer keys,
// objects become string-keyed tables in source order,
// and numbers become integers when they have an exact int64 value.
func FromJSON(data []byte) (Value, error) {
	var v Value
	if err := jsonv2.Unmarshal(data, &v); err != nil {
		return Value{}, err
	}
	return v, nil
}

// MarshalJSON implements [encoding/json.Marshaler].
func (v Value) MarshalJSON() ([]byte, error) {
	return jsonv2.Marshal(v)
}

// UnmarshalJSON implements [encoding/json.Unmarshaler].
func (v *Value) UnmarshalJSON(data []byte) error {
	return jsonv2.Unmarshal(data, v)
}

// MarshalJSONTo encodes the value onto enc.
// See [ToJSON] for the mapping.
func (v Value) MarshalJSONTo(enc *jsontext.Encoder) error {
	switch v.t {
	case valueTypeNil:
		return enc.WriteToken(jsontext.Null)
	case valueTypeFalse:
		return enc.WriteToken(jsontext.False)
	case valueTypeTrue:
		return enc.WriteToken(jsontext.True)
	case valueTypeInteger:
		return enc.WriteToken(jsontext.Int(int64(v.bits)))
	case valueTypeFloat:
		f := math.Float64frombits(v.bits)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("lua value %v has no JSON representation", v)
		}
		return enc.WriteToken(jsontext.Float(f))
	case valueTypeString:
		if !utf8.ValidString(v.s) {
			return fmt.Errorf("lua string %v is not valid UTF-8", v)
		}
		return enc.WriteToken(jsontext.String(v.s))
	case valueTypeTable:
		return v.tab.marshalJSONTo(enc)
	default:
		return fmt.Errorf("invalid lua value")
	}
}

func (tab *Table) marshalJSONTo(enc *jsontext.Encoder) error {
	if values, isSeq := tab.Sequence(); isSeq {
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for _, elem := range values {
			if err := elem.MarshalJSONTo(enc); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)
	}

	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	for key, value := range tab.All() {
		var name string
		switch key.Kind() {
		case KindString:
			name, _ = key.Unquoted()
			if !utf8.ValidString(name) {
				return fmt.Errorf("lua table key %v is not valid UTF-8", key)
			}
		case KindInteger:
			i, _ := key.Int64()
			name = strconv.FormatInt(i, 10)
		default:
			return fmt.Errorf("lua table key %v cannot become a JSON object key", key)
		}
		if err := enc.WriteToken(jsontext.String(name)); err != nil {
			return err
		}
		if err := value.MarshalJSONTo(enc); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndObject)
}

// UnmarshalJSONFrom decodes the next JSON value from dec.
// See [FromJSON] for the mapping.
func (v *Value) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	switch dec.PeekKind() {
	case 'n':
		if _, err := dec.ReadToken(); err != nil {
			return err
		}
		*v = Value{}
		return nil
	case 't', 'f':
		tok, err := dec.ReadToken()
		if err != nil {
			return err
		}
		*v = BoolValue(tok.Bool())
		return nil
	case '"':
		tok, err := dec.ReadToken()
		if err != nil {
			return err
		}
		*v = StringValue(tok.String())
		return nil
	case '0':
		raw, err := dec.ReadValue()
		if err != nil {
			return err
		}
		*v = numberValue(string(raw))
		return nil
	case '[':
		if _, err := dec.ReadToken(); err != nil {
			return err
		}
		tab := new(Table)
		for i := int64(1); dec.PeekKind() != ']'; i++ {
			var elem Value
			if err := elem.UnmarshalJSONFrom(dec); err != nil {
				return err
			}
			tab.Set(IntegerValue(i), elem)
		}
		if _, err := dec.ReadToken(); err != nil {
			return err
		}
		*v = TableValue(tab)
		return nil
	case '{':
		if _, err := dec.ReadToken(); err != nil {
			return err
		}
		tab := new(Table)
		for dec.PeekKind() != '}' {
			nameTok, err := dec.ReadToken()
			if err != nil {
				return err
			}
			name := nameTok.String()
			var elem Value
			if err := elem.UnmarshalJSONFrom(dec); err != nil {
				return err
			}
			tab.Set(StringValue(name), elem)
		}
		if _, err := dec.ReadToken(); err != nil {
			return err
		}
		*v = TableValue(tab)
		return nil
	default:
		_, err := dec.ReadToken()
		if err != nil {
			return err
		}
		return fmt.Errorf("unexpected JSON input")
	}
}

// numberValue converts JSON number text:
// an exact int64 value becomes an integer, anything else a float.
func numberValue(text string) Value {
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return IntegerValue(i)
		}
	}
	// The decoder already validated the syntax.
	// ParseFloat returns an infinity for out-of-range magnitudes,
	// which keeps the mapping total.
	f, _ := strconv.ParseFloat(text, 64)
	if i, ok := FloatToInteger(f); ok {
		return IntegerValue(i)
	}
	return FloatValue(f)
}
