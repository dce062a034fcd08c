// Copyright 2025 The luaq Authors
// SPDX-License-Identifier: MIT

package luaq

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"
)

// Unmarshaler is implemented by types that materialize themselves
// from a parsed [Value].
type Unmarshaler interface {
	UnmarshalLua(v Value) error
}

// VariantUnmarshaler is implemented by tagged-union types.
// A unit variant arrives as its tag with a nil value
// (from a bare string in the data);
// a complex variant arrives as the single key and value
// of a one-entry table.
type VariantUnmarshaler interface {
	UnmarshalLuaVariant(tag string, v Value) error
}

// Unmarshal parses Lua data in the given form
// and materializes the result into dst,
// which must be a non-nil pointer.
// See [Decoder.Decode] for the materialization rules.
func Unmarshal(data []byte, dst any, form Form, maxDepth int) error {
	v, err := Parse(data, form, maxDepth)
	if err != nil {
		return err
	}
	return Decode(v, dst)
}

// Decode materializes v into dst with a default [Decoder].
func Decode(v Value, dst any) error {
	return new(Decoder).Decode(v, dst)
}

// A Decoder materializes parsed values into Go values.
// The zero value is a strict decoder.
type Decoder struct {
	// AllowUnknownFields permits table keys
	// that do not correspond to any struct field.
	// By default an unknown key is an error.
	AllowUnknownFields bool
}

// Decode materializes v into dst, which must be a non-nil pointer.
//
// The mapping is driven by the destination type:
//
//   - bool fields require a boolean.
//   - Integer fields require an integer
//     (or a float with an exact integer value) that fits the field's width.
//   - Float fields accept floats and integers.
//   - string fields require a string holding valid UTF-8;
//     []byte fields take the raw bytes.
//   - Pointer fields are optional: nil produces a nil pointer.
//   - Slices and arrays require a sequence table
//     (keys exactly 1..n) and decode in ascending key order.
//   - Maps decode every entry in the table's insertion order.
//   - Structs decode from string-keyed tables;
//     fields map by their `lua` tag, else their name.
//     Missing non-optional fields and unknown keys are errors.
//   - Types implementing [Unmarshaler], [VariantUnmarshaler],
//     or [encoding.TextUnmarshaler] decode through those interfaces.
//   - An any destination receives the [Value] itself.
func (d *Decoder) Decode(v Value, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("lua decode: destination must be a non-nil pointer")
	}
	return d.decode(v, rv.Elem())
}

var reflectValueType = reflect.TypeOf(Value{})

func (d *Decoder) decode(v Value, rv reflect.Value) error {
	if !rv.CanSet() {
		return fmt.Errorf("lua decode: cannot set %v", rv.Type())
	}
	if rv.Type() == reflectValueType {
		rv.Set(reflect.ValueOf(v))
		return nil
	}
	if rv.Kind() != reflect.Pointer && rv.CanAddr() {
		switch u := rv.Addr().Interface().(type) {
		case Unmarshaler:
			return u.UnmarshalLua(v)
		case VariantUnmarshaler:
			return d.decodeVariant(v, u)
		case encoding.TextUnmarshaler:
			s, err := utf8String(v)
			if err != nil {
				return err
			}
			return u.UnmarshalText([]byte(s))
		}
	}

	switch rv.Kind() {
	case reflect.Pointer:
		// Optional destination.
		if v.IsNil() {
			rv.SetZero()
			return nil
		}
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return d.decode(v, rv.Elem())
	case reflect.Bool:
		b, isBool := v.Bool()
		if !isBool {
			return typeError(v, "boolean")
		}
		rv.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := integralValue(v)
		if err != nil {
			return err
		}
		if rv.OverflowInt(i) {
			return fmt.Errorf("lua decode: %d does not fit in %v", i, rv.Type())
		}
		rv.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		i, err := integralValue(v)
		if err != nil {
			return err
		}
		if i < 0 || rv.OverflowUint(uint64(i)) {
			return fmt.Errorf("lua decode: %d does not fit in %v", i, rv.Type())
		}
		rv.SetUint(uint64(i))
		return nil
	case reflect.Float32, reflect.Float64:
		f, isNumber := v.Float64()
		if !isNumber {
			return typeError(v, "number")
		}
		// Narrowing float64 to float32 may lose precision; that is not an error.
		rv.SetFloat(f)
		return nil
	case reflect.String:
		s, err := utf8String(v)
		if err != nil {
			return err
		}
		rv.SetString(s)
		return nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			s, isString := v.Unquoted()
			if !isString {
				return typeError(v, "string")
			}
			rv.SetBytes([]byte(s))
			return nil
		}
		values, err := sequenceValues(v)
		if err != nil {
			return err
		}
		out := reflect.MakeSlice(rv.Type(), len(values), len(values))
		for i, elem := range values {
			if err := d.decode(elem, out.Index(i)); err != nil {
				return err
			}
		}
		rv.Set(out)
		return nil
	case reflect.Array:
		values, err := sequenceValues(v)
		if err != nil {
			return err
		}
		if len(values) != rv.Len() {
			return fmt.Errorf("lua decode: sequence of %d elements does not fit %v", len(values), rv.Type())
		}
		for i, elem := range values {
			if err := d.decode(elem, rv.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		tab, isTable := v.Table()
		if !isTable {
			return typeError(v, "table")
		}
		out := reflect.MakeMapWithSize(rv.Type(), tab.Len())
		keyType := rv.Type().Key()
		elemType := rv.Type().Elem()
		for key, value := range tab.All() {
			mk := reflect.New(keyType).Elem()
			if err := d.decode(key, mk); err != nil {
				return fmt.Errorf("lua decode: map key: %w", err)
			}
			mv := reflect.New(elemType).Elem()
			if err := d.decode(value, mv); err != nil {
				return err
			}
			out.SetMapIndex(mk, mv)
		}
		rv.Set(out)
		return nil
	case reflect.Struct:
		return d.decodeStruct(v, rv)
	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return fmt.Errorf("lua decode: unsupported type %v", rv.Type())
		}
		rv.Set(reflect.ValueOf(v))
		return nil
	default:
		return fmt.Errorf("lua decode: unsupported type %v", rv.Type())
	}
}

func (d *Decoder) decodeStruct(v Value, rv reflect.Value) error {
	tab, isTable := v.Table()
	if !isTable {
		return typeError(v, "table")
	}

	t := rv.Type()
	fields := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("lua"); ok {
			if tag == "-" {
				continue
			}
			name = tag
		}
		fields[name] = i
	}

	seen := make(map[string]bool, len(fields))
	for key, value := range tab.All() {
		name, isString := key.Unquoted()
		if !isString {
			return fmt.Errorf("lua decode: %v key in table for %v (want string)", key.Kind(), t)
		}
		i, known := fields[name]
		if !known {
			if d.AllowUnknownFields {
				continue
			}
			return fmt.Errorf("lua decode: unknown field %q in table for %v", name, t)
		}
		if err := d.decode(value, rv.Field(i)); err != nil {
			return fmt.Errorf("lua decode: field %q: %w", name, err)
		}
		seen[name] = true
	}

	for name, i := range fields {
		if !seen[name] && t.Field(i).Type.Kind() != reflect.Pointer {
			return fmt.Errorf("lua decode: missing required field %q in table for %v", name, t)
		}
	}
	return nil
}

func (d *Decoder) decodeVariant(v Value, u VariantUnmarshaler) error {
	if s, isString := v.Unquoted(); isString {
		if !utf8.ValidString(s) {
			return errors.New("lua decode: variant tag is not valid UTF-8")
		}
		return u.UnmarshalLuaVariant(s, Value{})
	}
	tab, isTable := v.Table()
	if !isTable || tab.Len() != 1 {
		return typeError(v, "string or single-entry table")
	}
	ent := tab.Entry(0)
	tag, isString := ent.Key.Unquoted()
	if !isString || !utf8.ValidString(tag) {
		return typeError(ent.Key, "string variant tag")
	}
	return u.UnmarshalLuaVariant(tag, ent.Value)
}

// integralValue extracts an int64 from an integer value
// or a float with an exact integer value.
func integralValue(v Value) (int64, error) {
	if i, isInteger := v.Int64(); isInteger {
		return i, nil
	}
	if f, isNumber := v.Float64(); isNumber {
		if i, ok := FloatToInteger(f); ok {
			return i, nil
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || math.Floor(f) == f {
			return 0, fmt.Errorf("lua decode: %v does not fit in an integer", v)
		}
		return 0, fmt.Errorf("lua decode: %v is not an integer", v)
	}
	return 0, typeError(v, "integer")
}

func utf8String(v Value) (string, error) {
	s, isString := v.Unquoted()
	if !isString {
		return "", typeError(v, "string")
	}
	if !utf8.ValidString(s) {
		return "", errors.New("lua decode: string is not valid UTF-8")
	}
	return s, nil
}

func sequenceValues(v Value) ([]Value, error) {
	tab, isTable := v.Table()
	if !isTable {
		return nil, typeError(v, "table")
	}
	values, isSeq := tab.Sequence()
	if !isSeq {
		return nil, errors.New("lua decode: table keys are not the contiguous integers 1..n")
	}
	return values, nil
}

func typeError(v Value, want string) error {
	return fmt.Errorf("lua decode: cannot use %v value (want %s)", v.Kind(), want)
}
