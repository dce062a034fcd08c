// Copyright 2025 The luaq Authors
// SPDX-License-Identifier: MIT

package luaq

import (
	"errors"
	"iter"
	"strings"

	"luaq.dev/pkg/lualex"
)

// A TableEntry is a single key/value pair in a [Table].
type TableEntry struct {
	Key   Value
	Value Value
}

// Table is an insertion-ordered map of Lua values.
//
// Keys may be any value except nil and NaN.
// A float key with an exact integer value is stored as that integer,
// as in a Lua table.
// Redefining an existing key replaces its value
// and moves the entry to the end of the order,
// so iteration reflects final definitions in source order.
//
// The zero value is an empty table ready for use.
type Table struct {
	entries []TableEntry
	index   map[Value]int
}

// Errors reported by [Table.Set].
var (
	errNilKey = errors.New("table key is nil")
	errNaNKey = errors.New("table key is NaN")
)

// NewTable returns an empty table with room for n entries.
func NewTable(n int) *Table {
	return &Table{
		entries: make([]TableEntry, 0, n),
		index:   make(map[Value]int, n),
	}
}

// Len returns the number of entries in the table.
func (tab *Table) Len() int {
	if tab == nil {
		return 0
	}
	return len(tab.entries)
}

// Entry returns the i'th entry in insertion order.
func (tab *Table) Entry(i int) TableEntry {
	return tab.entries[i]
}

// All returns an iterator over the table's entries in insertion order.
func (tab *Table) All() iter.Seq2[Value, Value] {
	return func(yield func(Value, Value) bool) {
		if tab == nil {
			return
		}
		for _, ent := range tab.entries {
			if !yield(ent.Key, ent.Value) {
				return
			}
		}
	}
}

// Get returns the value stored under the given key.
// Float keys with integer values look up the corresponding integer entry.
func (tab *Table) Get(key Value) (_ Value, found bool) {
	if tab == nil || tab.index == nil {
		return Value{}, false
	}
	key, err := normalizeKey(key)
	if err != nil {
		return Value{}, false
	}
	i, found := tab.index[key]
	if !found {
		return Value{}, false
	}
	return tab.entries[i].Value, true
}

// Set stores value under key.
// It returns an error if key is nil or NaN.
// If the key is already present,
// the old entry is removed and the new one appended,
// so the entry's position reflects its final definition.
func (tab *Table) Set(key, value Value) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	if tab.index == nil {
		tab.index = make(map[Value]int)
	}
	if i, found := tab.index[key]; found {
		tab.entries = append(tab.entries[:i], tab.entries[i+1:]...)
		for j := i; j < len(tab.entries); j++ {
			tab.index[tab.entries[j].Key] = j
		}
	}
	tab.index[key] = len(tab.entries)
	tab.entries = append(tab.entries, TableEntry{Key: key, Value: value})
	return nil
}

// normalizeKey validates a table key
// and converts integral float keys to integer keys,
// mirroring Lua's key normalization.
func normalizeKey(key Value) (Value, error) {
	switch {
	case key.IsNil():
		return Value{}, errNilKey
	case key.IsNaN():
		return Value{}, errNaNKey
	}
	if f, ok := key.floatBits(); ok {
		if i, ok := FloatToInteger(f); ok {
			return IntegerValue(i), nil
		}
	}
	return key, nil
}

// IsSequence reports whether the table's keys are exactly
// the integers 1..Len() with no other keys.
// The empty table is a sequence.
func (tab *Table) IsSequence() bool {
	for i := 1; i <= tab.Len(); i++ {
		if _, found := tab.index[IntegerValue(int64(i))]; !found {
			return false
		}
	}
	return true
}

// Sequence returns the table's values ordered by ascending integer key,
// or ok=false if the table is not a sequence.
func (tab *Table) Sequence() (_ []Value, ok bool) {
	if !tab.IsSequence() {
		return nil, false
	}
	values := make([]Value, tab.Len())
	for i := range values {
		values[i], _ = tab.Get(IntegerValue(int64(i + 1)))
	}
	return values, true
}

func (tab *Table) appendLua(sb *strings.Builder) {
	sb.WriteByte('{')
	if values, isSeq := tab.Sequence(); isSeq {
		for i, v := range values {
			if i > 0 {
				sb.WriteString(", ")
			}
			v.appendLua(sb)
		}
		sb.WriteByte('}')
		return
	}
	for i, ent := range tab.entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		if name, isString := ent.Key.Unquoted(); isString && lualex.IsIdentifier(name) {
			sb.WriteString(name)
			sb.WriteString(" = ")
		} else {
			sb.WriteByte('[')
			ent.Key.appendLua(sb)
			sb.WriteString("] = ")
		}
		ent.Value.appendLua(sb)
	}
	sb.WriteByte('}')
}
