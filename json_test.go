// Copyright 2025 The luaq Authors
// SPDX-License-Identifier: MIT

package luaq

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToJSON(t *testing.T) {
	tests := []struct {
		name    string
		v       Value
		want    string
		wantErr bool
	}{
		{name: "Nil", v: Nil, want: `null`},
		{name: "True", v: BoolValue(true), want: `true`},
		{name: "False", v: BoolValue(false), want: `false`},
		{name: "Integer", v: IntegerValue(-42), want: `-42`},
		{
			// 64-bit precision is preserved.
			name: "BigInteger",
			v:    IntegerValue(math.MaxInt64),
			want: `9223372036854775807`,
		},
		{name: "Float", v: FloatValue(0.5), want: `0.5`},
		{name: "NaN", v: FloatValue(math.NaN()), wantErr: true},
		{name: "Infinity", v: FloatValue(math.Inf(1)), wantErr: true},
		{name: "NegativeInfinity", v: FloatValue(math.Inf(-1)), wantErr: true},
		{name: "String", v: StringValue("héllo"), want: `"héllo"`},
		{name: "NonUTF8String", v: StringValue("\xff"), wantErr: true},
		{name: "EmptyTable", v: TableValue(nil), want: `[]`},
		{
			name: "Sequence",
			v:    seq(IntegerValue(1), StringValue("two"), BoolValue(true)),
			want: `[1,"two",true]`,
		},
		{
			name: "Object",
			v: tb(
				kv(StringValue("b"), IntegerValue(2)),
				kv(StringValue("a"), IntegerValue(1)),
			),
			want: `{"b":2,"a":1}`,
		},
		{
			name: "IntegerKeysBecomeStrings",
			v: tb(
				kv(IntegerValue(1), StringValue("x")),
				kv(IntegerValue(3), StringValue("y")),
			),
			want: `{"1":"x","3":"y"}`,
		},
		{
			name:    "BooleanKey",
			v:       tb(kv(BoolValue(true), IntegerValue(1))),
			wantErr: true,
		},
		{
			name:    "TableKey",
			v:       tb(kv(TableValue(nil), IntegerValue(1))),
			wantErr: true,
		},
		{
			name:    "NonUTF8Key",
			v:       tb(kv(StringValue("\xff"), IntegerValue(1))),
			wantErr: true,
		},
		{
			name:    "NaNInsideTable",
			v:       seq(FloatValue(math.NaN())),
			wantErr: true,
		},
		{
			name: "Nested",
			v: tb(
				kv(StringValue("rows"), seq(
					seq(IntegerValue(1), IntegerValue(2)),
					TableValue(nil),
				)),
			),
			want: `{"rows":[[1,2],[]]}`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ToJSON(test.v)
			if test.wantErr {
				if err == nil {
					t.Fatalf("ToJSON(%v) = %s; want error", test.v, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToJSON(%v): %v", test.v, err)
			}
			if string(got) != test.want {
				t.Errorf("ToJSON(%v) = %s; want %s", test.v, got, test.want)
			}
		})
	}
}

func TestToJSONLossy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{
			name: "InvalidString",
			v:    StringValue("a\xffb"),
			want: `"a�b"`,
		},
		{
			name: "ValidUnchanged",
			v:    StringValue("héllo"),
			want: `"héllo"`,
		},
		{
			name: "InvalidKey",
			v:    tb(kv(StringValue("k\xff"), IntegerValue(1))),
			want: `{"k�":1}`,
		},
		{
			name: "Nested",
			v:    tb(kv(StringValue("raw"), seq(StringValue("\xfe")))),
			want: `{"raw":["�"]}`,
		},
		{
			name: "NonStringsUntouched",
			v:    seq(IntegerValue(1), BoolValue(true)),
			want: `[1,true]`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ToJSONLossy(test.v)
			if err != nil {
				t.Fatalf("ToJSONLossy(%v): %v", test.v, err)
			}
			if string(got) != test.want {
				t.Errorf("ToJSONLossy(%v) = %s; want %s", test.v, got, test.want)
			}
		})
	}

	// Distinct invalid keys may collide after replacement; the later wins.
	v := tb(
		kv(StringValue("\xfe"), IntegerValue(1)),
		kv(StringValue("\xff"), IntegerValue(2)),
	)
	got, err := ToJSONLossy(v)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"�":2}`; string(got) != want {
		t.Errorf("ToJSONLossy(%v) = %s; want %s", v, got, want)
	}
}

func TestFromJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{name: "Null", input: `null`, want: Nil},
		{name: "Bool", input: `true`, want: BoolValue(true)},
		{name: "Integer", input: `-42`, want: IntegerValue(-42)},
		{name: "BigInteger", input: `9223372036854775807`, want: IntegerValue(math.MaxInt64)},
		{
			// One past int64: falls back to a float.
			name:  "HugeInteger",
			input: `9223372036854775808`,
			want:  FloatValue(9.223372036854776e18),
		},
		{name: "Float", input: `0.5`, want: FloatValue(0.5)},
		{
			// Integral floats normalize to integers.
			name:  "IntegralFloat",
			input: `1.0`,
			want:  IntegerValue(1),
		},
		{name: "Exponent", input: `1e3`, want: IntegerValue(1000)},
		{name: "HugeExponent", input: `1e999`, want: FloatValue(math.Inf(1))},
		{name: "String", input: `"héllo"`, want: StringValue("héllo")},
		{name: "EmptyArray", input: `[]`, want: TableValue(nil)},
		{
			name:  "Array",
			input: `[1, "two", null]`,
			want:  seq(IntegerValue(1), StringValue("two"), Nil),
		},
		{
			name:  "ObjectKeepsOrder",
			input: `{"b": 2, "a": 1}`,
			want: tb(
				kv(StringValue("b"), IntegerValue(2)),
				kv(StringValue("a"), IntegerValue(1)),
			),
		},
		{
			name:  "Nested",
			input: `{"rows": [[1, 2], {}]}`,
			want: tb(kv(StringValue("rows"), seq(
				seq(IntegerValue(1), IntegerValue(2)),
				TableValue(nil),
			))),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := FromJSON([]byte(test.input))
			if err != nil {
				t.Fatalf("FromJSON(%s): %v", test.input, err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("FromJSON(%s) (-want +got):\n%s", test.input, diff)
			}
		})
	}
}

// Values that stay within JSON's reach survive a round trip,
// up to integer/float normalization of integral floats.
func TestJSONRoundTrip(t *testing.T) {
	values := []Value{
		Nil,
		BoolValue(true),
		IntegerValue(math.MinInt64),
		FloatValue(0.25),
		StringValue("hello"),
		seq(IntegerValue(1), IntegerValue(2), StringValue("three")),
		tb(
			kv(StringValue("name"), StringValue("luaq")),
			kv(StringValue("tags"), seq(StringValue("lua"), StringValue("data"))),
			kv(StringValue("meta"), tb(kv(StringValue("v"), IntegerValue(2)))),
		),
	}
	for _, v := range values {
		data, err := ToJSON(v)
		if err != nil {
			t.Errorf("ToJSON(%v): %v", v, err)
			continue
		}
		back, err := FromJSON(data)
		if err != nil {
			t.Errorf("FromJSON(%s): %v", data, err)
			continue
		}
		if !back.Equal(v) {
			t.Errorf("round trip of %v through %s produced %v", v, data, back)
		}
	}
}
