// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package owned

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/aplane-algo/katex/jsengine"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	if b, err := FromBool(true).ToBool(); err != nil || !b {
		t.Errorf("FromBool(true).ToBool() = %v, %v", b, err)
	}
	if i, err := FromInt(-7).ToInt(); err != nil || i != -7 {
		t.Errorf("FromInt(-7).ToInt() = %v, %v", i, err)
	}
	if f, err := FromFloat(2.5).ToFloat(); err != nil || f != 2.5 {
		t.Errorf("FromFloat(2.5).ToFloat() = %v, %v", f, err)
	}
	if s, err := FromString("ünï\x00code").ToString(); err != nil || s != "ünï\x00code" {
		t.Errorf("FromString().ToString() = %q, %v", s, err)
	}
	if !Null().IsNull() || !(Value{}).IsNull() {
		t.Error("Null() and zero Value should be null")
	}
}

func TestNarrowingMismatch(t *testing.T) {
	tests := []struct {
		name string
		val  Value
		call func(Value) error
		want string
	}{
		{"int as float", FromInt(42), func(v Value) error { _, err := v.ToFloat(); return err }, "expected float, got int"},
		{"float as int", FromFloat(1), func(v Value) error { _, err := v.ToInt(); return err }, "expected int, got float"},
		{"string as bool", FromString("true"), func(v Value) error { _, err := v.ToBool(); return err }, "expected bool, got string"},
		{"null as string", Null(), func(v Value) error { _, err := v.ToString(); return err }, "expected string, got null"},
		{"object as array", FromObject(), func(v Value) error { _, err := v.ToArray(); return err }, "expected array, got object"},
		{"array as object", FromArray(), func(v Value) error { _, err := v.ToObject(); return err }, "expected object, got array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(tt.val)
			if !errors.Is(err, jsengine.ErrValue) {
				t.Fatalf("err = %v, want ValueError", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestFromIntIsNotFloat(t *testing.T) {
	v := FromInt(42)
	if !v.IsInt() || v.IsFloat() {
		t.Fatalf("FromInt(42): IsInt=%v IsFloat=%v", v.IsInt(), v.IsFloat())
	}
	if _, err := v.ToFloat(); err == nil {
		t.Error("ToFloat on an int should fail")
	}
}

func TestArrayOrderAndCopy(t *testing.T) {
	items := []Value{FromInt(1), FromString("two"), FromBool(false)}
	arr := FromArray(items...)
	items[0] = FromInt(99)

	got, err := arr.ToArray()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || arr.Len() != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if i, _ := got[0].ToInt(); i != 1 {
		t.Errorf("item 0 = %v, want 1 (array must not alias its input)", got[0])
	}
	got[1] = Null()
	if !arr.Index(1).IsString() {
		t.Error("ToArray must return a copy")
	}
	if !arr.Index(5).IsNull() || !arr.Index(-1).IsNull() {
		t.Error("out of range Index should be null")
	}
}

func TestObjectLastWriteWins(t *testing.T) {
	obj := FromObject(
		Entry{Key: "a", Value: FromInt(1)},
		Entry{Key: "b", Value: FromInt(2)},
		Entry{Key: "a", Value: FromString("last")},
	)
	if obj.Len() != 2 {
		t.Fatalf("Len = %d, want 2", obj.Len())
	}
	a, ok := obj.Get("a")
	if !ok {
		t.Fatal("key a missing")
	}
	if s, err := a.ToString(); err != nil || s != "last" {
		t.Errorf("a = %v, want \"last\"", a)
	}
	if keys := obj.Keys(); strings.Join(keys, ",") != "a,b" {
		t.Errorf("Keys = %v", keys)
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nulls", Null(), Null(), true},
		{"int vs float", FromInt(1), FromFloat(1), false},
		{"nan", FromFloat(math.NaN()), FromFloat(math.NaN()), true},
		{"arrays", FromArray(FromInt(1), FromInt(2)), FromArray(FromInt(1), FromInt(2)), true},
		{"array order", FromArray(FromInt(1), FromInt(2)), FromArray(FromInt(2), FromInt(1)), false},
		{"objects", FromMap(map[string]Value{"x": FromBool(true)}), FromObject(Entry{Key: "x", Value: FromBool(true)}), true},
		{"object values", FromMap(map[string]Value{"x": FromBool(true)}), FromMap(map[string]Value{"x": FromBool(false)}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("%v.Equal(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestStringAndJSON(t *testing.T) {
	v := FromObject(
		Entry{Key: "z", Value: FromArray(FromInt(1), FromFloat(0.5), Null())},
		Entry{Key: "a", Value: FromString("q\"uote")},
		Entry{Key: "n", Value: FromFloat(math.Inf(1))},
	)
	if got, want := v.String(), `{"a": "q\"uote", "n": Infinity, "z": [1, 0.5, null]}`; got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
	b, err := v.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), `{"a":"q\"uote","n":null,"z":[1,0.5,null]}`; got != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}
}

func TestJSONMatchesStringify(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"html characters", FromString(`<span class="x">&amp;</span>`), `"<span class=\"x\">&amp;</span>"`},
		{"html key", FromObject(Entry{Key: "<b>", Value: FromBool(true)}), `{"<b>":true}`},
		{"control", FromString("a\nb"), `"a\nb"`},
		{"large", FromFloat(1e10), `10000000000`},
		{"exponent", FromFloat(1e21), `1e+21`},
		{"small", FromFloat(1.5e-7), `1.5e-7`},
		{"fraction", FromFloat(0.000001), `0.000001`},
		{"negative zero", FromFloat(math.Copysign(0, -1)), `0`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.v.MarshalJSON()
			if err != nil {
				t.Fatal(err)
			}
			if got := string(b); got != tt.want {
				t.Errorf("MarshalJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExport(t *testing.T) {
	v := FromArray(FromInt(3), FromMap(map[string]Value{"k": FromString("v")}))
	got, ok := v.Export().([]any)
	if !ok || len(got) != 2 {
		t.Fatalf("Export() = %#v", v.Export())
	}
	if got[0] != int32(3) {
		t.Errorf("item 0 = %#v, want int32(3)", got[0])
	}
	if m, ok := got[1].(map[string]any); !ok || m["k"] != "v" {
		t.Errorf("item 1 = %#v", got[1])
	}
}
