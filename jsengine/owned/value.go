// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package owned provides an engine-independent script value. Owned values
// are immutable, safe to share between goroutines, and outlive the engine
// that produced them.
package owned

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/aplane-algo/katex/jsengine"
)

// Value is an immutable tagged union. The zero Value is null.
type Value struct {
	kind jsengine.Kind
	b    bool
	i    int32
	f    float64
	s    string
	arr  []Value
	obj  map[string]Value
}

// Compile-time check that Value satisfies the read contract.
var _ jsengine.Value = Value{}

// Null returns the null value.
func Null() Value { return Value{} }

func FromBool(b bool) Value { return Value{kind: jsengine.KindBool, b: b} }

func FromInt(i int32) Value { return Value{kind: jsengine.KindInt, i: i} }

func FromFloat(f float64) Value { return Value{kind: jsengine.KindFloat, f: f} }

func FromString(s string) Value { return Value{kind: jsengine.KindString, s: s} }

// FromArray builds an array holding a copy of items in order.
func FromArray(items ...Value) Value {
	arr := make([]Value, len(items))
	copy(arr, items)
	return Value{kind: jsengine.KindArray, arr: arr}
}

// Entry is a key/value pair for FromObject.
type Entry = jsengine.Entry[Value]

// FromObject builds an object. When a key repeats, the last entry wins.
func FromObject(entries ...Entry) Value {
	obj := make(map[string]Value, len(entries))
	for _, e := range entries {
		obj[e.Key] = e.Value
	}
	return Value{kind: jsengine.KindObject, obj: obj}
}

// FromMap builds an object from a copy of m.
func FromMap(m map[string]Value) Value {
	obj := make(map[string]Value, len(m))
	for k, v := range m {
		obj[k] = v
	}
	return Value{kind: jsengine.KindObject, obj: obj}
}

func (v Value) Kind() jsengine.Kind { return v.kind }

func (v Value) IsNull() bool   { return v.kind == jsengine.KindNull }
func (v Value) IsBool() bool   { return v.kind == jsengine.KindBool }
func (v Value) IsInt() bool    { return v.kind == jsengine.KindInt }
func (v Value) IsFloat() bool  { return v.kind == jsengine.KindFloat }
func (v Value) IsString() bool { return v.kind == jsengine.KindString }
func (v Value) IsArray() bool  { return v.kind == jsengine.KindArray }
func (v Value) IsObject() bool { return v.kind == jsengine.KindObject }

func (v Value) ToBool() (bool, error) {
	if v.kind != jsengine.KindBool {
		return false, jsengine.KindMismatch(jsengine.KindBool, v.kind)
	}
	return v.b, nil
}

func (v Value) ToInt() (int32, error) {
	if v.kind != jsengine.KindInt {
		return 0, jsengine.KindMismatch(jsengine.KindInt, v.kind)
	}
	return v.i, nil
}

func (v Value) ToFloat() (float64, error) {
	if v.kind != jsengine.KindFloat {
		return 0, jsengine.KindMismatch(jsengine.KindFloat, v.kind)
	}
	return v.f, nil
}

func (v Value) ToString() (string, error) {
	if v.kind != jsengine.KindString {
		return "", jsengine.KindMismatch(jsengine.KindString, v.kind)
	}
	return v.s, nil
}

// ToArray returns a copy of the array's items.
func (v Value) ToArray() ([]Value, error) {
	if v.kind != jsengine.KindArray {
		return nil, jsengine.KindMismatch(jsengine.KindArray, v.kind)
	}
	out := make([]Value, len(v.arr))
	copy(out, v.arr)
	return out, nil
}

// ToObject returns a copy of the object's entries.
func (v Value) ToObject() (map[string]Value, error) {
	if v.kind != jsengine.KindObject {
		return nil, jsengine.KindMismatch(jsengine.KindObject, v.kind)
	}
	out := make(map[string]Value, len(v.obj))
	for k, e := range v.obj {
		out[k] = e
	}
	return out, nil
}

// Len returns the number of items of an array or entries of an object, or 0.
func (v Value) Len() int {
	switch v.kind {
	case jsengine.KindArray:
		return len(v.arr)
	case jsengine.KindObject:
		return len(v.obj)
	}
	return 0
}

// Index returns the i-th array item, or null when v is not an array or i is
// out of range.
func (v Value) Index(i int) Value {
	if v.kind != jsengine.KindArray || i < 0 || i >= len(v.arr) {
		return Value{}
	}
	return v.arr[i]
}

// Get returns an object entry.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != jsengine.KindObject {
		return Value{}, false
	}
	e, ok := v.obj[key]
	return e, ok
}

// Keys returns the object's keys in sorted order.
func (v Value) Keys() []string {
	if v.kind != jsengine.KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Export converts v to plain Go values: nil, bool, int32, float64, string,
// []any and map[string]any.
func (v Value) Export() any {
	switch v.kind {
	case jsengine.KindBool:
		return v.b
	case jsengine.KindInt:
		return v.i
	case jsengine.KindFloat:
		return v.f
	case jsengine.KindString:
		return v.s
	case jsengine.KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Export()
		}
		return out
	case jsengine.KindObject:
		out := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.Export()
		}
		return out
	}
	return nil
}

// Equal reports deep equality. Int and Float are never equal to each other;
// NaN equals NaN.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case jsengine.KindNull:
		return true
	case jsengine.KindBool:
		return v.b == o.b
	case jsengine.KindInt:
		return v.i == o.i
	case jsengine.KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case jsengine.KindString:
		return v.s == o.s
	case jsengine.KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case jsengine.KindObject:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, e := range v.obj {
			oe, ok := o.obj[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders v for debugging in a JS-literal-like form.
func (v Value) String() string {
	var sb strings.Builder
	v.writeTo(&sb)
	return sb.String()
}

func (v Value) writeTo(sb *strings.Builder) {
	switch v.kind {
	case jsengine.KindNull:
		sb.WriteString("null")
	case jsengine.KindBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case jsengine.KindInt:
		sb.WriteString(strconv.FormatInt(int64(v.i), 10))
	case jsengine.KindFloat:
		sb.WriteString(formatFloat(v.f))
	case jsengine.KindString:
		sb.WriteString(strconv.Quote(v.s))
	case jsengine.KindArray:
		sb.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.writeTo(sb)
		}
		sb.WriteByte(']')
	case jsengine.KindObject:
		sb.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteString(": ")
			v.obj[k].writeTo(sb)
		}
		sb.WriteByte('}')
	default:
		fmt.Fprintf(sb, "<%s>", v.kind)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
