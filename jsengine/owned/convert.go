// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package owned

import (
	"fmt"
	"math"
	"reflect"

	"github.com/aplane-algo/katex/jsengine"
)

// Factory builds owned values. It implements jsengine.Factory[Value] and
// never fails.
type Factory struct{}

var _ jsengine.Factory[Value] = Factory{}

func (Factory) Null() Value                           { return Null() }
func (Factory) NewBool(b bool) (Value, error)         { return FromBool(b), nil }
func (Factory) NewInt(i int32) (Value, error)         { return FromInt(i), nil }
func (Factory) NewFloat(f float64) (Value, error)     { return FromFloat(f), nil }
func (Factory) NewString(s string) (Value, error)     { return FromString(s), nil }
func (Factory) NewArray(items []Value) (Value, error) { return FromArray(items...), nil }
func (Factory) NewObject(entries []Entry) (Value, error) {
	return FromObject(entries...), nil
}

// Materialize rebuilds v inside any backend through its factory. Object
// entries are created in sorted key order.
func Materialize[V any](f jsengine.Factory[V], v Value) (V, error) {
	switch v.kind {
	case jsengine.KindBool:
		return f.NewBool(v.b)
	case jsengine.KindInt:
		return f.NewInt(v.i)
	case jsengine.KindFloat:
		return f.NewFloat(v.f)
	case jsengine.KindString:
		return f.NewString(v.s)
	case jsengine.KindArray:
		items := make([]V, len(v.arr))
		for i, e := range v.arr {
			item, err := Materialize(f, e)
			if err != nil {
				var zero V
				return zero, err
			}
			items[i] = item
		}
		return f.NewArray(items)
	case jsengine.KindObject:
		entries := make([]jsengine.Entry[V], 0, len(v.obj))
		for _, k := range v.Keys() {
			item, err := Materialize(f, v.obj[k])
			if err != nil {
				var zero V
				return zero, err
			}
			entries = append(entries, jsengine.Entry[V]{Key: k, Value: item})
		}
		return f.NewObject(entries)
	}
	return f.Null(), nil
}

// FromNumber maps a script number onto the owned kinds: integral values in
// int32 range become Int, everything else (including -0) Float.
func FromNumber(f float64) Value {
	if i, ok := Int32(f); ok {
		return FromInt(i)
	}
	return FromFloat(f)
}

// Int32 reports whether f is an integral number representable as int32.
// Negative zero is not.
func Int32(f float64) (int32, bool) {
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	if f == 0 && math.Signbit(f) {
		return 0, false
	}
	return int32(f), true
}

// FromGo converts plain Go data: nil, bool, integer and float types, string,
// slices and arrays, maps with string keys, and Value itself. Integers
// outside int32 become Float.
func FromGo(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return FromBool(t), nil
	case string:
		return FromString(t), nil
	case int32:
		return FromInt(t), nil
	case float64:
		return FromFloat(t), nil
	}
	return fromReflect(reflect.ValueOf(x), 0)
}

const maxGoDepth = 256

func fromReflect(rv reflect.Value, depth int) (Value, error) {
	if depth > maxGoDepth {
		return Value{}, jsengine.NewValueError(fmt.Sprintf("nesting deeper than %d levels", maxGoDepth), nil)
	}
	switch rv.Kind() {
	case reflect.Invalid:
		return Null(), nil
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return Null(), nil
		}
		if v, ok := rv.Interface().(Value); ok {
			return v, nil
		}
		return fromReflect(rv.Elem(), depth+1)
	case reflect.Bool:
		return FromBool(rv.Bool()), nil
	case reflect.String:
		return FromString(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return FromInt(int32(n)), nil
		}
		return FromFloat(float64(n)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		if n <= math.MaxInt32 {
			return FromInt(int32(n)), nil
		}
		return FromFloat(float64(n)), nil
	case reflect.Float32, reflect.Float64:
		return FromFloat(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}
		items := make([]Value, rv.Len())
		for i := range items {
			item, err := fromReflect(rv.Index(i), depth+1)
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return Value{kind: jsengine.KindArray, arr: items}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, jsengine.NewValueError(fmt.Sprintf("unsupported map key type %s", rv.Type().Key()), nil)
		}
		if rv.IsNil() {
			return Null(), nil
		}
		obj := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			item, err := fromReflect(iter.Value(), depth+1)
			if err != nil {
				return Value{}, err
			}
			obj[iter.Key().String()] = item
		}
		return Value{kind: jsengine.KindObject, obj: obj}, nil
	}
	return Value{}, jsengine.NewValueError(fmt.Sprintf("unsupported Go type %s", rv.Type()), nil)
}
