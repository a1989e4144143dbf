// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

//go:build js && wasm

package hostjs

import (
	"fmt"
	"syscall/js"

	"github.com/aplane-algo/katex/jsengine"
	"github.com/aplane-algo/katex/jsengine/owned"
)

const maxDepth = 256

// Value is a handle to a host value. The zero Value belongs to no engine.
type Value struct {
	v js.Value
	e *Engine
}

var _ jsengine.Value = Value{}

func (v Value) Kind() jsengine.Kind {
	switch v.v.Type() {
	case js.TypeUndefined, js.TypeNull:
		return jsengine.KindNull
	case js.TypeBoolean:
		return jsengine.KindBool
	case js.TypeNumber:
		if _, ok := owned.Int32(v.v.Float()); ok {
			return jsengine.KindInt
		}
		return jsengine.KindFloat
	case js.TypeString, js.TypeSymbol:
		return jsengine.KindString
	case js.TypeObject:
		if v.e != nil && v.e.global.Get("Array").Call("isArray", v.v).Bool() {
			return jsengine.KindArray
		}
		if v.e != nil && v.v.InstanceOf(v.e.global.Get("Date")) {
			return jsengine.KindFloat
		}
	}
	return jsengine.KindObject
}

func (v Value) IsNull() bool   { return v.Kind() == jsengine.KindNull }
func (v Value) IsBool() bool   { return v.Kind() == jsengine.KindBool }
func (v Value) IsInt() bool    { return v.Kind() == jsengine.KindInt }
func (v Value) IsFloat() bool  { return v.Kind().IsNumber() }
func (v Value) IsString() bool { return v.Kind() == jsengine.KindString }
func (v Value) IsArray() bool  { return v.Kind() == jsengine.KindArray }
func (v Value) IsObject() bool { return v.Kind() == jsengine.KindObject }

func (v Value) check() error {
	switch {
	case v.e == nil:
		return jsengine.NewValueError("value belongs to no engine", jsengine.ErrForeignValue)
	case v.e.closed:
		return jsengine.NewValueError("engine is closed", jsengine.ErrEngineClosed)
	}
	return nil
}

func (v Value) ToBool() (bool, error) {
	if err := v.check(); err != nil {
		return false, err
	}
	if k := v.Kind(); k != jsengine.KindBool {
		return false, jsengine.KindMismatch(jsengine.KindBool, k)
	}
	return v.v.Bool(), nil
}

func (v Value) ToInt() (int32, error) {
	if err := v.check(); err != nil {
		return 0, err
	}
	if k := v.Kind(); k != jsengine.KindInt {
		return 0, jsengine.KindMismatch(jsengine.KindInt, k)
	}
	return int32(v.v.Float()), nil
}

func (v Value) ToFloat() (float64, error) {
	if err := v.check(); err != nil {
		return 0, err
	}
	k := v.Kind()
	switch {
	case !k.IsNumber():
		return 0, jsengine.KindMismatch(jsengine.KindFloat, k)
	case v.v.Type() == js.TypeObject:
		return v.v.Call("valueOf").Float(), nil
	}
	return v.v.Float(), nil
}

func (v Value) ToString() (s string, err error) {
	if err := v.check(); err != nil {
		return "", err
	}
	if k := v.Kind(); k != jsengine.KindString {
		return "", jsengine.KindMismatch(jsengine.KindString, k)
	}
	if v.v.Type() == js.TypeSymbol {
		return v.e.str.Invoke(v.v).String(), nil
	}
	s = v.v.String()
	if err := v.e.wellFormed(v.v, s); err != nil {
		return "", err
	}
	return s, nil
}

// Len returns the length of an array or the number of own enumerable keys
// of an object.
func (v Value) Len() (int, error) {
	if err := v.check(); err != nil {
		return 0, err
	}
	switch v.Kind() {
	case jsengine.KindArray:
		return v.v.Length(), nil
	case jsengine.KindObject:
		keys, err := v.Keys()
		return len(keys), err
	}
	return 0, nil
}

// Index returns the i-th array item.
func (v Value) Index(i int) (Value, error) {
	if err := v.check(); err != nil {
		return Value{}, err
	}
	if k := v.Kind(); k != jsengine.KindArray {
		return Value{}, jsengine.KindMismatch(jsengine.KindArray, k)
	}
	return Value{v: v.v.Index(i), e: v.e}, nil
}

// Get returns a property of an object.
func (v Value) Get(key string) (result Value, err error) {
	if err := v.check(); err != nil {
		return Value{}, err
	}
	if t := v.v.Type(); t != js.TypeObject && t != js.TypeFunction {
		return Value{}, jsengine.KindMismatch(jsengine.KindObject, v.Kind())
	}
	defer v.e.recoverAs(jsengine.ValueError, &err)
	return Value{v: v.v.Get(key), e: v.e}, nil
}

// Keys returns Object.keys(v).
func (v Value) Keys() (keys []string, err error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	if t := v.v.Type(); t != js.TypeObject && t != js.TypeFunction {
		return nil, jsengine.KindMismatch(jsengine.KindObject, v.Kind())
	}
	defer v.e.recoverAs(jsengine.ValueError, &err)

	arr := v.e.global.Get("Object").Call("keys", v.v)
	keys = make([]string, arr.Length())
	for i := range keys {
		keys[i] = arr.Index(i).String()
	}
	return keys, nil
}

// Own exports the value, recursively, into owned form. Functions become
// null.
func (v Value) Own() (result owned.Value, err error) {
	if err := v.check(); err != nil {
		return owned.Null(), err
	}
	defer v.e.recoverAs(jsengine.ValueError, &err)
	return v.own(jsengine.NewExportBudget(), 0)
}

func (v Value) own(budget *jsengine.ExportBudget, depth int) (owned.Value, error) {
	if depth > maxDepth {
		return owned.Null(), jsengine.NewValueError(fmt.Sprintf("value nesting exceeds %d levels (cyclic structure?)", maxDepth), nil)
	}
	if err := budget.Take(1); err != nil {
		return owned.Null(), err
	}
	if v.v.Type() == js.TypeFunction {
		return owned.Null(), nil
	}

	switch v.Kind() {
	case jsengine.KindNull:
		return owned.Null(), nil
	case jsengine.KindBool:
		b, err := v.ToBool()
		return owned.FromBool(b), err
	case jsengine.KindInt:
		i, err := v.ToInt()
		return owned.FromInt(i), err
	case jsengine.KindFloat:
		f, err := v.ToFloat()
		return owned.FromFloat(f), err
	case jsengine.KindString:
		s, err := v.ToString()
		return owned.FromString(s), err
	case jsengine.KindArray:
		n := v.v.Length()
		if err := budget.Fits(int64(n)); err != nil {
			return owned.Null(), err
		}
		items := make([]owned.Value, 0, min(n, 1024))
		for i := 0; i < n; i++ {
			item, err := Value{v: v.v.Index(i), e: v.e}.own(budget, depth+1)
			if err != nil {
				return owned.Null(), err
			}
			items = append(items, item)
		}
		return owned.FromArray(items...), nil
	}

	keys, err := v.Keys()
	if err != nil {
		return owned.Null(), err
	}
	entries := make([]owned.Entry, 0, len(keys))
	for _, k := range keys {
		item, err := Value{v: v.v.Get(k), e: v.e}.own(budget, depth+1)
		if err != nil {
			return owned.Null(), err
		}
		entries = append(entries, owned.Entry{Key: k, Value: item})
	}
	return owned.FromObject(entries...), nil
}

func (v Value) String() string {
	if v.e == nil {
		return "<foreign>"
	}
	return v.e.str.Invoke(v.v).String()
}

