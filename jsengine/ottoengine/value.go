// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package ottoengine

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/robertkrimen/otto"

	"github.com/aplane-algo/katex/jsengine"
	"github.com/aplane-algo/katex/jsengine/owned"
)

const maxDepth = 256

// Degradations lists how native shapes without a dedicated kind are
// reported.
var Degradations = []jsengine.Degradation{
	{Native: "undefined", Kind: jsengine.KindNull},
	{Native: "number", Kind: jsengine.KindFloat, Note: "also KindInt when integral and within int32"},
	{Native: "Date", Kind: jsengine.KindFloat, Note: "epoch milliseconds"},
	{Native: "function", Kind: jsengine.KindObject, Note: "null once exported to owned form"},
	{Native: "RegExp, Error and wrapper objects", Kind: jsengine.KindObject, Note: "own enumerable keys only"},
	{Native: "lone surrogate after a string operation", Kind: jsengine.KindString, Note: "otto substitutes U+FFFD itself; only unmodified UTF-16 strings are checked"},
}

// Value is a borrowed otto value. It is usable only while the scope that
// produced it is current. The zero Value belongs to no engine.
type Value struct {
	v  otto.Value
	st *scopeState
}

var _ jsengine.Value = Value{}

// Kind reports the value's tag. Numbers report KindInt when integral and
// within int32, KindFloat otherwise; IsFloat is true for both.
func (v Value) Kind() jsengine.Kind {
	switch {
	case v.v.IsUndefined() || v.v.IsNull():
		return jsengine.KindNull
	case v.v.IsBoolean():
		return jsengine.KindBool
	case v.v.IsNumber():
		f, _ := v.v.ToFloat()
		if _, ok := owned.Int32(f); ok {
			return jsengine.KindInt
		}
		return jsengine.KindFloat
	case v.v.IsString():
		return jsengine.KindString
	}
	switch v.v.Class() {
	case "Array":
		return jsengine.KindArray
	case "Date":
		return jsengine.KindFloat
	}
	return jsengine.KindObject
}

func (v Value) IsNull() bool   { return v.Kind() == jsengine.KindNull }
func (v Value) IsBool() bool   { return v.v.IsBoolean() }
func (v Value) IsInt() bool    { return v.Kind() == jsengine.KindInt }
func (v Value) IsFloat() bool  { return v.Kind().IsNumber() }
func (v Value) IsString() bool { return v.v.IsString() }
func (v Value) IsArray() bool  { return v.Kind() == jsengine.KindArray }
func (v Value) IsObject() bool { return v.Kind() == jsengine.KindObject }

// check fails when the value's scope is no longer current.
func (v Value) check() error {
	switch {
	case v.st == nil:
		return jsengine.NewValueError("value belongs to no engine", jsengine.ErrForeignValue)
	case v.st.released || v.st.engine.vm == nil:
		return jsengine.NewValueError(fmt.Sprintf("value from released scope %d", v.st.id), jsengine.ErrScopeReleased)
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
	return v.v.ToBoolean()
}

func (v Value) ToInt() (int32, error) {
	if err := v.check(); err != nil {
		return 0, err
	}
	if k := v.Kind(); k != jsengine.KindInt {
		return 0, jsengine.KindMismatch(jsengine.KindInt, k)
	}
	f, err := v.v.ToFloat()
	if err != nil {
		return 0, jsengine.NewValueError(err.Error(), err)
	}
	return int32(f), nil
}

func (v Value) ToFloat() (float64, error) {
	if err := v.check(); err != nil {
		return 0, err
	}
	if k := v.Kind(); !k.IsNumber() {
		return 0, jsengine.KindMismatch(jsengine.KindFloat, k)
	}
	f, err := v.v.ToFloat()
	if err != nil {
		return 0, jsengine.NewValueError(err.Error(), err)
	}
	return f, nil
}

// ToString returns the string. Strings holding lone surrogates fail with a
// ValueError.
func (v Value) ToString() (string, error) {
	if err := v.check(); err != nil {
		return "", err
	}
	if !v.v.IsString() {
		return "", jsengine.KindMismatch(jsengine.KindString, v.Kind())
	}
	s, err := v.v.ToString()
	if err != nil {
		return "", jsengine.NewValueError(err.Error(), err)
	}
	if strings.ContainsRune(s, utf8.RuneError) {
		if units, ok := utf16Units(v.v); ok {
			if err := jsengine.CheckUTF16(len(units), func(i int) uint16 { return units[i] }); err != nil {
				return "", err
			}
		}
	}
	return s, nil
}

// utf16Units returns the code units of a string that otto holds in UTF-16
// form. otto decodes such strings with replacement on every read, so the
// units are taken from the value's representation.
func utf16Units(v otto.Value) ([]uint16, bool) {
	f := reflect.ValueOf(v).FieldByName("value")
	if !f.IsValid() || f.Kind() != reflect.Interface || f.IsNil() {
		return nil, false
	}
	f = f.Elem()
	if f.Kind() != reflect.Slice || f.Type().Elem().Kind() != reflect.Uint16 {
		return nil, false
	}
	units := make([]uint16, f.Len())
	for i := range units {
		units[i] = uint16(f.Index(i).Uint())
	}
	return units, true
}

// Len returns the length of an array or the number of keys of an object.
func (v Value) Len() (int, error) {
	if err := v.check(); err != nil {
		return 0, err
	}
	switch v.Kind() {
	case jsengine.KindArray:
		n, err := v.v.Object().Get("length")
		if err != nil {
			return 0, jsengine.NewValueError(err.Error(), err)
		}
		l, err := n.ToInteger()
		if err != nil {
			return 0, jsengine.NewValueError(err.Error(), err)
		}
		return int(l), nil
	case jsengine.KindObject:
		return len(v.v.Object().Keys()), nil
	}
	return 0, nil
}

// Index returns the i-th item of an array.
func (v Value) Index(i int) (Value, error) {
	if err := v.check(); err != nil {
		return Value{}, err
	}
	if k := v.Kind(); k != jsengine.KindArray {
		return Value{}, jsengine.KindMismatch(jsengine.KindArray, k)
	}
	return v.Get(strconv.Itoa(i))
}

// Get returns the property key of an object or array.
func (v Value) Get(key string) (Value, error) {
	if err := v.check(); err != nil {
		return Value{}, err
	}
	obj := v.v.Object()
	if obj == nil {
		return Value{}, jsengine.KindMismatch(jsengine.KindObject, v.Kind())
	}
	item, err := obj.Get(key)
	if err != nil {
		return Value{}, jsengine.NewValueError(err.Error(), err)
	}
	return Value{v: item, st: v.st}, nil
}

// Keys returns the own enumerable keys of an object.
func (v Value) Keys() ([]string, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	obj := v.v.Object()
	if obj == nil {
		return nil, jsengine.KindMismatch(jsengine.KindObject, v.Kind())
	}
	return obj.Keys(), nil
}

// Own exports the value, recursively, into owned form. Functions become
// null.
func (v Value) Own() (result owned.Value, err error) {
	if err := v.check(); err != nil {
		return owned.Null(), err
	}
	defer v.st.engine.recoverAs(jsengine.ValueError, &err)
	return v.own(jsengine.NewExportBudget(), 0)
}

func (v Value) own(budget *jsengine.ExportBudget, depth int) (owned.Value, error) {
	if depth > maxDepth {
		return owned.Null(), jsengine.NewValueError(fmt.Sprintf("value nesting exceeds %d levels (cyclic structure?)", maxDepth), nil)
	}
	if err := budget.Take(1); err != nil {
		return owned.Null(), err
	}
	if v.v.IsFunction() {
		return owned.Null(), nil
	}

	switch k := v.Kind(); k {
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
		n, err := v.Len()
		if err != nil {
			return owned.Null(), err
		}
		if err := budget.Fits(int64(n)); err != nil {
			return owned.Null(), err
		}
		items := make([]owned.Value, 0, min(n, 1024))
		for i := 0; i < n; i++ {
			item, err := v.Index(i)
			if err != nil {
				return owned.Null(), err
			}
			o, err := item.own(budget, depth+1)
			if err != nil {
				return owned.Null(), err
			}
			items = append(items, o)
		}
		return owned.FromArray(items...), nil
	}

	keys, err := v.Keys()
	if err != nil {
		return owned.Null(), err
	}
	entries := make([]owned.Entry, 0, len(keys))
	for _, k := range keys {
		item, err := v.Get(k)
		if err != nil {
			return owned.Null(), err
		}
		o, err := item.own(budget, depth+1)
		if err != nil {
			return owned.Null(), err
		}
		entries = append(entries, owned.Entry{Key: k, Value: o})
	}
	return owned.FromObject(entries...), nil
}

// String renders the value with JavaScript's ToString, for debugging.
func (v Value) String() string {
	return v.v.String()
}
