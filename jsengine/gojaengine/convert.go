// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package gojaengine

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dop251/goja"

	"github.com/aplane-algo/katex/jsengine"
	"github.com/aplane-algo/katex/jsengine/owned"
)

// maxDepth stops conversion of cyclic or absurdly nested structures.
const maxDepth = 256

// Degradations lists how native shapes without a dedicated kind are
// reported.
var Degradations = []jsengine.Degradation{
	{Native: "undefined", Kind: jsengine.KindNull},
	{Native: "function", Kind: jsengine.KindNull, Note: "functions do not survive export"},
	{Native: "symbol", Kind: jsengine.KindNull},
	{Native: "bigint", Kind: jsengine.KindString, Note: "decimal digits"},
	{Native: "number outside int32, fractional or -0", Kind: jsengine.KindFloat},
	{Native: "Date", Kind: jsengine.KindFloat, Note: "epoch milliseconds"},
	{Native: "Map, Set, wrapper and other exotic objects", Kind: jsengine.KindObject, Note: "own enumerable string keys only"},
}

func (e *Engine) own(v goja.Value, budget *jsengine.ExportBudget, depth int) (owned.Value, error) {
	if depth > maxDepth {
		return owned.Null(), jsengine.NewValueError(fmt.Sprintf("value nesting exceeds %d levels (cyclic structure?)", maxDepth), nil)
	}
	if err := budget.Take(1); err != nil {
		return owned.Null(), err
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return owned.Null(), nil
	}

	switch t := v.(type) {
	case *goja.Object:
		return e.ownObject(t, budget, depth)
	case *goja.Symbol:
		return owned.Null(), nil
	case goja.String:
		s, err := wellFormed(t)
		if err != nil {
			return owned.Null(), err
		}
		return owned.FromString(s), nil
	}

	switch x := v.Export().(type) {
	case bool:
		return owned.FromBool(x), nil
	case int64:
		if x >= math.MinInt32 && x <= math.MaxInt32 {
			return owned.FromInt(int32(x)), nil
		}
		return owned.FromFloat(float64(x)), nil
	case float64:
		return owned.FromNumber(x), nil
	case *big.Int:
		return owned.FromString(x.String()), nil
	}
	return owned.Null(), jsengine.NewValueError(fmt.Sprintf("unsupported value %s", v.String()), nil)
}

func (e *Engine) ownObject(o *goja.Object, budget *jsengine.ExportBudget, depth int) (owned.Value, error) {
	if _, ok := goja.AssertFunction(o); ok {
		return owned.Null(), nil
	}

	switch o.ClassName() {
	case "Array":
		n := o.Get("length").ToInteger()
		if err := budget.Fits(n); err != nil {
			return owned.Null(), err
		}
		items := make([]owned.Value, 0, min(n, 1024))
		for i := int64(0); i < n; i++ {
			item, err := e.own(o.Get(strconv.FormatInt(i, 10)), budget, depth+1)
			if err != nil {
				return owned.Null(), err
			}
			items = append(items, item)
		}
		return owned.FromArray(items...), nil
	case "Date":
		return owned.FromFloat(o.ToFloat()), nil
	}

	keys := o.Keys()
	entries := make([]owned.Entry, 0, len(keys))
	for _, k := range keys {
		item, err := e.own(o.Get(k), budget, depth+1)
		if err != nil {
			return owned.Null(), err
		}
		entries = append(entries, owned.Entry{Key: k, Value: item})
	}
	return owned.FromObject(entries...), nil
}

// wellFormed returns s as Go text, failing on lone surrogates instead of
// letting them decay to U+FFFD.
func wellFormed(s goja.String) (string, error) {
	str := s.String()
	if !strings.ContainsRune(str, utf8.RuneError) {
		return str, nil
	}
	if err := jsengine.CheckUTF16(s.Length(), s.CharAt); err != nil {
		return "", err
	}
	return str, nil
}

// toNative builds the goja form of v. Object entries are defined as own
// data properties, so keys such as "__proto__" are stored like any other.
func (e *Engine) toNative(v owned.Value) (goja.Value, error) {
	switch v.Kind() {
	case jsengine.KindBool:
		b, _ := v.ToBool()
		return e.vm.ToValue(b), nil
	case jsengine.KindInt:
		i, _ := v.ToInt()
		return e.vm.ToValue(int64(i)), nil
	case jsengine.KindFloat:
		f, _ := v.ToFloat()
		return e.vm.ToValue(f), nil
	case jsengine.KindString:
		s, _ := v.ToString()
		return e.vm.ToValue(s), nil
	case jsengine.KindArray:
		items, _ := v.ToArray()
		native := make([]interface{}, len(items))
		for i, item := range items {
			n, err := e.toNative(item)
			if err != nil {
				return nil, err
			}
			native[i] = n
		}
		return e.vm.NewArray(native...), nil
	case jsengine.KindObject:
		obj := e.vm.NewObject()
		for _, k := range v.Keys() {
			item, _ := v.Get(k)
			n, err := e.toNative(item)
			if err != nil {
				return nil, err
			}
			if err := obj.DefineDataProperty(k, n, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_TRUE); err != nil {
				return nil, jsengine.NewValueError(fmt.Sprintf("cannot set key %q: %v", k, err), err)
			}
		}
		return obj, nil
	}
	return goja.Null(), nil
}
