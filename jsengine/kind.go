// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsengine

import "fmt"

// Kind is the tag of a value as seen through the contract.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindFloat:  "float",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsNumber reports whether k is one of the numeric kinds.
func (k Kind) IsNumber() bool {
	return k == KindInt || k == KindFloat
}

// Degradation documents how a native shape that has no dedicated Kind is
// reported by a backend.
type Degradation struct {
	Native string // native shape, e.g. "undefined", "function", "Date"
	Kind   Kind   // kind the value is reported as
	Note   string
}

func (d Degradation) String() string {
	if d.Note == "" {
		return fmt.Sprintf("%s -> %s", d.Native, d.Kind)
	}
	return fmt.Sprintf("%s -> %s (%s)", d.Native, d.Kind, d.Note)
}
