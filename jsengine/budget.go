// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsengine

import "fmt"

// MaxExportNodes bounds the number of values a single export into owned
// form may produce. Array length counts in full, so a sparse array with a
// huge length is rejected before anything is allocated.
const MaxExportNodes = 1 << 20

// ExportBudget counts values produced by one export. The zero value is not
// usable; call NewExportBudget.
type ExportBudget struct {
	left int
}

// NewExportBudget returns a budget of MaxExportNodes values.
func NewExportBudget() *ExportBudget {
	return &ExportBudget{left: MaxExportNodes}
}

// Take charges n values against the budget and returns a ValueError once
// the budget is exhausted.
func (b *ExportBudget) Take(n int) error {
	if n < 0 || n > b.left {
		return NewValueError(fmt.Sprintf("value exceeds %d exported nodes", MaxExportNodes), nil)
	}
	b.left -= n
	return nil
}

// Fits returns a ValueError if n more values would exceed the budget.
// Nothing is charged.
func (b *ExportBudget) Fits(n int64) error {
	if n < 0 || n > int64(b.left) {
		return NewValueError(fmt.Sprintf("value exceeds %d exported nodes (length %d)", MaxExportNodes, n), nil)
	}
	return nil
}
