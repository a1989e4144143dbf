// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsengine

import "fmt"

// SurrogateProbeSource is an ES5 function expression returning the index of
// the first unpaired surrogate in its argument, or -1. Backends that cannot
// inspect UTF-16 code units from Go evaluate it inside the engine.
const SurrogateProbeSource = `(function (s) {
	for (var i = 0; i < s.length; i++) {
		var c = s.charCodeAt(i);
		if (c >= 0xD800 && c <= 0xDBFF) {
			var d = s.charCodeAt(i + 1);
			if (!(d >= 0xDC00 && d <= 0xDFFF)) { return i; }
			i++;
		} else if (c >= 0xDC00 && c <= 0xDFFF) {
			return i;
		}
	}
	return -1;
})`

// CheckUTF16 scans n code units read through at and returns a ValueError at
// the first lone surrogate.
func CheckUTF16(n int, at func(i int) uint16) error {
	for i := 0; i < n; i++ {
		c := at(i)
		switch {
		case c >= 0xD800 && c <= 0xDBFF:
			if i+1 >= n {
				return LoneSurrogate(i)
			}
			if d := at(i + 1); d < 0xDC00 || d > 0xDFFF {
				return LoneSurrogate(i)
			}
			i++
		case c >= 0xDC00 && c <= 0xDFFF:
			return LoneSurrogate(i)
		}
	}
	return nil
}

// LoneSurrogate is the ValueError for an ill-formed UTF-16 string.
func LoneSurrogate(index int) *Error {
	return NewValueError(fmt.Sprintf("string is not well-formed UTF-16: lone surrogate at index %d", index), nil)
}
