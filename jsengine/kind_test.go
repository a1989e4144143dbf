// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsengine

import (
	"strings"
	"testing"
	"unicode/utf16"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindNull, "null"},
		{KindBool, "bool"},
		{KindInt, "int"},
		{KindFloat, "float"},
		{KindString, "string"},
		{KindArray, "array"},
		{KindObject, "object"},
		{Kind(42), "Kind(42)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestDegradationString(t *testing.T) {
	d := Degradation{Native: "Date", Kind: KindFloat, Note: "epoch milliseconds"}
	if got := d.String(); got != "Date -> float (epoch milliseconds)" {
		t.Errorf("String() = %q", got)
	}
	d.Note = ""
	if got := d.String(); got != "Date -> float" {
		t.Errorf("String() = %q", got)
	}
}

func TestCheckUTF16(t *testing.T) {
	tests := []struct {
		name    string
		units   []uint16
		wantErr bool
		wantIdx string
	}{
		{"empty", nil, false, ""},
		{"ascii", utf16.Encode([]rune("hello")), false, ""},
		{"pair", utf16.Encode([]rune("a\U0001F600b")), false, ""},
		{"lone high", []uint16{'a', 0xD800, 'b'}, true, "index 1"},
		{"lone high at end", []uint16{'a', 0xD83D}, true, "index 1"},
		{"lone low", []uint16{0xDC00}, true, "index 0"},
		{"reversed pair", []uint16{0xDE00, 0xD83D}, true, "index 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckUTF16(len(tt.units), func(i int) uint16 { return tt.units[i] })
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if KindOf(err) != ValueError {
				t.Errorf("error kind = %v, want %v", KindOf(err), ValueError)
			}
			if !strings.Contains(err.Error(), tt.wantIdx) {
				t.Errorf("error %q does not mention %q", err, tt.wantIdx)
			}
		})
	}
}
