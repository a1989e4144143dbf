// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func fakeRender(input string, display bool) (string, error) {
	if strings.HasSuffix(input, `\`) {
		return "", errors.New("ParseError: unexpected end of input")
	}
	if display {
		return "<div>" + input + "</div>", nil
	}
	return "<span>" + input + "</span>", nil
}

// typeKeys feeds runes one at a time and runs the render command of the last
// keystroke.
func typeKeys(t *testing.T, m Model, s string) Model {
	t.Helper()
	var cmd tea.Cmd
	for _, r := range s {
		var next tea.Model
		next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	if cmd == nil {
		t.Fatal("expected a render command")
	}
	next, _ := m.Update(cmd())
	return next.(Model)
}

func TestTypingRenders(t *testing.T) {
	m := typeKeys(t, NewModel(fakeRender, false), "x^2")

	if m.input != "x^2" {
		t.Errorf("input = %q, want x^2", m.input)
	}
	if m.html != "<span>x^2</span>" {
		t.Errorf("html = %q, want <span>x^2</span>", m.html)
	}
	if m.lastErr != "" {
		t.Errorf("lastErr = %q, want empty", m.lastErr)
	}
}

func TestRenderErrorKeepsLastOutput(t *testing.T) {
	m := typeKeys(t, NewModel(fakeRender, false), "x")
	m = typeKeys(t, m, `\`)

	if !strings.Contains(m.lastErr, "ParseError") {
		t.Errorf("lastErr = %q, want ParseError", m.lastErr)
	}
	if m.html != "<span>x</span>" {
		t.Errorf("html = %q, want previous output", m.html)
	}
	if !strings.Contains(m.View(), "ParseError") {
		t.Error("View() does not show the error")
	}
}

func TestStaleRenderIgnored(t *testing.T) {
	m := NewModel(fakeRender, false)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	m = next.(Model)
	stale := cmd()

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	m = next.(Model)
	next, _ = m.Update(stale)
	m = next.(Model)

	if m.html != "" {
		t.Errorf("html = %q, stale result should be dropped", m.html)
	}
}

func TestToggleDisplay(t *testing.T) {
	m := typeKeys(t, NewModel(fakeRender, false), "y")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = next.(Model)
	if !m.display {
		t.Fatal("ctrl+d should enable display mode")
	}
	next, _ = m.Update(cmd())
	m = next.(Model)
	if m.html != "<div>y</div>" {
		t.Errorf("html = %q, want <div>y</div>", m.html)
	}
}

func TestBackspaceAndClear(t *testing.T) {
	m := typeKeys(t, NewModel(fakeRender, false), "αβ")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = next.(Model)
	if m.input != "α" {
		t.Errorf("input after backspace = %q, want α", m.input)
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	m = next.(Model)
	if m.input != "" || m.html != "" || cmd != nil {
		t.Errorf("ctrl+u: input = %q, html = %q, cmd = %v", m.input, m.html, cmd)
	}
}

func TestQuit(t *testing.T) {
	next, cmd := NewModel(fakeRender, false).Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !next.(Model).quitting || cmd == nil {
		t.Error("esc should quit")
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"abcdef", 3, "abc\ndef"},
		{"ab\ncdef", 3, "ab\ncde\nf"},
		{"abc", 0, "abc"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := wrap(tt.in, tt.width); got != tt.want {
			t.Errorf("wrap(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
