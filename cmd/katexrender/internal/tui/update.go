// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all TUI events and messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeOutput()
		return m, nil

	case renderedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		if msg.err != nil {
			m.lastErr = msg.err.Error()
			return m, nil
		}
		m.lastErr = ""
		m.html = msg.html
		m.output.SetContent(wrap(m.html, m.output.Width))
		return m, nil
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "ctrl+d":
		m.display = !m.display
		return m.changed()

	case "ctrl+u":
		m.input = ""
		return m.changed()

	case "backspace":
		if m.input == "" {
			return m, nil
		}
		runes := []rune(m.input)
		m.input = string(runes[:len(runes)-1])
		return m.changed()

	case "pgup":
		m.output.ViewUp()
		return m, nil

	case "pgdown":
		m.output.ViewDown()
		return m, nil
	}

	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		m.input += string(msg.Runes)
		return m.changed()
	}
	return m, nil
}

// changed bumps seq and schedules a render of the new input.
func (m Model) changed() (tea.Model, tea.Cmd) {
	m.seq++
	if strings.TrimSpace(m.input) == "" {
		m.html = ""
		m.lastErr = ""
		m.output.SetContent("")
		return m, nil
	}
	return m, m.renderCmd()
}

// resizeOutput fits the viewport below the header and input box.
func (m *Model) resizeOutput() {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	h := m.height - 12
	if h < 3 {
		h = 3
	}
	m.output.Width = w
	m.output.Height = h
	m.output.SetContent(wrap(m.html, w))
}

// wrap hard-wraps s at width runes; HTML has few natural break points.
func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		if r == '\n' {
			n = 0
		} else if n == width {
			b.WriteByte('\n')
			n = 0
		}
		if r != '\n' {
			n++
		}
		b.WriteRune(r)
	}
	return b.String()
}
