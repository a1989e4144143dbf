// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package tui is the live preview for katexrender: TeX typed on the input
// line is re-rendered on every keystroke and the HTML shown below it.
package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// RenderFunc renders input in inline or display mode.
type RenderFunc func(input string, display bool) (string, error)

// renderedMsg carries the result of one render. seq identifies the input
// it was rendered from.
type renderedMsg struct {
	seq  int
	html string
	err  error
}

// Model is the preview TUI model
type Model struct {
	render RenderFunc

	input   string
	display bool

	// seq counts input changes; results for an older seq are dropped
	seq      int
	html     string
	lastErr  string
	quitting bool

	output viewport.Model
	width  int
	height int
}

// NewModel creates the preview model.
func NewModel(render RenderFunc, display bool) Model {
	return Model{
		render:  render,
		display: display,
		output:  viewport.New(80, 20),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Run starts the preview in the alternate screen and blocks until it exits.
func Run(render RenderFunc, display bool) error {
	p := tea.NewProgram(NewModel(render, display), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// renderCmd renders the current input off the UI goroutine.
func (m Model) renderCmd() tea.Cmd {
	seq, input, display, render := m.seq, m.input, m.display, m.render
	return func() tea.Msg {
		html, err := render(input, display)
		return renderedMsg{seq: seq, html: html, err: err}
	}
}
