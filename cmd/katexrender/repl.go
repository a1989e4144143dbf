// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"gopkg.in/yaml.v3"

	"github.com/aplane-algo/katex"
	"github.com/aplane-algo/katex/internal/util"
)

var (
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

const replHelp = `Enter TeX to render it. Commands:
  :display on|off   toggle display mode
  :opts             show the current options
  :js <code>        evaluate JavaScript and print the result as JSON
  :help             show this help
  :quit             exit`

// handleLine runs one REPL line and reports whether the REPL should exit.
func (a *app) handleLine(line string, w io.Writer) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ":") {
		html, err := a.render(line)
		if err != nil {
			fmt.Fprintln(w, errorStyle.Render("Error: "+err.Error()))
			return false
		}
		fmt.Fprintln(w, html)
		return false
	}

	cmd, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "quit", "q", "exit":
		return true

	case "help", "h":
		fmt.Fprintln(w, replHelp)

	case "display":
		switch arg {
		case "on":
			a.opts.SetDisplayMode(true)
		case "off":
			a.opts.SetDisplayMode(false)
		case "":
			a.opts.SetDisplayMode(!a.display())
		default:
			fmt.Fprintln(w, errorStyle.Render("Usage: :display on|off"))
			return false
		}
		fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf("display mode %s", onOff(a.display()))))

	case "opts":
		data, err := yaml.Marshal(a.opts)
		if err != nil {
			fmt.Fprintln(w, errorStyle.Render("Error: "+err.Error()))
			return false
		}
		if s := strings.TrimSpace(string(data)); s != "{}" {
			fmt.Fprintln(w, s)
		} else {
			fmt.Fprintln(w, infoStyle.Render("(KaTeX defaults)"))
		}

	case "js":
		if arg == "" {
			fmt.Fprintln(w, errorStyle.Render("Usage: :js <code>"))
			return false
		}
		out, err := a.evalJS(arg)
		if err != nil {
			fmt.Fprintln(w, errorStyle.Render("Error: "+err.Error()))
			return false
		}
		fmt.Fprintln(w, out)

	default:
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("Unknown command :%s (try :help)", cmd)))
	}
	return false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func startBasicREPL(a *app) {
	fmt.Println("Running in basic mode (no history)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("katex> ")
		if !scanner.Scan() {
			break
		}
		if a.handleLine(scanner.Text(), os.Stdout) {
			break
		}
	}
}

func startREPL(a *app) {
	fmt.Printf("katexrender - KaTeX REPL (%s engine)\n", katex.BackendName)
	fmt.Println("Type ':help' for available commands or ':quit' to exit")

	rlConfig := &readline.Config{
		Prompt:            util.Colorize("32", "katex>") + " ",
		HistoryFile:       a.historyFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         ":quit",
		HistorySearchFold: true,
	}

	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		fmt.Printf("Failed to create readline instance, falling back to basic input: %v\n", err)
		startBasicREPL(a)
		return
	}
	defer func() {
		_ = rl.Close() // Best-effort close, errors during shutdown not critical
	}()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					fmt.Println("Use ':quit' to exit")
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Println("\nGoodbye!")
				break
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}
		if a.handleLine(line, rl.Stdout()) {
			break
		}
	}
}
