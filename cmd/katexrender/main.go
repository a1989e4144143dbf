// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// katexrender renders TeX math to HTML with KaTeX running in an embedded
// JavaScript engine.
//
// Usage:
//
//	katexrender -e 'E = mc^2'           render an expression
//	katexrender -f doc.tex -o doc.html   render a file
//	katexrender -f doc.tex -watch        re-render on every save
//	katexrender -tui                     live preview
//	katexrender                          REPL (or render stdin when piped)
//
// The KaTeX payload is read from payload_dir in the data directory
// (-d, KATEX_DATA or ~/.katex).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/aplane-algo/katex"
	"github.com/aplane-algo/katex/cmd/katexrender/internal/tui"
	"github.com/aplane-algo/katex/internal/util"
	"github.com/aplane-algo/katex/internal/version"
)

func main() {
	// Handle early-exit flags before any other processing
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" {
			fmt.Printf("katexrender %s\n", version.String(katex.BackendName))
			os.Exit(0)
		}
	}

	dataDir := flag.String("d", "", "Data directory (or set KATEX_DATA, default ~/.katex)")
	expr := flag.String("e", "", "Render a TeX expression")
	file := flag.String("f", "", "Render a TeX file ('-' for stdin)")
	output := flag.String("o", "", "Write output to file instead of stdout")
	display := flag.Bool("display", false, "Render in display mode")
	watch := flag.Bool("watch", false, "Re-render the -f file whenever it changes")
	tuiMode := flag.Bool("tui", false, "Interactive live preview")
	jsCode := flag.String("js", "", "Evaluate JavaScript in a loaded engine and print the result as JSON")
	showBackend := flag.Bool("backend", false, "Print the script engine and how its values are mapped")
	showConfig := flag.Bool("config", false, "Print the resolved configuration")
	flag.Parse()

	util.InitLogger()

	if *showBackend {
		printBackend(os.Stdout)
		return
	}

	resolvedDataDir := util.RequireDataDir(*dataDir)
	if *showConfig {
		util.DisplayConfig(resolvedDataDir)
		return
	}

	config, err := util.LoadConfig(resolvedDataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rc, err := config.RendererConfig(util.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Place katex.min.js in %s or set payload_dir in %s\n",
			config.PayloadDir, util.GetConfigPath(resolvedDataDir))
		os.Exit(1)
	}
	r, err := katex.New(rc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = r.Close() }()

	a := newApp(r, config, *display)
	if err := run(a, *expr, *file, *output, *jsCode, *watch, *tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		_ = r.Close()
		os.Exit(1)
	}
}

func run(a *app, expr, file, output, jsCode string, watch, tuiMode bool) error {
	switch {
	case jsCode != "":
		out, err := a.evalJS(jsCode)
		if err != nil {
			return err
		}
		return writeOutput(output, out)

	case watch:
		if file == "" || file == "-" {
			return errors.New("-watch requires -f <file>")
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return a.watch(ctx, file, output)

	case tuiMode:
		return tui.Run(a.renderDisplay, a.display())

	case expr != "":
		return a.renderTo(expr, output)

	case file == "-" || (file == "" && !util.IsInteractive()):
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		return a.renderTo(string(data), output)

	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		return a.renderTo(string(data), output)

	default:
		startREPL(a)
		return nil
	}
}

// printBackend prints the compiled-in engine and its degradation table.
func printBackend(w io.Writer) {
	fmt.Fprintf(w, "Engine: %s\n", katex.BackendName)
	if len(katex.Degradations) == 0 {
		return
	}
	fmt.Fprintln(w, "Value mapping:")
	for _, d := range katex.Degradations {
		fmt.Fprintf(w, "  %s\n", d)
	}
}
