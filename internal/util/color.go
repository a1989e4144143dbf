// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// SupportsColor checks if the terminal supports ANSI color codes
func SupportsColor() bool {
	// Check if stdout is a terminal
	if !term.IsTerminal(int(os.Stdout.Fd())) { // #nosec G115 - file descriptors are small integers
		return false
	}
	return colorTerm(os.Getenv("TERM"))
}

func colorTerm(termEnv string) bool {
	return termEnv != "" && termEnv != "dumb"
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) // #nosec G115 - file descriptors are small integers
}

// Colorize wraps s in an ANSI color code when stdout supports color.
func Colorize(colorCode, s string) string {
	if colorCode == "" || !SupportsColor() {
		return s
	}
	return fmt.Sprintf("\033[%sm%s\033[0m", colorCode, s)
}
