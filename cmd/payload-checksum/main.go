// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// payload-checksum generates checksums.sha256 for a KaTeX payload directory.
//
// Usage:
//
//	payload-checksum <payload-directory> [extension-files...]
//
// The manifest always covers katex.min.js (or katex.js when there is no
// minified build) plus any extension files named on the command line.
// The generated file uses the standard sha256sum format and is compatible
// with `sha256sum -c checksums.sha256` for manual verification.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aplane-algo/katex"
	"github.com/aplane-algo/katex/internal/integrity"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: payload-checksum <payload-directory> [extension-files...]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Generates checksums.sha256 for a KaTeX payload directory.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "The tool automatically includes katex.min.js (or katex.js).")
		fmt.Fprintln(os.Stderr, "Extension files can be listed as extra arguments.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Examples:")
		fmt.Fprintln(os.Stderr, "  payload-checksum ~/.katex/katex")
		fmt.Fprintln(os.Stderr, "  payload-checksum ~/.katex/katex contrib/mhchem.min.js")
		os.Exit(2)
	}

	payloadDir := os.Args[1]

	// Verify directory exists
	info, err := os.Stat(payloadDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot access payload directory: %v\n", err)
		os.Exit(1)
	}
	if !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: not a directory: %s\n", payloadDir)
		os.Exit(1)
	}

	files := []string{payloadFile(payloadDir)}
	files = append(files, os.Args[2:]...)

	// Verify all files exist before generating
	for _, file := range files {
		if _, err := os.Stat(filepath.Join(payloadDir, file)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: file not found: %s\n", file)
			os.Exit(1)
		}
	}

	content, err := integrity.GenerateChecksums(payloadDir, files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to generate checksums: %v\n", err)
		os.Exit(1)
	}

	checksumPath := filepath.Join(payloadDir, integrity.ChecksumsFile)
	if err := os.WriteFile(checksumPath, []byte(content), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write checksums file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", checksumPath)
	fmt.Printf("Files included (%d):\n", len(files))
	for _, file := range files {
		hash, _ := integrity.SumFile(filepath.Join(payloadDir, file))
		fmt.Printf("  %s  %s\n", hash[:16]+"...", file)
	}
}

// payloadFile prefers the minified build and falls back to katex.js.
func payloadFile(dir string) string {
	if _, err := os.Stat(filepath.Join(dir, katex.DefaultPayloadFile)); err == nil {
		return katex.DefaultPayloadFile
	}
	return "katex.js"
}
