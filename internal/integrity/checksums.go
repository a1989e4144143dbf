// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package integrity

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ChecksumsFile is the manifest name looked up in a payload directory.
const ChecksumsFile = "checksums.sha256"

// ChecksumEntry represents a single entry in the checksums file
type ChecksumEntry struct {
	Hash     string // 64-character lowercase hex SHA256
	Filename string // Relative path from the payload directory
}

// ChecksumFile represents a parsed checksums.sha256 file
type ChecksumFile struct {
	Entries []ChecksumEntry
	Path    string
}

// "<64-hex-chars>  <filename>", one or two spaces (sha256sum uses two)
var checksumLineRegex = regexp.MustCompile(`^([a-fA-F0-9]{64})\s{1,2}(.+)$`)

// HasChecksums reports whether dir contains a checksums file.
func HasChecksums(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ChecksumsFile))
	return err == nil
}

// LoadChecksums reads and parses the checksums file of a payload directory
func LoadChecksums(dir string) (*ChecksumFile, error) {
	checksumPath := filepath.Join(dir, ChecksumsFile)

	file, err := os.Open(checksumPath)
	if os.IsNotExist(err) {
		return nil, ErrNoChecksums
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open checksums file: %w", err)
	}
	defer func() { _ = file.Close() }()

	cf := &ChecksumFile{Path: checksumPath}

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		matches := checksumLineRegex.FindStringSubmatch(line)
		if matches == nil {
			return nil, fmt.Errorf("%w: line %d: %q", ErrInvalidChecksumsFormat, lineNum, line)
		}
		cf.Entries = append(cf.Entries, ChecksumEntry{
			Hash:     strings.ToLower(matches[1]),
			Filename: matches[2],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading checksums file: %w", err)
	}

	if len(cf.Entries) == 0 {
		return nil, fmt.Errorf("%w: no entries found", ErrInvalidChecksumsFormat)
	}
	return cf, nil
}

// FindEntry looks up a filename, treating "./katex.js" and "katex.js" alike.
func (cf *ChecksumFile) FindEntry(filename string) *ChecksumEntry {
	target := normalizePath(filename)
	for i := range cf.Entries {
		if normalizePath(cf.Entries[i].Filename) == target {
			return &cf.Entries[i]
		}
	}
	return nil
}

func normalizePath(path string) string {
	normalized := filepath.ToSlash(path)
	return strings.TrimPrefix(normalized, "./")
}
