// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package integrity verifies KaTeX payload files against a checksums.sha256
// manifest kept next to them (sha256sum format), so a tampered or
// truncated payload is rejected before it is evaluated.
package integrity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ReadPayload reads each of files from dir exactly once and checks the
// bytes read against dir's checksums file, so what is returned is what was
// hashed. Every file must be listed, and the remaining entries must match
// too. Without a checksums file the files are returned unchecked, unless
// required is set, in which case ErrNoChecksums is returned.
func ReadPayload(dir string, files []string, required bool) ([][]byte, error) {
	checksums, err := LoadChecksums(dir)
	if err != nil {
		if !errors.Is(err, ErrNoChecksums) || required {
			return nil, err
		}
		checksums = nil
	}

	data := make([][]byte, len(files))
	loaded := make(map[string]bool, len(files))
	for i, f := range files {
		var entry *ChecksumEntry
		if checksums != nil {
			if entry = checksums.FindEntry(f); entry == nil {
				return nil, fmt.Errorf("%w: %s", ErrFileNotInChecksums, f)
			}
		}
		b, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		if entry != nil {
			if err := checkSum(entry, f, b); err != nil {
				return nil, err
			}
		}
		data[i] = b
		loaded[normalizePath(f)] = true
	}

	if checksums == nil {
		return data, nil
	}
	for _, entry := range checksums.Entries {
		if loaded[normalizePath(entry.Filename)] {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, entry.Filename))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrMissingFile, entry.Filename)
			}
			return nil, fmt.Errorf("failed to read %s: %w", entry.Filename, err)
		}
		if err := checkSum(&entry, entry.Filename, b); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// VerifyPayload checks dir's checksums file against files without keeping
// their contents.
func VerifyPayload(dir string, files []string) error {
	_, err := ReadPayload(dir, files, true)
	return err
}

// GenerateChecksums creates checksums.sha256 content for files in dir.
func GenerateChecksums(dir string, files []string) (string, error) {
	var result strings.Builder
	result.WriteString("# " + ChecksumsFile + "\n")
	result.WriteString(fmt.Sprintf("# Generated: %s\n", time.Now().UTC().Format(time.RFC3339)))
	result.WriteString("#\n")

	for _, file := range files {
		hash, err := SumFile(filepath.Join(dir, file))
		if err != nil {
			return "", fmt.Errorf("failed to hash %s: %w", file, err)
		}
		// Two spaces between hash and filename (sha256sum format)
		result.WriteString(fmt.Sprintf("%s  %s\n", hash, normalizePath(file)))
	}
	return result.String(), nil
}
