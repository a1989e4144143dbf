// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package katex

import (
	"fmt"

	"github.com/aplane-algo/katex/internal/integrity"
)

// DefaultPayloadFile is the file LoadPayload reads when none is named.
const DefaultPayloadFile = "katex.min.js"

// LoadPayload reads files from dir. The first file is the KaTeX payload and
// the rest are extensions. If dir holds a checksums.sha256 manifest, every
// file must be listed in it, and the bytes returned are the bytes that were
// checked.
func LoadPayload(dir string, files ...string) (payload string, extensions []string, err error) {
	return loadPayload(dir, files, false)
}

// LoadVerifiedPayload is LoadPayload with the checksums manifest required.
func LoadVerifiedPayload(dir string, files ...string) (payload string, extensions []string, err error) {
	return loadPayload(dir, files, true)
}

func loadPayload(dir string, files []string, requireChecksums bool) (string, []string, error) {
	if len(files) == 0 {
		files = []string{DefaultPayloadFile}
	}

	data, err := integrity.ReadPayload(dir, files, requireChecksums)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load payload: %w", err)
	}

	sources := make([]string, len(data))
	for i, b := range data {
		sources[i] = string(b)
	}
	return sources[0], sources[1:], nil
}
