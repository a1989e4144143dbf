// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// Sum returns the lowercase hex SHA-256 of data, as written in
// checksums.sha256.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SumFile hashes the file at path.
func SumFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Sum(data), nil
}

// checkSum compares the hash of data read for name with its manifest entry.
func checkSum(entry *ChecksumEntry, name string, data []byte) error {
	if got := Sum(data); got != entry.Hash {
		return fmt.Errorf("%w: %s (expected %s..., got %s...)",
			ErrChecksumMismatch, name, entry.Hash[:16], got[:16])
	}
	return nil
}
