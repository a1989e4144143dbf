// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package katex

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aplane-algo/katex/internal/integrity"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func writeManifest(t *testing.T, dir string, files ...string) {
	t.Helper()
	content, err := integrity.GenerateChecksums(dir, files)
	if err != nil {
		t.Fatal(err)
	}
	writeFiles(t, dir, map[string]string{integrity.ChecksumsFile: content})
}

func TestLoadPayload(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		DefaultPayloadFile: "var katex = {};",
		"mhchem.min.js":    "/* mhchem */",
	})

	payload, ext, err := LoadPayload(dir)
	if err != nil {
		t.Fatalf("LoadPayload failed: %v", err)
	}
	if payload != "var katex = {};" || len(ext) != 0 {
		t.Errorf("LoadPayload = %q, %v", payload, ext)
	}

	writeManifest(t, dir, DefaultPayloadFile, "mhchem.min.js")
	payload, ext, err = LoadVerifiedPayload(dir, DefaultPayloadFile, "mhchem.min.js")
	if err != nil {
		t.Fatalf("LoadVerifiedPayload failed: %v", err)
	}
	if payload != "var katex = {};" || len(ext) != 1 || ext[0] != "/* mhchem */" {
		t.Errorf("LoadVerifiedPayload = %q, %v", payload, ext)
	}
}

func TestLoadPayloadFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, dir string)
		load    func(dir string) error
		wantErr error
	}{
		{
			name: "tampered",
			setup: func(t *testing.T, dir string) {
				writeManifest(t, dir, DefaultPayloadFile)
				writeFiles(t, dir, map[string]string{DefaultPayloadFile: "evil();"})
			},
			load: func(dir string) error {
				_, _, err := LoadPayload(dir)
				return err
			},
			wantErr: integrity.ErrChecksumMismatch,
		},
		{
			name: "extension not listed",
			setup: func(t *testing.T, dir string) {
				writeFiles(t, dir, map[string]string{"copy-tex.js": "1;"})
				writeManifest(t, dir, DefaultPayloadFile)
			},
			load: func(dir string) error {
				_, _, err := LoadPayload(dir, DefaultPayloadFile, "copy-tex.js")
				return err
			},
			wantErr: integrity.ErrFileNotInChecksums,
		},
		{
			name:  "manifest required",
			setup: func(t *testing.T, dir string) {},
			load: func(dir string) error {
				_, _, err := LoadVerifiedPayload(dir)
				return err
			},
			wantErr: integrity.ErrNoChecksums,
		},
		{
			name:  "missing payload",
			setup: func(t *testing.T, dir string) {},
			load: func(dir string) error {
				_, _, err := LoadPayload(dir, "absent.js")
				return err
			},
			wantErr: os.ErrNotExist,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, map[string]string{DefaultPayloadFile: "var katex = {};"})
			tt.setup(t, dir)
			if err := tt.load(dir); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
