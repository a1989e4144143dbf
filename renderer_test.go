// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package katex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeKaTeX mimics the katex.renderToString surface: it wraps the input,
// applies macros literally, throws on a trailing backslash and spins on
// \loop.
const fakeKaTeX = `
var katex = {
  renderToString: function (input, options) {
    options = options || {};
    var macros = options.macros || {};
    for (var name in macros) {
      input = input.split(name).join(macros[name]);
    }
    if (input === "\\loop") {
      for (;;) {}
    }
    if (input.charAt(input.length - 1) === "\\") {
      if (options.throwOnError !== false) {
        throw new Error("ParseError: KaTeX parse error: Unexpected end of input");
      }
      return '<span class="katex-error" style="color:' + (options.errorColor || "#cc0000") + '">' + input + '</span>';
    }
    var cls = options.displayMode ? "katex-display" : "katex";
    return '<span class="' + cls + '">' + input + '</span>';
  }
};
`

func newTestRenderer(t *testing.T, cfg Config) *Renderer {
	t.Helper()
	if cfg.Payload == "" {
		cfg.Payload = fakeKaTeX
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRender(t *testing.T) {
	r := newTestRenderer(t, Config{})

	display := &Opts{}
	display.SetDisplayMode(true)
	lenient := &Opts{}
	lenient.SetThrowOnError(false)
	lenient.SetErrorColor("#123456")
	macros := &Opts{}
	macros.AddMacro(`\RR`, `\mathbb{R}`)

	tests := []struct {
		name  string
		input string
		opts  *Opts
		want  string
	}{
		{"inline", "E = mc^2", nil, `<span class="katex">E = mc^2</span>`},
		{"display", `\sum_i x_i`, display, `<span class="katex-display">\sum_i x_i</span>`},
		{"error color", `x^\`, lenient, `<span class="katex-error" style="color:#123456">x^\</span>`},
		{"macro", `x \in \RR`, macros, `<span class="katex">x \in \mathbb{R}</span>`},
		{"unicode", "α + β", nil, `<span class="katex">α + β</span>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.RenderWithOpts(tt.input, tt.opts)
			if err != nil {
				t.Fatalf("RenderWithOpts(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("RenderWithOpts(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRenderParseError(t *testing.T) {
	r := newTestRenderer(t, Config{})

	_, err := r.Render(`x^\`)
	if !errors.Is(err, ErrExec) {
		t.Fatalf("Render error = %v, want ErrExec", err)
	}
	if !strings.Contains(err.Error(), "ParseError") {
		t.Errorf("error %q does not carry the KaTeX message", err)
	}

	// The engine stays usable after a thrown error.
	if _, err := r.Render("x"); err != nil {
		t.Errorf("Render after error failed: %v", err)
	}
}

func TestRenderInvalidOpts(t *testing.T) {
	r := newTestRenderer(t, Config{})
	bad := OutputType("svg")
	if _, err := r.RenderWithOpts("x", &Opts{Output: &bad}); !errors.Is(err, ErrValue) {
		t.Errorf("RenderWithOpts error = %v, want ErrValue", err)
	}
}

func TestRenderExtensions(t *testing.T) {
	ext := `katex.renderToString = (function (orig) {
  return function (input, options) { return "[ext]" + orig(input, options); };
})(katex.renderToString);`
	r := newTestRenderer(t, Config{Extensions: []string{ext}})

	got, err := r.Render("x")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if want := `[ext]<span class="katex">x</span>`; got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestNewWithoutPayload(t *testing.T) {
	_, err := New(Config{})
	if !errors.Is(err, ErrInit) {
		t.Errorf("New error = %v, want ErrInit", err)
	}
}

func TestInitFailureIsCached(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		ext     []string
	}{
		{"syntax error", "var katex = ;", nil},
		{"no katex global", "var notKatex = {};", nil},
		{"bad extension", fakeKaTeX, []string{"throw new Error('boom');"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRenderer(t, Config{Payload: tt.payload, Extensions: tt.ext})

			_, first := r.Render("x")
			if !errors.Is(first, ErrInit) {
				t.Fatalf("first Render error = %v, want ErrInit", first)
			}
			for i := 0; i < 3; i++ {
				_, err := r.Render("x")
				if err == nil || err.Error() != first.Error() {
					t.Errorf("Render #%d error = %v, want %v", i+2, err, first)
				}
			}
			if got := r.pool.Attempts(); got != 1 {
				t.Errorf("engine builds = %d, want 1", got)
			}
		})
	}
}

func TestRenderContextInterrupt(t *testing.T) {
	r := newTestRenderer(t, Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.RenderContext(ctx, `\loop`, nil)
	if !errors.Is(err, ErrExec) {
		t.Fatalf("RenderContext error = %v, want ErrExec", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("RenderContext error = %v, want to wrap context.DeadlineExceeded", err)
	}

	if _, err := r.Render("x"); err != nil {
		t.Errorf("Render after interrupt failed: %v", err)
	}
}

func TestRenderConcurrent(t *testing.T) {
	r := newTestRenderer(t, Config{Workers: 4})

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input := fmt.Sprintf("x_%d", i)
			got, err := r.Render(input)
			if err != nil {
				errs <- err
				return
			}
			if want := `<span class="katex">` + input + `</span>`; got != want {
				errs <- fmt.Errorf("Render(%q) = %q, want %q", input, got, want)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestRendererEval(t *testing.T) {
	r := newTestRenderer(t, Config{})

	v, err := r.Eval(context.Background(), "typeof katex.renderToString")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if s, _ := v.ToString(); s != "function" {
		t.Errorf("Eval = %v, want \"function\"", v)
	}

	v, err = r.Eval(context.Background(), "1+1")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if n, err := v.ToInt(); err != nil || n != 2 {
		t.Errorf("Eval(1+1) = %v, want 2", v)
	}

	if _, err := r.Eval(context.Background(), "("); !errors.Is(err, ErrExec) {
		t.Errorf("Eval syntax error = %v, want ErrExec", err)
	}
}

func TestRendererClosed(t *testing.T) {
	r, err := New(Config{Payload: fakeKaTeX, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Render("x"); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := r.Render("x"); !errors.Is(err, ErrExec) {
		t.Errorf("Render after Close error = %v, want ErrExec", err)
	}
}

func TestDefaultRenderer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultPayloadFile)
	if err := os.WriteFile(path, []byte(fakeKaTeX), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPayload, path)
	t.Setenv(EnvWorkers, "2")

	got, err := Render("y")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if want := `<span class="katex">y</span>`; got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}

	opts := &Opts{}
	opts.SetDisplayMode(true)
	got, err = RenderWithOpts("y", opts)
	if err != nil {
		t.Fatalf("RenderWithOpts failed: %v", err)
	}
	if want := `<span class="katex-display">y</span>`; got != want {
		t.Errorf("RenderWithOpts = %q, want %q", got, want)
	}
}
