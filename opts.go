// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package katex

import (
	"fmt"
	"math"

	"github.com/aplane-algo/katex/jsengine"
	"github.com/aplane-algo/katex/jsengine/owned"
)

// OutputType selects the markup KaTeX produces.
type OutputType string

const (
	// OutputHTML outputs HTML only.
	OutputHTML OutputType = "html"
	// OutputMathML outputs MathML only.
	OutputMathML OutputType = "mathml"
	// OutputHTMLAndMathML outputs HTML for display and MathML for accessibility.
	OutputHTMLAndMathML OutputType = "htmlAndMathml"
)

// ExpandUnlimited is the maxExpand value that lets the macro expander run
// without limit.
const ExpandUnlimited int32 = math.MaxInt32

// Opts are the options passed to katex.renderToString. A nil field is
// unset and left to KaTeX's default. See https://katex.org/docs/options.html.
type Opts struct {
	DisplayMode      *bool             `yaml:"display_mode,omitempty" description:"Render in display (block) mode"`
	Output           *OutputType       `yaml:"output,omitempty" description:"Output markup: html, mathml or htmlAndMathml"`
	Leqno            *bool             `yaml:"leqno,omitempty" description:"Render \\tag on the left instead of the right"`
	Fleqn            *bool             `yaml:"fleqn,omitempty" description:"Make display math flush left"`
	ThrowOnError     *bool             `yaml:"throw_on_error,omitempty" description:"Fail on invalid LaTeX instead of rendering it in error color"`
	ErrorColor       *string           `yaml:"error_color,omitempty" description:"Color used for invalid LaTeX"`
	Macros           map[string]string `yaml:"macros,omitempty" description:"Custom macros, e.g. \\RR: \\mathbb{R}"`
	MinRuleThickness *float64          `yaml:"min_rule_thickness,omitempty" description:"Minimum rule thickness in ems"`
	MaxSize          *float64          `yaml:"max_size,omitempty" description:"Maximum user-specified size in ems; unset means unlimited"`
	MaxExpand        *int32            `yaml:"max_expand,omitempty" description:"Macro expansion limit; 2147483647 means unlimited"`
	Trust            *bool             `yaml:"trust,omitempty" description:"Trust the input (enables \\url, \\href and similar)"`
}

func (o *Opts) SetDisplayMode(flag bool)       { o.DisplayMode = &flag }
func (o *Opts) SetOutputType(t OutputType)     { o.Output = &t }
func (o *Opts) SetLeqno(flag bool)             { o.Leqno = &flag }
func (o *Opts) SetFleqn(flag bool)             { o.Fleqn = &flag }
func (o *Opts) SetThrowOnError(flag bool)      { o.ThrowOnError = &flag }
func (o *Opts) SetErrorColor(color string)     { o.ErrorColor = &color }
func (o *Opts) SetMinRuleThickness(em float64) { o.MinRuleThickness = &em }
func (o *Opts) SetMaxSize(em float64)          { o.MaxSize = &em }
func (o *Opts) SetMaxExpand(n int32)           { o.MaxExpand = &n }
func (o *Opts) SetUnlimitedExpand()            { o.SetMaxExpand(ExpandUnlimited) }
func (o *Opts) SetTrust(flag bool)             { o.Trust = &flag }

// AddMacro defines or replaces a macro.
func (o *Opts) AddMacro(name, expansion string) {
	if o.Macros == nil {
		o.Macros = make(map[string]string)
	}
	o.Macros[name] = expansion
}

// Validate checks values KaTeX would reject.
func (o *Opts) Validate() error {
	if o == nil {
		return nil
	}
	if o.Output != nil {
		switch *o.Output {
		case OutputHTML, OutputMathML, OutputHTMLAndMathML:
		default:
			return jsengine.NewValueError(fmt.Sprintf("invalid output type %q (want html, mathml or htmlAndMathml)", *o.Output), nil)
		}
	}
	if o.MinRuleThickness != nil && (*o.MinRuleThickness < 0 || math.IsNaN(*o.MinRuleThickness)) {
		return jsengine.NewValueError(fmt.Sprintf("min_rule_thickness must be >= 0, got %v", *o.MinRuleThickness), nil)
	}
	if o.MaxSize != nil && (*o.MaxSize < 0 || math.IsNaN(*o.MaxSize)) {
		return jsengine.NewValueError(fmt.Sprintf("max_size must be >= 0, got %v", *o.MaxSize), nil)
	}
	if o.MaxExpand != nil && *o.MaxExpand < 0 {
		return jsengine.NewValueError(fmt.Sprintf("max_expand must be >= 0, got %d", *o.MaxExpand), nil)
	}
	return nil
}

// Value converts the options to the object passed to renderToString.
// Unset fields are omitted. A nil *Opts yields an empty object.
func (o *Opts) Value() owned.Value {
	if o == nil {
		return owned.FromObject()
	}
	var entries []owned.Entry
	add := func(key string, v owned.Value) {
		entries = append(entries, owned.Entry{Key: key, Value: v})
	}

	if o.DisplayMode != nil {
		add("displayMode", owned.FromBool(*o.DisplayMode))
	}
	if o.Output != nil {
		add("output", owned.FromString(string(*o.Output)))
	}
	if o.Leqno != nil {
		add("leqno", owned.FromBool(*o.Leqno))
	}
	if o.Fleqn != nil {
		add("fleqn", owned.FromBool(*o.Fleqn))
	}
	if o.ThrowOnError != nil {
		add("throwOnError", owned.FromBool(*o.ThrowOnError))
	}
	if o.ErrorColor != nil {
		add("errorColor", owned.FromString(*o.ErrorColor))
	}
	if len(o.Macros) > 0 {
		macros := make([]owned.Entry, 0, len(o.Macros))
		for name, expansion := range o.Macros {
			macros = append(macros, owned.Entry{Key: name, Value: owned.FromString(expansion)})
		}
		add("macros", owned.FromObject(macros...))
	}
	if o.MinRuleThickness != nil {
		add("minRuleThickness", owned.FromFloat(*o.MinRuleThickness))
	}
	if o.MaxSize != nil {
		add("maxSize", owned.FromFloat(*o.MaxSize))
	}
	if o.MaxExpand != nil {
		add("maxExpand", owned.FromInt(*o.MaxExpand))
	}
	if o.Trust != nil {
		add("trust", owned.FromBool(*o.Trust))
	}
	return owned.FromObject(entries...)
}

// Clone returns a deep copy.
func (o *Opts) Clone() *Opts {
	if o == nil {
		return nil
	}
	c := *o
	if o.Macros != nil {
		c.Macros = make(map[string]string, len(o.Macros))
		for k, v := range o.Macros {
			c.Macros[k] = v
		}
	}
	return &c
}
