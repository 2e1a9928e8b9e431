// Package command defines the closed set of output-producing operations a
// build action can request, and renders them against an environment.
package command

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
)

// Kind names a command variant. The values double as the site file `kind` keys.
type Kind string

const (
	KindPage       Kind = "page"
	KindCopy       Kind = "copy"
	KindStylesheet Kind = "stylesheet"
	KindConcat     Kind = "concat"
)

// Command is one immutable unit of output production. The set of
// implementations is closed: Page, Copy, CompileStylesheet and Concat.
type Command interface {
	Kind() Kind
	// Output is the destination path relative to dist.
	Output() string
	sealed()
}

// Page renders a template with a context into an output file.
type Page struct {
	template string
	context  map[string]any
	output   string
}

// NewPage validates and constructs a Page. The context is deep-copied, so
// later edits to nested maps or slices do not reach the Page.
func NewPage(template string, context map[string]any, output string) (Page, error) {
	if template == "" {
		return Page{}, errors.MissingRequiredField(string(KindPage), "template").Build()
	}
	if context == nil {
		return Page{}, errors.MissingRequiredField(string(KindPage), "context").Build()
	}
	out, err := cleanRelative(KindPage, "output", output)
	if err != nil {
		return Page{}, err
	}
	return Page{template: filepath.ToSlash(template), context: cloneContext(context), output: out}, nil
}

func (p Page) Kind() Kind       { return KindPage }
func (p Page) Output() string   { return p.output }
func (p Page) Template() string { return p.template }

// Context returns a deep copy of the page's template context.
func (p Page) Context() map[string]any { return cloneContext(p.context) }
func (Page) sealed()                   {}

// Copy copies a file or directory tree from src into dist.
type Copy struct {
	input  string
	output string
}

// NewCopy validates and constructs a Copy. An empty output defaults to input.
func NewCopy(input, output string) (Copy, error) {
	in, err := cleanRelative(KindCopy, "input", input)
	if err != nil {
		return Copy{}, err
	}
	if output == "" {
		return Copy{input: in, output: in}, nil
	}
	out, err := cleanRelative(KindCopy, "output", output)
	if err != nil {
		return Copy{}, err
	}
	return Copy{input: in, output: out}, nil
}

func (c Copy) Kind() Kind     { return KindCopy }
func (c Copy) Output() string { return c.output }
func (c Copy) Input() string  { return c.input }
func (Copy) sealed()          {}

// CompileStylesheet hands an input stylesheet to the external compiler.
type CompileStylesheet struct {
	input  string
	output string
}

// NewCompileStylesheet validates and constructs a CompileStylesheet.
func NewCompileStylesheet(input, output string) (CompileStylesheet, error) {
	in, err := cleanRelative(KindStylesheet, "input", input)
	if err != nil {
		return CompileStylesheet{}, err
	}
	out, err := cleanRelative(KindStylesheet, "output", output)
	if err != nil {
		return CompileStylesheet{}, err
	}
	return CompileStylesheet{input: in, output: out}, nil
}

func (c CompileStylesheet) Kind() Kind     { return KindStylesheet }
func (c CompileStylesheet) Output() string { return c.output }
func (c CompileStylesheet) Input() string  { return c.input }
func (CompileStylesheet) sealed()          {}

// Concat joins several source files, in order, into one output.
type Concat struct {
	inputs []string
	output string
}

// NewConcat validates and constructs a Concat. The inputs slice is copied.
func NewConcat(inputs []string, output string) (Concat, error) {
	if len(inputs) == 0 {
		return Concat{}, errors.MissingRequiredField(string(KindConcat), "inputs").Build()
	}
	cleaned := make([]string, 0, len(inputs))
	for _, in := range inputs {
		c, err := cleanRelative(KindConcat, "inputs", in)
		if err != nil {
			return Concat{}, err
		}
		cleaned = append(cleaned, c)
	}
	out, err := cleanRelative(KindConcat, "output", output)
	if err != nil {
		return Concat{}, err
	}
	return Concat{inputs: cleaned, output: out}, nil
}

func (c Concat) Kind() Kind     { return KindConcat }
func (c Concat) Output() string { return c.output }

// Inputs returns a copy of the ordered input paths.
func (c Concat) Inputs() []string { return append([]string(nil), c.inputs...) }
func (Concat) sealed()            {}

// cleanRelative normalizes p to a slash-separated path that stays inside its root.
func cleanRelative(kind Kind, field, p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.MissingRequiredField(string(kind), field).Build()
	}
	slashed := filepath.ToSlash(p)
	if path.IsAbs(slashed) || filepath.IsAbs(p) {
		return "", errors.ValidationError("path must be relative").
			WithContext("kind", string(kind)).
			WithContext("field", field).
			WithContext("path", p).
			Build()
	}
	cleaned := path.Clean(slashed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.ValidationError("path escapes its root").
			WithContext("kind", string(kind)).
			WithContext("field", field).
			WithContext("path", p).
			Build()
	}
	return cleaned, nil
}
