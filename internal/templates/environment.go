// Package templates builds the page template environment for one build cycle.
//
// Every file under src matching the configured patterns is a template named by
// its slash-separated path relative to src. Pages pull in layouts and partials
// with {{template "layouts/base.html" .}}. Rendering assembles a fresh set from
// the requested page and the files it reaches, parsed dependencies first, so
// the page's {{define}} blocks override a layout's {{block}} defaults and
// sibling pages never leak definitions into each other.
package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/template/parse"

	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
	"github.com/whatisjasongoldstein/beagle/internal/glob"
	"github.com/whatisjasongoldstein/beagle/internal/logfields"
	"github.com/whatisjasongoldstein/beagle/internal/markdown"
)

// DefaultPatterns selects every HTML file under src.
var DefaultPatterns = []string{"**/*.html"}

// Options configures Load.
type Options struct {
	Src       string
	Patterns  []string
	URLPrefix string
	Markdown  *markdown.Converter
	// Skip rejects directories that must not be scanned, such as dist nested in src.
	Skip func(absDir string) bool
}

// Environment is an immutable, freshly parsed template set.
type Environment struct {
	funcs   template.FuncMap
	sources map[string]string
	refs    map[string][]string
	defines map[string][]string
}

// Load scans src and parses every matching template.
func Load(opts Options) (*Environment, error) {
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	if opts.Markdown == nil {
		opts.Markdown = markdown.New()
	}

	seen := map[string]bool{}
	var names []string
	for _, raw := range patterns {
		p, err := glob.Compile(raw)
		if err != nil {
			return nil, errors.ConfigError("invalid template pattern").WithCause(err).WithContext("pattern", raw).Build()
		}
		files, err := p.Files(opts.Src, opts.Skip)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "scan templates").WithContext("path", opts.Src).Build()
		}
		for _, f := range files {
			if !seen[f] {
				seen[f] = true
				names = append(names, f)
			}
		}
	}
	sort.Strings(names)

	funcs := newFuncs(opts.Src, opts.URLPrefix, opts.Markdown)
	env := &Environment{funcs: funcs, sources: make(map[string]string, len(names)), refs: make(map[string][]string, len(names)), defines: make(map[string][]string, len(names))}
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(opts.Src, filepath.FromSlash(name)))
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "read template").WithContext("template", name).Build()
		}
		scratch, err := template.New(name).Funcs(funcs).Parse(string(data))
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryTemplate, "parse template").WithContext("template", name).Build()
		}
		env.sources[name] = string(data)
		env.refs[name] = templateRefs(scratch)
		for _, defined := range scratch.Templates() {
			if defined.Name() != name {
				env.defines[name] = append(env.defines[name], defined.Name())
			}
		}
	}
	slog.Debug("Loaded templates", slog.Int("count", len(names)), logfields.Path(opts.Src))
	return env, nil
}

// Names returns the template ids in lexical order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.sources))
	for name := range e.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether id names a loaded template.
func (e *Environment) Has(id string) bool {
	_, ok := e.sources[filepath.ToSlash(id)]
	return ok
}

// Render executes template id with data.
func (e *Environment) Render(id string, data map[string]any) (string, error) {
	id = filepath.ToSlash(id)
	src, ok := e.sources[id]
	if !ok {
		return "", errors.TemplateNotFound(id).Build()
	}
	set := template.New(id).Funcs(e.funcs)
	for _, dep := range e.closure(id) {
		if _, err := set.New(dep).Parse(e.sources[dep]); err != nil {
			return "", errors.RenderError(id, err).WithContext("dependency", dep).Build()
		}
	}
	page, err := set.New(id).Parse(src)
	if err != nil {
		return "", errors.RenderError(id, err).Build()
	}
	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return "", errors.RenderError(id, fmt.Errorf("execute: %w", err)).Build()
	}
	return buf.String(), nil
}

// closure lists the files id reaches through {{template}}, deepest first,
// excluding id. A reference to a {{define}} name pulls in the first file
// declaring it unless an included file already does.
func (e *Environment) closure(id string) []string {
	included := map[string]bool{id: true}
	var order []string
	var visit func(name string)
	visit = func(name string) {
		for _, ref := range e.refs[name] {
			file := ref
			if _, isFile := e.sources[ref]; !isFile {
				if e.definedIn(included, ref) {
					continue
				}
				file = e.definer(ref)
			}
			if file == "" || included[file] {
				continue
			}
			included[file] = true
			visit(file)
			order = append(order, file)
		}
	}
	visit(id)
	return order
}

func (e *Environment) definedIn(files map[string]bool, define string) bool {
	for file := range files {
		for _, d := range e.defines[file] {
			if d == define {
				return true
			}
		}
	}
	return false
}

// definer returns the lexically first file declaring define.
func (e *Environment) definer(define string) string {
	for _, file := range e.Names() {
		for _, d := range e.defines[file] {
			if d == define {
				return file
			}
		}
	}
	return ""
}

// templateRefs collects the names invoked by {{template}} anywhere in t's set.
func templateRefs(t *template.Template) []string {
	var refs []string
	for _, tt := range t.Templates() {
		if tt.Tree != nil {
			walkRefs(tt.Tree.Root, &refs)
		}
	}
	return refs
}

func walkRefs(node parse.Node, refs *[]string) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			walkRefs(child, refs)
		}
	case *parse.TemplateNode:
		*refs = append(*refs, n.Name)
	case *parse.IfNode:
		walkRefs(n.List, refs)
		walkRefs(n.ElseList, refs)
	case *parse.RangeNode:
		walkRefs(n.List, refs)
		walkRefs(n.ElseList, refs)
	case *parse.WithNode:
		walkRefs(n.List, refs)
		walkRefs(n.ElseList, refs)
	}
}
