package action

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"path"
	"strings"
	"text/template"

	"github.com/whatisjasongoldstein/beagle/internal/command"
	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
	"github.com/whatisjasongoldstein/beagle/internal/glob"
)

// SiteFile is the format-independent content of a site file.
type SiteFile struct {
	Globals map[string]any
	Actions []ActionSpec
}

// ActionSpec declares one action.
type ActionSpec struct {
	Name     string
	Each     string
	Commands []CommandSpec
}

// CommandSpec declares one command. Kind selects which fields apply.
type CommandSpec struct {
	Kind     string
	Template string
	Output   string
	Input    string
	Inputs   []string
	Context  map[string]any
}

// Item is a file matched by an action's each glob, exposed to field templates.
type Item struct {
	Path string
	Name string
	Stem string
	Ext  string
	Dir  string
}

func newItem(rel string) Item {
	name := path.Base(rel)
	ext := path.Ext(name)
	return Item{Path: rel, Name: name, Stem: strings.TrimSuffix(name, ext), Ext: ext, Dir: path.Dir(rel)}
}

func (i Item) asMap() map[string]any {
	return map[string]any{"Path": i.Path, "Name": i.Name, "Stem": i.Stem, "Ext": i.Ext, "Dir": i.Dir}
}

// Compile turns the declarations into actions rooted at src. skip rejects
// directories excluded from each globs.
func (f *SiteFile) Compile(src string, skip func(absDir string) bool) ([]Action, error) {
	actions := make([]Action, 0, len(f.Actions))
	seen := map[string]bool{}
	for i, spec := range f.Actions {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return nil, errors.ConfigError("action name is required").WithContext("index", i).Build()
		}
		if seen[name] {
			return nil, duplicateName(name)
		}
		seen[name] = true

		var pattern *glob.Pattern
		if spec.Each != "" {
			p, err := glob.Compile(spec.Each)
			if err != nil {
				return nil, errors.ConfigError("invalid each glob").WithCause(err).WithContext("action", name).Build()
			}
			pattern = p
		}
		actions = append(actions, Action{Name: name, Run: f.runner(spec, pattern, src, skip)})
	}
	return actions, nil
}

func (f *SiteFile) runner(spec ActionSpec, pattern *glob.Pattern, src string, skip func(string) bool) Func {
	globals := maps.Clone(f.Globals)
	return func(ctx context.Context) ([]command.Command, error) {
		if pattern == nil {
			return buildCommands(spec.Commands, globals, nil)
		}
		matches, err := pattern.Files(src, skip)
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", pattern, err)
		}
		var out []command.Command
		for _, rel := range matches {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			item := newItem(rel)
			cmds, err := buildCommands(spec.Commands, globals, &item)
			if err != nil {
				return nil, fmt.Errorf("item %s: %w", rel, err)
			}
			out = append(out, cmds...)
		}
		return out, nil
	}
}

func buildCommands(specs []CommandSpec, globals map[string]any, item *Item) ([]command.Command, error) {
	out := make([]command.Command, 0, len(specs))
	for _, spec := range specs {
		cmd, err := buildCommand(spec, globals, item)
		if err != nil {
			return nil, err
		}
		out = append(out, cmd)
	}
	return out, nil
}

func buildCommand(spec CommandSpec, globals map[string]any, item *Item) (command.Command, error) {
	x := &expander{item: item}
	cmd, err := construct(spec, globals, x)
	if x.fail != nil {
		return nil, errors.ConfigError("invalid field template").WithCause(x.fail).WithContext("kind", spec.Kind).Build()
	}
	return cmd, err
}

func construct(spec CommandSpec, globals map[string]any, x *expander) (command.Command, error) {
	item := x.item
	switch command.Kind(strings.ToLower(spec.Kind)) {
	case command.KindPage:
		ctx := maps.Clone(globals)
		if ctx == nil {
			ctx = map[string]any{}
		}
		if item != nil {
			ctx["item"] = item.asMap()
		}
		for k, v := range spec.Context {
			ctx[k] = x.value(v)
		}
		return command.NewPage(x.str(spec.Template), ctx, x.str(spec.Output))
	case command.KindCopy:
		return command.NewCopy(x.str(spec.Input), x.str(spec.Output))
	case command.KindStylesheet:
		return command.NewCompileStylesheet(x.str(spec.Input), x.str(spec.Output))
	case command.KindConcat:
		inputs := make([]string, 0, len(spec.Inputs))
		for _, in := range spec.Inputs {
			inputs = append(inputs, x.str(in))
		}
		return command.NewConcat(inputs, x.str(spec.Output))
	case "":
		return nil, errors.MissingRequiredField("command", "kind").Build()
	default:
		return nil, errors.ConfigError("unknown command kind").WithContext("kind", spec.Kind).Build()
	}
}

// expander applies text/template to declaration strings when an item is bound.
// The first failure is kept and reported by err.
type expander struct {
	item *Item
	fail error
}

func (x *expander) str(s string) string {
	if x.item == nil || !strings.Contains(s, "{{") || x.fail != nil {
		return s
	}
	tpl, err := template.New("field").Option("missingkey=error").Parse(s)
	if err != nil {
		x.fail = err
		return s
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, x.item); err != nil {
		x.fail = err
		return s
	}
	return buf.String()
}

func (x *expander) value(v any) any {
	switch t := v.(type) {
	case string:
		return x.str(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = x.value(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = x.value(vv)
		}
		return out
	default:
		return v
	}
}
