package action

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// hclSite is used to decode the top-level blocks of an HCL site file.
type hclSite struct {
	Globals cty.Value   `hcl:"globals,optional"`
	Actions []hclAction `hcl:"action,block"`
	Remain  hcl.Body    `hcl:",remain"`
}

type hclAction struct {
	Name     string       `hcl:"name,label"`
	Each     string       `hcl:"each,optional"`
	Commands []hclCommand `hcl:"command,block"`
}

type hclCommand struct {
	Kind     string    `hcl:"kind,label"`
	Template string    `hcl:"template,optional"`
	Output   string    `hcl:"output,optional"`
	Input    string    `hcl:"input,optional"`
	Inputs   []string  `hcl:"inputs,optional"`
	Context  cty.Value `hcl:"context,optional"`
}

// ParseHCL decodes an HCL site file:
//
//	globals = { site = "Beagle" }
//
//	action "posts" {
//	  each = "posts/*.md"
//	  command "page" {
//	    template = "post.html"
//	    output   = "posts/{{.Stem}}.html"
//	    context  = { doc = "{{.Path}}" }
//	  }
//	}
func ParseHCL(data []byte, filename string) (*SiteFile, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	var raw hclSite
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	globals, err := ctyToMap(raw.Globals)
	if err != nil {
		return nil, fmt.Errorf("globals: %w", err)
	}
	site := &SiteFile{Globals: globals}
	for _, a := range raw.Actions {
		spec := ActionSpec{Name: a.Name, Each: a.Each}
		for _, c := range a.Commands {
			ctx, err := ctyToMap(c.Context)
			if err != nil {
				return nil, fmt.Errorf("action %s: context: %w", a.Name, err)
			}
			spec.Commands = append(spec.Commands, CommandSpec{
				Kind:     c.Kind,
				Template: c.Template,
				Output:   c.Output,
				Input:    c.Input,
				Inputs:   c.Inputs,
				Context:  ctx,
			})
		}
		site.Actions = append(site.Actions, spec)
	}
	return site, nil
}

func ctyToMap(v cty.Value) (map[string]any, error) {
	native, err := ctyToNative(v)
	if err != nil || native == nil {
		return nil, err
	}
	m, ok := native.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %s", v.Type().FriendlyName())
	}
	return m, nil
}

// ctyToNative recursively converts a cty.Value to its most natural Go counterpart.
// Whole numbers become int so HCL and YAML site files agree.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == 0 {
				return int(i), nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert cty.Number to float64: %w", err)
		}
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, el := it.Element()
			native, err := ctyToNative(el)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			key, el := it.Element()
			native, err := ctyToNative(el)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key.AsString(), err)
			}
			out[key.AsString()] = native
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported cty type: %s", ty.FriendlyName())
	}
}
