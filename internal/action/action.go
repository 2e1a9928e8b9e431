// Package action discovers the named build steps of a site.
//
// An Action is a zero-argument function returning the Commands it wants
// rendered. Actions come from a Source: a Registry populated from Go code, or
// the site file in the source directory, which is re-read on every discovery so
// edits take effect without restarting a watch session.
package action

import (
	"context"

	"github.com/whatisjasongoldstein/beagle/internal/command"
	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
)

// Func produces an action's commands in render order.
type Func func(ctx context.Context) ([]command.Command, error)

// Action is a named build step. Identity is its name.
type Action struct {
	Name string
	Run  Func
}

// Source yields the ordered actions of one build cycle.
type Source interface {
	Discover(ctx context.Context) ([]Action, error)
}

// Invoke runs a and attaches its name to any failure.
func Invoke(ctx context.Context, a Action) ([]command.Command, error) {
	if a.Run == nil {
		return nil, errors.ActionError(a.Name, errors.InternalError("action has no function").Build()).Build()
	}
	cmds, err := a.Run(ctx)
	if err != nil {
		return nil, errors.ActionError(a.Name, err).Build()
	}
	return cmds, nil
}

// Chain concatenates sources in order. Names must stay unique across them.
func Chain(sources ...Source) Source {
	return chain(sources)
}

type chain []Source

func (c chain) Discover(ctx context.Context) ([]Action, error) {
	var all []Action
	seen := map[string]bool{}
	for _, src := range c {
		actions, err := src.Discover(ctx)
		if err != nil {
			return nil, err
		}
		for _, a := range actions {
			if seen[a.Name] {
				return nil, duplicateName(a.Name)
			}
			seen[a.Name] = true
			all = append(all, a)
		}
	}
	return all, nil
}

func duplicateName(name string) error {
	return errors.ConfigError("duplicate action name").WithContext("action", name).Build()
}
