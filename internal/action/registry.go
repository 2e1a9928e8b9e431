package action

import (
	"context"
	"strings"
	"sync"

	"github.com/whatisjasongoldstein/beagle/internal/command"
	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
)

// Registry is an explicit, ordered list of actions registered from Go code.
// Discovery order is registration order.
type Registry struct {
	mu      sync.RWMutex
	actions []Action
	names   map[string]bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{names: map[string]bool{}}
}

// Register appends a named action.
func (r *Registry) Register(name string, fn Func) error {
	if strings.TrimSpace(name) == "" {
		return errors.ValidationError("action name is required").Build()
	}
	if fn == nil {
		return errors.ValidationError("action function is required").WithContext("action", name).Build()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.names == nil {
		r.names = map[string]bool{}
	}
	if r.names[name] {
		return duplicateName(name)
	}
	r.names[name] = true
	r.actions = append(r.actions, Action{Name: name, Run: fn})
	return nil
}

// MustRegister is Register for static setup code.
func (r *Registry) MustRegister(name string, fn Func) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// RegisterCommands registers an action returning a fixed command list.
func (r *Registry) RegisterCommands(name string, cmds ...command.Command) error {
	fixed := append([]command.Command(nil), cmds...)
	return r.Register(name, func(context.Context) ([]command.Command, error) {
		return append([]command.Command(nil), fixed...), nil
	})
}

// Len reports how many actions are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actions)
}

func (r *Registry) Discover(context.Context) ([]Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Action(nil), r.actions...), nil
}
