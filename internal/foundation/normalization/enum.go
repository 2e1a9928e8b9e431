// Package normalization maps loosely written configuration strings onto typed
// enumerations.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Enum resolves case-insensitive, whitespace-tolerant spellings to values of T.
type Enum[T comparable] struct {
	name     string
	values   map[string]T
	fallback T
}

// NewEnum builds an Enum named name (used in error messages). The fallback is
// returned by Normalize for empty input.
func NewEnum[T comparable](name string, values map[string]T, fallback T) *Enum[T] {
	m := make(map[string]T, len(values))
	for k, v := range values {
		m[clean(k)] = v
	}
	return &Enum[T]{name: name, values: m, fallback: fallback}
}

// Parse returns the value for raw. Empty input yields the fallback.
func (e *Enum[T]) Parse(raw string) (T, error) {
	key := clean(raw)
	if key == "" {
		return e.fallback, nil
	}
	if v, ok := e.values[key]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %s", e.name, raw, strings.Join(e.Keys(), ", "))
}

// Normalize is Parse that falls back instead of failing.
func (e *Enum[T]) Normalize(raw string) T {
	v, err := e.Parse(raw)
	if err != nil {
		return e.fallback
	}
	return v
}

// Keys lists the accepted spellings in sorted order.
func (e *Enum[T]) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func clean(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "-", "_")
}
