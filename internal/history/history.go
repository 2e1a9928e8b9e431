// Package history keeps a journal of build cycles.
package history

import (
	"context"
	"time"
)

// Outcome is the final status of a recorded build.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Entry is one recorded build cycle.
type Entry struct {
	BuildID    string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    Outcome
	Clean      bool
	Actions    int
	Commands   int
	Warnings   int
	Action     string
	Error      string
	Digest     string
}

// Duration is the wall time of the build.
func (e Entry) Duration() time.Duration { return e.FinishedAt.Sub(e.StartedAt) }

// Store persists entries.
type Store interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Get(ctx context.Context, buildID string) (Entry, bool, error)
	Close() error
}

// Noop discards entries (default when no history database is configured).
type Noop struct{}

func (Noop) Record(context.Context, Entry) error              { return nil }
func (Noop) Recent(context.Context, int) ([]Entry, error)     { return nil, nil }
func (Noop) Get(context.Context, string) (Entry, bool, error) { return Entry{}, false, nil }
func (Noop) Close() error                                     { return nil }
