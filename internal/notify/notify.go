// Package notify delivers best-effort build completion messages.
//
// A Notifier never influences a build's outcome: Deliver logs failures and
// falls back to the console notifier.
package notify

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/whatisjasongoldstein/beagle/internal/logfields"
)

// Event describes one finished build cycle.
type Event struct {
	BuildID  string        `json:"build_id"`
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Error    string        `json:"error,omitempty"`
	Action   string        `json:"action,omitempty"`
	Digest   string        `json:"digest,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	Actions  int           `json:"actions"`
	Commands int           `json:"commands"`
	Warnings int           `json:"warnings"`
	At       time.Time     `json:"at"`
}

// Notifier receives build events.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, ev Event) error

func (f Func) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Multi fans an event out to every notifier, joining their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Deliver sends ev through n without ever failing. A nil notifier or a failed
// delivery falls back to the console.
func Deliver(ctx context.Context, n Notifier, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Notifier panicked", slog.Any("panic", r), logfields.BuildID(ev.BuildID))
		}
	}()
	if n == nil {
		_ = Console{}.Notify(ctx, ev)
		return
	}
	if err := n.Notify(ctx, ev); err != nil {
		slog.Warn("Build notification failed", logfields.BuildID(ev.BuildID), logfields.Error(err))
		if _, isConsole := n.(Console); !isConsole {
			_ = Console{}.Notify(ctx, ev)
		}
	}
}

// Console logs events through slog.
type Console struct {
	Logger *slog.Logger
}

func (c Console) Notify(_ context.Context, ev Event) error {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		logfields.BuildID(ev.BuildID),
		logfields.DurationMS(float64(ev.Duration.Microseconds()) / 1000),
	}
	if ev.Success {
		attrs = append(attrs, slog.Int("actions", ev.Actions), slog.Int("commands", ev.Commands), logfields.Digest(ev.Digest))
		if ev.Warnings > 0 {
			attrs = append(attrs, slog.Int("warnings", ev.Warnings))
		}
		logger.Info(ev.Message, attrs...)
		return nil
	}
	if ev.Action != "" {
		attrs = append(attrs, logfields.Action(ev.Action))
	}
	attrs = append(attrs, slog.String(logfields.KeyError, ev.Error))
	logger.Error(ev.Message, attrs...)
	return nil
}
