package watcher

import (
	"context"
	"time"

	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
)

// Debouncer coalesces bursts of triggers into single firings.
//
// A firing happens once no trigger arrived for the quiet window, or once the
// max delay has passed since the first trigger of the burst, whichever comes
// first. A steady stream of changes therefore still fires every max delay.
type Debouncer struct {
	quiet    time.Duration
	maxDelay time.Duration
	in       chan struct{}
	out      chan struct{}
}

// NewDebouncer validates the windows. maxDelay must be at least quiet.
func NewDebouncer(quiet, maxDelay time.Duration) (*Debouncer, error) {
	if quiet <= 0 {
		return nil, errors.ValidationError("quiet window must be > 0").Build()
	}
	if maxDelay < quiet {
		return nil, errors.ValidationError("max delay must be >= quiet window").Build()
	}
	return &Debouncer{
		quiet:    quiet,
		maxDelay: maxDelay,
		in:       make(chan struct{}, 64),
		out:      make(chan struct{}, 1),
	}, nil
}

// Trigger records a change. It never blocks.
func (d *Debouncer) Trigger() {
	select {
	case d.in <- struct{}{}:
	default:
		// Buffer full: a firing is already due.
	}
}

// C delivers one value per debounced burst. At most one firing is buffered.
func (d *Debouncer) C() <-chan struct{} { return d.out }

// Run drives the timers until ctx is done.
func (d *Debouncer) Run(ctx context.Context) {
	quietTimer := newStoppedTimer()
	maxTimer := newStoppedTimer()
	defer quietTimer.Stop()
	defer maxTimer.Stop()

	var quietC, maxC <-chan time.Time
	pending := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.in:
			resetTimer(quietTimer, d.quiet)
			quietC = quietTimer.C
			if !pending {
				pending = true
				resetTimer(maxTimer, d.maxDelay)
				maxC = maxTimer.C
			}
		case <-quietC:
			d.fire()
			pending, quietC, maxC = false, nil, nil
			maxTimer.Stop()
		case <-maxC:
			d.fire()
			pending, quietC, maxC = false, nil, nil
			quietTimer.Stop()
		}
	}
}

func (d *Debouncer) fire() {
	select {
	case d.out <- struct{}{}:
	default:
	}
}

func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return t
}

func resetTimer(t *time.Timer, after time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(after)
}
