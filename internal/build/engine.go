package build

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/whatisjasongoldstein/beagle/internal/action"
	"github.com/whatisjasongoldstein/beagle/internal/command"
	"github.com/whatisjasongoldstein/beagle/internal/compiler"
	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
	"github.com/whatisjasongoldstein/beagle/internal/history"
	"github.com/whatisjasongoldstein/beagle/internal/markdown"
	"github.com/whatisjasongoldstein/beagle/internal/metrics"
	"github.com/whatisjasongoldstein/beagle/internal/notify"
	"github.com/whatisjasongoldstein/beagle/internal/output"
)

// State is the engine's serialization state.
type State int

const (
	StateIdle State = iota
	StateBuilding
)

func (s State) String() string {
	if s == StateBuilding {
		return "building"
	}
	return "idle"
}

// Options configures an Engine. Src and Dist are required; everything else
// has a working default.
type Options struct {
	Src  string
	Dist string

	// Source yields the actions of each cycle. Defaults to the site file in Src.
	Source action.Source

	TemplatePatterns []string
	URLPrefix        string
	RequiredDirs     []string

	// Clean empties dist before the first cycle. CleanEveryBuild does so on every cycle.
	Clean           bool
	CleanEveryBuild bool

	Compiler command.Compiler
	Markdown *markdown.Converter
	Guard    *output.Guard
	Notifier notify.Notifier
	Recorder metrics.Recorder
	History  history.Store
	Logger   *slog.Logger
}

// Result summarizes one Render call.
type Result struct {
	BuildID   string
	Coalesced bool
	Clean     bool
	Actions   int
	Commands  int
	Warnings  int
	Digest    string
	StartedAt time.Time
	Duration  time.Duration
}

// Engine executes build cycles one at a time.
type Engine struct {
	src, dist string
	opts      Options
	source    action.Source
	guard     *output.Guard
	recorder  metrics.Recorder
	history   history.Store
	logger    *slog.Logger

	mu         sync.Mutex
	idle       *sync.Cond
	state      State
	pending    bool
	cleanFirst bool

	// settled runs after drive has released the engine, before it returns.
	settled func()
}

// New resolves src and dist and wires defaults for unset options.
func New(opts Options) (*Engine, error) {
	if opts.Src == "" {
		return nil, errors.MissingRequiredField("engine", "src").Build()
	}
	if opts.Dist == "" {
		return nil, errors.MissingRequiredField("engine", "dist").Build()
	}
	src, err := filepath.Abs(opts.Src)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "cannot resolve src").Build()
	}
	if resolved, err := filepath.EvalSymlinks(src); err == nil {
		src = resolved
	}
	dist, err := output.ResolveTarget(opts.Dist)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "cannot resolve dist").Build()
	}
	if src == dist {
		return nil, errors.ConfigError("dist must differ from src").WithContext("path", dist).Build()
	}

	e := &Engine{
		src:        src,
		dist:       dist,
		opts:       opts,
		source:     opts.Source,
		guard:      opts.Guard,
		recorder:   opts.Recorder,
		history:    opts.History,
		logger:     opts.Logger,
		cleanFirst: opts.Clean,
	}
	e.idle = sync.NewCond(&e.mu)
	if e.guard == nil {
		e.guard = &output.Guard{}
	}
	if e.recorder == nil {
		e.recorder = metrics.NoopRecorder{}
	}
	if e.history == nil {
		e.history = history.Noop{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.opts.Compiler == nil {
		e.opts.Compiler = compiler.NewBinary(compiler.DefaultBinary, compiler.DefaultTimeout)
	}
	if e.opts.Markdown == nil {
		e.opts.Markdown = markdown.New()
	}
	if e.source == nil {
		e.source = action.NewFileSource(src, action.WithSkip(e.IsOutputDir))
	}
	return e, nil
}

// Src is the absolute source root.
func (e *Engine) Src() string { return e.src }

// Dist is the absolute, symlink-resolved output root.
func (e *Engine) Dist() string { return e.dist }

// Guard is the readers/writer guard the engine takes while promoting into dist.
func (e *Engine) Guard() *output.Guard { return e.guard }

// State reports whether a cycle is running.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsOutputDir reports whether dir is dist or one of its staging directories.
// Both must be ignored when dist is nested inside src.
func (e *Engine) IsOutputDir(dir string) bool {
	if dir == e.dist || strings.HasPrefix(dir, e.dist+string(filepath.Separator)) {
		return true
	}
	prefix := e.dist + ".stage-"
	return strings.HasPrefix(dir, prefix)
}

// RequestClean makes the next cycle empty dist before promoting.
func (e *Engine) RequestClean() {
	e.mu.Lock()
	e.cleanFirst = true
	e.mu.Unlock()
}

// Render runs a build cycle. If a cycle is already running, it records one
// pending rebuild and returns at once with Result.Coalesced set. The caller
// that started the cycle also runs the pending one and gets the result of
// the last cycle it ran.
func (e *Engine) Render(ctx context.Context) (Result, error) {
	e.mu.Lock()
	if e.state == StateBuilding {
		e.pending = true
		e.mu.Unlock()
		e.recorder.IncBuildOutcome(metrics.BuildOutcomeCoalesced)
		e.logger.Debug("build in progress; rebuild queued")
		return Result{Coalesced: true}, nil
	}
	e.state = StateBuilding
	e.mu.Unlock()
	return e.drive(ctx)
}

// TryRender runs a build cycle unless one is already running, in which case
// it returns ErrBuildInProgress without queuing anything.
func (e *Engine) TryRender(ctx context.Context) (Result, error) {
	e.mu.Lock()
	if e.state == StateBuilding {
		e.mu.Unlock()
		e.recorder.IncBuildOutcome(metrics.BuildOutcomeRejected)
		return Result{}, errors.BuildInProgress().Build()
	}
	e.state = StateBuilding
	e.mu.Unlock()
	return e.drive(ctx)
}

// Wait blocks until no cycle is running.
func (e *Engine) Wait() {
	e.mu.Lock()
	for e.state == StateBuilding {
		e.idle.Wait()
	}
	e.mu.Unlock()
}

// drive runs cycles until no rebuild is pending. The caller must have moved
// the engine into StateBuilding.
func (e *Engine) drive(ctx context.Context) (Result, error) {
	done := false
	defer func() {
		if done {
			return
		}
		// A cycle panicked; release the engine so later renders can run.
		e.mu.Lock()
		e.state = StateIdle
		e.pending = false
		e.idle.Broadcast()
		e.mu.Unlock()
	}()

	for {
		res, err := e.cycle(ctx)

		// Going idle shares the critical section with the pending check, so
		// a Render that coalesces here is always picked up by this loop.
		e.mu.Lock()
		again := e.pending && ctx.Err() == nil
		e.pending = false
		if !again {
			e.state = StateIdle
			e.idle.Broadcast()
			done = true
		}
		e.mu.Unlock()
		if !again {
			if e.settled != nil {
				e.settled()
			}
			return res, err
		}
		e.logger.Info("running queued rebuild")
	}
}

// takeClean decides whether this cycle cleans dist.
func (e *Engine) takeClean() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	clean := e.cleanFirst || e.opts.CleanEveryBuild || !output.Exists(e.dist)
	e.cleanFirst = false
	return clean
}

// restoreClean re-arms an explicit clean request whose cycle failed.
func (e *Engine) restoreClean() {
	e.mu.Lock()
	e.cleanFirst = true
	e.mu.Unlock()
}
