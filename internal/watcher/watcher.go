// Package watcher rebuilds the site when files under src change.
package watcher

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"github.com/whatisjasongoldstein/beagle/internal/build"
	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
	"github.com/whatisjasongoldstein/beagle/internal/logfields"
	"github.com/whatisjasongoldstein/beagle/internal/metrics"
)

// Engine is the part of build.Engine the watcher drives.
type Engine interface {
	Render(ctx context.Context) (build.Result, error)
	TryRender(ctx context.Context) (build.Result, error)
	Wait()
}

// Options configures a Watcher.
type Options struct {
	// Root is the directory watched recursively.
	Root string
	// Ignore rejects paths (files or directories) in addition to the built-in
	// hidden and editor-file filter, typically dist nested inside Root.
	Ignore func(path string) bool

	Quiet        time.Duration
	MaxDelay     time.Duration
	PollInterval time.Duration

	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// Watcher turns file system changes into engine rebuilds.
type Watcher struct {
	engine   Engine
	opts     Options
	debounce *Debouncer
	recorder metrics.Recorder
	logger   *slog.Logger
	ready    chan struct{}
}

// New validates opts and returns a Watcher.
func New(engine Engine, opts Options) (*Watcher, error) {
	if engine == nil {
		return nil, errors.ValidationError("engine is required").Build()
	}
	if opts.Root == "" {
		return nil, errors.MissingRequiredField("watcher", "root").Build()
	}
	if opts.Quiet == 0 {
		opts.Quiet = 300 * time.Millisecond
	}
	if opts.MaxDelay == 0 {
		opts.MaxDelay = 2 * time.Second
	}
	d, err := NewDebouncer(opts.Quiet, opts.MaxDelay)
	if err != nil {
		return nil, err
	}
	w := &Watcher{engine: engine, opts: opts, debounce: d, recorder: opts.Recorder, logger: opts.Logger, ready: make(chan struct{})}
	if w.recorder == nil {
		w.recorder = metrics.NoopRecorder{}
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w, nil
}

// Ready is closed once every directory is subscribed.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run watches until ctx is done. Before returning it stops the subscription
// and the poller and waits for the in-flight build to finish.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}
	defer func() { _ = fsw.Close() }()

	root, err := filepath.Abs(w.opts.Root)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "cannot resolve watch root").Build()
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	if err := w.addDirsRecursive(fsw, root, root); err != nil {
		return err
	}

	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		w.engine.Wait()
	}()

	loopCtx, stop := context.WithCancel(ctx)
	defer stop()

	wg.Add(2)
	go func() {
		defer wg.Done()
		w.debounce.Run(loopCtx)
	}()
	// Builds run to completion even after shutdown starts.
	buildCtx := context.WithoutCancel(ctx)
	go func() {
		defer wg.Done()
		w.buildLoop(loopCtx, buildCtx)
	}()

	if w.opts.PollInterval > 0 {
		sched, err := w.startPoller(buildCtx)
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				w.logger.Warn("Poll scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	w.logger.Info("Watching for changes", logfields.Path(root))
	close(w.ready)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping watcher")
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, root, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) buildLoop(loopCtx, buildCtx context.Context) {
	for {
		select {
		case <-loopCtx.Done():
			return
		case <-w.debounce.C():
			w.logger.Info("Change detected; rebuilding site")
			if _, err := w.engine.Render(buildCtx); err != nil {
				// The engine already logged and journaled the failure.
				w.logger.Debug("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

func (w *Watcher) startPoller(ctx context.Context) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(w.opts.PollInterval),
		gocron.NewTask(func() {
			_, err := w.engine.TryRender(ctx)
			switch {
			case err == nil:
			case stderrors.Is(err, errors.ErrBuildInProgress):
				w.logger.Debug("Skipping scheduled rebuild; build in progress")
			default:
				w.logger.Debug("Scheduled rebuild failed", logfields.Error(err))
			}
		}),
		gocron.WithName("poll-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule poll rebuild: %w", err)
	}
	sched.Start()
	w.logger.Info("Scheduled periodic rebuilds", slog.Duration("interval", w.opts.PollInterval))
	return sched, nil
}

func (w *Watcher) ignored(root, path string) bool {
	if shouldIgnoreEvent(path) || hiddenBelow(root, path) {
		return true
	}
	return w.opts.Ignore != nil && w.opts.Ignore(path)
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, root string, ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod || w.ignored(root, ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := w.addDirsRecursive(fsw, root, ev.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
			}
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.recorder.IncWatchEvent()
	w.debounce.Trigger()
}

func (w *Watcher) addDirsRecursive(fsw *fsnotify.Watcher, root, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return errors.WrapError(err, errors.CategoryFileSystem, "cannot watch directory").
					WithContext("path", path).Build()
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || (w.opts.Ignore != nil && w.opts.Ignore(path))) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}
