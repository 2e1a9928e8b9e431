package commands

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/whatisjasongoldstein/beagle/internal/build"
	"github.com/whatisjasongoldstein/beagle/internal/compiler"
	"github.com/whatisjasongoldstein/beagle/internal/config"
	"github.com/whatisjasongoldstein/beagle/internal/history"
	"github.com/whatisjasongoldstein/beagle/internal/livereload"
	"github.com/whatisjasongoldstein/beagle/internal/logfields"
	"github.com/whatisjasongoldstein/beagle/internal/metrics"
	"github.com/whatisjasongoldstein/beagle/internal/notify"
	"github.com/whatisjasongoldstein/beagle/internal/retry"
)

const (
	natsBackoff    = 500 * time.Millisecond
	natsBackoffMax = 5 * time.Second
)

// runtime bundles the engine with the collaborators a command owns.
type runtime struct {
	engine   *build.Engine
	recorder metrics.Recorder
	registry *prom.Registry
	hub      *livereload.Hub
	closers  []func() error
}

type runtimeOptions struct {
	clean      bool
	liveReload bool
	metrics    bool
}

// newRuntime wires the engine from cfg: the external compiler, the build
// journal, Prometheus metrics and every configured notifier.
func newRuntime(cfg *config.Config, logger *slog.Logger, ro runtimeOptions) (*runtime, error) {
	rt := &runtime{recorder: metrics.NoopRecorder{}}
	if ro.metrics {
		rt.registry = prom.NewRegistry()
		rt.recorder = metrics.NewPrometheusRecorder(rt.registry)
		metrics.RegisterRuntime(rt.registry)
	}

	var store history.Store = history.Noop{}
	if path := cfg.HistoryPath(); path != "" {
		s, err := history.NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		store = s
		rt.closers = append(rt.closers, s.Close)
	}

	notifiers := notify.Multi{notify.Console{Logger: logger}}
	if cfg.Notify.NATSURL != "" {
		var n *notify.NATS
		policy := retry.NewPolicy(retry.ModeExponential, natsBackoff, natsBackoffMax, cfg.Notify.ConnectAttempts-1)
		err := retry.Do(context.Background(), policy, func(attempt int) error {
			if attempt > 0 {
				logger.Info("Retrying NATS connection", slog.Int("attempt", attempt+1))
			}
			var err error
			n, err = notify.ConnectNATS(cfg.Notify.NATSURL, cfg.Notify.Subject)
			return err
		})
		if err != nil {
			// Builds still work without the bus.
			logger.Warn("NATS notifier disabled", logfields.Error(err))
		} else {
			notifiers = append(notifiers, n)
			rt.closers = append(rt.closers, n.Close)
		}
	}
	if ro.liveReload {
		rt.hub = livereload.NewHub()
		notifiers = append(notifiers, notify.LiveReload{Hub: rt.hub})
	}

	engine, err := build.New(build.Options{
		Src:              cfg.Src,
		Dist:             cfg.Dist,
		TemplatePatterns: cfg.TemplatePatterns,
		URLPrefix:        cfg.URLPrefix,
		RequiredDirs:     cfg.RequiredDirs,
		Clean:            ro.clean,
		CleanEveryBuild:  cfg.CleanEveryBuild,
		Compiler:         compiler.NewBinary(cfg.Compiler.Binary, cfg.Compiler.Timeout),
		Notifier:         notifiers,
		Recorder:         rt.recorder,
		History:          store,
		Logger:           logger,
	})
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.engine = engine
	return rt, nil
}

// Close releases the journal and the NATS connection.
func (rt *runtime) Close() error {
	if rt.hub != nil {
		rt.hub.Shutdown()
	}
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return stderrors.Join(errs...)
}
