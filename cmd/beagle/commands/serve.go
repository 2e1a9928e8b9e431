package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/whatisjasongoldstein/beagle/internal/config"
	"github.com/whatisjasongoldstein/beagle/internal/livereload"
	"github.com/whatisjasongoldstein/beagle/internal/logfields"
	"github.com/whatisjasongoldstein/beagle/internal/metrics"
	"github.com/whatisjasongoldstein/beagle/internal/preview"
	"github.com/whatisjasongoldstein/beagle/internal/server"
	"github.com/whatisjasongoldstein/beagle/internal/watcher"
)

const shutdownTimeout = 5 * time.Second

// ServeCmd builds once, then serves dist and rebuilds on every change.
type ServeCmd struct {
	SiteFlags    `embed:""`
	Addr         string `help:"Preview listen address (overrides config)"`
	URLPrefix    string `name:"url-prefix" help:"URL prefix the site is mounted under (overrides config)"`
	NoLiveReload bool   `name:"no-live-reload" help:"Disable live reload and script injection"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.load(g)
	if err != nil {
		return err
	}
	if err := s.applyServe(cfg); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return s.serve(ctx, g, cfg, nil)
}

func (s *ServeCmd) applyServe(cfg *config.Config) error {
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	if s.URLPrefix != "" {
		cfg.URLPrefix = config.NormalizePrefix(s.URLPrefix)
	}
	if s.NoLiveReload {
		off := false
		cfg.Server.LiveReload = &off
	}
	return s.apply(cfg)
}

// serve runs until ctx is done or a listener fails. started, when set, is
// called once every listener is bound and the watcher is subscribed.
func (s *ServeCmd) serve(ctx context.Context, g *Global, cfg *config.Config, started func(*server.Server)) error {
	logger := g.Logger
	rt, err := newRuntime(cfg, logger, runtimeOptions{
		clean:      s.Clean,
		liveReload: cfg.Server.LiveReloadEnabled(),
		metrics:    true,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	// A broken site should not keep the preview from starting; the next
	// change triggers another attempt.
	if _, err := rt.engine.Render(ctx); err != nil {
		logger.Error("Initial build failed", logfields.Error(err))
	}

	opts := preview.Options{Dist: rt.engine.Dist(), Prefix: cfg.URLPrefix, Guard: rt.engine.Guard()}
	listeners := []server.Listener{{Name: "preview", Addr: cfg.Server.Addr}}
	if rt.hub != nil {
		base := browserURL(cfg.Server.LiveReloadAddr)
		opts.Inject = livereload.Tag(base)
		listeners = append(listeners, server.Listener{
			Name:    "livereload",
			Addr:    cfg.Server.LiveReloadAddr,
			Handler: livereload.Handler(rt.hub, base),
		})
	}
	listeners[0].Handler = preview.NewHandler(opts)
	if cfg.Metrics.Addr != "" {
		listeners = append(listeners, server.Listener{
			Name:    "metrics",
			Addr:    cfg.Metrics.Addr,
			Handler: metrics.HTTPHandler(rt.registry),
		})
	}

	srv := server.New(logger, rt.recorder.IncPreviewRequest, listeners...)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown incomplete", logfields.Error(err))
		}
	}()

	w, err := watcher.New(rt.engine, watcher.Options{
		Root:         rt.engine.Src(),
		Ignore:       rt.engine.IsOutputDir,
		Quiet:        cfg.Watch.Quiet,
		MaxDelay:     cfg.Watch.MaxDelay,
		PollInterval: cfg.Watch.PollInterval,
		Recorder:     rt.recorder,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error { return w.Run(gctx) })
	grp.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case err := <-srv.Errors():
			return err
		}
	})
	grp.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case <-w.Ready():
		}
		_, _ = fmt.Fprintf(g.out(), "Serving %s at http://%s%s\n", rt.engine.Dist(), srv.Addr("preview"), cfg.URLPrefix)
		if started != nil {
			started(srv)
		}
		return nil
	})
	return grp.Wait()
}

// browserURL turns a listen address into one a browser can reach.
func browserURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
