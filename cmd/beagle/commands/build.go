package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	SiteFlags `embed:""`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.load(g)
	if err != nil {
		return err
	}
	if err := b.apply(cfg); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rt, err := newRuntime(cfg, g.Logger, runtimeOptions{clean: b.Clean})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	res, err := rt.engine.Render(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "Built %s: %d actions, %d commands", rt.engine.Dist(), res.Actions, res.Commands)
	if res.Warnings > 0 {
		_, _ = fmt.Fprintf(g.out(), ", %d warnings", res.Warnings)
	}
	_, _ = fmt.Fprintf(g.out(), " in %s\n", res.Duration.Round(time.Millisecond))
	return nil
}
