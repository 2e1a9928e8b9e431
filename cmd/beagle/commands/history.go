package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
	"github.com/whatisjasongoldstein/beagle/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int    `short:"n" default:"20" help:"Number of builds to show (0 for all)"`
	ID    string `arg:"" optional:"" help:"Show a single build"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.load(g)
	if err != nil {
		return err
	}
	path := cfg.HistoryPath()
	if path == "" {
		return errors.ConfigError("build history is disabled").WithContext("field", "history.path").Build()
	}
	store, err := history.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	var entries []history.Entry
	if h.ID != "" {
		e, ok, err := store.Get(ctx, h.ID)
		if err != nil {
			return err
		}
		if !ok {
			return errors.ValidationError("no such build").WithContext("build_id", h.ID).Build()
		}
		entries = []history.Entry{e}
	} else {
		limit := h.Limit
		if limit <= 0 {
			limit = -1
		}
		if entries, err = store.Recent(ctx, limit); err != nil {
			return err
		}
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(g.out(), "No builds recorded")
		return nil
	}
	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "BUILD\tSTARTED\tDURATION\tOUTCOME\tACTIONS\tCOMMANDS\tWARNINGS\tDETAIL")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			e.BuildID,
			e.StartedAt.Local().Format(time.DateTime),
			e.Duration().Round(time.Millisecond),
			e.Outcome,
			e.Actions, e.Commands, e.Warnings,
			detail(e),
		)
	}
	return tw.Flush()
}

func detail(e history.Entry) string {
	switch {
	case e.Outcome == history.OutcomeFailed && e.Action != "":
		return e.Action + ": " + e.Error
	case e.Outcome == history.OutcomeFailed:
		return e.Error
	case e.Clean:
		return "clean " + e.Digest
	default:
		return e.Digest
	}
}
