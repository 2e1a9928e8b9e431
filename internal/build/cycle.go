package build

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/whatisjasongoldstein/beagle/internal/action"
	"github.com/whatisjasongoldstein/beagle/internal/command"
	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
	"github.com/whatisjasongoldstein/beagle/internal/history"
	"github.com/whatisjasongoldstein/beagle/internal/logfields"
	"github.com/whatisjasongoldstein/beagle/internal/metrics"
	"github.com/whatisjasongoldstein/beagle/internal/notify"
	"github.com/whatisjasongoldstein/beagle/internal/output"
	"github.com/whatisjasongoldstein/beagle/internal/templates"
)

// cycle performs one full build. It never touches dist unless every action
// and command succeeded (warnings aside).
func (e *Engine) cycle(ctx context.Context) (Result, error) {
	res := Result{BuildID: uuid.NewString(), StartedAt: time.Now()}
	res.Clean = e.takeClean()
	log := e.logger.With(logfields.BuildID(res.BuildID))
	log.Info("Build started", slog.Bool("clean", res.Clean))

	failedAction, err := e.run(ctx, log, &res)
	res.Duration = time.Since(res.StartedAt)
	if err != nil {
		if res.Clean {
			e.restoreClean()
		}
		e.finishFailed(ctx, log, res, failedAction, err)
		return res, err
	}

	digest, err := output.Fingerprint(e.dist)
	if err != nil {
		log.Warn("Failed to fingerprint dist", logfields.Error(err))
	}
	res.Digest = digest
	e.finishSucceeded(ctx, log, res)
	return res, nil
}

// run stages every command and promotes the result. On failure it returns
// the name of the action at fault, if any.
func (e *Engine) run(ctx context.Context, log *slog.Logger, res *Result) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	stage, err := output.Begin(e.dist, e.opts.RequiredDirs...)
	if err != nil {
		return "", err
	}
	defer stage.Abort()

	actions, err := e.source.Discover(ctx)
	if err != nil {
		return "", err
	}
	res.Actions = len(actions)
	e.recorder.SetActions(len(actions))

	tmpl, err := templates.Load(templates.Options{
		Src:       e.src,
		Patterns:  e.opts.TemplatePatterns,
		URLPrefix: e.opts.URLPrefix,
		Markdown:  e.opts.Markdown,
		Skip:      e.IsOutputDir,
	})
	if err != nil {
		return "", err
	}

	env := command.Env{
		Src:       e.src,
		Dist:      stage.Dir(),
		Templates: tmpl,
		Compiler:  e.opts.Compiler,
		Logger:    log,
	}
	for _, a := range actions {
		if err := e.runAction(ctx, log, env, a, res); err != nil {
			return a.Name, err
		}
	}

	if err := e.guard.Write(func() error { return stage.Promote(res.Clean) }); err != nil {
		return "", err
	}
	return "", nil
}

func (e *Engine) runAction(ctx context.Context, log *slog.Logger, env command.Env, a action.Action, res *Result) error {
	cmds, err := action.Invoke(ctx, a)
	if err != nil {
		return err
	}
	log = log.With(logfields.Action(a.Name))
	for _, cmd := range cmds {
		kind := string(cmd.Kind())
		start := time.Now()
		err := command.Render(ctx, env, cmd)
		e.recorder.ObserveCommandDuration(kind, time.Since(start))
		res.Commands++

		switch {
		case err == nil:
			e.recorder.IncCommandResult(kind, metrics.ResultSuccess)
		case errors.HasSeverity(err, errors.SeverityWarning):
			e.recorder.IncCommandResult(kind, metrics.ResultWarning)
			res.Warnings++
			log.Warn("Command failed; continuing", logfields.Command(kind), logfields.Output(cmd.Output()), logfields.Error(err))
		default:
			e.recorder.IncCommandResult(kind, metrics.ResultFailed)
			return attachAction(a.Name, err)
		}
	}
	return nil
}

// attachAction tags a command failure with its action while keeping its category.
func attachAction(name string, err error) error {
	if ce, ok := errors.AsClassified(err); ok {
		return ce.WithContext("action", name)
	}
	return errors.ActionError(name, err).Build()
}

func (e *Engine) finishSucceeded(ctx context.Context, log *slog.Logger, res Result) {
	e.recorder.ObserveBuildDuration(res.Duration)
	e.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
	log.Info("Build finished",
		slog.Int("actions", res.Actions),
		slog.Int("commands", res.Commands),
		slog.Int("warnings", res.Warnings),
		logfields.Digest(res.Digest),
		logfields.DurationMS(float64(res.Duration.Microseconds())/1000))

	e.record(ctx, log, history.Entry{
		BuildID:    res.BuildID,
		StartedAt:  res.StartedAt,
		FinishedAt: res.StartedAt.Add(res.Duration),
		Outcome:    history.OutcomeSuccess,
		Clean:      res.Clean,
		Actions:    res.Actions,
		Commands:   res.Commands,
		Warnings:   res.Warnings,
		Digest:     res.Digest,
	})
	notify.Deliver(ctx, e.opts.Notifier, notify.Event{
		BuildID:  res.BuildID,
		Success:  true,
		Message:  "Build succeeded",
		Digest:   res.Digest,
		Duration: res.Duration,
		Actions:  res.Actions,
		Commands: res.Commands,
		Warnings: res.Warnings,
		At:       time.Now(),
	})
}

func (e *Engine) finishFailed(ctx context.Context, log *slog.Logger, res Result, failedAction string, err error) {
	e.recorder.ObserveBuildDuration(res.Duration)
	e.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
	attrs := []any{logfields.Error(err), logfields.DurationMS(float64(res.Duration.Microseconds()) / 1000)}
	if failedAction != "" {
		attrs = append(attrs, logfields.Action(failedAction))
	}
	log.Error("Build failed", attrs...)

	e.record(ctx, log, history.Entry{
		BuildID:    res.BuildID,
		StartedAt:  res.StartedAt,
		FinishedAt: res.StartedAt.Add(res.Duration),
		Outcome:    history.OutcomeFailed,
		Clean:      res.Clean,
		Actions:    res.Actions,
		Commands:   res.Commands,
		Warnings:   res.Warnings,
		Action:     failedAction,
		Error:      err.Error(),
	})
	notify.Deliver(ctx, e.opts.Notifier, notify.Event{
		BuildID:  res.BuildID,
		Success:  false,
		Message:  "Build failed",
		Error:    err.Error(),
		Action:   failedAction,
		Duration: res.Duration,
		Actions:  res.Actions,
		Commands: res.Commands,
		Warnings: res.Warnings,
		At:       time.Now(),
	})
}

// record writes the history entry on a context that survives cancellation of
// the build, so an interrupted cycle is still journaled.
func (e *Engine) record(ctx context.Context, log *slog.Logger, entry history.Entry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := e.history.Record(ctx, entry); err != nil {
		log.Warn("Failed to record build history", logfields.Error(err))
	}
}
