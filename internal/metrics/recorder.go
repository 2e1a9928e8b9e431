package metrics

import "time"

// ResultLabel enumerates command result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFailed  ResultLabel = "failed"
)

// BuildOutcomeLabel enumerates final build cycle outcomes.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess   BuildOutcomeLabel = "success"
	BuildOutcomeFailed    BuildOutcomeLabel = "failed"
	BuildOutcomeCoalesced BuildOutcomeLabel = "coalesced"
	BuildOutcomeRejected  BuildOutcomeLabel = "rejected"
)

// Recorder defines observability hooks for build cycles, commands, the
// watcher and the preview server. All methods must be safe to call on the
// NoopRecorder so the recorder can be injected optionally.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	ObserveCommandDuration(kind string, d time.Duration)
	IncCommandResult(kind string, result ResultLabel)
	SetActions(n int)
	IncWatchEvent()
	IncPreviewRequest(status int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration)           {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)            {}
func (NoopRecorder) ObserveCommandDuration(string, time.Duration) {}
func (NoopRecorder) IncCommandResult(string, ResultLabel)         {}
func (NoopRecorder) SetActions(int)                               {}
func (NoopRecorder) IncWatchEvent()                               {}
func (NoopRecorder) IncPreviewRequest(int)                        {}
