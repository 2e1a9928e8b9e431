package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	buildDuration   prom.Histogram
	buildOutcome    *prom.CounterVec
	commandDuration *prom.HistogramVec
	commandResults  *prom.CounterVec
	actions         prom.Gauge
	watchEvents     prom.Counter
	previewRequests *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil registry gets a private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "beagle",
			Name:      "build_duration_seconds",
			Help:      "Duration of full build cycles",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "beagle",
			Name:      "build_outcomes_total",
			Help:      "Build requests by final outcome",
		}, []string{"outcome"}),
		commandDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "beagle",
			Name:      "command_duration_seconds",
			Help:      "Duration of individual command renders",
			Buckets:   prom.DefBuckets,
		}, []string{"kind"}),
		commandResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "beagle",
			Name:      "command_results_total",
			Help:      "Command render results by kind",
		}, []string{"kind", "result"}),
		actions: prom.NewGauge(prom.GaugeOpts{
			Namespace: "beagle",
			Name:      "actions",
			Help:      "Number of actions discovered in the last build cycle",
		}),
		watchEvents: prom.NewCounter(prom.CounterOpts{
			Namespace: "beagle",
			Name:      "watch_events_total",
			Help:      "Filesystem events accepted by the watcher",
		}),
		previewRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "beagle",
			Name:      "preview_requests_total",
			Help:      "Preview server responses by status code",
		}, []string{"status"}),
	}
	reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.commandDuration, pr.commandResults, pr.actions, pr.watchEvents, pr.previewRequests)
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveCommandDuration(kind string, d time.Duration) {
	if p == nil || p.commandDuration == nil {
		return
	}
	p.commandDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCommandResult(kind string, result ResultLabel) {
	if p == nil || p.commandResults == nil {
		return
	}
	p.commandResults.WithLabelValues(kind, string(result)).Inc()
}

func (p *PrometheusRecorder) SetActions(n int) {
	if p == nil || p.actions == nil {
		return
	}
	p.actions.Set(float64(n))
}

func (p *PrometheusRecorder) IncWatchEvent() {
	if p == nil || p.watchEvents == nil {
		return
	}
	p.watchEvents.Inc()
}

func (p *PrometheusRecorder) IncPreviewRequest(status int) {
	if p == nil || p.previewRequests == nil {
		return
	}
	p.previewRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}
