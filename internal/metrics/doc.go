// Package metrics provides build and preview observability for beagle.
//
// Components receive a Recorder through their options and default to
// NoopRecorder, so nothing needs a nil check:
//
//	engine := build.New(build.Options{Recorder: metrics.NoopRecorder{}})
//
// When the serve command is given a metrics address it constructs a
// PrometheusRecorder against a private registry and exposes it with
// HTTPHandler (/metrics and /healthz) on its own listener:
//
//	reg := prometheus.NewRegistry()
//	recorder := metrics.NewPrometheusRecorder(reg)
//	metrics.RegisterRuntime(reg)
//	srv := &http.Server{Addr: addr, Handler: metrics.HTTPHandler(reg)}
package metrics
