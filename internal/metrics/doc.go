// Package metrics records build and serve metrics.
//
// Components receive a Recorder and default to NoopRecorder, so callers never check
// for nil. serve --metrics swaps in a PrometheusRecorder and exposes it on /metrics:
//
//	reg := prom.NewRegistry()
//	builder := build.New(cfg).WithRecorder(metrics.NewPrometheusRecorder(reg))
//	mux.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
