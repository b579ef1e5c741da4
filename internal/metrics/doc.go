// Package metrics records build observability data.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection needs no nil checks:
//
//	b := build.New(opts, build.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The watch server exposes the registry through HTTPHandler.
package metrics
