// Package metrics records post-processing job and script metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no call site needs a nil check:
//
//	p := postprocess.NewProcessor(pipeline) // NoopRecorder
//	p = postprocess.NewProcessor(pipeline, postprocess.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// PrometheusRecorder registers its series under the "gcodepost" namespace.
// The registry can be served over HTTP with HTTPHandler (the watch daemon
// does this) or dumped once with WriteTextfile for the node exporter
// textfile collector (the run command does this).
package metrics
