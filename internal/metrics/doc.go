// Package metrics records docgen run metrics.
//
// Components receive a Recorder through their constructors and default to
// NoopRecorder, so call sites never need nil checks. PrometheusRecorder
// registers its collectors on a caller supplied registry which can then be
// served over HTTP by the daemon or dumped to a node-exporter textfile after
// a one-shot run.
package metrics
