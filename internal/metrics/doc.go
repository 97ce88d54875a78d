// Package metrics exposes Prometheus counters and histograms for pipeline
// runs and per-video outcomes.
package metrics
