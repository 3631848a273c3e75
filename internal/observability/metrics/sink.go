// Package metrics defines the metric sink used by the pipeline and its helpers.
package metrics

import "time"

// Sink describes the minimal interface required to emit metrics.
// Names are dot-separated (e.g. "job.transition"); tags become labels.
type Sink interface {
	Count(name string, value int64, tags map[string]string)
	Gauge(name string, value float64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

// NoopSink discards every metric.
type NoopSink struct{}

var _ Sink = NoopSink{}

// Count implements Sink.
func (NoopSink) Count(string, int64, map[string]string) {}

// Gauge implements Sink.
func (NoopSink) Gauge(string, float64, map[string]string) {}

// Timing implements Sink.
func (NoopSink) Timing(string, time.Duration, map[string]string) {}

// OrNoop returns s, or a NoopSink when s is nil.
func OrNoop(s Sink) Sink {
	if s == nil {
		return NoopSink{}
	}
	return s
}
