package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordedMetric struct {
	kind  string
	name  string
	value float64
	tags  map[string]string
}

type recordingSink struct {
	mu      sync.Mutex
	metrics []recordedMetric
}

func (r *recordingSink) add(m recordedMetric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = append(r.metrics, m)
}

func (r *recordingSink) Count(name string, value int64, tags map[string]string) {
	r.add(recordedMetric{"count", name, float64(value), tags})
}

func (r *recordingSink) Gauge(name string, value float64, tags map[string]string) {
	r.add(recordedMetric{"gauge", name, value, tags})
}

func (r *recordingSink) Timing(name string, value time.Duration, tags map[string]string) {
	r.add(recordedMetric{"timing", name, value.Seconds(), tags})
}

func TestEmitJobLifecycle(t *testing.T) {
	sink := &recordingSink{}
	EmitJobLifecycle(sink, JobMetric{
		Transition: TransitionFailed,
		Result:     ResultError,
		Duration:   2 * time.Second,
		Err:        context.DeadlineExceeded,
	})

	if assert.Len(t, sink.metrics, 2) {
		assert.Equal(t, "job.transition", sink.metrics[0].name)
		assert.Equal(t, "timeout", sink.metrics[0].tags["error_class"])
		assert.Equal(t, "job.duration", sink.metrics[1].name)
	}
}

func TestEmitJobLifecycle_SuccessHasNoErrorClass(t *testing.T) {
	sink := &recordingSink{}
	EmitJobLifecycle(sink, JobMetric{Transition: TransitionCompleted, Result: ResultSuccess})

	if assert.Len(t, sink.metrics, 1) {
		assert.Empty(t, sink.metrics[0].tags["error_class"])
	}
}

func TestEmitGatewayCall_Tokens(t *testing.T) {
	sink := &recordingSink{}
	EmitGatewayCall(sink, GatewayMetric{Operation: "summary", Provider: "openai", Result: ResultSuccess, Tokens: 812})

	names := make([]string, 0, len(sink.metrics))
	for _, m := range sink.metrics {
		names = append(names, m.name)
	}
	assert.Equal(t, []string{"gateway.call", "gateway.call.duration", "gateway.tokens"}, names)
	assert.InDelta(t, 812.0, sink.metrics[2].value, 0.001)
}

func TestEmitHelpers_NilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		EmitJobLifecycle(nil, JobMetric{})
		EmitStage(nil, StageMetric{})
		EmitGatewayCall(nil, GatewayMetric{})
		OrNoop(nil).Count("x", 1, nil)
	})
}
