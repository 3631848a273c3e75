package metrics

import (
	"time"

	obserrors "github.com/sbobine/sbobine-api/internal/observability/errors"
)

// Result constants for metric tagging.
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultFallback = "fallback"
	ResultRejected = "rejected"
	ResultNoop     = "noop"
)

// Transition names for job lifecycle metrics.
const (
	TransitionSubmitted = "submitted"
	TransitionCompleted = "completed"
	TransitionFailed    = "failed"
	TransitionDropped   = "dropped"
)

// JobMetric captures details about a job lifecycle event for metric emission.
type JobMetric struct {
	Transition string
	Result     string
	Duration   time.Duration
	Err        error
}

// EmitJobLifecycle emits standardised job lifecycle metrics.
func EmitJobLifecycle(sink Sink, in JobMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"transition":  in.Transition,
		"result":      in.Result,
		"error_class": errorClass(in.Result, in.Err),
	}

	sink.Count("job.transition", 1, tags)
	if in.Duration > 0 {
		sink.Timing("job.duration", in.Duration, CloneTags(tags))
	}
}

// StageMetric describes one finished pipeline stage.
type StageMetric struct {
	Stage    string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitStage emits the per-stage counter and latency.
func EmitStage(sink Sink, in StageMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"stage":       in.Stage,
		"result":      in.Result,
		"error_class": errorClass(in.Result, in.Err),
	}
	sink.Count("pipeline.stage", 1, tags)
	sink.Timing("pipeline.stage.duration", in.Duration, CloneTags(tags))
}

// GatewayMetric describes one call to the AI collaborator.
type GatewayMetric struct {
	Operation string
	Provider  string
	Result    string
	Tokens    int
	Duration  time.Duration
	Err       error
}

// EmitGatewayCall emits counters for gateway usage, latency and token consumption.
func EmitGatewayCall(sink Sink, in GatewayMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"operation":   in.Operation,
		"provider":    in.Provider,
		"result":      in.Result,
		"error_class": errorClass(in.Result, in.Err),
	}
	sink.Count("gateway.call", 1, tags)
	sink.Timing("gateway.call.duration", in.Duration, CloneTags(tags))
	if in.Tokens > 0 {
		sink.Count("gateway.tokens", int64(in.Tokens), map[string]string{
			"operation": in.Operation,
			"provider":  in.Provider,
		})
	}
}

func errorClass(result string, err error) string {
	if err == nil || result != ResultError {
		return ""
	}
	return obserrors.Classify(err)
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
