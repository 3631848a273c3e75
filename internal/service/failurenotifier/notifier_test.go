package failurenotifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sbobine/sbobine-api/internal/observability/notify"
)

func TestServiceNotifyJobFailure(t *testing.T) {
	ctx := context.Background()

	var (
		mu       sync.Mutex
		received []notify.JobFailurePayload
	)
	capture := notify.SinkFunc(func(_ context.Context, payload notify.JobFailurePayload) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, payload)
		return nil
	})
	svc := NewService(Options{
		Sinks: []SinkRegistration{
			{Name: "first", Sink: capture},
			{Sink: capture},
			{Name: "nil sink"},
		},
	})

	svc.NotifyJobFailure(ctx, notify.JobFailurePayload{JobID: "123", Stage: "quiz"})

	if len(received) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(received))
	}
	if received[0].Severity != notify.SeverityCritical {
		t.Fatalf("expected severity to default to critical, got %s", received[0].Severity)
	}
}

func TestServiceSkipsCanceledJobs(t *testing.T) {
	called := false
	svc := NewService(Options{
		Sinks: []SinkRegistration{{
			Name: "capture",
			Sink: notify.SinkFunc(func(context.Context, notify.JobFailurePayload) error {
				called = true
				return nil
			}),
		}},
	})

	svc.NotifyJobFailure(context.Background(), notify.JobFailurePayload{JobID: "1", ErrorClass: ErrorClassCanceled})
	if called {
		t.Fatal("expected canceled job to be skipped")
	}
}

func TestServiceDisabled(t *testing.T) {
	svc := NewService(Options{})
	if svc.Enabled() {
		t.Fatal("expected Enabled() to be false when no sinks registered")
	}
	svc.NotifyJobFailure(context.Background(), notify.JobFailurePayload{JobID: "1"})
}

func TestServiceLogsErrors(t *testing.T) {
	svc := NewService(Options{
		Sinks: []SinkRegistration{{
			Name: "fail",
			Sink: notify.SinkFunc(func(context.Context, notify.JobFailurePayload) error {
				return errors.New("boom")
			}),
		}},
	})
	if !svc.Enabled() {
		t.Fatal("expected notifier to be enabled")
	}
	svc.NotifyJobFailure(context.Background(), notify.JobFailurePayload{JobID: "abc"})
}
