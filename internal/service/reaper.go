package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sbobine/sbobine-api/config"
	"github.com/sbobine/sbobine-api/internal/core"
	"github.com/sbobine/sbobine-api/internal/domain/model"
	obserrors "github.com/sbobine/sbobine-api/internal/observability/errors"
	"github.com/sbobine/sbobine-api/internal/observability/metrics"
)

// ReaperServiceOptions groups dependencies for ReaperService.
type ReaperServiceOptions struct {
	Reaper  core.JobReaper      // Required: store that supports terminal record eviction
	Config  config.ReaperConfig // Required: reaper configuration
	Logger  *slog.Logger        // Optional: structured logger
	Metrics metrics.Sink        // Optional: metrics sink
	Now     func() time.Time    // Optional: clock override for tests
}

// ReaperService deletes terminal job records once they outlive their retention.
//
// Stores that expire records on their own (Redis TTL) do not need it; the SQL and
// in-memory stores do.
type ReaperService struct {
	reaper  core.JobReaper
	config  config.ReaperConfig
	logger  *slog.Logger
	metrics metrics.Sink
	now     func() time.Time
}

// NewReaperService constructs a new ReaperService.
func NewReaperService(opts ReaperServiceOptions) (*ReaperService, error) {
	if opts.Reaper == nil {
		return nil, errors.New("JobReaper is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "reaper_service")
		logger.Debug("ReaperService initialized",
			"interval", opts.Config.Interval,
			"completed_max_age", opts.Config.CompletedMaxAge,
			"failed_max_age", opts.Config.FailedMaxAge,
			"batch_size", opts.Config.BatchSize,
		)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &ReaperService{
		reaper:  opts.Reaper,
		config:  opts.Config,
		logger:  logger,
		metrics: opts.Metrics,
		now:     now,
	}, nil
}

// Run starts the reaper loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *ReaperService) Run(ctx context.Context) error {
	if s.config.Interval <= 0 {
		return fmt.Errorf("reaper interval must be positive, got %s", s.config.Interval)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting reaper service", "interval", s.config.Interval)
	}

	// Stagger instances that start together.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if err := s.RunOnce(ctx); err != nil {
		s.logCleanupError(err, "initial cleanup")
	}

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "reaper service stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logCleanupError(err, "cleanup")
			}
		}
	}
}

// waitWithJitter sleeps a random delay up to 10% of the interval.
func (s *ReaperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

// RunOnce performs one cleanup pass over completed and failed records.
func (s *ReaperService) RunOnce(ctx context.Context) error {
	start := s.now()
	steps := []cleanupStep{
		{label: "delete old completed jobs", operation: "delete_completed", status: model.JobStatusCompleted, maxAge: s.config.CompletedMaxAge},
		{label: "delete old failed jobs", operation: "delete_failed", status: model.JobStatusError, maxAge: s.config.FailedMaxAge},
	}

	var (
		errs        []error
		allCanceled = true
		outcomes    = make([]cleanupStepOutcome, 0, len(steps))
	)
	for _, step := range steps {
		outcome := s.executeCleanupStep(ctx, step)
		outcomes = append(outcomes, outcome)
		if outcome.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step.label, outcome.err))
			allCanceled = allCanceled && isContextCancellation(outcome.err)
		}
	}

	s.emitCleanupMetrics(outcomes, s.now().Sub(start))

	if len(errs) > 0 {
		joined := errors.Join(errs...)
		if allCanceled {
			return context.Canceled
		}
		return fmt.Errorf("cleanup failed: %w", joined)
	}
	return nil
}

type cleanupStep struct {
	label     string
	operation string
	status    model.JobStatus
	maxAge    time.Duration
}

type cleanupStepOutcome struct {
	operation string
	count     int64
	err       error
}

// executeCleanupStep deletes in batches until a batch comes back empty.
func (s *ReaperService) executeCleanupStep(ctx context.Context, step cleanupStep) cleanupStepOutcome {
	outcome := cleanupStepOutcome{operation: step.operation}
	cutoff := s.now().Add(-step.maxAge)
	for {
		count, err := s.reaper.DeleteTerminalBefore(ctx, core.DeleteTerminalParams{
			Status:    step.status,
			Before:    cutoff,
			BatchSize: s.config.BatchSize,
		})
		if err != nil {
			outcome.err = err
			return outcome
		}
		outcome.count += count
		if count == 0 || (s.config.BatchSize > 0 && count < int64(s.config.BatchSize)) {
			break
		}
		if ctx.Err() != nil {
			outcome.err = ctx.Err()
			return outcome
		}
	}

	if outcome.count > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, step.label,
			"count", outcome.count,
			"max_age", step.maxAge,
		)
	}
	return outcome
}

func (s *ReaperService) emitCleanupMetrics(outcomes []cleanupStepOutcome, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}

	var (
		total    int64
		firstErr error
	)
	for _, o := range outcomes {
		total += o.count
		if firstErr == nil {
			firstErr = suppressContextCancellation(o.err)
		}
	}

	tags := map[string]string{"result": resultFor(total, firstErr)}
	if firstErr != nil {
		if class := obserrors.Classify(firstErr); class != "" {
			tags["error_class"] = class
		}
	}
	s.metrics.Count("reaper.cleanup", 1, tags)
	if elapsed > 0 {
		s.metrics.Timing("reaper.cleanup_duration", elapsed, metrics.CloneTags(tags))
	}

	for _, o := range outcomes {
		err := suppressContextCancellation(o.err)
		opTags := map[string]string{
			"operation": o.operation,
			"result":    resultFor(o.count, err),
		}
		s.metrics.Count("reaper.cleanup_operation", 1, opTags)
		if err == nil && o.count > 0 {
			s.metrics.Count("reaper.jobs_processed", o.count, metrics.CloneTags(opTags))
		}
	}

	if firstErr == nil {
		s.metrics.Gauge("reaper.last_success_epoch", float64(s.now().Unix()), nil)
	}
}

func resultFor(count int64, err error) string {
	switch {
	case err != nil:
		return metrics.ResultError
	case count == 0:
		return metrics.ResultNoop
	default:
		return metrics.ResultSuccess
	}
}

func (s *ReaperService) logCleanupError(err error, label string) {
	if err == nil || s.logger == nil {
		return
	}
	if isContextCancellation(err) {
		s.logger.Debug(label+" cancelled by context", "error", err)
		return
	}
	s.logger.Error(label+" failed", "error", err)
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func suppressContextCancellation(err error) error {
	if isContextCancellation(err) {
		return nil
	}
	return err
}
