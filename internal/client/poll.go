package client

import (
	"context"
	"errors"
	"time"

	"github.com/sbobine/sbobine-api/internal/domain/model"
)

// Poll defaults match the web client: 60 attempts five seconds apart.
const (
	DefaultPollAttempts = 60
	DefaultPollInterval = 5 * time.Second
)

// ErrPollTimeout is returned when a job is still running after every poll attempt.
var ErrPollTimeout = errors.New("Timeout: elaborazione troppo lunga") //nolint:staticcheck // user-facing message

// JobFailedError is returned by PollJob when the job ends in ERROR.
type JobFailedError struct {
	JobID   string
	Message string
	Record  *model.JobRecord
}

func (e *JobFailedError) Error() string { return e.Message }

// PollOptions tunes PollJob. Zero values use the defaults.
type PollOptions struct {
	MaxAttempts int
	Interval    time.Duration
	// OnUpdate is called with every record read, including the final one.
	OnUpdate func(*model.JobRecord)
}

// PollJob reads the job until it completes. Transport and API errors abort polling.
func (c *Client) PollJob(ctx context.Context, jobID string, opts PollOptions) (*model.JobRecord, error) {
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultPollAttempts
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	for attempt := 1; ; attempt++ {
		rec, err := c.GetJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if opts.OnUpdate != nil {
			opts.OnUpdate(rec)
		}

		switch rec.Status {
		case model.JobStatusCompleted:
			return rec, nil
		case model.JobStatusError:
			return nil, jobFailed(jobID, rec)
		}
		if attempt >= attempts {
			return nil, ErrPollTimeout
		}

		if err := sleep(ctx, interval); err != nil {
			return nil, err
		}
	}
}

func jobFailed(jobID string, rec *model.JobRecord) *JobFailedError {
	msg := rec.Error
	if msg == "" {
		msg = msgProcessFailed
	}
	return &JobFailedError{JobID: jobID, Message: msg, Record: rec}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
