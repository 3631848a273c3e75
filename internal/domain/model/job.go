// Package model defines the core data types shared by the sbobine pipeline, stores and API.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current stage (or terminal state) of a pipeline job.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobStatus string

const (
	// JobStatusProcessing is the initial status written at submission.
	JobStatusProcessing JobStatus = "PROCESSING"
	// JobStatusTranscribing indicates the audio is being transcribed.
	JobStatusTranscribing JobStatus = "TRANSCRIBING"
	// JobStatusSummarizing indicates the structured summary is being generated.
	JobStatusSummarizing JobStatus = "SUMMARIZING"
	// JobStatusElaborating indicates the study rewrite is being generated.
	JobStatusElaborating JobStatus = "ELABORATING"
	// JobStatusGeneratingMap indicates the concept map is being generated.
	JobStatusGeneratingMap JobStatus = "GENERATING_MAP"
	// JobStatusGeneratingQuiz indicates the quiz is being generated.
	JobStatusGeneratingQuiz JobStatus = "GENERATING_QUIZ"
	// JobStatusCompleted is terminal; the record carries the composite result.
	JobStatusCompleted JobStatus = "COMPLETED"
	// JobStatusError is terminal; the record carries a human-readable error.
	JobStatusError JobStatus = "ERROR"
)

// ErrJobNotFound is returned by job stores when no record exists for a job id.
var ErrJobNotFound = errors.New("job not found")

//nolint:gochecknoglobals // static read-only lookup of stage progress percentages
var statusProgress = map[JobStatus]int{
	JobStatusProcessing:     0,
	JobStatusTranscribing:   25,
	JobStatusSummarizing:    50,
	JobStatusElaborating:    60,
	JobStatusGeneratingMap:  75,
	JobStatusGeneratingQuiz: 85,
	JobStatusCompleted:      100,
}

// Valid returns true if the JobStatus is one of the known labels.
func (s JobStatus) Valid() bool {
	if s == JobStatusError {
		return true
	}
	_, ok := statusProgress[s]
	return ok
}

// IsTerminal reports whether no further writes may follow this status.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

// Progress returns the progress percentage associated with a non-error status.
// ERROR has no fixed progress and returns -1.
func (s JobStatus) Progress() int {
	if p, ok := statusProgress[s]; ok {
		return p
	}
	return -1
}

// UnmarshalText implements encoding.TextUnmarshaler so statuses can be parsed from flags and env.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := JobStatus(strings.ToUpper(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid JobStatus: %q", string(text))
	}
	*s = v
	return nil
}

// JobRecord is the stored state of one pipeline run.
type JobRecord struct {
	JobID     string     `json:"jobId"`
	Status    JobStatus  `json:"status"`
	Progress  int        `json:"progress"`
	Result    *JobResult `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewJobRecord creates the initial PROCESSING record for a freshly submitted job.
func NewJobRecord(now time.Time) *JobRecord {
	now = now.UTC()
	return &JobRecord{
		JobID:     uuid.NewString(),
		Status:    JobStatusProcessing,
		Progress:  JobStatusProcessing.Progress(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy of the record. The result pointer is shared: results are
// immutable once written.
func (r *JobRecord) Clone() *JobRecord {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

// Advance returns the next record for a stage transition, keeping progress non-decreasing.
func (r *JobRecord) Advance(status JobStatus, now time.Time) *JobRecord {
	next := r.Clone()
	next.Status = status
	if p := status.Progress(); p > next.Progress {
		next.Progress = p
	}
	next.UpdatedAt = now.UTC()
	return next
}

// Complete returns the terminal COMPLETED record holding the composite result.
func (r *JobRecord) Complete(result *JobResult, now time.Time) *JobRecord {
	next := r.Advance(JobStatusCompleted, now)
	next.Result = result
	next.Error = ""
	return next
}

// Fail returns the terminal ERROR record. Progress is left at its last value.
func (r *JobRecord) Fail(message string, now time.Time) *JobRecord {
	next := r.Clone()
	next.Status = JobStatusError
	next.Result = nil
	next.Error = message
	next.UpdatedAt = now.UTC()
	return next
}

// Validate checks the record invariants that every store write must satisfy.
func (r *JobRecord) Validate() error {
	if r == nil {
		return errors.New("job record is required")
	}
	if strings.TrimSpace(r.JobID) == "" {
		return errors.New("job id is required and cannot be empty")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("invalid job status: %q", r.Status)
	}
	if r.Progress < 0 || r.Progress > 100 {
		return fmt.Errorf("progress must be between 0 and 100, got %d", r.Progress)
	}
	switch r.Status {
	case JobStatusCompleted:
		if r.Result == nil || r.Error != "" {
			return errors.New("completed job must carry a result and no error")
		}
	case JobStatusError:
		if r.Error == "" || r.Result != nil {
			return errors.New("failed job must carry an error and no result")
		}
	default:
		if r.Result != nil || r.Error != "" {
			return errors.New("non-terminal job cannot carry a result or an error")
		}
	}
	return nil
}
