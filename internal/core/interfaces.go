// Package core declares the contracts shared between the sbobine pipeline services and their adapters.
package core

import (
	"context"
	"time"

	"github.com/sbobine/sbobine-api/internal/domain/model"
)

// This file contains the ports between the pipeline services and their adapters.
// Services depend on these interfaces; data and gateway packages implement them.

// JobStore provides keyed access to job records.
// Put is a full upsert with last-write-wins semantics; Get returns model.ErrJobNotFound when absent.
type JobStore interface {
	Put(ctx context.Context, rec *model.JobRecord) error
	Get(ctx context.Context, jobID string) (*model.JobRecord, error)
}

// JobReaper is implemented by stores that need explicit eviction of old terminal records.
type JobReaper interface {
	DeleteTerminalBefore(ctx context.Context, params DeleteTerminalParams) (int64, error)
}

// DeleteTerminalParams groups parameters for JobReaper.DeleteTerminalBefore.
type DeleteTerminalParams struct {
	Status    model.JobStatus
	Before    time.Time
	BatchSize int
}

// HealthChecker is implemented by stores backed by an external service.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Gateway produces pipeline artifacts through the external AI collaborator.
type Gateway interface {
	Transcribe(ctx context.Context, in model.AudioInput) (*model.Transcription, error)
	Summarize(ctx context.Context, text, language string) (*model.Summary, error)
	Elaborate(ctx context.Context, text, language string) (*model.Elaboration, error)
	ConceptMap(ctx context.Context, text, language string) (*model.ConceptMap, error)
	Quiz(ctx context.Context, text, language string) (*model.Quiz, error)
}
