package data

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sbobine/sbobine-api/internal/core"
	"github.com/sbobine/sbobine-api/internal/domain/model"
)

// MemoryJobStore keeps job records in process memory.
// Records are stored as serialized snapshots so callers never share state with the store.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]memoryEntry
}

type memoryEntry struct {
	status    model.JobStatus
	updatedAt time.Time
	body      []byte
}

// NewMemoryJobStore creates an empty in-memory store.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]memoryEntry)}
}

// Put stores the record, replacing any previous record with the same id.
func (s *MemoryJobStore) Put(ctx context.Context, rec *model.JobRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := encodeJob(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[rec.JobID] = memoryEntry{status: rec.Status, updatedAt: rec.UpdatedAt, body: b}
	return nil
}

// Get returns a fresh copy of the stored record.
func (s *MemoryJobStore) Get(ctx context.Context, jobID string) (*model.JobRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateJobID(jobID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	entry, ok := s.jobs[jobID]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrJobNotFound
	}
	return decodeJob(entry.body)
}

// DeleteTerminalBefore removes up to BatchSize records of the given terminal status
// last updated before the cutoff, oldest first.
func (s *MemoryJobStore) DeleteTerminalBefore(ctx context.Context, params core.DeleteTerminalParams) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !params.Status.IsTerminal() {
		return 0, errNonTerminalStatus(params.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type candidate struct {
		id        string
		updatedAt time.Time
	}
	var victims []candidate
	for id, e := range s.jobs {
		if e.status == params.Status && e.updatedAt.Before(params.Before) {
			victims = append(victims, candidate{id: id, updatedAt: e.updatedAt})
		}
	}
	sort.Slice(victims, func(i, j int) bool { return victims[i].updatedAt.Before(victims[j].updatedAt) })
	if params.BatchSize > 0 && len(victims) > params.BatchSize {
		victims = victims[:params.BatchSize]
	}
	for _, v := range victims {
		delete(s.jobs, v.id)
	}
	return int64(len(victims)), nil
}

// Len reports the number of stored records.
func (s *MemoryJobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
