package data

import (
	"encoding/json"
	"fmt"

	"github.com/sbobine/sbobine-api/internal/domain/model"
	apperrors "github.com/sbobine/sbobine-api/internal/errors"
)

// encodeJob validates a record and serializes it for storage.
func encodeJob(rec *model.JobRecord) ([]byte, error) {
	if err := rec.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid job record")
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal job %s: %w", rec.JobID, err)
	}
	return b, nil
}

func decodeJob(b []byte) (*model.JobRecord, error) {
	var rec model.JobRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &rec, nil
}

func validateJobID(jobID string) error {
	if jobID == "" {
		return apperrors.ValidationField("jobId", "job id cannot be empty")
	}
	return nil
}
