package data

import (
	"fmt"

	"github.com/sbobine/sbobine-api/internal/domain/model"
	apperrors "github.com/sbobine/sbobine-api/internal/errors"
)

func errNonTerminalStatus(status model.JobStatus) error {
	return apperrors.Validationf("status %q is not terminal", status)
}

// mapStoreError converts backend errors into AppErrors, keeping the not-found sentinel.
func mapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	mapped := apperrors.MapDBError(err)
	if apperrors.IsNotFound(mapped) {
		return model.ErrJobNotFound
	}
	return fmt.Errorf("%s: %w", op, mapped)
}
