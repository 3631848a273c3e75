// Package httpx provides the HTTP handlers and utilities of the sbobine API.
package httpx

import (
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/sbobine/sbobine-api/internal/errors"
	"github.com/sbobine/sbobine-api/internal/service"
)

// JobHandlers serves job submission and status.
type JobHandlers struct {
	Svc            *service.PipelineService
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// Process accepts an audio upload and starts the pipeline.
func (h *JobHandlers) Process(w http.ResponseWriter, r *http.Request) {
	up, err := readAudioUpload(w, r, h.MaxUploadBytes)
	if err != nil {
		RenderError(ErrorOpts{W: w, R: r, Err: err, Logger: h.Logger})
		return
	}
	if h.Logger != nil && len(up.Data) > 0 {
		h.Logger.DebugContext(r.Context(), "audio received", "upload", describeUpload(up), "user_id", up.UserID)
	}

	res, err := h.Svc.Submit(r.Context(), service.SubmitRequest{
		Audio:    up.Data,
		FileName: up.FileName,
		MIMEType: up.MIMEType,
		Size:     up.Size,
		Language: up.Language,
		UserID:   up.UserID,
	})
	if err != nil {
		RenderError(ErrorOpts{W: w, R: r, Err: err, Logger: h.Logger})
		return
	}

	WriteSuccess(w, http.StatusOK, res)
}

// GetJob returns the current record of a job.
func (h *JobHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimSpace(r.PathValue("id"))
	if jobID == "" {
		RenderError(ErrorOpts{W: w, R: r, Err: apperrors.Validation(msgJobIDMissing)})
		return
	}

	rec, err := h.Svc.Get(r.Context(), jobID)
	if err != nil {
		RenderError(ErrorOpts{W: w, R: r, Err: err, Logger: h.Logger})
		return
	}

	WriteSuccess(w, http.StatusOK, rec)
}
