package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/sbobine/sbobine-api/internal/core"
	"github.com/sbobine/sbobine-api/internal/domain/model"
	apperrors "github.com/sbobine/sbobine-api/internal/errors"
)

const defaultLanguage = "it"

// ArtifactHandlers expose each gateway operation as a synchronous endpoint.
//
// Transcribe and Summarize report a rejected API key as 401. Elaborate, ConceptMap and
// Quiz go through FallbackGateway, which answers with placeholders instead.
type ArtifactHandlers struct {
	Gateway         core.Gateway
	FallbackGateway core.Gateway
	MaxUploadBytes  int64
	Logger          *slog.Logger
}

func (h *ArtifactHandlers) lenient() core.Gateway {
	if h.FallbackGateway != nil {
		return h.FallbackGateway
	}
	return h.Gateway
}

// textRequest is the JSON body of the text-to-artifact endpoints.
type textRequest struct {
	// TranscriptionText is decoded loosely so a non-string value is reported as invalid text.
	TranscriptionText any    `json:"transcriptionText"`
	Language          string `json:"language"`
}

// Transcribe converts an uploaded audio file into a transcript.
func (h *ArtifactHandlers) Transcribe(w http.ResponseWriter, r *http.Request) {
	up, err := readAudioUpload(w, r, h.MaxUploadBytes)
	if err != nil {
		RenderError(ErrorOpts{W: w, R: r, Err: err, Logger: h.Logger})
		return
	}
	if err := validateStandaloneAudio(up); err != nil {
		RenderError(ErrorOpts{W: w, R: r, Err: err})
		return
	}
	if h.Logger != nil {
		h.Logger.DebugContext(r.Context(), "transcribing upload", "upload", describeUpload(up))
	}

	language := up.Language
	if language == "" {
		language = defaultLanguage
	}
	res, err := h.Gateway.Transcribe(r.Context(), model.AudioInput{
		Data:     up.Data,
		FileName: up.FileName,
		MIMEType: up.MIMEType,
		Size:     up.Size,
		Language: language,
	})
	if err != nil {
		RenderError(ErrorOpts{W: w, R: r, Err: err, Logger: h.Logger, Fallback: msgTranscribeFailed})
		return
	}
	WriteSuccess(w, http.StatusOK, res)
}

// Summarize produces the structured summary of a transcript of at least 50 characters.
func (h *ArtifactHandlers) Summarize(w http.ResponseWriter, r *http.Request) {
	text, language, ok := h.decodeText(w, r, minSummaryChars)
	if !ok {
		return
	}
	respond(w, r, h.Logger, msgSummarizeFailed, func(ctx context.Context) (any, error) {
		return h.Gateway.Summarize(ctx, text, language)
	})
}

// Elaborate rewrites a transcript into study notes.
func (h *ArtifactHandlers) Elaborate(w http.ResponseWriter, r *http.Request) {
	text, language, ok := h.decodeText(w, r, 0)
	if !ok {
		return
	}
	respond(w, r, h.Logger, msgElaborateFailed, func(ctx context.Context) (any, error) {
		return h.lenient().Elaborate(ctx, text, language)
	})
}

// ConceptMap builds the concept map of a transcript.
func (h *ArtifactHandlers) ConceptMap(w http.ResponseWriter, r *http.Request) {
	text, language, ok := h.decodeText(w, r, 0)
	if !ok {
		return
	}
	respond(w, r, h.Logger, msgConceptMapFailed, func(ctx context.Context) (any, error) {
		return h.lenient().ConceptMap(ctx, text, language)
	})
}

// Quiz generates multiple-choice questions from a transcript.
func (h *ArtifactHandlers) Quiz(w http.ResponseWriter, r *http.Request) {
	text, language, ok := h.decodeText(w, r, 0)
	if !ok {
		return
	}
	respond(w, r, h.Logger, msgQuizFailed, func(ctx context.Context) (any, error) {
		return h.lenient().Quiz(ctx, text, language)
	})
}

// decodeText validates the JSON body. minChars of 0 only requires a non-empty string.
func (h *ArtifactHandlers) decodeText(w http.ResponseWriter, r *http.Request, minChars int) (string, string, bool) {
	var req textRequest
	if !DecodeJSON(w, r, &req) {
		return "", "", false
	}

	text, isString := req.TranscriptionText.(string)
	if !isString || text == "" {
		RenderError(ErrorOpts{W: w, R: r, Err: apperrors.ValidationField("transcriptionText", msgTextInvalid)})
		return "", "", false
	}
	if minChars > 0 && utf8.RuneCountInString(text) < minChars {
		RenderError(ErrorOpts{W: w, R: r, Err: apperrors.ValidationField("transcriptionText", msgTextTooShort)})
		return "", "", false
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = defaultLanguage
	}
	return text, language, true
}

func respond(w http.ResponseWriter, r *http.Request, logger *slog.Logger, fallback string, fn func(context.Context) (any, error)) {
	res, err := fn(r.Context())
	if err != nil {
		RenderError(ErrorOpts{W: w, R: r, Err: err, Logger: logger, Fallback: fallback})
		return
	}
	WriteSuccess(w, http.StatusOK, res)
}
