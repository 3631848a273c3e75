package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/sbobine/sbobine-api/internal/errors"
	"github.com/sbobine/sbobine-api/internal/gateway"
)

// ErrorOpts contains the inputs needed to render an error response.
type ErrorOpts struct {
	W      http.ResponseWriter
	R      *http.Request
	Err    error
	Logger *slog.Logger
	// Fallback is the message used when neither the AppError nor the upstream kind supplies one.
	Fallback string
}

// DetermineErrorStatus maps an error to the HTTP status and error code it should surface as.
//
// AppError codes map onto 4xx/5xx directly. Upstream gateway errors map by kind
// (quota 429, auth 401, context length 413, everything else 500).
func DetermineErrorStatus(err error) (int, string) {
	if ue, ok := gateway.AsUpstream(err); ok {
		return ue.Kind.HTTPStatus(), "upstream_" + string(ue.Kind)
	}

	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest, string(apperrors.ErrCodeValidation)
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound, string(apperrors.ErrCodeNotFound)
	case apperrors.ErrCodeConflict:
		return http.StatusConflict, string(apperrors.ErrCodeConflict)
	case apperrors.ErrCodeTooLarge:
		return http.StatusRequestEntityTooLarge, string(apperrors.ErrCodeTooLarge)
	case apperrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable, string(apperrors.ErrCodeUnavailable)
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout, string(apperrors.ErrCodeTimeout)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, string(apperrors.ErrCodeTimeout)
	case errors.Is(err, context.Canceled):
		// Client went away; the status is never seen but keeps logs honest.
		return 499, string(apperrors.ErrCodeCanceled)
	}
	return http.StatusInternalServerError, string(apperrors.ErrCodeInternal)
}

// RenderError writes the JSON error body for err. Server-side failures are logged;
// their causes never reach the client.
func RenderError(opts ErrorOpts) {
	status, code := DetermineErrorStatus(opts.Err)

	fallback := opts.Fallback
	if fallback == "" {
		fallback = msgInternal
	}

	message := fallback
	if ue, ok := gateway.AsUpstream(opts.Err); ok {
		if msg := ue.Kind.PublicMessage(); msg != "" {
			message = msg
		}
	} else if status < http.StatusInternalServerError {
		message = apperrors.PublicMessage(opts.Err, fallback)
	} else if apperrors.GetCode(opts.Err) == apperrors.ErrCodeUnavailable {
		message = apperrors.PublicMessage(opts.Err, fallback)
	}

	if status >= http.StatusInternalServerError && opts.Logger != nil {
		ctx := context.Background()
		path := ""
		if opts.R != nil {
			ctx = opts.R.Context()
			path = opts.R.URL.Path
		}
		opts.Logger.ErrorContext(ctx, "request failed",
			"path", path,
			"status", status,
			"code", code,
			"error", opts.Err,
		)
	}

	WriteError(opts.W, ErrorParams{Code: status, ErrCode: code, Message: message})
}
