package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures reported by the AI collaborator.
type ErrorKind string

const (
	// KindQuota means the account ran out of quota or was rate limited.
	KindQuota ErrorKind = "quota"
	// KindAuth means the API key was rejected.
	KindAuth ErrorKind = "auth"
	// KindContextLength means the input exceeded the model context window.
	KindContextLength ErrorKind = "context_length"
	// KindMalformed means a structured response could not be parsed as JSON.
	KindMalformed ErrorKind = "malformed"
	// KindEmpty means the collaborator returned no content.
	KindEmpty ErrorKind = "empty"
	// KindOther covers every other upstream failure.
	KindOther ErrorKind = "other"
)

// ErrMalformedResponse is returned by ExtractJSON when no strategy yields a JSON object.
var ErrMalformedResponse = errors.New("response is not valid JSON")

// ErrEmptyResponse is wrapped when the collaborator answers with no content.
var ErrEmptyResponse = errors.New("empty response from collaborator")

// HTTPStatus maps the kind onto the status surfaced by the standalone endpoints.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindQuota:
		return http.StatusTooManyRequests
	case KindAuth:
		return http.StatusUnauthorized
	case KindContextLength:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the user-facing message for the kind, or "" when the
// caller should use its operation-specific fallback.
func (k ErrorKind) PublicMessage() string {
	switch k {
	case KindQuota:
		return "Quota API OpenAI esaurita. Contatta l'amministratore."
	case KindAuth:
		return "Chiave API OpenAI non valida."
	case KindContextLength:
		return "Testo troppo lungo per essere processato. Prova con un file più breve."
	default:
		return ""
	}
}

// UpstreamError is the normalized failure of a collaborator call.
type UpstreamError struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

// Error implements error.
func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s upstream error (%s)", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s upstream error (%s): %v", e.Provider, e.Kind, e.Err)
}

// Unwrap returns the provider error.
func (e *UpstreamError) Unwrap() error { return e.Err }

// ErrorClass implements the observability classifier.
func (e *UpstreamError) ErrorClass() string { return "upstream_" + string(e.Kind) }

// NewUpstreamError builds an UpstreamError.
func NewUpstreamError(provider string, kind ErrorKind, err error) *UpstreamError {
	return &UpstreamError{Kind: kind, Provider: provider, Err: err}
}

// AsUpstream extracts an UpstreamError from err.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// IsKind reports whether err is an UpstreamError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	ue, ok := AsUpstream(err)
	return ok && ue.Kind == kind
}

// normalize keeps context errors and UpstreamErrors intact and wraps anything else as KindOther.
func normalize(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if _, ok := AsUpstream(err); ok {
		return err
	}
	return NewUpstreamError(provider, KindOther, err)
}
