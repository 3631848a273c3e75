package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxJSONBodyBytes bounds JSON request bodies; transcripts of long lectures fit comfortably.
const maxJSONBodyBytes = 8 << 20

// envelope is the success body shape shared by every API route.
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, ErrorParams{Code: http.StatusRequestEntityTooLarge, ErrCode: "too_large", Message: msgBodyTooLarge})
			return false
		}
		if errors.Is(err, io.EOF) {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Message: msgEmptyBody})
			return false
		}
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Message: msgInvalidJSON})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// WriteSuccess wraps data in the {"success":true,"data":…} envelope.
func WriteSuccess(w http.ResponseWriter, code int, data any) {
	WriteJSON(w, code, envelope{Success: true, Data: data})
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Message string
}

// WriteError writes the {"error":<message>,"code":<error_code>} body.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, map[string]string{"error": p.Message, "code": p.ErrCode})
}
