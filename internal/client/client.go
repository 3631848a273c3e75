// Package client is a Go client for the sbobine HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/sbobine/sbobine-api/internal/domain/model"
	"github.com/sbobine/sbobine-api/internal/service"
)

const defaultHTTPTimeout = 10 * time.Minute

// Fallback messages used when an error response carries no message.
const (
	msgProcessFailed    = "Errore durante l'elaborazione"
	msgStatusFailed     = "Errore durante il recupero dello stato"
	msgTranscribeFailed = "Errore durante la trascrizione"
	msgSummarizeFailed  = "Errore durante la generazione del riassunto"
	msgElaborateFailed  = "Errore durante la rielaborazione"
	msgConceptMapFailed = "Errore durante la generazione della mappa concettuale"
	msgQuizFailed       = "Errore durante la generazione del quiz"
)

// Client calls a sbobine API server.
type Client struct {
	// BaseURL is the server root, e.g. http://localhost:8080 or https://host/api.
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a client for baseURL with a default HTTP client.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d, %s)", e.Message, e.StatusCode, e.Code)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Audio is an audio file to upload.
type Audio struct {
	FileName string
	// MIMEType defaults to one derived from the file extension.
	MIMEType string
	Data     io.Reader
}

// ProcessAudio submits audio for the full pipeline and returns the accepted job.
func (c *Client) ProcessAudio(ctx context.Context, audio Audio, language, userID string) (*service.SubmitResult, error) {
	body, contentType, err := audioForm(audio, map[string]string{"language": language, "userId": userID})
	if err != nil {
		return nil, err
	}
	var out service.SubmitResult
	if err := c.do(ctx, http.MethodPost, "/process", contentType, body, msgProcessFailed, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetJob reads the current record of a job.
func (c *Client) GetJob(ctx context.Context, jobID string) (*model.JobRecord, error) {
	var out model.JobRecord
	path := "/job/" + url.PathEscape(jobID)
	if err := c.do(ctx, http.MethodGet, path, "", nil, msgStatusFailed, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transcribe transcribes audio synchronously.
func (c *Client) Transcribe(ctx context.Context, audio Audio, language string) (*model.Transcription, error) {
	body, contentType, err := audioForm(audio, map[string]string{"language": language})
	if err != nil {
		return nil, err
	}
	var out model.Transcription
	if err := c.do(ctx, http.MethodPost, "/transcribe", contentType, body, msgTranscribeFailed, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summarize summarizes a transcript.
func (c *Client) Summarize(ctx context.Context, text, language string) (*model.Summary, error) {
	var out model.Summary
	if err := c.postText(ctx, "/summarize", text, language, msgSummarizeFailed, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Elaborate rewrites a transcript into study notes.
func (c *Client) Elaborate(ctx context.Context, text, language string) (*model.Elaboration, error) {
	var out model.Elaboration
	if err := c.postText(ctx, "/elaborate", text, language, msgElaborateFailed, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConceptMap builds a concept map from a transcript.
func (c *Client) ConceptMap(ctx context.Context, text, language string) (*model.ConceptMap, error) {
	var out model.ConceptMap
	if err := c.postText(ctx, "/concept-map", text, language, msgConceptMapFailed, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Quiz generates a quiz from a transcript.
func (c *Client) Quiz(ctx context.Context, text, language string) (*model.Quiz, error) {
	var out model.Quiz
	if err := c.postText(ctx, "/quiz", text, language, msgQuizFailed, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type textRequest struct {
	TranscriptionText string `json:"transcriptionText"`
	Language          string `json:"language,omitempty"`
}

func (c *Client) postText(ctx context.Context, path, text, language, fallback string, out any) error {
	b, err := json.Marshal(textRequest{TranscriptionText: text, Language: language})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(b), fallback, out)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, fallback string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp, fallback)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return errors.New("response carries no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response, fallback string) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: fallback}
	var body errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		if body.Error != "" {
			apiErr.Message = body.Error
		}
		apiErr.Code = body.Code
	}
	return apiErr
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// audioForm encodes the audio part and plain fields. Empty fields are omitted.
func audioForm(audio Audio, fields map[string]string) (io.Reader, string, error) {
	if audio.Data == nil {
		return nil, "", errors.New("audio data is required")
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write %s field: %w", k, err)
		}
	}

	name := audio.FileName
	if name == "" {
		name = "audio.mp3"
	}
	mimeType := audio.MIMEType
	if mimeType == "" {
		mimeType = mimeFromExtension(name)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, filepath.Base(name)))
	h.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create audio part: %w", err)
	}
	if _, err := io.Copy(part, audio.Data); err != nil {
		return nil, "", fmt.Errorf("write audio data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

func mimeFromExtension(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/m4a"
	case ".aac":
		return "audio/aac"
	case ".ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}
