// Package gemini adapts the Gemini API to the gateway.Backend interface. Audio is
// transcribed by the same generative model used for text: small files are sent inline,
// larger ones go through the Files API and are referenced by URI.
package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/sbobine/sbobine-api/internal/gateway"
)

const (
	// ProviderName identifies this backend in logs and metrics.
	ProviderName = "gemini"

	DefaultModel = "gemini-2.0-flash"

	defaultAudioMIME = "audio/mpeg"

	// maxInlineAudioBytes keeps base64-encoded audio under the 20 MB inline request cap.
	maxInlineAudioBytes = 14 << 20

	defaultFilePollInterval = 2 * time.Second
)

// fileStore is the subset of genai.Files used for large audio.
type fileStore interface {
	Upload(ctx context.Context, r io.Reader, config *genai.UploadFileConfig) (*genai.File, error)
	Get(ctx context.Context, name string, config *genai.GetFileConfig) (*genai.File, error)
	Delete(ctx context.Context, name string, config *genai.DeleteFileConfig) (*genai.DeleteFileResponse, error)
}

// Config configures the Gemini backend.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Backend calls the Gemini API through the genai SDK.
type Backend struct {
	models *genai.Models
	files  fileStore
	model  string

	inlineLimit  int
	pollInterval time.Duration
}

var _ gateway.Backend = (*Backend)(nil)

// New builds a Gemini backend.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("gemini api key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	return &Backend{
		models:       client.Models,
		files:        client.Files,
		model:        model,
		inlineLimit:  maxInlineAudioBytes,
		pollInterval: defaultFilePollInterval,
	}, nil
}

// Name implements gateway.Backend.
func (b *Backend) Name() string { return ProviderName }

// Transcribe sends the audio with a transcription instruction.
func (b *Backend) Transcribe(ctx context.Context, req gateway.TranscriptionRequest) (*gateway.TranscriptionResult, error) {
	audio, cleanup, err := b.audioPart(ctx, req)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(transcriptionInstruction(req.Language)),
			audio,
		}, genai.RoleUser),
	}

	resp, err := b.models.GenerateContent(ctx, b.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	})
	if err != nil {
		return nil, classify(err)
	}
	return &gateway.TranscriptionResult{Text: strings.TrimSpace(resp.Text()), Model: b.model}, nil
}

// audioPart returns an inline part for small audio, otherwise uploads it and returns a
// file part. cleanup deletes the uploaded file and is always safe to call.
func (b *Backend) audioPart(ctx context.Context, req gateway.TranscriptionRequest) (*genai.Part, func(), error) {
	mime := req.MIMEType
	if mime == "" {
		mime = defaultAudioMIME
	}
	if len(req.Data) <= b.inlineLimit || b.files == nil {
		return genai.NewPartFromBytes(req.Data, mime), func() {}, nil
	}

	file, err := b.files.Upload(ctx, bytes.NewReader(req.Data), &genai.UploadFileConfig{
		MIMEType:    mime,
		DisplayName: req.FileName,
	})
	if err != nil {
		return nil, func() {}, classify(err)
	}
	cleanup := func() {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		_, _ = b.files.Delete(dctx, file.Name, nil)
	}

	file, err = b.waitActive(ctx, file)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return genai.NewPartFromURI(file.URI, mime), cleanup, nil
}

// waitActive polls an uploaded file until the service has finished processing it.
func (b *Backend) waitActive(ctx context.Context, file *genai.File) (*genai.File, error) {
	for {
		switch file.State {
		case genai.FileStateFailed:
			return nil, gateway.NewUpstreamError(ProviderName, gateway.KindOther,
				fmt.Errorf("uploaded audio %s failed processing", file.Name))
		case genai.FileStateProcessing:
		default:
			return file, nil
		}

		t := time.NewTimer(b.pollInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}

		next, err := b.files.Get(ctx, file.Name, nil)
		if err != nil {
			return nil, classify(err)
		}
		file = next
	}
}

// Complete runs a single-turn generation with a system instruction.
func (b *Backend) Complete(ctx context.Context, req gateway.CompletionRequest) (*gateway.Completion, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens) //nolint:gosec // bounded by config
	}

	resp, err := b.models.GenerateContent(ctx, b.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, classify(err)
	}

	out := &gateway.Completion{Text: resp.Text(), Model: b.model}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}

func transcriptionInstruction(language string) string {
	if language == "" {
		language = "it"
	}
	return fmt.Sprintf("Trascrivi fedelmente questo audio nella lingua %q. Restituisci solo il testo trascritto, senza commenti.", language)
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return gateway.NewUpstreamError(ProviderName, kindFor(apiErr.Code, apiErr.Status, apiErr.Message), err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return gateway.NewUpstreamError(ProviderName, kindFor(apiErrPtr.Code, apiErrPtr.Status, apiErrPtr.Message), err)
	}
	return gateway.NewUpstreamError(ProviderName, gateway.KindOther, fmt.Errorf("gemini request: %w", err))
}

func kindFor(code int, status, message string) gateway.ErrorKind {
	switch {
	case code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED":
		return gateway.KindQuota
	case code == http.StatusUnauthorized || code == http.StatusForbidden || status == "UNAUTHENTICATED" ||
		strings.Contains(strings.ToLower(message), "api key not valid"):
		return gateway.KindAuth
	case strings.Contains(strings.ToLower(message), "exceeds the maximum number of tokens"):
		return gateway.KindContextLength
	default:
		return gateway.KindOther
	}
}
