// Package openai adapts the OpenAI API (Whisper transcription and chat completions)
// to the gateway.Backend interface.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/sbobine/sbobine-api/internal/gateway"
)

const (
	// ProviderName identifies this backend in logs and metrics.
	ProviderName = "openai"

	DefaultTranscriptionModel = goopenai.Whisper1
	DefaultCompletionModel    = "gpt-4o-mini"
)

// Config configures the OpenAI backend.
type Config struct {
	APIKey             string
	BaseURL            string
	TranscriptionModel string
	CompletionModel    string
	HTTPClient         *http.Client
}

// Backend calls the OpenAI API.
type Backend struct {
	client             *goopenai.Client
	transcriptionModel string
	completionModel    string
}

var _ gateway.Backend = (*Backend)(nil)

// New builds an OpenAI backend. An API key is required.
func New(cfg Config) (*Backend, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("openai api key is required")
	}

	clientCfg := goopenai.DefaultConfig(key)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		clientCfg.BaseURL = base
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	b := &Backend{
		client:             goopenai.NewClientWithConfig(clientCfg),
		transcriptionModel: cfg.TranscriptionModel,
		completionModel:    cfg.CompletionModel,
	}
	if b.transcriptionModel == "" {
		b.transcriptionModel = DefaultTranscriptionModel
	}
	if b.completionModel == "" {
		b.completionModel = DefaultCompletionModel
	}
	return b, nil
}

// Name implements gateway.Backend.
func (b *Backend) Name() string { return ProviderName }

// Transcribe sends the audio bytes to the transcription endpoint.
func (b *Backend) Transcribe(ctx context.Context, req gateway.TranscriptionRequest) (*gateway.TranscriptionResult, error) {
	fileName := req.FileName
	if fileName == "" {
		fileName = "audio.mp3"
	}
	resp, err := b.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:       b.transcriptionModel,
		FilePath:    fileName,
		Reader:      bytes.NewReader(req.Data),
		Language:    req.Language,
		Temperature: req.Temperature,
		Format:      goopenai.AudioResponseFormatJSON,
	})
	if err != nil {
		return nil, classify(err)
	}
	return &gateway.TranscriptionResult{Text: resp.Text, Model: b.transcriptionModel}, nil
}

// Complete runs a chat completion with a system and a user message.
func (b *Backend) Complete(ctx context.Context, req gateway.CompletionRequest) (*gateway.Completion, error) {
	resp, err := b.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: b.completionModel,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.System},
			{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, gateway.NewUpstreamError(ProviderName, gateway.KindEmpty, gateway.ErrEmptyResponse)
	}
	return &gateway.Completion{
		Text:       resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
		Model:      b.completionModel,
	}, nil
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return gateway.NewUpstreamError(ProviderName, kindFor(codeString(apiErr.Code), apiErr.HTTPStatusCode), err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return gateway.NewUpstreamError(ProviderName, kindFor("", reqErr.HTTPStatusCode), err)
	}
	return gateway.NewUpstreamError(ProviderName, gateway.KindOther, fmt.Errorf("openai request: %w", err))
}

func kindFor(code string, status int) gateway.ErrorKind {
	switch code {
	case "insufficient_quota", "rate_limit_exceeded":
		return gateway.KindQuota
	case "invalid_api_key":
		return gateway.KindAuth
	case "context_length_exceeded":
		return gateway.KindContextLength
	}
	switch status {
	case http.StatusTooManyRequests:
		return gateway.KindQuota
	case http.StatusUnauthorized:
		return gateway.KindAuth
	case http.StatusRequestEntityTooLarge:
		return gateway.KindContextLength
	}
	return gateway.KindOther
}

func codeString(code any) string {
	switch c := code.(type) {
	case string:
		return c
	case nil:
		return ""
	default:
		return fmt.Sprint(c)
	}
}
