package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sbobine/sbobine-api/config"
	"github.com/sbobine/sbobine-api/internal/gateway"
	"github.com/sbobine/sbobine-api/internal/gateway/gemini"
	"github.com/sbobine/sbobine-api/internal/gateway/openai"
	"github.com/sbobine/sbobine-api/internal/observability/metrics"
)

// BuildGateway resolves the configured collaborator. Without credentials the
// gateway serves demo placeholders.
func BuildGateway(ctx context.Context, cfg config.AIConfig, logger *slog.Logger, sink metrics.Sink) (*gateway.Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var backend gateway.Backend
	provider := cfg.EffectiveProvider()
	switch provider {
	case config.AIProviderOpenAI:
		b, err := openai.New(openai.Config{
			APIKey:             cfg.OpenAIAPIKey,
			BaseURL:            cfg.OpenAIBaseURL,
			TranscriptionModel: cfg.OpenAITranscriptionModel,
			CompletionModel:    cfg.OpenAICompletionModel,
		})
		if err != nil {
			return nil, fmt.Errorf("create openai backend: %w", err)
		}
		backend = b
	case config.AIProviderGemini:
		b, err := gemini.New(ctx, gemini.Config{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini backend: %w", err)
		}
		backend = b
	default:
		logger.WarnContext(ctx, "no AI credentials configured, serving demo artifacts")
	}

	if cfg.Provider != config.AIProviderAuto && cfg.Provider != provider {
		logger.WarnContext(ctx, "configured AI provider has no API key, serving demo artifacts",
			"provider", string(cfg.Provider))
	}

	return gateway.New(gateway.Options{
		Backend:   backend,
		Logger:    logger,
		MaxTokens: cfg.MaxTokens,
		Temperatures: &gateway.Temperatures{
			Transcription: cfg.TranscriptionTemperature,
			Summary:       cfg.SummaryTemperature,
			Elaboration:   cfg.ElaborationTemperature,
			ConceptMap:    cfg.ConceptMapTemperature,
			Quiz:          cfg.QuizTemperature,
		},
		Metrics: sink,
	}), nil
}
