package config

import (
	"fmt"
	"strings"
)

// AIProvider selects the collaborator backend.
type AIProvider string

const (
	// AIProviderAuto picks OpenAI when its key is set, then Gemini, else demo placeholders.
	AIProviderAuto AIProvider = "auto"
	// AIProviderOpenAI uses Whisper and chat completions.
	AIProviderOpenAI AIProvider = "openai"
	// AIProviderGemini uses the Gemini API for audio and text.
	AIProviderGemini AIProvider = "gemini"
	// AIProviderDemo always serves placeholder artifacts.
	AIProviderDemo AIProvider = "demo"
)

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *AIProvider) UnmarshalText(text []byte) error {
	v := AIProvider(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case AIProviderAuto, AIProviderOpenAI, AIProviderGemini, AIProviderDemo:
		*p = v
		return nil
	case "":
		*p = AIProviderAuto
		return nil
	default:
		return fmt.Errorf("invalid AI provider: %q (valid options: auto, openai, gemini, demo)", string(text))
	}
}

// AIConfig contains collaborator credentials and generation settings.
type AIConfig struct {
	Provider AIProvider `env:"AI_PROVIDER" envDefault:"auto"`

	OpenAIAPIKey             string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL            string `env:"OPENAI_BASE_URL"`
	OpenAITranscriptionModel string `env:"OPENAI_TRANSCRIPTION_MODEL" envDefault:"whisper-1"`
	OpenAICompletionModel    string `env:"OPENAI_COMPLETION_MODEL"    envDefault:"gpt-4o-mini"`

	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL"`
	GeminiModel   string `env:"GEMINI_MODEL"    envDefault:"gemini-2.0-flash"`

	MaxTokens int `env:"AI_MAX_TOKENS" envDefault:"4000"`

	TranscriptionTemperature float32 `env:"AI_TRANSCRIPTION_TEMPERATURE" envDefault:"0.2"`
	SummaryTemperature       float32 `env:"AI_SUMMARY_TEMPERATURE"       envDefault:"0.3"`
	ElaborationTemperature   float32 `env:"AI_ELABORATION_TEMPERATURE"   envDefault:"0.4"`
	ConceptMapTemperature    float32 `env:"AI_CONCEPT_MAP_TEMPERATURE"   envDefault:"0.3"`
	QuizTemperature          float32 `env:"AI_QUIZ_TEMPERATURE"          envDefault:"0.3"`
}

// Sanitize trims credentials and clamps generation settings.
func (c *AIConfig) Sanitize() {
	if c.Provider == "" {
		c.Provider = AIProviderAuto
	}
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
	c.OpenAIBaseURL = strings.TrimSpace(c.OpenAIBaseURL)
	c.GeminiAPIKey = strings.TrimSpace(c.GeminiAPIKey)
	c.GeminiBaseURL = strings.TrimSpace(c.GeminiBaseURL)
	if c.MaxTokens < 256 {
		c.MaxTokens = 256
	}
	for _, t := range []*float32{
		&c.TranscriptionTemperature,
		&c.SummaryTemperature,
		&c.ElaborationTemperature,
		&c.ConceptMapTemperature,
		&c.QuizTemperature,
	} {
		*t = min(max(*t, 0), 2)
	}
}

// EffectiveProvider resolves auto selection against the configured keys.
// A provider without a key degrades to demo.
func (c *AIConfig) EffectiveProvider() AIProvider {
	switch c.Provider {
	case AIProviderOpenAI:
		if c.OpenAIAPIKey != "" {
			return AIProviderOpenAI
		}
	case AIProviderGemini:
		if c.GeminiAPIKey != "" {
			return AIProviderGemini
		}
	case AIProviderDemo:
	default:
		if c.OpenAIAPIKey != "" {
			return AIProviderOpenAI
		}
		if c.GeminiAPIKey != "" {
			return AIProviderGemini
		}
	}
	return AIProviderDemo
}
