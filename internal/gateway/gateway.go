// Package gateway turns transcripts and audio into pipeline artifacts through an
// external AI collaborator. Provider SDKs live in subpackages behind Backend.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sbobine/sbobine-api/internal/core"
	"github.com/sbobine/sbobine-api/internal/domain/model"
	"github.com/sbobine/sbobine-api/internal/observability/metrics"
)

const (
	// DefaultMaxTokens caps completion length for every text operation.
	DefaultMaxTokens = 4000

	summaryStyle = "structured"
	providerDemo = "demo"
)

// Operation names used for logging and metrics.
const (
	OpTranscribe = "transcribe"
	OpSummarize  = "summarize"
	OpElaborate  = "elaborate"
	OpConceptMap = "concept_map"
	OpQuiz       = "quiz"
	OpStructured = "structured"
)

// TranscriptionRequest is the provider-neutral speech-to-text call.
type TranscriptionRequest struct {
	Data        []byte
	FileName    string
	MIMEType    string
	Language    string
	Temperature float32
}

// TranscriptionResult is the raw transcript returned by a backend.
type TranscriptionResult struct {
	Text  string
	Model string
}

// CompletionRequest is the provider-neutral text generation call.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Completion is the generated text returned by a backend.
type Completion struct {
	Text       string
	TokensUsed int
	Model      string
}

// Backend is implemented by each AI provider adapter. Implementations must return
// *UpstreamError for provider failures they can classify.
type Backend interface {
	Name() string
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResult, error)
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// Temperatures holds the sampling temperature of each operation.
type Temperatures struct {
	Transcription float32
	Summary       float32
	Elaboration   float32
	ConceptMap    float32
	Quiz          float32
}

// DefaultTemperatures returns the per-operation temperatures used by the service.
func DefaultTemperatures() Temperatures {
	return Temperatures{
		Transcription: 0.2,
		Summary:       0.3,
		Elaboration:   0.4,
		ConceptMap:    0.3,
		Quiz:          0.3,
	}
}

// Options configures a Service.
type Options struct {
	// Backend is the configured collaborator. Nil selects placeholder artifacts.
	Backend      Backend
	Logger       *slog.Logger
	MaxTokens    int
	Temperatures *Temperatures
	// FallbackOnAuthError returns placeholders instead of failing when the backend rejects the key.
	FallbackOnAuthError bool
	Metrics             metrics.Sink
	Now                 func() time.Time
}

// StructuredRequest asks the collaborator for a JSON object.
type StructuredRequest struct {
	System      string
	Template    string
	Text        string
	Temperature float32
}

// Service implements core.Gateway.
type Service struct {
	backend        Backend
	logger         *slog.Logger
	maxTokens      int
	temps          Temperatures
	fallbackOnAuth bool
	metrics        metrics.Sink
	now            func() time.Time
}

var _ core.Gateway = (*Service)(nil)

// New constructs a gateway Service.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	temps := DefaultTemperatures()
	if opts.Temperatures != nil {
		temps = *opts.Temperatures
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		backend:        opts.Backend,
		logger:         logger.With("component", "gateway"),
		maxTokens:      maxTokens,
		temps:          temps,
		fallbackOnAuth: opts.FallbackOnAuthError,
		metrics:        metrics.OrNoop(opts.Metrics),
		now:            now,
	}
}

// WithAuthFallback returns a copy of s that serves placeholders when the backend rejects the key.
func (s *Service) WithAuthFallback() *Service {
	cp := *s
	cp.fallbackOnAuth = true
	return &cp
}

// Configured reports whether a live backend is wired.
func (s *Service) Configured() bool { return s.backend != nil }

// Provider returns the backend name, or "demo" when none is configured.
func (s *Service) Provider() string {
	if s.backend == nil {
		return providerDemo
	}
	return s.backend.Name()
}

// Transcribe converts audio into a cleaned transcript.
func (s *Service) Transcribe(ctx context.Context, in model.AudioInput) (*model.Transcription, error) {
	if s.backend == nil {
		s.record(OpTranscribe, metrics.ResultFallback, 0, 0, nil)
		return demoTranscription(in, s.timestamp()), nil
	}

	start := time.Now()
	res, err := s.backend.Transcribe(ctx, TranscriptionRequest{
		Data:        in.Data,
		FileName:    in.FileName,
		MIMEType:    in.MIMEType,
		Language:    in.Language,
		Temperature: s.temps.Transcription,
	})
	if err == nil && strings.TrimSpace(res.Text) == "" {
		err = NewUpstreamError(s.backend.Name(), KindEmpty, ErrEmptyResponse)
	}
	if err != nil {
		err = normalize(s.backend.Name(), err)
		if s.fallback(OpTranscribe, err, time.Since(start)) {
			return demoTranscription(in, s.timestamp()), nil
		}
		return nil, err
	}
	s.record(OpTranscribe, metrics.ResultSuccess, 0, time.Since(start), nil)

	clean := CleanTranscript(res.Text)
	return &model.Transcription{
		ID:        uuid.NewString(),
		RawText:   res.Text,
		CleanText: clean,
		Language:  in.Language,
		Duration:  EstimateDurationSeconds(in.Size),
		ModelUsed: res.Model,
		WordCount: WordCount(clean),
		CreatedAt: s.timestamp(),
	}, nil
}

// Summarize produces the structured summary of a transcript.
func (s *Service) Summarize(ctx context.Context, text, language string) (*model.Summary, error) {
	if s.backend == nil {
		s.record(OpSummarize, metrics.ResultFallback, 0, 0, nil)
		return demoSummary(language, s.timestamp()), nil
	}

	value, completion, err := s.structured(ctx, OpSummarize, StructuredRequest{
		System:      SummarySystem,
		Template:    SummaryTemplate,
		Text:        text,
		Temperature: s.temps.Summary,
	})
	if err != nil {
		if IsKind(err, KindAuth) && s.fallbackOnAuth {
			return demoSummary(language, s.timestamp()), nil
		}
		return nil, err
	}

	sections := ShapeSummary(value)
	return &model.Summary{
		ID:          uuid.NewString(),
		SummaryText: SummaryText(sections),
		Sections:    sections,
		ModelUsed:   completion.Model,
		Style:       summaryStyle,
		Language:    language,
		WordCount:   WordCount(completion.Text),
		TokensUsed:  completion.TokensUsed,
		CreatedAt:   s.timestamp(),
	}, nil
}

// Elaborate produces the free-text study rewrite of a transcript.
func (s *Service) Elaborate(ctx context.Context, text, language string) (*model.Elaboration, error) {
	if s.backend == nil {
		s.record(OpElaborate, metrics.ResultFallback, 0, 0, nil)
		return demoElaborationArtifact(language, s.timestamp()), nil
	}

	completion, err := s.complete(ctx, OpElaborate, CompletionRequest{
		System:      ElaborationSystem,
		Prompt:      ElaborationTemplate + text,
		Temperature: s.temps.Elaboration,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		if IsKind(err, KindAuth) && s.fallbackOnAuth {
			return demoElaborationArtifact(language, s.timestamp()), nil
		}
		return nil, err
	}

	elaborated := strings.TrimSpace(completion.Text)
	return &model.Elaboration{
		ID:             uuid.NewString(),
		ElaboratedText: elaborated,
		ModelUsed:      completion.Model,
		Language:       language,
		WordCount:      WordCount(elaborated),
		TokensUsed:     completion.TokensUsed,
		CreatedAt:      s.timestamp(),
	}, nil
}

// ConceptMap produces the node/connection map of a transcript.
func (s *Service) ConceptMap(ctx context.Context, text, language string) (*model.ConceptMap, error) {
	if s.backend == nil {
		s.record(OpConceptMap, metrics.ResultFallback, 0, 0, nil)
		return demoConceptMap(language, s.timestamp()), nil
	}

	value, completion, err := s.structured(ctx, OpConceptMap, StructuredRequest{
		System:      ConceptMapSystem,
		Template:    ConceptMapTemplate,
		Text:        text,
		Temperature: s.temps.ConceptMap,
	})
	if err != nil {
		if IsKind(err, KindAuth) && s.fallbackOnAuth {
			return demoConceptMap(language, s.timestamp()), nil
		}
		return nil, err
	}

	topic, nodes, conns := ShapeConceptMap(value)
	return &model.ConceptMap{
		ID:           uuid.NewString(),
		CentralTopic: topic,
		Nodes:        nodes,
		Connections:  conns,
		ModelUsed:    completion.Model,
		Language:     language,
		TokensUsed:   completion.TokensUsed,
		CreatedAt:    s.timestamp(),
	}, nil
}

// Quiz produces the multiple-choice quiz of a transcript.
func (s *Service) Quiz(ctx context.Context, text, language string) (*model.Quiz, error) {
	if s.backend == nil {
		s.record(OpQuiz, metrics.ResultFallback, 0, 0, nil)
		return demoQuiz(language, s.timestamp()), nil
	}

	value, completion, err := s.structured(ctx, OpQuiz, StructuredRequest{
		System:      QuizSystem,
		Template:    QuizTemplate,
		Text:        text,
		Temperature: s.temps.Quiz,
	})
	if err != nil {
		if IsKind(err, KindAuth) && s.fallbackOnAuth {
			return demoQuiz(language, s.timestamp()), nil
		}
		return nil, err
	}

	instructions, questions := ShapeQuiz(value)
	return &model.Quiz{
		ID:           uuid.NewString(),
		Instructions: instructions,
		Questions:    questions,
		ModelUsed:    completion.Model,
		Language:     language,
		TokensUsed:   completion.TokensUsed,
		CreatedAt:    s.timestamp(),
	}, nil
}

// GenerateStructured sends template+text to the collaborator and returns the parsed
// JSON object and the tokens consumed.
func (s *Service) GenerateStructured(ctx context.Context, req StructuredRequest) (map[string]any, int, error) {
	if s.backend == nil {
		return nil, 0, NewUpstreamError(providerDemo, KindOther, errors.New("no collaborator configured"))
	}
	value, completion, err := s.structured(ctx, OpStructured, req)
	if err != nil {
		return nil, 0, err
	}
	return value, completion.TokensUsed, nil
}

func (s *Service) structured(ctx context.Context, op string, req StructuredRequest) (map[string]any, *Completion, error) {
	completion, err := s.complete(ctx, op, CompletionRequest{
		System:      req.System,
		Prompt:      req.Template + req.Text,
		Temperature: req.Temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return nil, nil, err
	}

	extraction, err := ExtractJSON(completion.Text)
	if err != nil {
		s.logger.WarnContext(ctx, "collaborator returned malformed JSON",
			"operation", op,
			"provider", s.backend.Name(),
			"response_length", len(completion.Text))
		return nil, nil, NewUpstreamError(s.backend.Name(), KindMalformed, err)
	}
	if extraction.Strategy != StrategyDirect {
		s.logger.DebugContext(ctx, "recovered JSON from free-form response",
			"operation", op,
			"strategy", string(extraction.Strategy))
	}
	return extraction.Value, completion, nil
}

func (s *Service) complete(ctx context.Context, op string, req CompletionRequest) (*Completion, error) {
	start := time.Now()
	completion, err := s.backend.Complete(ctx, req)
	if err == nil && strings.TrimSpace(completion.Text) == "" {
		err = NewUpstreamError(s.backend.Name(), KindEmpty, ErrEmptyResponse)
	}
	if err != nil {
		err = normalize(s.backend.Name(), err)
		s.fallback(op, err, time.Since(start))
		return nil, err
	}
	s.record(op, metrics.ResultSuccess, completion.TokensUsed, time.Since(start), nil)
	return completion, nil
}

// fallback records a failed call and reports whether placeholders should be served instead.
func (s *Service) fallback(op string, err error, elapsed time.Duration) bool {
	if IsKind(err, KindAuth) && s.fallbackOnAuth {
		s.logger.Warn("collaborator rejected credentials, serving placeholder",
			"operation", op,
			"provider", s.backend.Name())
		s.record(op, metrics.ResultFallback, 0, elapsed, err)
		return true
	}
	s.logger.Error("collaborator call failed",
		"operation", op,
		"provider", s.backend.Name(),
		"error", err)
	s.record(op, metrics.ResultError, 0, elapsed, err)
	return false
}

func (s *Service) record(op, result string, tokens int, elapsed time.Duration, err error) {
	metrics.EmitGatewayCall(s.metrics, metrics.GatewayMetric{
		Operation: op,
		Provider:  s.Provider(),
		Result:    result,
		Tokens:    tokens,
		Duration:  elapsed,
		Err:       err,
	})
}

func (s *Service) timestamp() time.Time { return s.now().UTC() }
