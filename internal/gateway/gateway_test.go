package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbobine/sbobine-api/internal/domain/model"
)

type stubBackend struct {
	transcript string
	completion string
	tokens     int
	err        error
	requests   []CompletionRequest
}

func (b *stubBackend) Name() string { return "stub" }

func (b *stubBackend) Transcribe(_ context.Context, _ TranscriptionRequest) (*TranscriptionResult, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &TranscriptionResult{Text: b.transcript, Model: "stub-stt"}, nil
}

func (b *stubBackend) Complete(_ context.Context, req CompletionRequest) (*Completion, error) {
	b.requests = append(b.requests, req)
	if b.err != nil {
		return nil, b.err
	}
	return &Completion{Text: b.completion, TokensUsed: b.tokens, Model: "stub-llm"}, nil
}

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(b Backend) *Service {
	return New(Options{Backend: b, Now: func() time.Time { return fixedNow }})
}

func TestService_DemoModeIsConsistent(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()
	require.False(t, svc.Configured())

	tr, err := svc.Transcribe(ctx, model.AudioInput{Size: 2 * 1024 * 1024, Language: "it"})
	require.NoError(t, err)
	assert.Equal(t, model.ModelDemo, tr.ModelUsed)
	assert.Equal(t, 120, tr.Duration)
	assert.Equal(t, "it", tr.Language)
	assert.True(t, strings.HasPrefix(tr.CleanText, tr.RawText))

	sum, err := svc.Summarize(ctx, tr.CleanText, "en")
	require.NoError(t, err)
	assert.Equal(t, "en", sum.Language)
	assert.Len(t, sum.Sections.KeyConcepts, 3)

	cm, err := svc.ConceptMap(ctx, tr.CleanText, "it")
	require.NoError(t, err)
	ids := make(map[string]bool, len(cm.Nodes))
	for _, n := range cm.Nodes {
		ids[n.ID] = true
	}
	for _, c := range cm.Connections {
		assert.True(t, ids[c.From], "dangling from %q", c.From)
		assert.True(t, ids[c.To], "dangling to %q", c.To)
	}

	quiz, err := svc.Quiz(ctx, tr.CleanText, "it")
	require.NoError(t, err)
	require.Len(t, quiz.Questions, 3)
	for _, q := range quiz.Questions {
		require.GreaterOrEqual(t, len(q.Options), 4)
		found := false
		for _, opt := range q.Options {
			if strings.HasPrefix(opt, q.Correct+")") {
				found = true
			}
		}
		assert.True(t, found, "correct letter %q has no option", q.Correct)
	}

	el, err := svc.Elaborate(ctx, tr.CleanText, "it")
	require.NoError(t, err)
	assert.Equal(t, 150, el.WordCount)
	assert.Contains(t, el.ElaboratedText, "## Note per lo Studio")
}

func TestService_Summarize(t *testing.T) {
	b := &stubBackend{
		completion: "```json\n{\"overview\": \"La lezione tratta l'entropia.\", \"keyConcepts\": [\"Entropia\",],}\n```",
		tokens:     321,
	}
	svc := newTestService(b)

	sum, err := svc.Summarize(context.Background(), "testo della lezione", "it")
	require.NoError(t, err)
	assert.Equal(t, "La lezione tratta l'entropia.\n\nConcetti principali:\n1. Entropia", sum.SummaryText)
	assert.Equal(t, 321, sum.TokensUsed)
	assert.Equal(t, "stub-llm", sum.ModelUsed)
	assert.Equal(t, "structured", sum.Style)
	assert.Equal(t, WordCount(b.completion), sum.WordCount)
	assert.Equal(t, fixedNow, sum.CreatedAt)

	require.Len(t, b.requests, 1)
	assert.Equal(t, SummarySystem, b.requests[0].System)
	assert.Equal(t, SummaryTemplate+"testo della lezione", b.requests[0].Prompt)
	assert.InDelta(t, 0.3, b.requests[0].Temperature, 1e-6)
	assert.Equal(t, DefaultMaxTokens, b.requests[0].MaxTokens)
}

func TestService_Transcribe(t *testing.T) {
	svc := newTestService(&stubBackend{transcript: "uhm oggi parliamo di fisica.la lezione inizia"})

	tr, err := svc.Transcribe(context.Background(), model.AudioInput{Size: 1024 * 1024, Language: "it"})
	require.NoError(t, err)
	assert.Equal(t, "oggi parliamo di fisica. La lezione inizia", tr.CleanText)
	assert.Equal(t, 7, tr.WordCount)
	assert.Equal(t, 60, tr.Duration)
	assert.Equal(t, "stub-stt", tr.ModelUsed)
}

func TestService_Errors(t *testing.T) {
	authErr := NewUpstreamError("stub", KindAuth, errors.New("bad key"))

	t.Run("auth surfaces without fallback", func(t *testing.T) {
		svc := newTestService(&stubBackend{err: authErr})
		_, err := svc.Quiz(context.Background(), "testo", "it")
		ue, ok := AsUpstream(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, ue.Kind.HTTPStatus())
	})

	t.Run("auth falls back when enabled", func(t *testing.T) {
		svc := newTestService(&stubBackend{err: authErr}).WithAuthFallback()
		q, err := svc.Quiz(context.Background(), "testo", "it")
		require.NoError(t, err)
		assert.Equal(t, model.ModelDemo, q.ModelUsed)

		tr, err := svc.Transcribe(context.Background(), model.AudioInput{Language: "it"})
		require.NoError(t, err)
		assert.Equal(t, model.ModelDemo, tr.ModelUsed)
	})

	t.Run("malformed response", func(t *testing.T) {
		svc := newTestService(&stubBackend{completion: "non è json"})
		_, err := svc.ConceptMap(context.Background(), "testo", "it")
		assert.True(t, IsKind(err, KindMalformed))
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("empty response", func(t *testing.T) {
		svc := newTestService(&stubBackend{completion: "   "})
		_, err := svc.Elaborate(context.Background(), "testo", "it")
		assert.True(t, IsKind(err, KindEmpty))
	})

	t.Run("unclassified error wrapped as other", func(t *testing.T) {
		svc := newTestService(&stubBackend{err: errors.New("connection reset")})
		_, err := svc.Summarize(context.Background(), "testo", "it")
		assert.True(t, IsKind(err, KindOther))
	})

	t.Run("context errors pass through", func(t *testing.T) {
		svc := newTestService(&stubBackend{err: context.DeadlineExceeded})
		_, err := svc.Summarize(context.Background(), "testo", "it")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		_, ok := AsUpstream(err)
		assert.False(t, ok)
	})
}

func TestGenerateStructured(t *testing.T) {
	svc := newTestService(&stubBackend{completion: `{"a": 1}`, tokens: 9})
	v, tokens, err := svc.GenerateStructured(context.Background(), StructuredRequest{Template: "T:", Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, 9, tokens)
	assert.Equal(t, float64(1), v["a"])

	_, _, err = newTestService(nil).GenerateStructured(context.Background(), StructuredRequest{})
	require.Error(t, err)
}

func TestErrorKindMapping(t *testing.T) {
	assert.Equal(t, http.StatusTooManyRequests, KindQuota.HTTPStatus())
	assert.Equal(t, http.StatusRequestEntityTooLarge, KindContextLength.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindMalformed.HTTPStatus())
	assert.Empty(t, KindOther.PublicMessage())
	assert.Equal(t, "upstream_quota", NewUpstreamError("x", KindQuota, nil).ErrorClass())
}
