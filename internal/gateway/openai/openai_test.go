package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbobine/sbobine-api/internal/gateway"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *Backend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	b, err := New(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	return b
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(Config{APIKey: "  "})
	require.Error(t, err)
}

func TestComplete(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultCompletionModel, req.Model)
		assert.Equal(t, 4000, req.MaxTokens)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, "sei un tutor", req.Messages[0].Content)
			assert.Equal(t, "user", req.Messages[1].Role)
		}

		writeJSON(t, w, http.StatusOK, map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   DefaultCompletionModel,
			"choices": []any{map[string]any{"index": 0, "message": map[string]any{"role": "assistant", "content": `{"ok":true}`}}},
			"usage":   map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	})

	got, err := b.Complete(context.Background(), gateway.CompletionRequest{
		System:      "sei un tutor",
		Prompt:      "riassumi",
		Temperature: 0.3,
		MaxTokens:   4000,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, got.Text)
	assert.Equal(t, 15, got.TokensUsed)
	assert.Equal(t, DefaultCompletionModel, got.Model)
}

func TestTranscribe(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "it", r.FormValue("language"))
		writeJSON(t, w, http.StatusOK, map[string]any{"text": "buongiorno a tutti"})
	})

	got, err := b.Transcribe(context.Background(), gateway.TranscriptionRequest{
		Data:     []byte("ID3fake"),
		FileName: "lezione.mp3",
		Language: "it",
	})
	require.NoError(t, err)
	assert.Equal(t, "buongiorno a tutti", got.Text)
	assert.Equal(t, "whisper-1", got.Model)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
		want   gateway.ErrorKind
	}{
		{name: "quota", status: http.StatusTooManyRequests, code: "insufficient_quota", want: gateway.KindQuota},
		{name: "invalid key", status: http.StatusUnauthorized, code: "invalid_api_key", want: gateway.KindAuth},
		{name: "context length", status: http.StatusBadRequest, code: "context_length_exceeded", want: gateway.KindContextLength},
		{name: "bare 401", status: http.StatusUnauthorized, code: "", want: gateway.KindAuth},
		{name: "server error", status: http.StatusInternalServerError, code: "server_error", want: gateway.KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(t, w, tt.status, map[string]any{
					"error": map[string]any{"message": "nope", "type": "invalid_request_error", "code": tt.code},
				})
			})

			_, err := b.Complete(context.Background(), gateway.CompletionRequest{Prompt: "x"})
			ue, ok := gateway.AsUpstream(err)
			require.True(t, ok, "expected upstream error, got %v", err)
			assert.Equal(t, tt.want, ue.Kind)
			assert.Equal(t, ProviderName, ue.Provider)
		})
	}
}

func TestKindFor(t *testing.T) {
	assert.Equal(t, gateway.KindQuota, kindFor("rate_limit_exceeded", http.StatusOK))
	assert.Equal(t, gateway.KindContextLength, kindFor("", http.StatusRequestEntityTooLarge))
	assert.Equal(t, gateway.KindOther, kindFor("", http.StatusBadGateway))
}
