package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct{ err error }

func (s stubChecker) Health(context.Context) error { return s.err }

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, method := range []string{http.MethodGet, http.MethodHead} {
		t.Run(method, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.handler.ServeHTTP(w, httptest.NewRequest(method, "/healthz", nil))

			require.Equal(t, http.StatusOK, w.Code)
			if method == http.MethodHead {
				assert.Empty(t, w.Body.String())
				return
			}
			assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
		})
	}
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		checker    stubChecker
		wantStatus int
		wantBody   string
	}{
		{name: "ready", checker: stubChecker{}, wantStatus: http.StatusOK, wantBody: `{"status":"ok"}`},
		{
			name:       "store down",
			checker:    stubChecker{err: errors.New("dial tcp: connection refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := readyHandler(tt.checker, discardLogger())
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			require.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}
