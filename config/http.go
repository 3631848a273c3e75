package config

import "time"

// MaxStandaloneAudioBytes is the upload limit of the standalone transcription endpoint.
const MaxStandaloneAudioBytes int64 = 200 << 20

// multipartOverheadBytes leaves room for form fields and part headers around the audio.
const multipartOverheadBytes int64 = 10 << 20

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// MaxUploadBytes bounds multipart request bodies on /process and /transcribe.
	MaxUploadBytes int64 `env:"HTTP_MAX_UPLOAD_BYTES" envDefault:"220200960"`

	// StreamPollInterval is how often /job/{id}/stream re-reads the store.
	StreamPollInterval time.Duration `env:"HTTP_STREAM_POLL_INTERVAL" envDefault:"1s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.MaxUploadBytes <= 0 {
		h.MaxUploadBytes = MaxStandaloneAudioBytes + multipartOverheadBytes
	}
	if h.Addr == "" {
		h.Addr = ":8080"
	}
	if h.StreamPollInterval < 100*time.Millisecond {
		h.StreamPollInterval = 100 * time.Millisecond
	}
}
