package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sbobine/sbobine-api/internal/core"
	"github.com/sbobine/sbobine-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Pipeline *service.PipelineService
	// Gateway serves /transcribe and /summarize.
	Gateway core.Gateway
	// FallbackGateway serves /elaborate, /concept-map and /quiz. Defaults to Gateway.
	FallbackGateway core.Gateway
	// Health is optional; without it /readyz always reports ok.
	Health core.HealthChecker
	// Metrics is optional; when set it is mounted at MetricsPath.
	Metrics     http.Handler
	MetricsPath string

	MaxUploadBytes     int64
	StreamPollInterval time.Duration
	Logger             *slog.Logger
}

// NewRouter creates the API router wrapped in the standard middleware chain.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	jobHandlers := &JobHandlers{
		Svc:            services.Pipeline,
		MaxUploadBytes: services.MaxUploadBytes,
		Logger:         logger,
	}
	streamHandlers := &StreamHandlers{
		Svc:          services.Pipeline,
		PollInterval: services.StreamPollInterval,
		Logger:       logger,
	}
	artifactHandlers := &ArtifactHandlers{
		Gateway:         services.Gateway,
		FallbackGateway: services.FallbackGateway,
		MaxUploadBytes:  services.MaxUploadBytes,
		Logger:          logger,
	}

	registerJobRoutes(mux, jobHandlers, streamHandlers)
	registerArtifactRoutes(mux, artifactHandlers)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.Health, logger))
	if services.Metrics != nil {
		path := services.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, services.Metrics)
	}

	var handler http.Handler = mux
	handler = Compression(CompressionConfig{Logger: logger})(handler)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

func registerJobRoutes(mux *http.ServeMux, h *JobHandlers, s *StreamHandlers) {
	mux.HandleFunc("POST /process", h.Process)
	mux.HandleFunc("GET /job/{id}", h.GetJob)
	mux.HandleFunc("GET /job/{id}/stream", s.Stream)
}

func registerArtifactRoutes(mux *http.ServeMux, h *ArtifactHandlers) {
	mux.HandleFunc("POST /transcribe", h.Transcribe)
	mux.HandleFunc("POST /summarize", h.Summarize)
	mux.HandleFunc("POST /elaborate", h.Elaborate)
	mux.HandleFunc("POST /concept-map", h.ConceptMap)
	mux.HandleFunc("POST /quiz", h.Quiz)
}
