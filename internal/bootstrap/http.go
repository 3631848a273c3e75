package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sbobine/sbobine-api/config"
	httpx "github.com/sbobine/sbobine-api/internal/http"
)

const (
	httpReadHeaderTimeout = 10 * time.Second
	// httpReadTimeout leaves room for 200 MiB uploads on slow links.
	httpReadTimeout = 5 * time.Minute
	httpIdleTimeout = 120 * time.Second
	// httpWriteSlack is added to the stage timeout so standalone endpoints can answer
	// after a full collaborator call.
	httpWriteSlack       = time.Minute
	httpShutdownTimeout  = 10 * time.Second
	defaultHTTPWriteTime = 30 * time.Second
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := httpx.NewRouter(routerServices(appCfg, cfg.Services, logger))

	writeTimeout := defaultHTTPWriteTime
	if appCfg.Worker.StageTimeout > 0 {
		writeTimeout = appCfg.Worker.StageTimeout + httpWriteSlack
	}

	// Start server (logs "starting HTTP server" internally)
	return startServer(logger, handler, appCfg.HTTP.Addr, writeTimeout)
}

func routerServices(appCfg *config.AppConfig, services ServiceContainer, logger *slog.Logger) httpx.RouterServices {
	rs := httpx.RouterServices{
		Pipeline:           services.Pipeline,
		Gateway:            services.Gateway,
		FallbackGateway:    services.FallbackGateway,
		MaxUploadBytes:     appCfg.HTTP.MaxUploadBytes,
		StreamPollInterval: appCfg.HTTP.StreamPollInterval,
		Logger:             logger,
	}
	// Assigning a nil checker would make the interface non-nil.
	if services.Health != nil {
		rs.Health = services.Health
	}
	if services.Observability.MetricsHandler != nil {
		rs.Metrics = services.Observability.MetricsHandler
		rs.MetricsPath = services.Observability.MetricsConfig.Path
	}
	return rs
}

func startServer(logger *slog.Logger, handler http.Handler, addr string, writeTimeout time.Duration) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: httpReadHeaderTimeout,
		ReadTimeout:       httpReadTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       httpIdleTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, httpShutdownTimeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
