package bootstrap

import (
	"log/slog"
	"net/http"

	"github.com/sbobine/sbobine-api/config"
	"github.com/sbobine/sbobine-api/internal/observability/metrics"
	"github.com/sbobine/sbobine-api/internal/observability/notify/slack"
	"github.com/sbobine/sbobine-api/internal/service/failurenotifier"
)

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	// MetricsSink is a no-op sink when metrics are disabled.
	MetricsSink metrics.Sink
	// MetricsHandler serves the Prometheus exposition; nil when metrics are disabled.
	MetricsHandler  http.Handler
	MetricsConfig   config.ObservabilityMetricsConfig
	FailureNotifier *failurenotifier.Service
	NotifierConfig  config.ObservabilityNotificationsConfig
}

// buildObservability configures metrics and notification adapters.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	container := ObservabilityContainer{
		MetricsSink:     metrics.NoopSink{},
		MetricsConfig:   cfg.Metrics,
		FailureNotifier: buildFailureNotifier(obsLogger, cfg.Notifications),
		NotifierConfig:  cfg.Notifications,
	}

	if cfg.Metrics.IsEnabled() {
		sink := metrics.NewPrometheusSink(metrics.PrometheusOptions{
			Namespace: cfg.Metrics.Namespace,
			Logger:    obsLogger,
		})
		container.MetricsSink = sink
		container.MetricsHandler = sink.Handler()
		obsLogger.Info("prometheus metrics enabled", "path", cfg.Metrics.Path)
	}

	return container
}

func buildFailureNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) *failurenotifier.Service {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = slog.Default()
	}

	if !cfg.Enabled {
		return failurenotifier.NewService(failurenotifier.Options{
			Logger: baseLogger,
		})
	}

	sinks := make([]failurenotifier.SinkRegistration, 0, 1)

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: cfg.Slack.WebhookURL,
			Channel:    cfg.Slack.Channel,
			Username:   cfg.Slack.Username,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			baseLogger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "slack",
				Sink: client,
			})
		}
	}

	return failurenotifier.NewService(failurenotifier.Options{
		Logger: baseLogger,
		Sinks:  sinks,
	})
}
