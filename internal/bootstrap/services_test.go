package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbobine/sbobine-api/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAppConfig(services string) *config.AppConfig {
	cfg := &config.AppConfig{
		Services: services,
		Store:    config.StoreConfig{Backend: config.StoreBackendMemory},
		AI:       config.AIConfig{Provider: config.AIProviderDemo},
		Worker:   config.WorkerConfig{Concurrency: 1, QueueSize: 4},
		Reaper: config.ReaperConfig{
			Interval:        time.Hour,
			CompletedMaxAge: time.Hour,
			FailedMaxAge:    time.Hour,
			BatchSize:       10,
		},
	}
	cfg.Sanitize()
	return cfg
}

func TestErrorChannelCapacity(t *testing.T) {
	tests := []struct {
		name  string
		modes []config.ServiceMode
		want  int
	}{
		{name: "no services enabled", want: 0},
		{name: "http only", modes: []config.ServiceMode{config.ServiceModeHTTP}, want: 1},
		{
			name:  "all services enabled",
			modes: []config.ServiceMode{config.ServiceModeHTTP, config.ServiceModeReaper},
			want:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enabled := make(map[config.ServiceMode]bool, len(tt.modes))
			for _, mode := range tt.modes {
				enabled[mode] = true
			}

			assert.Equal(t, tt.want, errorChannelCapacity(enabled))
			assert.Equal(t, tt.want+1, errorChannelBufferSize(enabled))
		})
	}
}

func TestGetEnabledServices(t *testing.T) {
	assert.Equal(t, []string{"http", "reaper"}, GetEnabledServices(testAppConfig("reaper,http")))
	assert.Empty(t, GetEnabledServices(&config.AppConfig{Services: "bogus"}))
	assert.Empty(t, GetEnabledServices(nil))
}

func TestValidateServiceConfig(t *testing.T) {
	require.NoError(t, ValidateServiceConfig(testAppConfig("http")))
	require.Error(t, ValidateServiceConfig(&config.AppConfig{Services: "scheduler"}))
	require.Error(t, ValidateServiceConfig(nil))
}

func TestNewServices_MemoryStoreDemoGateway(t *testing.T) {
	ctx := context.Background()
	cfg := testAppConfig("http,reaper")

	stores, err := OpenJobStore(ctx, cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })
	assert.NotNil(t, stores.Reaper, "memory store is reaped")
	assert.Nil(t, stores.Health)

	services, err := NewServices(ctx, &ServiceDeps{Config: cfg, Stores: stores, Logger: quietLogger()})
	require.NoError(t, err)
	assert.NotNil(t, services.Pipeline)
	assert.NotNil(t, services.Pool)
	assert.Equal(t, "demo", services.Gateway.Provider())
	assert.False(t, services.Gateway.Configured())
	require.NotNil(t, services.FallbackGateway)
	assert.NotSame(t, services.Gateway, services.FallbackGateway)
	assert.Nil(t, services.Observability.MetricsHandler)

	rs := routerServices(cfg, services, quietLogger())
	assert.Same(t, services.Gateway, rs.Gateway)
	assert.Same(t, services.FallbackGateway, rs.FallbackGateway)
	assert.Nil(t, rs.Health)
	assert.Nil(t, rs.Metrics)
}

func TestNewServices_MetricsEnabled(t *testing.T) {
	ctx := context.Background()
	cfg := testAppConfig("http")
	cfg.Observability.Metrics.Enabled = true
	cfg.Observability.Metrics.Path = "/internal/metrics"

	stores, err := OpenJobStore(ctx, cfg, quietLogger())
	require.NoError(t, err)

	services, err := NewServices(ctx, &ServiceDeps{Config: cfg, Stores: stores, Logger: quietLogger()})
	require.NoError(t, err)
	require.NotNil(t, services.Observability.MetricsHandler)

	rs := routerServices(cfg, services, quietLogger())
	assert.NotNil(t, rs.Metrics)
	assert.Equal(t, "/internal/metrics", rs.MetricsPath)
}

func TestRunServicesWithShutdown_StopsOnSignal(t *testing.T) {
	ctx := context.Background()
	cfg := testAppConfig("reaper")

	stores, err := OpenJobStore(ctx, cfg, quietLogger())
	require.NoError(t, err)
	services, err := NewServices(ctx, &ServiceDeps{Config: cfg, Stores: stores, Logger: quietLogger()})
	require.NoError(t, err)

	signals := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() {
		done <- RunServicesWithShutdown(&ServiceOrchestrationConfig{
			Config:   cfg,
			Services: services,
			Logger:   quietLogger(),
			Signals:  signals,
		})
	}()

	signals <- os.Interrupt
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("services did not stop")
	}
}

func TestRunServicesWithShutdown_RequiresConfig(t *testing.T) {
	require.Error(t, RunServicesWithShutdown(nil))
	require.Error(t, RunServicesWithShutdown(&ServiceOrchestrationConfig{}))
}
