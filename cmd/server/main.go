package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kkuyev/elevator-cabin/internal/constants"
	"github.com/kkuyev/elevator-cabin/internal/controller"
	"github.com/kkuyev/elevator-cabin/internal/hardware"
	httpPkg "github.com/kkuyev/elevator-cabin/internal/http"
	"github.com/kkuyev/elevator-cabin/internal/infra/config"
	"github.com/kkuyev/elevator-cabin/internal/infra/logging"
	"github.com/kkuyev/elevator-cabin/internal/infra/observability"
	"github.com/kkuyev/elevator-cabin/internal/resilience"
)

func main() {
	cfg, err := config.InitConfig()
	if err != nil {
		slog.Error("failed to initialize configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logging.InitLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	envInfo := cfg.GetEnvironmentInfo()
	slog.InfoContext(ctx, "cabin control system starting up",
		slog.String("environment", cfg.Environment),
		slog.String("log_level", cfg.LogLevel),
		slog.Int("port", cfg.Port),
		slog.Bool("metrics_enabled", cfg.MetricsEnabled),
		slog.Bool("websocket_enabled", cfg.WebSocketEnabled),
		slog.Bool("circuit_breaker_enabled", cfg.CircuitBreakerEnabled),
		slog.Any("config_summary", envInfo))

	metrics := observability.NewMetrics("elevator")

	obsCfg, err := observability.LoadObservabilityConfig()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load observability configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := obsCfg.Validate(); err != nil {
		slog.ErrorContext(ctx, "invalid observability configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	telemetryProvider, err := observability.NewTelemetryProvider(obsCfg, metrics, slog.With(slog.String("component", "telemetry")))
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize telemetry provider", slog.String("error", err.Error()))
		os.Exit(1)
	}

	breaker := resilience.NewCircuitBreaker(
		cfg.CircuitBreakerMaxFailures,
		cfg.CircuitBreakerResetTimeout,
		cfg.CircuitBreakerHalfOpenLimit,
	)

	startFloor := cfg.MinFloor
	sim := hardware.NewSimulator(
		cfg.MinFloor, cfg.MaxFloor, startFloor,
		cfg.EachFloorDuration, cfg.OpenDoorDuration, cfg.OperationTimeout,
		breaker,
		slog.With(slog.String("component", constants.ComponentHardware)),
	)
	defer sim.Close()

	ctrl := controller.New(cfg.MinFloor, cfg.MaxFloor, sim, slog.With(slog.String("component", constants.ComponentController)))
	defer ctrl.Destroy()

	port := cfg.Port
	if port <= 0 {
		slog.WarnContext(ctx, "invalid port in configuration, using default",
			slog.Int("configured_port", port),
			slog.Int("default_port", 6660))
		port = 6660
	}

	server := httpPkg.NewServer(cfg, port, ctrl, breaker, metrics)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)

	go func() {
		slog.InfoContext(ctx, "starting HTTP server",
			slog.Int("port", port),
			slog.String("environment", cfg.Environment),
			slog.Duration("read_timeout", cfg.ReadTimeout),
			slog.Duration("write_timeout", cfg.WriteTimeout),
			slog.Duration("idle_timeout", cfg.IdleTimeout))

		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "HTTP server failed to start",
				slog.Int("port", port),
				slog.String("error", err.Error()))
			serverErrCh <- err
		}
	}()

	startupTimer := time.NewTimer(2 * time.Second)

	select {
	case err := <-serverErrCh:
		startupTimer.Stop()
		slog.ErrorContext(ctx, "server startup failed", slog.String("error", err.Error()))
		shutdownAll(ctx, server, telemetryProvider, cfg)
		os.Exit(1)

	case <-startupTimer.C:
		slog.InfoContext(ctx, "HTTP server started successfully")

	case sig := <-quit:
		startupTimer.Stop()
		slog.InfoContext(ctx, "received shutdown signal during startup",
			slog.String("signal", sig.String()))
		shutdownAll(ctx, server, telemetryProvider, cfg)
		return
	}

	sig := <-quit
	slog.InfoContext(ctx, "received shutdown signal",
		slog.String("signal", sig.String()),
		slog.Duration("shutdown_timeout", cfg.ShutdownTimeout))

	cancel()
	shutdownAll(ctx, server, telemetryProvider, cfg)

	time.Sleep(cfg.ShutdownGrace)
	slog.InfoContext(ctx, "graceful shutdown completed", slog.Duration("grace_period", cfg.ShutdownGrace))
}

// shutdownAll gracefully shuts down the HTTP server and the telemetry provider.
func shutdownAll(ctx context.Context, server *httpPkg.Server, telemetryProvider *observability.TelemetryProvider, cfg *config.Config) {
	slog.InfoContext(ctx, "shutting down servers gracefully")

	if err := server.Shutdown(); err != nil {
		slog.ErrorContext(ctx, "HTTP server shutdown failed", slog.String("error", err.Error()))
	} else {
		slog.InfoContext(ctx, "HTTP server shutdown completed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "telemetry provider shutdown failed", slog.String("error", err.Error()))
	}
}
