// Package observability provides telemetry infrastructure: OpenTelemetry
// tracing plus the Prometheus metrics registered in metrics.go.
package observability

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TelemetryProvider provides a unified interface for tracing and HTTP instrumentation.
type TelemetryProvider struct {
	config  *ObservabilityConfig
	logger  *slog.Logger
	tracer  trace.Tracer
	meter   metric.Meter
	metrics *Metrics

	shutdownFuncs []func(context.Context) error
}

// NewTelemetryProvider creates a new telemetry provider with the given configuration.
func NewTelemetryProvider(config *ObservabilityConfig, metrics *Metrics, logger *slog.Logger) (*TelemetryProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if !config.Enabled {
		return &TelemetryProvider{
			config:  config,
			logger:  logger,
			metrics: metrics,
		}, nil
	}

	provider := &TelemetryProvider{
		config:  config,
		logger:  logger,
		metrics: metrics,
	}

	provider.tracer = otel.Tracer(config.ServiceName)
	provider.meter = otel.Meter(config.ServiceName)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	provider.logger.Info("telemetry provider initialized",
		slog.String("service", config.ServiceName),
		slog.String("version", config.Version),
		slog.String("environment", config.Environment))

	return provider, nil
}

// GetTracer returns the configured tracer.
func (tp *TelemetryProvider) GetTracer() trace.Tracer {
	if tp.tracer == nil {
		return noop.NewTracerProvider().Tracer("noop")
	}
	return tp.tracer
}

// GetMeter returns the configured meter.
func (tp *TelemetryProvider) GetMeter() metric.Meter {
	if tp.meter == nil {
		return otel.Meter("noop")
	}
	return tp.meter
}

// CreateSpan creates a new span with the given name and options.
func (tp *TelemetryProvider) CreateSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if tp.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tp.tracer.Start(ctx, name, opts...)
}

// TelemetryMiddleware provides HTTP middleware for automatic tracing and metrics.
func (tp *TelemetryProvider) TelemetryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tp.CreateSpan(r.Context(), "http_request",
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.url", r.URL.String()),
				),
			)
			defer span.End()

			r = r.WithContext(ctx)

			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			endpoint := sanitizeEndpoint(r.URL.Path)

			span.SetAttributes(
				attribute.Int("http.status_code", wrapped.statusCode),
				attribute.Float64("http.duration_seconds", duration),
			)

			if tp.metrics != nil {
				tp.metrics.RecordHTTPRequest(r.Method, endpoint, fmt.Sprintf("%d", wrapped.statusCode), duration)
			}
		})
	}
}

// Shutdown gracefully shuts down the telemetry provider.
func (tp *TelemetryProvider) Shutdown(ctx context.Context) error {
	var errs []error

	for _, shutdownFunc := range tp.shutdownFuncs {
		if err := shutdownFunc(ctx); err != nil {
			errs = append(errs, err)
			tp.logger.Error("error during telemetry shutdown", slog.String("error", err.Error()))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("telemetry shutdown errors: %v", errs)
	}

	tp.logger.Info("telemetry provider shutdown completed")
	return nil
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker for WebSocket upgrade support.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("ResponseWriter does not implement http.Hijacker")
}

// sanitizeEndpoint sanitizes a URL path for use as a metrics label.
func sanitizeEndpoint(path string) string {
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}

	parts := strings.Split(path, "/")
	for i, part := range parts {
		if len(part) > 0 && isNumeric(part) {
			parts[i] = "{id}"
		}
	}

	return strings.Join(parts, "/")
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
