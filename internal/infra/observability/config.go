// Package observability wires OpenTelemetry tracing and Prometheus
// metrics for the cabin service.
package observability

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ObservabilityConfig contains configuration for tracing and metrics.
type ObservabilityConfig struct {
	Enabled     bool   `env:"OBSERVABILITY_ENABLED" envDefault:"true"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"elevator-cabin"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Version     string `env:"SERVICE_VERSION" envDefault:"1.0.0"`

	OTel    OTelConfig    `envPrefix:"OTEL_"`
	Metrics MetricsConfig `envPrefix:"METRICS_"`
	Tracing TracingConfig `envPrefix:"TRACING_"`
}

// OTelConfig contains OpenTelemetry-specific configuration.
type OTelConfig struct {
	Enabled            bool          `env:"ENABLED" envDefault:"true"`
	ExporterEndpoint   string        `env:"EXPORTER_ENDPOINT" envDefault:""`
	ExporterTimeout    time.Duration `env:"EXPORTER_TIMEOUT" envDefault:"10s"`
	ResourceAttributes string        `env:"RESOURCE_ATTRIBUTES" envDefault:""`
	SamplingRatio      float64       `env:"SAMPLING_RATIO" envDefault:"1.0"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled      bool   `env:"ENABLED" envDefault:"true"`
	Namespace    string `env:"NAMESPACE" envDefault:"elevator"`
	Path         string `env:"PATH" envDefault:"/metrics"`
	CustomLabels string `env:"CUSTOM_LABELS" envDefault:""`
}

// TracingConfig contains tracing-specific configuration.
type TracingConfig struct {
	Enabled       bool          `env:"ENABLED" envDefault:"true"`
	SamplingRatio float64       `env:"SAMPLING_RATIO" envDefault:"1.0"`
	MaxAttributes int           `env:"MAX_ATTRIBUTES" envDefault:"64"`
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// LoadObservabilityConfig loads observability configuration from environment variables.
func LoadObservabilityConfig() (*ObservabilityConfig, error) {
	config := &ObservabilityConfig{
		Enabled:     getBoolEnv("OBSERVABILITY_ENABLED", true),
		ServiceName: getStringEnv("SERVICE_NAME", "elevator-cabin"),
		Environment: getStringEnv("ENVIRONMENT", "development"),
		Version:     getStringEnv("SERVICE_VERSION", "1.0.0"),
	}

	if err := loadOTelConfig(&config.OTel); err != nil {
		return nil, fmt.Errorf("failed to load OpenTelemetry config: %w", err)
	}
	if err := loadMetricsConfig(&config.Metrics); err != nil {
		return nil, fmt.Errorf("failed to load metrics config: %w", err)
	}
	if err := loadTracingConfig(&config.Tracing); err != nil {
		return nil, fmt.Errorf("failed to load tracing config: %w", err)
	}

	return config, nil
}

func loadOTelConfig(cfg *OTelConfig) error {
	cfg.Enabled = getBoolEnv("OTEL_ENABLED", true)
	cfg.ExporterEndpoint = getStringEnv("OTEL_EXPORTER_ENDPOINT", "")
	cfg.ExporterTimeout = getDurationEnv("OTEL_EXPORTER_TIMEOUT", 10*time.Second)
	cfg.ResourceAttributes = getStringEnv("OTEL_RESOURCE_ATTRIBUTES", "")
	cfg.SamplingRatio = getFloat64Env("OTEL_SAMPLING_RATIO", 1.0)
	return nil
}

func loadMetricsConfig(cfg *MetricsConfig) error {
	cfg.Enabled = getBoolEnv("METRICS_ENABLED", true)
	cfg.Namespace = getStringEnv("METRICS_NAMESPACE", "elevator")
	cfg.Path = getStringEnv("METRICS_PATH", "/metrics")
	cfg.CustomLabels = getStringEnv("METRICS_CUSTOM_LABELS", "")
	return nil
}

func loadTracingConfig(cfg *TracingConfig) error {
	cfg.Enabled = getBoolEnv("TRACING_ENABLED", true)
	cfg.SamplingRatio = getFloat64Env("TRACING_SAMPLING_RATIO", 1.0)
	cfg.MaxAttributes = getIntEnv("TRACING_MAX_ATTRIBUTES", 64)
	cfg.Timeout = getDurationEnv("TRACING_TIMEOUT", 10*time.Second)
	return nil
}

func getStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloat64Env(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetResourceAttributes returns OpenTelemetry resource attributes.
func (c *ObservabilityConfig) GetResourceAttributes() map[string]string {
	attrs := map[string]string{
		"service.name":           c.ServiceName,
		"service.version":        c.Version,
		"deployment.environment": c.Environment,
	}

	if c.OTel.ResourceAttributes != "" {
		pairs := strings.Split(c.OTel.ResourceAttributes, ",")
		for _, pair := range pairs {
			parts := strings.SplitN(pair, "=", 2)
			if len(parts) == 2 {
				attrs[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
			}
		}
	}

	return attrs
}

// GetCustomLabels returns custom metrics labels as a map.
func (c *MetricsConfig) GetCustomLabels() map[string]string {
	labels := make(map[string]string)

	if c.CustomLabels != "" {
		pairs := strings.Split(c.CustomLabels, ",")
		for _, pair := range pairs {
			parts := strings.SplitN(pair, "=", 2)
			if len(parts) == 2 {
				labels[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
			}
		}
	}

	return labels
}

// Validate validates the observability configuration.
func (c *ObservabilityConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.ServiceName == "" {
		return fmt.Errorf("service name cannot be empty")
	}

	if c.OTel.SamplingRatio < 0.0 || c.OTel.SamplingRatio > 1.0 {
		return fmt.Errorf("OpenTelemetry sampling ratio must be between 0.0 and 1.0")
	}

	if c.Tracing.SamplingRatio < 0.0 || c.Tracing.SamplingRatio > 1.0 {
		return fmt.Errorf("tracing sampling ratio must be between 0.0 and 1.0")
	}

	return nil
}
