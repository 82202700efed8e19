package config

import (
	"strings"
	"time"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/telemetry"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/files"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/launcher"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/location"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/metrics"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/share"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields. Zero values are replaced; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyShutdownTimeoutDefaults(cfg)
	applyStoreDefaults(&cfg.Store)
	applyMetricsDefaults(&cfg.Metrics)
	cfg.API.ApplyDefaults()
	applyFilesDefaults(&cfg.Files)
	applyElevationDefaults(&cfg.Elevation)
}

// applyLoggingDefaults sets logging defaults and normalizes values
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults fills tracing and profiling endpoints. Both stay
// disabled unless enabled explicitly.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	def := telemetry.DefaultConfig()
	if cfg.ServiceName == "" {
		cfg.ServiceName = def.ServiceName
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = def.SampleRate
	}

	prof := telemetry.DefaultProfilingConfig()
	if cfg.Profiling.ServiceName == "" {
		cfg.Profiling.ServiceName = prof.ServiceName
	}
	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = prof.Endpoint
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = prof.ProfileTypes
	}
}

func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyStoreDefaults(cfg *StoreConfig) {
	cfg.ApplyDefaults()
	if cfg.LocationsKey == "" {
		cfg.LocationsKey = location.DefaultStoreKey
	}
	if cfg.SharesKey == "" {
		cfg.SharesKey = share.DefaultStoreKey
	}
}

// applyMetricsDefaults sets the port when metrics are enabled
func applyMetricsDefaults(cfg *metrics.Config) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyFilesDefaults(cfg *files.Config) {
	if cfg.Root == "" {
		cfg.Root = "/"
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = 256
	}
}

func applyElevationDefaults(cfg *launcher.ElevatorConfig) {
	if len(cfg.Command) == 0 {
		cfg.Command = append([]string(nil), launcher.DefaultElevationCommand...)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
}

// GetDefaultConfig returns a Config with all default values applied
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
