// Package config loads the nsmd configuration from file, environment and
// defaults.
package config

import (
	"time"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/telemetry"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/api"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/files"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/launcher"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/metrics"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/prefs"
)

// Config is the nsmd configuration. Environment variables (NSMD_*) take
// precedence over the file, which takes precedence over the defaults.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout bounds the wait for in-flight requests at shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Store selects the preference store holding locations and shares
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	Metrics metrics.Config `mapstructure:"metrics" yaml:"metrics"`

	// API serves the dispatcher over HTTP
	API api.Config `mapstructure:"api" yaml:"api"`

	// Files configures the root-access file manager
	Files files.Config `mapstructure:"files" yaml:"files"`

	// Launcher lists the commands that open the external UI surfaces
	Launcher launcher.Config `mapstructure:"launcher" yaml:"launcher"`

	// Elevation configures the privilege check behind CHECK_PERMISSION
	Elevation launcher.ElevatorConfig `mapstructure:"elevation" yaml:"elevation"`

	// Resources overrides the embedded display strings
	Resources ResourcesConfig `mapstructure:"resources" yaml:"resources"`
}

// LoggingConfig mirrors logger.Config. Level and Format are applied again
// on every configuration reload.
type LoggingConfig struct {
	// DEBUG, INFO, WARN or ERROR. Lower case is accepted and normalized
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// text or json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// stdout, stderr or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls tracing and profiling. Both are opt-in
type TelemetryConfig struct {
	telemetry.Config `mapstructure:",squash" yaml:",inline"`

	Profiling telemetry.ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// StoreConfig selects the preference backend and the keys the location
// and share lists are kept under.
type StoreConfig struct {
	prefs.Config `mapstructure:",squash" yaml:",inline"`

	// LocationsKey holds the persisted location registry.
	// Default: "locations"
	LocationsKey string `mapstructure:"locations_key" yaml:"locations_key"`

	// SharesKey holds the saved share configuration list.
	// Default: "cifs_shares"
	SharesKey string `mapstructure:"shares_key" yaml:"shares_key"`
}

// ResourcesConfig locates the display string overrides
type ResourcesConfig struct {
	// Path is a YAML file of name: string pairs laid over the embedded
	// catalog. Empty uses the embedded catalog only.
	Path string `mapstructure:"path" yaml:"path,omitempty"`
}
