package commands

import (
	"fmt"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/logger"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/config"
)

// InitLogger initializes the structured logger from configuration
func InitLogger(cfg *config.Config) error {
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// resolveConfigPath returns the file a command reads, "" meaning defaults
func resolveConfigPath() string {
	if p := GetConfigFile(); p != "" {
		return p
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return ""
}

// loadConfig loads the configuration for offline commands. Unlike start,
// they run against built-in defaults when no file exists.
func loadConfig() (*config.Config, error) {
	if p := GetConfigFile(); p != "" {
		return config.MustLoad(p)
	}
	return config.Load(resolveConfigPath())
}
