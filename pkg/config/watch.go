package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/logger"
)

// Watch re-reads the configuration file whenever it changes and passes the
// reloaded, validated configuration to onChange. Edits that fail
// validation are logged and skipped. The watch lasts for the life of the
// process.
func Watch(configPath string, onChange func(*Config)) error {
	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			logger.Warn("Ignoring invalid configuration change", "file", e.Name, logger.Err(err))
			return
		}
		logger.Info("Configuration reloaded", "file", e.Name, "op", e.Op.String())
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}
