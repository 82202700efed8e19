package commands

import (
	"fmt"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/config"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/prefs"
)

// openStore loads the configuration and opens its preference store for an
// offline command. The daemon should not be running against a badger
// store at the same time.
func openStore() (*config.Config, prefs.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := prefs.Open(&cfg.Store.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("open prefs store: %w", err)
	}
	return cfg, store, nil
}
