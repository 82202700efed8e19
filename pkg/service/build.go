package service

import (
	"context"
	"fmt"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/logger"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/config"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/files"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/launcher"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/metrics/prometheus"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/prefs"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/resources"
)

// FromConfig opens every collaborator described by cfg and builds a
// Service over them. Metrics are attached when the metrics registry has
// been initialized.
func FromConfig(ctx context.Context, cfg *config.Config) (*Service, error) {
	store, err := prefs.Open(&cfg.Store.Config)
	if err != nil {
		return nil, fmt.Errorf("open prefs store: %w", err)
	}
	logger.Info("Preference store opened", logger.KeyStoreType, string(cfg.Store.Type))

	mgr, err := files.NewManager(cfg.Files)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create file manager: %w", err)
	}
	mgr.Cache().SetMetrics(prometheus.NewCacheMetrics())

	catalog, err := resources.Load(cfg.Resources.Path)
	if err != nil {
		_ = mgr.Close()
		_ = store.Close()
		return nil, fmt.Errorf("load string resources: %w", err)
	}

	svc, err := New(ctx, Deps{
		Store:        store,
		LocationsKey: cfg.Store.LocationsKey,
		SharesKey:    cfg.Store.SharesKey,
		Files:        mgr,
		Launcher:     launcher.New(cfg.Launcher),
		Elevator:     launcher.NewElevator(cfg.Elevation),
		Strings:      catalog,
		Metrics:      prometheus.NewDispatchMetrics(),
	})
	if err != nil {
		_ = mgr.Close()
		_ = store.Close()
		return nil, err
	}
	return svc, nil
}
