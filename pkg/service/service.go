// Package service assembles the location registry, the share adapter and
// the request dispatcher into one running unit, and owns their lifecycle:
// the registry is loaded from the preference store at start and written
// back at shutdown.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/logger"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/dispatch"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/files"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/launcher"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/location"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/prefs"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/share"
)

// Deps are the collaborators a Service is built from. Store and Files are
// required.
type Deps struct {
	Store        prefs.Store
	LocationsKey string
	SharesKey    string

	Files    *files.Manager
	Launcher *launcher.Launcher
	Elevator *launcher.Elevator
	Strings  dispatch.StringResources
	Metrics  dispatch.Metrics
}

// Service is a running location service.
type Service struct {
	store        prefs.Store
	locationsKey string
	files        *files.Manager
	shares       *share.Adapter
	dispatcher   *dispatch.Dispatcher

	closeOnce sync.Once
	closeErr  error
}

// New loads the registry from the store and wires the dispatcher. A
// missing or malformed stored registry starts from the default set.
func New(ctx context.Context, deps Deps) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("service: store is required")
	}
	if deps.Files == nil {
		return nil, errors.New("service: file manager is required")
	}
	if deps.LocationsKey == "" {
		deps.LocationsKey = location.DefaultStoreKey
	}

	registry := location.NewRegistry(location.Load(ctx, deps.Store, deps.LocationsKey), nil)

	// A nil *launcher.Launcher must not reach the interface-typed fields.
	var ui share.ManagerLauncher
	var root dispatch.RootLauncher
	if deps.Launcher != nil {
		ui = deps.Launcher
		root = deps.Launcher
	}
	var elevator dispatch.Elevator
	if deps.Elevator != nil {
		elevator = deps.Elevator
	}

	shares := share.NewAdapter(deps.Store, deps.SharesKey, ui)

	d, err := dispatch.New(dispatch.Deps{
		Registry: registry,
		Files:    deps.Files,
		Shares:   shares,
		Cache:    deps.Files.Cache(),
		Launcher: root,
		Elevator: elevator,
		Strings:  deps.Strings,
		Metrics:  deps.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("create dispatcher: %w", err)
	}

	logger.Info("Location service ready",
		logger.KeyEntries, registry.Len(),
		logger.KeyStoreKey, deps.LocationsKey)

	return &Service{
		store:        deps.Store,
		locationsKey: deps.LocationsKey,
		files:        deps.Files,
		shares:       shares,
		dispatcher:   d,
	}, nil
}

// Dispatcher returns the request dispatcher.
func (s *Service) Dispatcher() *dispatch.Dispatcher { return s.dispatcher }

// Shares returns the share adapter.
func (s *Service) Shares() *share.Adapter { return s.shares }

// Store returns the preference store.
func (s *Service) Store() prefs.Store { return s.store }

// Save writes the current registry to the store.
func (s *Service) Save(ctx context.Context) error {
	return location.Save(ctx, s.store, s.locationsKey, s.dispatcher.Registry().List())
}

// Close waits for in-flight asynchronous requests until ctx is done, saves
// the registry and releases the file manager and the store. The registry
// is saved even when the wait times out. Close is idempotent.
func (s *Service) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		var errs []error

		if err := s.dispatcher.Wait(ctx); err != nil {
			logger.Warn("Shutting down with requests still in flight",
				logger.KeyInFlight, len(s.dispatcher.InFlight()), logger.Err(err))
		}

		// The wait may have consumed ctx; the final save gets its own.
		if err := s.Save(context.WithoutCancel(ctx)); err != nil {
			errs = append(errs, fmt.Errorf("save registry: %w", err))
		}
		if err := s.files.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close file manager: %w", err))
		}
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}

		s.closeErr = errors.Join(errs...)
		if s.closeErr != nil {
			logger.Error("Location service shutdown error", logger.Err(s.closeErr))
		} else {
			logger.Info("Location service stopped")
		}
	})
	return s.closeErr
}
