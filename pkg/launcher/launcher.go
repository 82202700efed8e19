// Package launcher starts the external surfaces the service hands control
// to: the "add root location" flow, the share manager, and the privilege
// elevation helper. Each surface is a configured command line.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/logger"
)

// ErrUnavailable means the surface is not configured or its program is not
// installed.
var ErrUnavailable = errors.New("launcher: surface unavailable")

// Config lists the command line of each surface. An empty command leaves
// the surface unavailable.
type Config struct {
	RootLocationCommand []string `mapstructure:"root_location_command" yaml:"root_location_command"`
	ShareManagerCommand []string `mapstructure:"share_manager_command" yaml:"share_manager_command"`
}

// Launcher starts UI surfaces without waiting for them to exit.
type Launcher struct {
	cfg Config
}

// New returns a Launcher for cfg.
func New(cfg Config) *Launcher {
	return &Launcher{cfg: cfg}
}

// LaunchRootLocation opens the flow that adds a root filesystem location.
func (l *Launcher) LaunchRootLocation(ctx context.Context) error {
	return start(ctx, "root_location", l.cfg.RootLocationCommand)
}

// OpenShareManager opens the share configuration surface.
func (l *Launcher) OpenShareManager(ctx context.Context) error {
	return start(ctx, "share_manager", l.cfg.ShareManagerCommand)
}

// start launches argv detached from ctx; the child is reaped in the
// background.
func start(ctx context.Context, surface string, argv []string) error {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return fmt.Errorf("%s: %w", surface, ErrUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%s: %w: %v", surface, ErrUnavailable, err)
		}
		return fmt.Errorf("%s: start %s: %w", surface, argv[0], err)
	}

	logger.InfoCtx(ctx, "Surface launched", "surface", surface, logger.KeyCommand, strings.Join(argv, " "), "pid", cmd.Process.Pid)
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Debug("Surface exited", "surface", surface, logger.Err(err))
		}
	}()
	return nil
}
