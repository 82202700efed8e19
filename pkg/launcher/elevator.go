package launcher

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultElevationCommand checks for non-interactive root access.
var DefaultElevationCommand = []string{"sudo", "-n", "true"}

// ElevatorConfig configures privilege elevation.
type ElevatorConfig struct {
	Command []string      `mapstructure:"command" yaml:"command"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Elevator runs the elevation command and waits for it.
type Elevator struct {
	cfg ElevatorConfig
}

// NewElevator returns an Elevator. Missing settings fall back to
// DefaultElevationCommand and a 10s timeout.
func NewElevator(cfg ElevatorConfig) *Elevator {
	if len(cfg.Command) == 0 {
		cfg.Command = DefaultElevationCommand
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Elevator{cfg: cfg}
}

// Acquire runs the elevation command. A non-zero exit is returned as an
// error carrying the command output.
func (e *Elevator) Acquire(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, e.cfg.Command[0], e.cfg.Command[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("elevation %q failed: %w: %s", strings.Join(e.cfg.Command, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}
