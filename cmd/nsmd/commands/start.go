package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/logger"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/telemetry"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/api"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/api/auth"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/config"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/metrics"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/metrics/prometheus"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/service"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the nsmd daemon",
	Long: `Start the location service and its HTTP API in the foreground.

The location list is loaded from the preference store at start and saved
back on shutdown (SIGINT or SIGTERM). Logging level and format follow
edits to the configuration file while running.

Examples:
  nsmd start
  nsmd start --config /etc/nsmd/config.yaml
  NSMD_LOGGING_LEVEL=DEBUG nsmd start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryCfg := cfg.Telemetry.Config
	telemetryCfg.ServiceVersion = Version
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("Telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingCfg := cfg.Telemetry.Profiling
	profilingCfg.ServiceVersion = Version
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("Profiling shutdown error", logger.Err(err))
		}
	}()

	configPath := resolveConfigPath()
	logger.Info("Configuration loaded", "source", configSource(configPath),
		"level", cfg.Logging.Level, "format", cfg.Logging.Format)
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		if metricsServer, err = metrics.NewServer(cfg.Metrics.Port); err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
	} else {
		logger.Info("Metrics collection disabled")
	}

	svc, err := service.FromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to start location service: %w", err)
	}

	deps := api.RouterDeps{
		Dispatcher: svc.Dispatcher(),
		Store:      svc.Store(),
		Metrics:    prometheus.NewHTTPMetrics(),
	}
	if cfg.API.Auth.JWTSecret != "" {
		tokens, err := auth.NewJWTService(auth.JWTConfig{
			Secret:        cfg.API.Auth.JWTSecret,
			Issuer:        cfg.API.Auth.Issuer,
			TokenDuration: cfg.API.Auth.TokenDuration,
		})
		if err != nil {
			_ = svc.Close(ctx)
			return fmt.Errorf("failed to configure API authentication: %w", err)
		}
		deps.Tokens = tokens
		logger.Info("API authentication enabled", "issuer", cfg.API.Auth.Issuer)
	} else {
		logger.Warn("API authentication disabled, set api.auth.jwt_secret to enable it")
	}

	if configPath != "" {
		if err := config.Watch(configPath, applyReload); err != nil {
			logger.Warn("Configuration watch disabled", logger.Err(err))
		}
	}

	errCh := make(chan error, 2)
	var apiServer *api.Server
	if cfg.API.IsEnabled() {
		apiServer = api.NewServer(cfg.API, deps)
		go func() { errCh <- apiServer.Start(ctx) }()
	} else {
		logger.Info("HTTP API disabled")
	}
	if metricsServer != nil {
		go func() { errCh <- metricsServer.Start(ctx) }()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	logger.Info("nsmd is running. Press Ctrl+C to stop.")

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case runErr = <-errCh:
		if runErr != nil {
			logger.Error("Server error", logger.Err(runErr))
		}
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer stop()

	if apiServer != nil {
		if err := apiServer.Stop(shutdownCtx); err != nil {
			logger.Error("API server shutdown error", logger.Err(err))
		}
	}
	if err := svc.Close(shutdownCtx); err != nil {
		return err
	}
	logger.Info("nsmd stopped")
	return runErr
}

// applyReload carries the live-reloadable settings of a changed
// configuration into the running process.
func applyReload(cfg *config.Config) {
	if cfg.Logging.Level != logger.GetLevel() {
		logger.SetLevel(cfg.Logging.Level)
		logger.Info("Log level changed", "level", cfg.Logging.Level)
	}
	logger.SetFormat(cfg.Logging.Format)
}

func configSource(path string) string {
	if path == "" {
		return "defaults"
	}
	return path
}
