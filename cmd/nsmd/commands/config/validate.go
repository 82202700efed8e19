package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check a configuration file for syntax errors, missing required fields
and invalid values.

Examples:
  nsmd config validate
  nsmd config validate --config /etc/nsmd/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configPath(cmd)
	cfg, err := config.MustLoad(path)
	if err != nil {
		return err
	}
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	var warnings []string
	if cfg.API.IsEnabled() && cfg.API.Auth.JWTSecret == "" {
		warnings = append(warnings, "api.auth.jwt_secret not set: the HTTP API accepts unauthenticated requests")
	}
	if len(cfg.Launcher.RootLocationCommand) == 0 {
		warnings = append(warnings, "launcher.root_location_command not set: root location requests report failure")
	}
	if len(cfg.Launcher.ShareManagerCommand) == 0 {
		warnings = append(warnings, "launcher.share_manager_command not set: share manager requests only log")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", path)
	_, _ = fmt.Fprintln(out, "Validation: OK")
	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintln(out, "\nSummary:")
	_, _ = fmt.Fprintf(out, "  Store:     %s\n", cfg.Store.Type)
	_, _ = fmt.Fprintf(out, "  Files:     %s\n", cfg.Files.Root)
	_, _ = fmt.Fprintf(out, "  API:       enabled=%t port=%d\n", cfg.API.IsEnabled(), cfg.API.Port)
	_, _ = fmt.Fprintf(out, "  Metrics:   enabled=%t port=%d\n", cfg.Metrics.Enabled, cfg.Metrics.Port)
	_, _ = fmt.Fprintf(out, "  Telemetry: enabled=%t\n", cfg.Telemetry.Enabled)
	return nil
}
