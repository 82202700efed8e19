// Package config implements the configuration subcommands
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the config subcommand
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Inspect and check nsmd configuration files.

Use 'nsmd init' to create a new configuration file.`,
}

func init() {
	Cmd.AddCommand(showCmd, validateCmd, schemaCmd)
}

func configPath(cmd *cobra.Command) string {
	p, _ := cmd.Flags().GetString("config")
	return p
}
