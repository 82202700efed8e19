// Package commands implements the nsmd command line
package commands

import (
	"github.com/spf13/cobra"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/cmd/nsmd/commands/config"
)

var (
	// Version information injected at build time
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "nsmd",
	Short: "Network storage location daemon",
	Long: `nsmd keeps the catalog of network storage locations (FTP, FTPS, SFTP
and SMB servers plus the root and share placeholders) and dispatches
client requests against it over an HTTP API.

Use "nsmd [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/nsmd/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(locationsCmd)
	rootCmd.AddCommand(sharesCmd)
	rootCmd.AddCommand(config.Cmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the --config flag value
func GetConfigFile() string {
	return cfgFile
}
