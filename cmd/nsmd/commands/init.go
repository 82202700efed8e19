package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Write a sample nsmd configuration file.

By default the file is created at $XDG_CONFIG_HOME/nsmd/config.yaml.

Examples:
  nsmd init
  nsmd init --config /etc/nsmd/config.yaml
  nsmd init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()
	var err error
	if path != "" {
		err = config.InitConfigToPath(path, initForce)
	} else {
		path, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", path)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Point files.root at the directory to expose")
	_, _ = fmt.Fprintln(out, "  2. Start the daemon with: nsmd start")
	_, _ = fmt.Fprintln(out, "\nTo require bearer tokens on the API, set a secret of 32+ characters:")
	_, _ = fmt.Fprintln(out, "    export NSMD_API_AUTH_JWT_SECRET=$(openssl rand -hex 32)")
	return nil
}
