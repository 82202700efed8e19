// Command nsmd runs the network storage location daemon.
package main

import (
	"fmt"
	"os"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/cmd/nsmd/commands"
)

// Set with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version, commands.Commit, commands.Date = version, commit, date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "nsmd:", err)
		os.Exit(1)
	}
}
