package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/cli/output"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/location"
)

var locationsOutput string

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Inspect the stored location list",
}

var locationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored locations",
	Long: `List the locations persisted in the preference store. A store with no
list (or an unreadable one) shows the default set the daemon would start
from.

Examples:
  nsmd locations list
  nsmd locations list -o json`,
	RunE: runLocationsList,
}

func init() {
	locationsListCmd.Flags().StringVarP(&locationsOutput, "output", "o", "table", "Output format (table|json|yaml)")
	locationsCmd.AddCommand(locationsListCmd)
}

func runLocationsList(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(locationsOutput)
	if err != nil {
		return err
	}
	cfg, store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries := location.Load(cmd.Context(), store, cfg.Store.LocationsKey)
	if format == output.FormatTable {
		return output.PrintTable(cmd.OutOrStdout(), locationTable(entries))
	}
	return output.Print(cmd.OutOrStdout(), format, entries)
}

type locationTable []location.Entry

func (t locationTable) Headers() []string {
	return []string{"ID", "NAME", "ADDRESS", "TYPE", "PORT", "ANONYMOUS"}
}

func (t locationTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, e := range t {
		rows = append(rows, []string{
			strconv.FormatInt(e.ServerID, 10),
			e.ServerName,
			e.ServerAddr,
			e.ConnectionType,
			strconv.Itoa(e.ServerPort),
			strconv.FormatBool(e.IsAnonymousMode),
		})
	}
	return rows
}
