package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/cli/output"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/cli/prompt"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/location"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/share"
)

var (
	sharesOutput string

	addName     string
	addAddress  string
	addType     string
	addPort     int
	addUsername string
	addPassword string

	removeForce bool
)

var connectionTypes = []string{location.ConnSMB, location.ConnFTP, location.ConnFTPS, location.ConnSFTP}

var sharesCmd = &cobra.Command{
	Use:   "shares",
	Short: "Manage saved network shares",
}

var sharesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved shares",
	RunE:  runSharesList,
}

var sharesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a network share",
	Long: `Save a network share. Missing values are asked for interactively.
Without --username the share is saved for anonymous access.

Examples:
  nsmd shares add
  nsmd shares add --name Media --address smb://192.168.1.10/media
  nsmd shares add --name Backup --address sftp://nas.local/backup --type SFTP --username alice`,
	RunE: runSharesAdd,
}

var sharesRemoveCmd = &cobra.Command{
	Use:   "remove <address>",
	Short: "Remove every saved share with the given address",
	Args:  cobra.ExactArgs(1),
	RunE:  runSharesRemove,
}

func init() {
	sharesListCmd.Flags().StringVarP(&sharesOutput, "output", "o", "table", "Output format (table|json|yaml)")

	f := sharesAddCmd.Flags()
	f.StringVar(&addName, "name", "", "Display name")
	f.StringVar(&addAddress, "address", "", "Share address, e.g. smb://host/folder")
	f.StringVar(&addType, "type", "", "Connection type (SMB|FTP|FTPS|SFTP)")
	f.IntVar(&addPort, "port", 0, "Port (default: the protocol's well-known port)")
	f.StringVar(&addUsername, "username", "", "User name (omit for anonymous access)")
	f.StringVar(&addPassword, "password", "", "Password (prompted when a username is given)")

	sharesRemoveCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Skip confirmation")

	sharesCmd.AddCommand(sharesListCmd, sharesAddCmd, sharesRemoveCmd)
}

func runSharesList(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(sharesOutput)
	if err != nil {
		return err
	}
	cfg, store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records := share.NewAdapter(store, cfg.Store.SharesKey, nil).Records(cmd.Context())
	if format == output.FormatTable {
		return output.PrintTable(cmd.OutOrStdout(), shareTable(records))
	}
	return output.Print(cmd.OutOrStdout(), format, records)
}

func runSharesAdd(cmd *cobra.Command, args []string) error {
	rec, err := collectShare(cmd)
	if err != nil {
		if prompt.IsAborted(err) {
			return errors.New("cancelled")
		}
		return err
	}

	cfg, store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := share.NewAdapter(store, cfg.Store.SharesKey, nil).SaveShare(cmd.Context(), rec); err != nil {
		return fmt.Errorf("save share: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Share %q saved (%s)\n", rec.Name, rec.Address)
	return nil
}

// collectShare builds a record from flags, prompting for what is missing
func collectShare(cmd *cobra.Command) (share.Record, error) {
	var err error
	name, address, connType := addName, addAddress, strings.ToUpper(addType)

	if name == "" {
		if name, err = prompt.Required("Name"); err != nil {
			return share.Record{}, err
		}
	}
	if address == "" {
		if address, err = prompt.Required("Address"); err != nil {
			return share.Record{}, err
		}
	}
	schemeType := typeFromAddress(address)
	if schemeType == "" {
		return share.Record{}, fmt.Errorf("unsupported address %q: expected smb://, cifs://, ftp://, ftps:// or sftp://", address)
	}
	if connType == "" {
		connType = schemeType
	}
	if !isConnectionType(connType) {
		if connType, err = prompt.Choose("Connection type", connectionTypes); err != nil {
			return share.Record{}, err
		}
	}

	rec := share.NewRecord(name, address, connType)
	if cmd.Flags().Changed("port") {
		rec.Port = addPort
	}
	if rec.Port < 1 || rec.Port > 65535 {
		return share.Record{}, fmt.Errorf("port %d out of range", rec.Port)
	}

	if addUsername != "" {
		rec.Anonymous = false
		rec.Username = addUsername
		rec.Password = addPassword
		if !cmd.Flags().Changed("password") {
			if rec.Password, err = prompt.Password("Password"); err != nil {
				return share.Record{}, err
			}
		}
	}
	return rec, nil
}

func runSharesRemove(cmd *cobra.Command, args []string) error {
	address := args[0]
	if !removeForce {
		ok, err := prompt.Confirm(fmt.Sprintf("Remove shares at %s", address))
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
			return nil
		}
	}

	cfg, store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	n, err := share.NewAdapter(store, cfg.Store.SharesKey, nil).RemoveShare(cmd.Context(), address)
	if err != nil {
		return fmt.Errorf("remove share: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d share(s)\n", n)
	return nil
}

func typeFromAddress(address string) string {
	scheme, _, _ := strings.Cut(address, "://")
	switch strings.ToLower(scheme) {
	case "smb", "cifs":
		return location.ConnSMB
	case "ftp":
		return location.ConnFTP
	case "ftps":
		return location.ConnFTPS
	case "sftp":
		return location.ConnSFTP
	}
	return ""
}

func isConnectionType(s string) bool {
	for _, t := range connectionTypes {
		if s == t {
			return true
		}
	}
	return false
}

type shareTable []share.Record

func (t shareTable) Headers() []string {
	return []string{"NAME", "ADDRESS", "TYPE", "PORT", "USER"}
}

func (t shareTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		user := "(anonymous)"
		if !r.Anonymous {
			user = r.Username
		}
		rows = append(rows, []string{r.Name, r.Address, r.ConnectionType, strconv.Itoa(r.Port), user})
	}
	return rows
}
