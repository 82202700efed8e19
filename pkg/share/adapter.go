package share

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/logger"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/files"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/launcher"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/location"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/prefs"
)

// DefaultStoreKey is the preference key holding the share list.
const DefaultStoreKey = "cifs_shares"

// CategoryTag marks entries produced from saved shares.
const CategoryTag = "cifs_shares"

const namePrefix = "  📁 "

var (
	// ErrUnknownScheme is returned for addresses with no recognized scheme.
	ErrUnknownScheme = errors.New("share: unknown address scheme")

	shareSchemes = []string{"smb://", "cifs://", "ftp://", "ftps://", "sftp://"}

	// placeholderChildren is the listing served for any reachable share.
	placeholderChildren = []string{"Documents", "Pictures"}
)

// ManagerLauncher opens the share configuration surface.
type ManagerLauncher interface {
	OpenShareManager(ctx context.Context) error
}

// Adapter converts saved share records into location entries and answers
// share browsing requests.
type Adapter struct {
	store prefs.Store
	key   string
	ui    ManagerLauncher
	now   func() time.Time
}

// NewAdapter returns an Adapter persisting under key ("cifs_shares" when
// empty). ui may be nil, in which case OpenManager only logs.
func NewAdapter(store prefs.Store, key string, ui ManagerLauncher) *Adapter {
	if key == "" {
		key = DefaultStoreKey
	}
	return &Adapter{store: store, key: key, ui: ui, now: time.Now}
}

// Records returns the saved share records. Nothing stored yields an empty
// list; an unreadable list yields the example records.
func (a *Adapter) Records(ctx context.Context) []Record {
	data, err := a.store.Get(ctx, a.key)
	if errors.Is(err, prefs.ErrNotFound) {
		return []Record{}
	}
	if err != nil {
		logger.Warn("Failed to read share list, using defaults", logger.KeyStoreKey, a.key, logger.Err(err))
		return defaultRecords()
	}

	var records []Record
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		logger.Warn("Malformed share list, using defaults", logger.KeyStoreKey, a.key, logger.Err(err))
		return defaultRecords()
	}
	if records == nil {
		records = []Record{}
	}
	return records
}

func (a *Adapter) saveRecords(ctx context.Context, records []Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode share list: %w", err)
	}
	if err := a.store.Set(ctx, a.key, string(data)); err != nil {
		return fmt.Errorf("store share list: %w", err)
	}
	return nil
}

// ListShares returns the saved shares as location entries. Ids start at
// location.FirstShareEntryID in list order and every entry points at the
// share category.
func (a *Adapter) ListShares(ctx context.Context) []location.Entry {
	records := a.Records(ctx)
	entries := make([]location.Entry, 0, len(records))
	id := location.FirstShareEntryID
	for _, r := range records {
		e := location.Entry{
			ServerID:        id,
			ServerName:      namePrefix + r.Name,
			ServerAddr:      r.Address,
			Category:        CategoryTag,
			ConnectionType:  r.ConnectionType,
			ParentID:        fmt.Sprint(location.ShareCategoryID),
			IsAnonymousMode: r.Anonymous,
			ServerPort:      r.Port,
		}
		if !r.Anonymous {
			e.Username = r.Username
			e.Password = r.Password
		}
		entries = append(entries, e)
		id++
	}
	return entries
}

// SaveShare appends r to the saved list.
func (a *Adapter) SaveShare(ctx context.Context, r Record) error {
	records := append(a.Records(ctx), r)
	if err := a.saveRecords(ctx, records); err != nil {
		return err
	}
	logger.Info("Share saved", logger.KeyShareName, r.Name, logger.KeyServerAddr, r.Address)
	return nil
}

// RemoveShare deletes every saved record with the given address. It reports
// how many were removed.
func (a *Adapter) RemoveShare(ctx context.Context, address string) (int, error) {
	records := a.Records(ctx)
	kept := records[:0]
	for _, r := range records {
		if r.Address != address {
			kept = append(kept, r)
		}
	}
	removed := len(records) - len(kept)
	if err := a.saveRecords(ctx, kept); err != nil {
		return 0, err
	}
	logger.Info("Share removed", logger.KeyServerAddr, address, "removed", removed)
	return removed, nil
}

// AccessShare lists the children of the share at address. Unknown schemes
// yield an empty list. Every child is stamped with serverID and a path of
// address + "/" + name.
//
// TODO: enumerate the share over SMB/FTP instead of serving the fixed
// placeholder children.
func (a *Adapter) AccessShare(ctx context.Context, serverID int64, address string) []files.Info {
	if !knownScheme(address) {
		logger.WarnCtx(ctx, "Cannot access share", logger.KeyServerAddr, address, logger.Err(ErrUnknownScheme))
		return []files.Info{}
	}
	logger.InfoCtx(ctx, "Accessing share", logger.KeyServerAddr, address)

	stamp := a.now().UnixMilli()
	out := make([]files.Info, 0, len(placeholderChildren))
	for _, name := range placeholderChildren {
		out = append(out, files.Info{
			ServerID:     serverID,
			FilePath:     address + "/" + name,
			FileName:     name,
			IsDirectory:  true,
			LastModified: stamp,
		})
	}
	return out
}

// OpenManager hands control to the share configuration surface. A missing
// surface is logged and ignored; any other launch failure is returned.
func (a *Adapter) OpenManager(ctx context.Context) error {
	if a.ui == nil {
		logger.WarnCtx(ctx, "Share manager not configured")
		return nil
	}
	err := a.ui.OpenShareManager(ctx)
	if errors.Is(err, launcher.ErrUnavailable) {
		logger.WarnCtx(ctx, "Share manager not available", logger.Err(err))
		return nil
	}
	return err
}

func knownScheme(address string) bool {
	for _, s := range shareSchemes {
		if strings.HasPrefix(address, s) {
			return true
		}
	}
	return false
}
