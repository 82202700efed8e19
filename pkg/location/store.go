package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/logger"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/telemetry"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/prefs"
)

// DefaultStoreKey is the preference key holding the location list.
const DefaultStoreKey = "locations"

// Legacy records only carried id, name, address and shared folder. Entries
// reloaded from such a record get these values.
const (
	legacyAnonymous = true
	legacyPort      = 1
)

// record is the persisted shape of an Entry. The first four fields are the
// historical format; the rest are optional so older documents still decode.
type record struct {
	ServerID        int64  `json:"serverId"`
	ServerName      string `json:"serverName"`
	ServerAddr      string `json:"serverAddr"`
	SharedFolder    string `json:"sharedFolder"`
	ConnectionType  string `json:"connectionType,omitempty"`
	ServerType      string `json:"serverType,omitempty"`
	Protocol        string `json:"protocol,omitempty"`
	IsAnonymousMode *bool  `json:"isAnonymousMode,omitempty"`
	ServerPort      *int   `json:"serverPort,omitempty"`
	Username        string `json:"username,omitempty"`
	Password        string `json:"password,omitempty"`
	Category        string `json:"category,omitempty"`
	ParentID        string `json:"parentId,omitempty"`
}

func toRecord(e Entry) record {
	anon, port := e.IsAnonymousMode, e.ServerPort
	return record{
		ServerID:        e.ServerID,
		ServerName:      e.ServerName,
		ServerAddr:      e.ServerAddr,
		SharedFolder:    e.SharedFolder,
		ConnectionType:  e.ConnectionType,
		ServerType:      e.ServerType,
		Protocol:        e.Protocol,
		IsAnonymousMode: &anon,
		ServerPort:      &port,
		Username:        e.Username,
		Password:        e.Password,
		Category:        e.Category,
		ParentID:        e.ParentID,
	}
}

func (r record) entry() Entry {
	e := Entry{
		ServerID:        r.ServerID,
		ServerName:      r.ServerName,
		ServerAddr:      r.ServerAddr,
		SharedFolder:    r.SharedFolder,
		ConnectionType:  r.ConnectionType,
		ServerType:      r.ServerType,
		Protocol:        r.Protocol,
		IsAnonymousMode: legacyAnonymous,
		ServerPort:      legacyPort,
		Username:        r.Username,
		Password:        r.Password,
		Category:        r.Category,
		ParentID:        r.ParentID,
	}
	if r.IsAnonymousMode != nil {
		e.IsAnonymousMode = *r.IsAnonymousMode
	}
	if r.ServerPort != nil {
		e.ServerPort = *r.ServerPort
	}
	return e
}

// Encode serializes entries into the persisted JSON array.
func Encode(entries []Entry) ([]byte, error) {
	records := make([]record, len(entries))
	for i, e := range entries {
		records[i] = toRecord(e)
	}
	return json.Marshal(records)
}

// Decode parses a persisted JSON array. Every element must carry a numeric
// serverId.
func Decode(data []byte) ([]Entry, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("location list is not a JSON array")
	}
	entries := make([]Entry, 0, len(raw))
	for i, elem := range raw {
		var id struct {
			ServerID *int64 `json:"serverId"`
		}
		if err := json.Unmarshal(elem, &id); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if id.ServerID == nil {
			return nil, fmt.Errorf("entry %d: missing serverId", i)
		}
		var r record
		if err := json.Unmarshal(elem, &r); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, r.entry())
	}
	return entries, nil
}

// Load reads the location list stored under key. A missing or malformed
// document yields the default set; the failure is logged, never returned.
func Load(ctx context.Context, store prefs.Store, key string) []Entry {
	ctx, span := telemetry.StartStoreSpan(ctx, "load", key)
	defer span.End()

	data, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, prefs.ErrNotFound) {
			logger.Debug("No stored locations, using defaults", logger.KeyStoreKey, key)
		} else {
			logger.Warn("Failed to read stored locations, using defaults", logger.KeyStoreKey, key, logger.Err(err))
			telemetry.RecordError(ctx, err)
		}
		return DefaultEntries(true)
	}

	entries, err := Decode([]byte(data))
	if err != nil {
		logger.Warn("Malformed stored locations, using defaults", logger.KeyStoreKey, key, logger.Err(err))
		telemetry.RecordError(ctx, err)
		return DefaultEntries(true)
	}

	logger.Debug("Loaded locations", logger.KeyStoreKey, key, logger.KeyEntries, len(entries))
	return entries
}

// Save writes entries under key.
func Save(ctx context.Context, store prefs.Store, key string, entries []Entry) error {
	ctx, span := telemetry.StartStoreSpan(ctx, "save", key)
	defer span.End()

	data, err := Encode(entries)
	if err != nil {
		return fmt.Errorf("encode locations: %w", err)
	}
	if err := store.Set(ctx, key, string(data)); err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("store locations: %w", err)
	}
	logger.Debug("Saved locations", logger.KeyStoreKey, key, logger.KeyEntries, len(entries))
	return nil
}
