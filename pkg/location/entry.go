// Package location holds the catalog of browsable roots ("locations")
// exposed to clients: the entry model, the address classifier that tells
// real endpoints from the reserved placeholders, and the registry.
package location

import (
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/payload"
)

// Connection types understood by clients. The set is open; these are the
// labels the service routes on.
const (
	ConnFTP  = "FTP"
	ConnFTPS = "FTPS"
	ConnSFTP = "SFTP"
	ConnSMB  = "SMB"
)

// Server type tags marking the reserved placeholder entries.
const (
	ServerTypeRootAccess = "ROOT_ACCESS"
	ServerTypeSMBAccess  = "SMB_ACCESS"
)

// Entry is one browsable root or share.
type Entry struct {
	ServerID        int64  `json:"serverId,omitempty" yaml:"serverId,omitempty"`
	ServerName      string `json:"serverName" yaml:"serverName"`
	ServerAddr      string `json:"serverAddr" yaml:"serverAddr"`
	SharedFolder    string `json:"sharedFolder" yaml:"sharedFolder"`
	ConnectionType  string `json:"connectionType,omitempty" yaml:"connectionType,omitempty"`
	ServerType      string `json:"serverType,omitempty" yaml:"serverType,omitempty"`
	IsAnonymousMode bool   `json:"isAnonymousMode" yaml:"isAnonymousMode"`
	ServerPort      int    `json:"serverPort" yaml:"serverPort"`
	Username        string `json:"username,omitempty" yaml:"username,omitempty"`
	Password        string `json:"password,omitempty" yaml:"password,omitempty"`
	Category        string `json:"category,omitempty" yaml:"category,omitempty"`
	ParentID        string `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	Protocol        string `json:"protocol,omitempty" yaml:"protocol,omitempty"`
}

// IsRootPlaceholder reports whether e is the reserved "open root access" entry.
func (e Entry) IsRootPlaceholder() bool {
	return e.ServerType == ServerTypeRootAccess || e.ServerAddr == RootSentinel
}

// IsSharePlaceholder reports whether e is the reserved "open share browser" entry.
func (e Entry) IsSharePlaceholder() bool {
	return e.ServerType == ServerTypeSMBAccess || e.ServerAddr == ShareSentinel
}

// Merge overlays the known fields present in fields onto e. The server id
// is never changed by a merge. Credentials sent without isAnonymousMode
// switch the entry to named login; an explicit anonymous flag clears them.
func (e *Entry) Merge(fields payload.Map) {
	if fields.Has(payload.KeyServerName) {
		e.ServerName = fields.String(payload.KeyServerName)
	}
	if fields.Has(payload.KeyServerAddr) {
		e.ServerAddr = fields.String(payload.KeyServerAddr)
	}
	if fields.Has(payload.KeySharedFolder) {
		e.SharedFolder = fields.String(payload.KeySharedFolder)
	}
	if fields.Has(payload.KeyConnectionType) {
		e.ConnectionType = fields.String(payload.KeyConnectionType)
	}
	if fields.Has(payload.KeyServerType) {
		e.ServerType = fields.String(payload.KeyServerType)
	}
	if port, ok := fields.Int64OK(payload.KeyServerPort); ok {
		e.ServerPort = int(port)
	}
	if fields.Has(payload.KeyAnonymous) {
		e.IsAnonymousMode = fields.Bool(payload.KeyAnonymous, e.IsAnonymousMode)
	} else if fields.String(payload.KeyUsername) != "" || fields.String(payload.KeyPassword) != "" {
		// credentials without an explicit flag imply a named login
		e.IsAnonymousMode = false
	}
	if fields.Has(payload.KeyUsername) {
		e.Username = fields.String(payload.KeyUsername)
	}
	if fields.Has(payload.KeyPassword) {
		e.Password = fields.String(payload.KeyPassword)
	}
	if fields.Has(payload.KeyCategory) {
		e.Category = fields.String(payload.KeyCategory)
	}
	if fields.Has(payload.KeyParentID) {
		e.ParentID = fields.String(payload.KeyParentID)
	}
	if fields.Has(payload.KeyProtocol) {
		e.Protocol = fields.String(payload.KeyProtocol)
	}
	if e.IsAnonymousMode {
		e.Username = ""
		e.Password = ""
	}
}

// FromFields builds an entry from a client payload. New entries are
// anonymous unless the payload says otherwise.
func FromFields(fields payload.Map) Entry {
	e := Entry{IsAnonymousMode: true}
	e.Merge(fields)
	return e
}
