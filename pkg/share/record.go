// Package share manages the user's saved network shares and presents them
// to clients as location entries.
package share

import (
	"encoding/json"
	"strings"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/location"
)

// Record is one saved share configuration.
type Record struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	Username       string `json:"username,omitempty"`
	Password       string `json:"password,omitempty"`
	ConnectionType string `json:"connectionType"`
	Port           int    `json:"port"`
	Anonymous      bool   `json:"anonymous"`
}

// NewRecord returns an anonymous record on the protocol's default port.
func NewRecord(name, address, connectionType string) Record {
	return Record{
		Name:           name,
		Address:        address,
		ConnectionType: connectionType,
		Port:           DefaultPort(connectionType),
		Anonymous:      true,
	}
}

// DefaultPort returns the well-known port for a protocol label.
func DefaultPort(connectionType string) int {
	switch strings.ToUpper(connectionType) {
	case location.ConnSMB:
		return 445
	case location.ConnSFTP:
		return 22
	default:
		return 21
	}
}

// UnmarshalJSON fills fields a stored record omits with construction
// defaults: anonymous access and the protocol's port.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		Port      *int  `json:"port"`
		Anonymous *bool `json:"anonymous"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Anonymous = true
	if aux.Anonymous != nil {
		r.Anonymous = *aux.Anonymous
	}
	r.Port = DefaultPort(r.ConnectionType)
	if aux.Port != nil {
		r.Port = *aux.Port
	}
	return nil
}

// defaultRecords is the list used when the stored list cannot be parsed.
func defaultRecords() []Record {
	return []Record{
		NewRecord("Home Server", "smb://192.168.1.100/shared", location.ConnSMB),
		NewRecord("FTP Server", "ftp://192.168.1.200", location.ConnFTP),
	}
}
