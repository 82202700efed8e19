// Package resources provides the string map returned to clients that ask
// for the service's display strings.
package resources

import (
	_ "embed"
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed strings.yaml
var defaultStrings []byte

// Catalog is an immutable name -> display string map.
type Catalog struct {
	strings map[string]string
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := parse(defaultStrings)
	if err != nil {
		panic(fmt.Sprintf("embedded strings.yaml is invalid: %v", err))
	}
	return c
}

// Load returns the embedded catalog overlaid with the strings in path. An
// empty path returns the embedded catalog unchanged.
func Load(path string) (*Catalog, error) {
	base := Default()
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read strings file: %w", err)
	}
	overlay, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse strings file %s: %w", path, err)
	}
	maps.Copy(base.strings, overlay.strings)
	return base, nil
}

func parse(data []byte) (*Catalog, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		} else {
			// Non-string values resolve to "" like unreadable resources.
			out[k] = ""
		}
	}
	return &Catalog{strings: out}, nil
}

// Strings returns a copy of the full map.
func (c *Catalog) Strings() map[string]string {
	return maps.Clone(c.strings)
}

// Get returns the string for name, or "" when unknown.
func (c *Catalog) Get(name string) string {
	return c.strings[name]
}
