package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/prefs"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
shutdown_timeout: 5s
store:
  type: badger
  badger:
    dir: /tmp/nsmd-prefs
  locations_key: my_locations
api:
  port: 8181
  write_timeout: 2m
files:
  root: /srv
  cache_ttl: 1m
launcher:
  root_location_command: ["xdg-open", "nsmd://root"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected level to be normalized to DEBUG, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected format json, got %q", cfg.Logging.Format)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("Expected shutdown timeout 5s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Store.Type != prefs.TypeBadger || cfg.Store.Badger.Dir != "/tmp/nsmd-prefs" {
		t.Errorf("Unexpected store config: %+v", cfg.Store.Config)
	}
	if cfg.Store.LocationsKey != "my_locations" {
		t.Errorf("Expected locations key my_locations, got %q", cfg.Store.LocationsKey)
	}
	if cfg.Store.SharesKey != "cifs_shares" {
		t.Errorf("Expected default shares key, got %q", cfg.Store.SharesKey)
	}
	if cfg.API.Port != 8181 || cfg.API.WriteTimeout != 2*time.Minute {
		t.Errorf("Unexpected api config: %+v", cfg.API)
	}
	if cfg.Files.Root != "/srv" || cfg.Files.CacheTTL != time.Minute {
		t.Errorf("Unexpected files config: %+v", cfg.Files)
	}
	if len(cfg.Launcher.RootLocationCommand) != 2 || cfg.Launcher.RootLocationCommand[0] != "xdg-open" {
		t.Errorf("Unexpected launcher config: %+v", cfg.Launcher)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("Expected default api port 8080, got %d", cfg.API.Port)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: INFO\n")
	t.Setenv("NSMD_LOGGING_LEVEL", "WARN")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected env override WARN, got %q", cfg.Logging.Level)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "logging:\n  format: xml\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Expected validation error for unknown log format")
	}
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, "shutdown_timeout: soon\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for unparsable duration")
	}
}

func TestMustLoad_MissingExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")
	_, err := MustLoad(path)
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "nsmd init --config "+path) {
		t.Errorf("Expected init hint in error, got: %v", err)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Files.Root = "/data"
	cfg.Store.Type = prefs.TypeMemory

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Files.Root != "/data" || loaded.Store.Type != prefs.TypeMemory {
		t.Errorf("Round trip lost values: files=%+v store=%+v", loaded.Files, loaded.Store.Config)
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if got := GetConfigDir(); got != filepath.Join(dir, "nsmd") {
		t.Errorf("Expected %s, got %s", filepath.Join(dir, "nsmd"), got)
	}
	if got := GetDefaultConfigPath(); got != filepath.Join(dir, "nsmd", "config.yaml") {
		t.Errorf("Unexpected default path %s", got)
	}
	if DefaultConfigExists() {
		t.Error("Expected no default config in a fresh directory")
	}
}
