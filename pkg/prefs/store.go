// Package prefs is the key/value preference store that backs the location
// list and the share configuration list.
//
// Three backends share one interface:
//   - sqlite / postgres: a GORM-managed `settings` table
//   - badger: an embedded BadgerDB directory
//   - memory: a process-local map, for tests and throwaway runs
package prefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("prefs: key not found")

// Store is a string key/value store.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists all stored keys in lexical order.
	Keys(ctx context.Context) ([]string, error)

	// Healthcheck verifies the backend is reachable.
	Healthcheck(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// Type selects a backend.
type Type string

const (
	TypeSQLite   Type = "sqlite"
	TypePostgres Type = "postgres"
	TypeBadger   Type = "badger"
	TypeMemory   Type = "memory"
)

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	// Path is the database file.
	// Default: $XDG_CONFIG_HOME/nsmd/nsmd.db
	Path string `mapstructure:"path" yaml:"path"`
}

// BadgerConfig configures the BadgerDB backend.
type BadgerConfig struct {
	// Dir is the database directory.
	// Default: $XDG_CONFIG_HOME/nsmd/prefs
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// PostgresConfig configures the PostgreSQL backend.
type PostgresConfig struct {
	Host         string `mapstructure:"host" yaml:"host"`
	Port         int    `mapstructure:"port" yaml:"port"`
	Database     string `mapstructure:"database" yaml:"database"`
	User         string `mapstructure:"user" yaml:"user"`
	Password     string `mapstructure:"password" yaml:"password"`
	SSLMode      string `mapstructure:"sslmode" yaml:"sslmode"` // disable, require, verify-ca, verify-full
	MaxOpenConns int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
}

// DSN returns the PostgreSQL connection string.
func (c *PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		c.Host, c.Port, c.User, c.Password, c.Database)
	if c.SSLMode != "" {
		dsn += fmt.Sprintf(" sslmode=%s", c.SSLMode)
	}
	return dsn
}

// Config selects and configures a backend.
type Config struct {
	Type     Type           `mapstructure:"type" yaml:"type" validate:"omitempty,oneof=sqlite postgres badger memory"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite" yaml:"sqlite"`
	Badger   BadgerConfig   `mapstructure:"badger" yaml:"badger"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

// ApplyDefaults fills in missing configuration with default values.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = TypeSQLite
	}

	switch c.Type {
	case TypeSQLite:
		if c.SQLite.Path == "" {
			c.SQLite.Path = filepath.Join(dataDir(), "nsmd.db")
		}
	case TypeBadger:
		if c.Badger.Dir == "" {
			c.Badger.Dir = filepath.Join(dataDir(), "prefs")
		}
	case TypePostgres:
		if c.Postgres.Port == 0 {
			c.Postgres.Port = 5432
		}
		if c.Postgres.SSLMode == "" {
			c.Postgres.SSLMode = "disable"
		}
		if c.Postgres.MaxOpenConns == 0 {
			c.Postgres.MaxOpenConns = 10
		}
		if c.Postgres.MaxIdleConns == 0 {
			c.Postgres.MaxIdleConns = 2
		}
	}
}

// Validate checks that the selected backend is fully configured.
func (c *Config) Validate() error {
	switch c.Type {
	case TypeSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case TypeBadger:
		if c.Badger.Dir == "" {
			return fmt.Errorf("badger dir is required")
		}
	case TypePostgres:
		if c.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if c.Postgres.Database == "" {
			return fmt.Errorf("postgres database is required")
		}
		if c.Postgres.User == "" {
			return fmt.Errorf("postgres user is required")
		}
	case TypeMemory:
	default:
		return fmt.Errorf("unsupported prefs store type: %s", c.Type)
	}
	return nil
}

// Open creates the backend selected by cfg.
func Open(cfg *Config) (Store, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid prefs configuration: %w", err)
	}

	switch cfg.Type {
	case TypeSQLite, TypePostgres:
		return NewGORMStore(cfg)
	case TypeBadger:
		return NewBadgerStore(cfg.Badger.Dir)
	default:
		return NewMemoryStore(), nil
	}
}

// dataDir returns $XDG_CONFIG_HOME/nsmd, falling back to ~/.config/nsmd.
func dataDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "nsmd")
}
