package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config is the complete papertrader configuration.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Session SessionConfig `json:"session" yaml:"session"`
}

// AccountConfig seeds a fresh account.
type AccountConfig struct {
	InitialDeposit float64 `json:"initial_deposit" yaml:"initial_deposit"`
}

// StoreConfig selects the persistence adapter.
type StoreConfig struct {
	Type string `json:"type" yaml:"type"` // "file", "sqlite", "pebble" or "memory"
	Path string `json:"path" yaml:"path"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type        string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	EntriesFile string `json:"entries_file,omitempty" yaml:"entries_file,omitempty"`
	EquityFile  string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// SessionConfig describes the trading session DAY orders live in.
type SessionConfig struct {
	Timezone string `json:"timezone" yaml:"timezone"`
	Close    string `json:"close" yaml:"close"` // "HH:MM"
}

// Location resolves the session time zone. Empty means local time.
func (s SessionConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(s.Timezone)
}

// CloseTime returns the session close as hour and minute.
func (s SessionConfig) CloseTime() (hour, minute int, err error) {
	t, err := time.Parse("15:04", s.Close)
	if err != nil {
		return 0, 0, fmt.Errorf("session.close %q: %w", s.Close, err)
	}
	return t.Hour(), t.Minute(), nil
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
// and applies environment overrides.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.InitialDeposit < 0 {
		return fmt.Errorf("account.initial_deposit must not be negative")
	}
	switch c.Store.Type {
	case "", "file", "sqlite", "pebble":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for %q store", c.Store.Type)
		}
	case "memory":
	default:
		return fmt.Errorf("store.type must be 'file', 'sqlite', 'pebble' or 'memory'")
	}
	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.EntriesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal entries_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	if _, err := c.Session.Location(); err != nil {
		return fmt.Errorf("session.timezone: %w", err)
	}
	if _, _, err := c.Session.CloseTime(); err != nil {
		return err
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialDeposit: 0,
		},
		Store: StoreConfig{
			Type: "file",
			Path: "./data",
		},
		Journal: JournalConfig{
			Type:        "csv",
			EntriesFile: "./entries.csv",
			EquityFile:  "./equity.csv",
		},
		Session: SessionConfig{
			Timezone: "America/New_York",
			Close:    "16:00",
		},
	}
}
