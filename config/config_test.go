package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "file", cfg.Store.Type)
	assert.Equal(t, "csv", cfg.Journal.Type)
	assert.Equal(t, "16:00", cfg.Session.Close)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func(mut func(c *Config)) *Config {
		c := Default()
		mut(c)
		return c
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			config:  Default(),
			wantErr: false,
		},
		{
			name:    "negative deposit",
			config:  valid(func(c *Config) { c.Account.InitialDeposit = -1 }),
			wantErr: true,
			errMsg:  "account.initial_deposit must not be negative",
		},
		{
			name:    "unknown store",
			config:  valid(func(c *Config) { c.Store.Type = "redis" }),
			wantErr: true,
			errMsg:  "store.type must be",
		},
		{
			name:    "store without path",
			config:  valid(func(c *Config) { c.Store = StoreConfig{Type: "sqlite"} }),
			wantErr: true,
			errMsg:  "store.path is required",
		},
		{
			name:    "memory store needs no path",
			config:  valid(func(c *Config) { c.Store = StoreConfig{Type: "memory"} }),
			wantErr: false,
		},
		{
			name:    "csv journal without files",
			config:  valid(func(c *Config) { c.Journal = JournalConfig{Type: "csv"} }),
			wantErr: true,
			errMsg:  "journal entries_file and equity_file required for CSV type",
		},
		{
			name:    "sqlite journal without db",
			config:  valid(func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} }),
			wantErr: true,
			errMsg:  "journal db_path required for SQLite type",
		},
		{
			name:    "no journal",
			config:  valid(func(c *Config) { c.Journal = JournalConfig{Type: "none"} }),
			wantErr: false,
		},
		{
			name:    "unknown journal",
			config:  valid(func(c *Config) { c.Journal.Type = "kafka" }),
			wantErr: true,
			errMsg:  "journal.type must be",
		},
		{
			name:    "bad timezone",
			config:  valid(func(c *Config) { c.Session.Timezone = "Mars/Olympus" }),
			wantErr: true,
			errMsg:  "session.timezone",
		},
		{
			name:    "bad close",
			config:  valid(func(c *Config) { c.Session.Close = "4pm" }),
			wantErr: true,
			errMsg:  "session.close",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSessionClose(t *testing.T) {
	h, m, err := SessionConfig{Close: "15:30"}.CloseTime()
	require.NoError(t, err)
	assert.Equal(t, 15, h)
	assert.Equal(t, 30, m)

	loc, err := SessionConfig{Timezone: "America/New_York"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Account.InitialDeposit = 25000
			cfg.Store = StoreConfig{Type: "pebble", Path: "./state"}
			path := filepath.Join(tmpDir, "test"+tt.ext)

			err := cfg.SaveToFile(path)
			require.NoError(t, err)

			_, err = os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg.Account.InitialDeposit, loaded.Account.InitialDeposit)
			assert.Equal(t, cfg.Store, loaded.Store)
			assert.Equal(t, cfg.Journal, loaded.Journal)
			assert.Equal(t, cfg.Session, loaded.Session)
		})
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Default().SaveToFile(path))

	t.Setenv(EnvStoreType, "sqlite")
	t.Setenv(EnvStorePath, "/tmp/papertrader.db")
	t.Setenv(EnvJournalType, "none")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, "/tmp/papertrader.db", cfg.Store.Path)
	assert.Equal(t, "none", cfg.Journal.Type)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(EnvTimezone+"=UTC\n"), 0644))
	t.Setenv(EnvTimezone, "")
	require.NoError(t, os.Unsetenv(EnvTimezone))

	LoadEnv(path)
	assert.Equal(t, "UTC", GetEnv(EnvTimezone, "fallback"))
	assert.Equal(t, "fallback", GetEnv("PAPERTRADER_NOT_SET", "fallback"))
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  type: redis\n"), 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
