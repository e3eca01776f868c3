package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/yanun0323/logs"
)

// Environment variables that override the file configuration.
const (
	EnvStoreType   = "PAPERTRADER_STORE_TYPE"
	EnvStorePath   = "PAPERTRADER_STORE_PATH"
	EnvJournalType = "PAPERTRADER_JOURNAL_TYPE"
	EnvTimezone    = "PAPERTRADER_TIMEZONE"
)

// LoadEnv reads a .env file into the environment when one exists.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logs.Infof("no .env file loaded: %v", err)
	}
}

// GetEnv returns the value of key, or fallback when it is unset.
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// ApplyEnv overrides fields from PAPERTRADER_* variables.
func (c *Config) ApplyEnv() {
	c.Store.Type = GetEnv(EnvStoreType, c.Store.Type)
	c.Store.Path = GetEnv(EnvStorePath, c.Store.Path)
	c.Journal.Type = GetEnv(EnvJournalType, c.Journal.Type)
	c.Session.Timezone = GetEnv(EnvTimezone, c.Session.Timezone)
}
