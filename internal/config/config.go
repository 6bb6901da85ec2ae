// Package config defines the environment-driven configuration of the taskboard binary.
package config

import (
	"fmt"

	"github.com/rezkam/taskboard/internal/env"
)

// ServerConfig holds all configuration for the taskboard binary.
type ServerConfig struct {
	Storage       StorageConfig
	Database      DatabaseConfig
	SQLite        SQLiteConfig
	Observability ObservabilityConfig
}

// Validate checks cross-section requirements: the selected backend must be configured.
func (c *ServerConfig) Validate() error {
	if c.Storage.Backend == BackendPostgres && c.Database.DSN == "" {
		return ErrDSNRequired
	}
	if c.Storage.Backend == BackendSQLite && c.SQLite.Path == "" {
		return ErrSQLitePathRequired
	}
	return nil
}

// LoadServerConfig loads and validates configuration from the environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}
