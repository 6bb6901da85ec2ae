package config

import (
	"fmt"

	"github.com/rezkam/taskboard/internal/env"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	// DatabaseDSN points at a disposable PostgreSQL database; empty skips postgres tests.
	DatabaseDSN string `env:"TASKBOARD_TEST_DB_DSN"`
}

// LoadTestConfig loads test configuration from the environment.
func LoadTestConfig() (*TestConfig, error) {
	cfg := &TestConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load test config: %w", err)
	}

	return cfg, nil
}
