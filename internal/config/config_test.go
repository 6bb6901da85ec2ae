package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfig_Defaults(t *testing.T) {
	cfg, err := LoadServerConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "taskboard.db", cfg.SQLite.Path)
	assert.Empty(t, cfg.Database.DSN)
	assert.Zero(t, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Observability.OTelEnabled)
}

func TestLoadServerConfig_Postgres(t *testing.T) {
	t.Setenv("TASKBOARD_STORAGE", "postgres")
	t.Setenv("TASKBOARD_DB_DSN", "postgres://taskboard:secret@db:5432/taskboard")
	t.Setenv("TASKBOARD_DB_MAX_OPEN_CONNS", "50")
	t.Setenv("TASKBOARD_DB_MAX_IDLE_CONNS", "10")
	t.Setenv("TASKBOARD_DB_CONN_MAX_LIFETIME", "10m")
	t.Setenv("TASKBOARD_DB_CONN_MAX_IDLE_TIME", "2m")
	t.Setenv("TASKBOARD_OTEL_ENABLED", "true")
	t.Setenv("OTEL_SERVICE_NAME", "taskboard-test")

	cfg, err := LoadServerConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, "postgres://taskboard:secret@db:5432/taskboard", cfg.Database.DSN)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	assert.Equal(t, 10*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 2*time.Minute, cfg.Database.ConnMaxIdleTime)
	assert.True(t, cfg.Observability.OTelEnabled)
	assert.Equal(t, "taskboard-test", cfg.Observability.ServiceName)
}

func TestLoadServerConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
		wantMsg string
	}{
		{
			name:    "postgres without dsn",
			env:     map[string]string{"TASKBOARD_STORAGE": "postgres"},
			wantErr: ErrDSNRequired,
		},
		{
			name:    "sqlite with empty path",
			env:     map[string]string{"TASKBOARD_SQLITE_PATH": ""},
			wantErr: ErrSQLitePathRequired,
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"TASKBOARD_STORAGE": "mysql"},
			wantMsg: "unsupported TASKBOARD_STORAGE",
		},
		{
			name:    "malformed pool size",
			env:     map[string]string{"TASKBOARD_DB_MAX_OPEN_CONNS": "many"},
			wantMsg: "TASKBOARD_DB_MAX_OPEN_CONNS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadServerConfig()
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoadTestConfig(t *testing.T) {
	t.Setenv("TASKBOARD_TEST_DB_DSN", "postgres://localhost/taskboard_test")

	cfg, err := LoadTestConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/taskboard_test", cfg.DatabaseDSN)
}
