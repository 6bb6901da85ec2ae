package env

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceConfig struct {
	Host    string        `env:"TEST_HOST" default:"localhost"`
	Port    int           `env:"TEST_PORT" default:"8080"`
	Enabled bool          `env:"TEST_ENABLED" default:"true"`
	Timeout time.Duration `env:"TEST_TIMEOUT" default:"5s"`
	Ratio   float64       `env:"TEST_RATIO"`
	NoDef   string        `env:"TEST_NO_DEF"`
	ignored string        `env:"TEST_IGNORED"`
}

var errPortRequired = errors.New("port is required")

type checkedConfig struct {
	Port int `env:"TEST_PORT"`
}

func (c *checkedConfig) Validate() error {
	if c.Port == 0 {
		return errPortRequired
	}
	return nil
}

type parentConfig struct {
	Checked checkedConfig
	Name    string `env:"TEST_NAME" default:"taskboard"`
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_HOST", "example.com")
	t.Setenv("TEST_PORT", "9090")
	t.Setenv("TEST_ENABLED", "false")
	t.Setenv("TEST_TIMEOUT", "1m30s")
	t.Setenv("TEST_RATIO", "0.25")
	t.Setenv("TEST_NO_DEF", "foo")
	t.Setenv("TEST_IGNORED", "bar")

	var cfg serviceConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, 0.25, cfg.Ratio)
	assert.Equal(t, "foo", cfg.NoDef)
	assert.Empty(t, cfg.ignored)
}

func TestLoad_Defaults(t *testing.T) {
	var cfg serviceConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.NoDef)
}

func TestLoad_EmptyStringRespected(t *testing.T) {
	t.Setenv("TEST_HOST", "")

	var cfg serviceConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoad_InvalidValue(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{name: "empty int", envVar: "TEST_PORT", value: ""},
		{name: "non numeric int", envVar: "TEST_PORT", value: "eighty"},
		{name: "bad bool", envVar: "TEST_ENABLED", value: "maybe"},
		{name: "bad duration", envVar: "TEST_TIMEOUT", value: "5 seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			var cfg serviceConfig
			err := Load(&cfg)

			var invalid ErrInvalidValue
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.envVar, invalid.EnvVar)
			assert.Equal(t, tt.value, invalid.Value)
		})
	}
}

func TestLoad_EmbeddedStruct(t *testing.T) {
	type BaseConfig struct {
		StorageDSN  string `env:"STORAGE_DSN"`
		StorageType string `env:"STORAGE_TYPE" default:"postgres"`
	}
	type AppConfig struct {
		BaseConfig
		AppName string `env:"APP_NAME" default:"myapp"`
	}

	t.Setenv("STORAGE_DSN", "postgres://localhost/db")
	t.Setenv("APP_NAME", "testapp")

	var cfg AppConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "postgres://localhost/db", cfg.StorageDSN)
	assert.Equal(t, "postgres", cfg.StorageType)
	assert.Equal(t, "testapp", cfg.AppName)
}

func TestLoad_ValidatesNestedStructs(t *testing.T) {
	t.Run("nested failure is returned", func(t *testing.T) {
		var cfg parentConfig
		assert.ErrorIs(t, Load(&cfg), errPortRequired)
	})

	t.Run("valid nested struct", func(t *testing.T) {
		t.Setenv("TEST_PORT", "5432")

		var cfg parentConfig
		require.NoError(t, Load(&cfg))
		assert.Equal(t, 5432, cfg.Checked.Port)
		assert.Equal(t, "taskboard", cfg.Name)
	})

	t.Run("root validator", func(t *testing.T) {
		var cfg checkedConfig
		assert.ErrorIs(t, Load(&cfg), errPortRequired)
	})
}

func TestLoad_RejectsNonStructPointer(t *testing.T) {
	var cfg serviceConfig

	var notStruct ErrNotStructPointer
	assert.ErrorAs(t, Load(cfg), &notStruct)

	n := 3
	assert.ErrorAs(t, Load(&n), &notStruct)
}

func TestLoad_UnsupportedType(t *testing.T) {
	type sliceConfig struct {
		Hosts []string `env:"TEST_HOSTS"`
	}
	t.Setenv("TEST_HOSTS", "a,b")

	var cfg sliceConfig
	var unsupported ErrUnsupportedType
	assert.ErrorAs(t, Load(&cfg), &unsupported)
}
