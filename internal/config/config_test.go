package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_SQLite(t *testing.T) {
	t.Setenv("ESTATE_PRIMARY__ENV", "local")
	t.Setenv("ESTATE_DATABASE__DRIVER", "sqlite")
	t.Setenv("ESTATE_DATABASE__PATH", ":memory:")
	t.Setenv("ESTATE_OBSERVABILITY__LOGGING__LEVEL", "debug")
	t.Setenv("ESTATE_OBSERVABILITY__LOGGING__FORMAT", "console")
	t.Setenv("ESTATE_OBSERVABILITY__LOGGING__SLOW_QUERY_THRESHOLD", "250ms")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Primary.Env)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.True(t, cfg.Database.IsMemory())
	require.NotNil(t, cfg.Observability)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "console", cfg.Observability.Logging.Format)
	assert.Equal(t, 250*time.Millisecond, cfg.Observability.Logging.SlowQueryThreshold)
	assert.Equal(t, "local", cfg.Observability.Environment)
	assert.Equal(t, "estate-storage", cfg.Observability.ServiceName)
}

func TestLoadConfig_PostgresDefaults(t *testing.T) {
	t.Setenv("ESTATE_PRIMARY__ENV", "production")
	t.Setenv("ESTATE_DATABASE__DRIVER", "postgres")
	t.Setenv("ESTATE_DATABASE__HOST", "localhost")
	t.Setenv("ESTATE_DATABASE__PORT", "5432")
	t.Setenv("ESTATE_DATABASE__USER", "estate")
	t.Setenv("ESTATE_DATABASE__NAME", "estate")
	t.Setenv("ESTATE_DATABASE__MAX_OPEN_CONNS", "8")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 8, cfg.Database.MaxOpenConns)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.False(t, cfg.Database.IsMemory())
	assert.True(t, cfg.Observability.IsProduction())
	assert.Equal(t, "info", cfg.Observability.GetLogLevel())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing env",
			env:  map[string]string{"ESTATE_DATABASE__DRIVER": "sqlite", "ESTATE_DATABASE__PATH": "x.db"},
		},
		{
			name: "unknown driver",
			env:  map[string]string{"ESTATE_PRIMARY__ENV": "local", "ESTATE_DATABASE__DRIVER": "mysql"},
		},
		{
			name: "postgres without host",
			env:  map[string]string{"ESTATE_PRIMARY__ENV": "local", "ESTATE_DATABASE__DRIVER": "postgres"},
		},
		{
			name: "sqlite without path",
			env:  map[string]string{"ESTATE_PRIMARY__ENV": "local", "ESTATE_DATABASE__DRIVER": "sqlite"},
		},
		{
			name: "bad log level",
			env: map[string]string{
				"ESTATE_PRIMARY__ENV":                   "local",
				"ESTATE_DATABASE__DRIVER":               "sqlite",
				"ESTATE_DATABASE__PATH":                 ":memory:",
				"ESTATE_OBSERVABILITY__LOGGING__LEVEL":  "loud",
				"ESTATE_OBSERVABILITY__LOGGING__FORMAT": "json",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestNewMemoryConfig(t *testing.T) {
	cfg := NewMemoryConfig()
	assert.True(t, cfg.Database.IsMemory())
	require.NotNil(t, cfg.Observability)
	assert.Equal(t, "test", cfg.Observability.Environment)
	assert.NoError(t, cfg.Observability.Validate())
}
