package config

import (
	"testing"
	"time"

	"statcalc/domain/stats"
	"statcalc/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"DATABASE_DRIVER", "DATABASE_URL", "PORT", "UI_PORT", "GIN_MODE",
		"BATCH_CONCURRENCY", "REMOTE_TIMEOUT", "DEFAULT_LEVEL", "STRICT_LEVELS", "STRICT_PARSING", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, defaultSQLiteURL, cfg.Database.URL)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "8081", cfg.Server.UIPort)
	assert.Equal(t, stats.Level95, cfg.Calc.DefaultLevel)
	assert.False(t, cfg.Calc.StrictLevels)
	assert.Equal(t, 4, cfg.Calc.BatchConcurrency)
	assert.Equal(t, 10*time.Second, cfg.Remote.Timeout)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/statcalc?sslmode=disable")
	t.Setenv("DEFAULT_LEVEL", "99%")
	t.Setenv("STRICT_LEVELS", "true")
	t.Setenv("STRICT_PARSING", "1")
	t.Setenv("BATCH_CONCURRENCY", "8")
	t.Setenv("REMOTE_TIMEOUT", "2s")
	t.Setenv("GIN_MODE", "release")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, stats.Level99, cfg.Calc.DefaultLevel)
	assert.True(t, cfg.Calc.StrictLevels)
	assert.True(t, cfg.Calc.StrictParsing)
	assert.Equal(t, 8, cfg.Calc.BatchConcurrency)
	assert.Equal(t, 2*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, "release", cfg.Server.GinMode)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"DATABASE_DRIVER": "postgres"}},
		{"unknown driver", map[string]string{"DATABASE_DRIVER": "oracle"}},
		{"unknown level", map[string]string{"DEFAULT_LEVEL": "0.80"}},
		{"zero concurrency", map[string]string{"BATCH_CONCURRENCY": "0"}},
		{"bad port", map[string]string{"PORT": "http"}},
		{"bad gin mode", map[string]string{"GIN_MODE": "verbose"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
