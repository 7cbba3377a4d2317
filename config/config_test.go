package config

import (
	"client-registry/database"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "./data/clients.db")
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "LOG_FILE", "DATABASE_DRIVER", "DATABASE_INIT_SCRIPT", "PAGE_SIZE", "SESSION_TTL", "SESSION_SWEEP"} {
		t.Setenv(key, "")
	}

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, database.DriverSQLite3, cfg.DatabaseDriver)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "@every 5m", cfg.SessionSweep)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantField string
	}{
		{
			name:      "Missing database URL",
			env:       map[string]string{"DATABASE_URL": ""},
			wantField: "DATABASE_URL",
		},
		{
			name:      "Unknown driver",
			env:       map[string]string{"DATABASE_DRIVER": "mysql"},
			wantField: "DATABASE_DRIVER",
		},
		{
			name:      "Zero page size",
			env:       map[string]string{"PAGE_SIZE": "0"},
			wantField: "PAGE_SIZE",
		},
		{
			name:      "Non-numeric page size",
			env:       map[string]string{"PAGE_SIZE": "ten"},
			wantField: "PAGE_SIZE",
		},
		{
			name:      "Bad session TTL",
			env:       map[string]string{"SESSION_TTL": "soon"},
			wantField: "SESSION_TTL",
		},
		{
			name:      "Bad sweep schedule",
			env:       map[string]string{"SESSION_SWEEP": "every now and then"},
			wantField: "SESSION_SWEEP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "./data/clients.db")
			t.Setenv("DATABASE_DRIVER", "")
			t.Setenv("PAGE_SIZE", "")
			t.Setenv("SESSION_TTL", "")
			t.Setenv("SESSION_SWEEP", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Parse()
			require.Error(t, err)
			assert.ErrorIs(t, err, database.ErrConfiguration)

			var cfgErr *database.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}
