package config_test

import (
	"testing"
	"time"

	"github.com/bbabel1/property-manager-sub016/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PGSQL_URL", "postgres://localhost/ledger")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/ledger", cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "file://migrations", cfg.MigrationsPath)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "https://api.buildium.com/v1", cfg.Buildium.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Buildium.Timeout)
	assert.Equal(t, "0.1", cfg.RollupIncompleteBankRatio.String())
	assert.Equal(t, "0.01", cfg.DriftTolerance.String())
	assert.Equal(t, 4, cfg.SyncConcurrency)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("BUILDIUM_TIMEOUT", "5s")
	t.Setenv("ROLLUP_INCOMPLETE_BANK_RATIO", "0")
	t.Setenv("DRIFT_TOLERANCE", "0.50")
	t.Setenv("SYNC_CONCURRENCY", "8")
	t.Setenv("RUN_MIGRATIONS", "false")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.Buildium.Timeout)
	assert.True(t, cfg.RollupIncompleteBankRatio.IsZero())
	assert.Equal(t, "0.50", cfg.DriftTolerance.StringFixed(2))
	assert.Equal(t, 8, cfg.SyncConcurrency)
	assert.False(t, cfg.RunMigrations)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"ratio not a number", "ROLLUP_INCOMPLETE_BANK_RATIO", "ten percent"},
		{"negative tolerance", "DRIFT_TOLERANCE", "-0.01"},
		{"zero concurrency", "SYNC_CONCURRENCY", "0"},
		{"concurrency not a number", "SYNC_CONCURRENCY", "many"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := config.LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_BadTimeoutFallsBack(t *testing.T) {
	t.Setenv("BUILDIUM_TIMEOUT", "soon")
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Buildium.Timeout)
}

func TestLoadConfig_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("IS_PRODUCTION", "true")
	t.Setenv("JWT_SECRET", "")
	_, err := config.LoadConfig()
	assert.Error(t, err)
}
