package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8080), cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Empty(t, cfg.HTTP.CORSAllowedOrigins)
	assert.Equal(t, 5, cfg.Global.ShutdownTimeoutInSeconds)
	assert.Equal(t, StorageDriverJSON, cfg.Storage.Driver)
	assert.Equal(t, DefaultDataDir, cfg.Storage.DataDir)
	assert.Equal(t, DefaultDatabasePath, cfg.Storage.DatabasePath)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionLifetime)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.True(t, cfg.Auth.CSRFEnabled)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Auth.RateLimitWindow)
	assert.Equal(t, 30*time.Minute, cfg.Auth.LockoutDuration)
	assert.True(t, cfg.Tasks.Enabled)
	assert.Equal(t, 2, cfg.Tasks.Workers)
	assert.Equal(t, "0 3 1 * *", cfg.StatsRetention.Schedule)
	assert.Equal(t, 12, cfg.StatsRetention.Months)
	assert.Equal(t, DefaultAuditDir, cfg.Audit.Dir)
}

func TestNewConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("AUTH_CSRF_ENABLED", "false")
	t.Setenv("STATS_RETENTION_MONTHS", "3")

	cfg := NewConfig()

	assert.Equal(t, int32(9090), cfg.HTTP.Port)
	assert.Equal(t, StorageDriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.CORSAllowedOrigins)
	assert.False(t, cfg.Auth.CSRFEnabled)
	assert.Equal(t, 3, cfg.StatsRetention.Months)
}
