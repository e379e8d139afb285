package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":50051", cfg.GRPCPort)
	assert.Equal(t, ":9090", cfg.MetricsPort)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 3*time.Second, cfg.AuditTimeout)
	assert.Equal(t, 2, cfg.MaxDevices)
	assert.True(t, cfg.UsesPostgres())
	assert.False(t, cfg.UsesRedis())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"),
		[]byte("STORE_DRIVER=memory\nAUDIT_DRIVER=memory\nSTORE_TIMEOUT=750ms\n"), 0o600))
	t.Setenv("AUDIT_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6380")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, DriverRedis, cfg.AuditDriver)
	assert.Equal(t, 750*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, "localhost:6380", cfg.RedisAddr)
	assert.False(t, cfg.UsesPostgres())
	assert.True(t, cfg.UsesRedis())
}
