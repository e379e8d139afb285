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

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "localhost:50051", cfg.ActivationSvcURL)
	assert.Equal(t, 30, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.Equal(t, 15*time.Second, cfg.RPCTimeout)
	assert.Empty(t, cfg.Origins())
	assert.Nil(t, cfg.Proxies())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(
		"PORT=:9000\nALLOWED_ORIGINS=https://a.example, https://b.example\nRATE_LIMIT=5\n",
	), 0o600))
	t.Setenv("RATE_LIMIT", "7")
	t.Setenv("RPC_TIMEOUT", "250ms")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Port)
	assert.Equal(t, 7, cfg.RateLimit)
	assert.Equal(t, 250*time.Millisecond, cfg.RPCTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
}
