package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `
app:
  name: mahjong-test
nats:
  url: nats://localhost:4222
game:
  claim_timeout: 3s
  claim_policy: priority
redis:
  host: localhost
  port: 6379
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mahjong-test", cfg.App.Name)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, 3*time.Second, cfg.Game.ClaimTimeout)
	assert.Equal(t, "priority", cfg.Game.ClaimPolicy)
	assert.Equal(t, 6379, cfg.Redis.Port)

	// 默认值
	assert.Equal(t, 100*time.Millisecond, cfg.Game.SchedulerTick)
	assert.Equal(t, 16, cfg.Dispatcher.WorkerCount)
	assert.Equal(t, 5*time.Second, cfg.LocationCache.TTL)
	assert.Equal(t, ":8082", cfg.HTTP.Addr)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadSpecialHands(t *testing.T) {
	path := writeFile(t, "special_hands.yaml", `
special_hands:
  pinhu: false
  house_rule: true
`)
	hands, err := LoadSpecialHands(path)
	require.NoError(t, err)
	assert.False(t, hands["pinhu"])
	assert.True(t, hands["house_rule"])
	assert.True(t, hands["daisangen"])
	assert.Len(t, hands, len(DefaultSpecialHands())+1)
}

func TestLoadSpecialHandsDefaults(t *testing.T) {
	hands, err := LoadSpecialHands("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSpecialHands(), hands)

	hands, err = LoadSpecialHands(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Len(t, hands, 31)
}

func TestLoadSpecialHandsInvalid(t *testing.T) {
	path := writeFile(t, "bad.yaml", "special_hands: [1, 2")
	_, err := LoadSpecialHands(path)
	assert.Error(t, err)
}
