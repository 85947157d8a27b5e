package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsApplied(t *testing.T) {
	c := Default()

	assert.Equal(t, 8085, c.App.Port)
	assert.Equal(t, "chats", c.Mongo.MessageCol)
	assert.Equal(t, "users", c.Mongo.UserCol)
	assert.Equal(t, "HS256", c.JWT.Algorithm)
	assert.Equal(t, 25*time.Second, c.PingInterval)
	assert.Equal(t, 10*time.Second, c.WriteDeadline)
	assert.Equal(t, int64(64*1024), c.WS.MaxMessageSizeBytes)
	assert.Equal(t, 256, c.WS.RoomQueueCapacity)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  env: production
  port: 9090
ws:
  ping_interval_seconds: 5
  rate_limit_per_sec: 50
kafka:
  brokers:
    - broker-1:9092
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", c.App.Env)
	assert.Equal(t, 9090, c.App.Port)
	assert.Equal(t, 5*time.Second, c.PingInterval)
	assert.Equal(t, 50, c.WS.RateLimitPerSec)
	assert.Equal(t, []string{"broker-1:9092"}, c.Kafka.Brokers)
	// untouched keys keep defaults
	assert.Equal(t, 10*time.Second, c.WriteDeadline)
	assert.Equal(t, "chat.message.accepted", c.Kafka.TopicMessageAccepted)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
