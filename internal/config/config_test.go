package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8001", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.MongoDB.Enabled)
	assert.Equal(t, "orders_db", cfg.MongoDB.Database)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "email", cfg.Notifications.Channel)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
mongodb:
  enabled: false
kafka:
  brokers:
    - broker-1:9092
    - broker-2:9092
notifications:
  channel: sms
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.False(t, cfg.MongoDB.Enabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "sms", cfg.Notifications.Channel)
	// Untouched values keep their defaults
	assert.Equal(t, "orders_db", cfg.MongoDB.Database)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
`), 0o600))

	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("MONGODB_ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.MongoDB.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestValidateChannel(t *testing.T) {
	t.Setenv("NOTIFICATION_CHANNEL", "pigeon")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidateBrokers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
kafka:
  enabled: true
  brokers: []
`), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
