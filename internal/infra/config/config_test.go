package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://api.example.com/")
	t.Setenv("APP_ENV", "dev")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.BackendBaseURL)
	assert.Equal(t, "Asia/Seoul", cfg.Location.String())
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.NotEmpty(t, cfg.SessionSecret)
	assert.False(t, cfg.SessionSecure)
	assert.False(t, cfg.MongoEnabled())
	assert.False(t, cfg.KafkaEnabled())
	assert.False(t, cfg.S3Enabled())
}

func TestLoadYAMLDefaultsLoseToEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roomfront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
BACKEND_BASE_URL: https://yaml.example.com
HTTP_ADDR: ":9090"
KAFKA_BROKERS:
  - kafka-1:9092
  - kafka-2:9092
BACKEND_RPS: 5
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_ENV", "dev")
	t.Setenv("HTTP_ADDR", ":7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://yaml.example.com", cfg.BackendBaseURL)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5.0, cfg.BackendRPS)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://api.example.com")
	t.Setenv("APP_ENV", "dev")

	t.Setenv("BACKEND_TIMEOUT", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "BACKEND_TIMEOUT")

	t.Setenv("BACKEND_TIMEOUT", "")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.ErrorContains(t, err, "APP_TIMEZONE")
}

func TestLoadRequiresSecretOutsideDev(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://api.example.com")
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "SESSION_SECRET")
}
