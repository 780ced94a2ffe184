package container_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/cyberhook/container"
)

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func allEnv(t *testing.T) {
	unsetEnv(t,
		container.EnvHTTPPort,
		container.EnvSessionStore,
		container.EnvWebhookBackend,
		container.EnvWebhookTimeout,
		container.EnvTracingEndpoint,
	)
}

func TestDefaultConfig(t *testing.T) {
	cfg := container.DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 3939, cfg.Transport.HTTP.Port)
	assert.True(t, cfg.Tracing.Disable)
	assert.Equal(t, "local", cfg.Session.StoreLabel)
	assert.Equal(t, "cyberhook_data", cfg.Session.StorageKey)
	assert.Equal(t, "discord", cfg.Webhook.Backend)
	assert.Equal(t, container.DriverFile, cfg.StoreResources["local"].Driver)
	assert.NotEmpty(t, cfg.StoreResources["local"].File.Path)
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing files use default", func(t *testing.T) {
		allEnv(t)
		dir := t.TempDir()

		cfg, err := container.LoadConfig(filepath.Join(dir, "config.yml"), filepath.Join(dir, ".env"))
		require.NoError(t, err)
		assert.Equal(t, container.DefaultConfig(), cfg)
	})

	t.Run("empty file use default", func(t *testing.T) {
		allEnv(t)
		file := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(file, []byte("\n"), 0o600))

		cfg, err := container.LoadConfig(file, "")
		require.NoError(t, err)
		assert.Equal(t, container.DefaultConfig(), cfg)
	})

	t.Run("yaml", func(t *testing.T) {
		allEnv(t)
		file := filepath.Join(t.TempDir(), "config.yml")
		content := `
transport:
  http:
    port: 8080
storeResources:
  cache:
    driver: redis
    redis:
      mode: single
      address: ["localhost:6379"]
  archive:
    driver: sqlite3
    sql:
      dsn: "file:cyberhook.db"
session:
  storeLabel: cache
  storageKey: my_session
webhook:
  backend: noop
  timeout: 5s
`
		require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

		cfg, err := container.LoadConfig(file, "")
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Transport.HTTP.Port)
		assert.Equal(t, "cache", cfg.Session.StoreLabel)
		assert.Equal(t, "my_session", cfg.Session.StorageKey)
		assert.Equal(t, "noop", cfg.Webhook.Backend)
		assert.Equal(t, 5*time.Second, cfg.Webhook.Timeout)
		assert.Equal(t, []string{"localhost:6379"}, cfg.StoreResources["cache"].Redis.Address)
		assert.Equal(t, "file:cyberhook.db", cfg.StoreResources["archive"].SQL.DSN)

		// default store stays
		assert.Equal(t, container.DriverFile, cfg.StoreResources["local"].Driver)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		allEnv(t)
		file := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(file, []byte("transport: [1, 2"), 0o600))

		_, err := container.LoadConfig(file, "")
		assert.Error(t, err)
	})

	t.Run("env override", func(t *testing.T) {
		allEnv(t)
		t.Setenv(container.EnvHTTPPort, "9090")
		t.Setenv(container.EnvWebhookBackend, "noop")
		t.Setenv(container.EnvWebhookTimeout, "1500ms")
		t.Setenv(container.EnvTracingEndpoint, "http://jaeger:14268/api/traces")

		cfg, err := container.LoadConfig("", "")
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Transport.HTTP.Port)
		assert.Equal(t, "noop", cfg.Webhook.Backend)
		assert.Equal(t, 1500*time.Millisecond, cfg.Webhook.Timeout)
		assert.False(t, cfg.Tracing.Disable)
		assert.Equal(t, "http://jaeger:14268/api/traces", cfg.Tracing.JaegerEndpoint)
	})

	t.Run("invalid env", func(t *testing.T) {
		allEnv(t)
		t.Setenv(container.EnvHTTPPort, "abc")

		_, err := container.LoadConfig("", "")
		assert.Error(t, err)
	})

	t.Run("env file", func(t *testing.T) {
		allEnv(t)
		envFile := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(envFile, []byte(container.EnvWebhookBackend+"=noop\n"), 0o600))

		cfg, err := container.LoadConfig("", envFile)
		require.NoError(t, err)
		assert.Equal(t, "noop", cfg.Webhook.Backend)
	})

	t.Run("unknown session store", func(t *testing.T) {
		allEnv(t)
		t.Setenv(container.EnvSessionStore, "nothere")

		_, err := container.LoadConfig("", "")
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("label must be lower alphanumeric", func(t *testing.T) {
		cfg := container.DefaultConfig()
		cfg.StoreResources["My-Store"] = container.ConfigStoreResource{Driver: container.DriverMemory}
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := container.DefaultConfig()
		cfg.StoreResources["other"] = container.ConfigStoreResource{Driver: "mysql"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("tracing enabled without endpoint", func(t *testing.T) {
		cfg := container.DefaultConfig()
		cfg.Tracing = container.ConfigTracing{Disable: false}
		assert.Error(t, cfg.Validate())
	})

	t.Run("port out of range", func(t *testing.T) {
		cfg := container.DefaultConfig()
		cfg.Transport.HTTP.Port = 70000
		assert.Error(t, cfg.Validate())
	})
}
