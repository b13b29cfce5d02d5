package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, 3, cfg.Ledger.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Ledger.LockTimeout)
	assert.Equal(t, []string{"postgres"}, cfg.Notify.Sinks)
	assert.True(t, cfg.Notify.Async)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("LEDGER_MAX_RETRIES", "5")
	t.Setenv("LEDGER_LOCK_TIMEOUT_MS", "150")
	t.Setenv("NOTIFY_SINKS", " Log , redis,,")
	t.Setenv("NOTIFY_TIMEOUT", "5s")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 5, cfg.Ledger.MaxRetries)
	assert.Equal(t, 150*time.Millisecond, cfg.Ledger.LockTimeout)
	assert.Equal(t, []string{"log", "redis"}, cfg.Notify.Sinks)
	assert.True(t, cfg.Notify.Has("redis"))
	assert.False(t, cfg.Notify.Has("webhook"))
	assert.Equal(t, 5*time.Second, cfg.Notify.Timeout)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"driver desconocido": {"STORAGE_DRIVER": "sqlite"},
		"reintentos":         {"LEDGER_MAX_RETRIES": "-1"},
		"webhook sin url":    {"NOTIFY_SINKS": "webhook"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "materiales", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/materiales?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgresql://x@y/z"
	assert.Equal(t, "postgresql://x@y/z", c.ConnectionString())
}
