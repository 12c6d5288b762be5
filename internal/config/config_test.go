package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	origPath := os.Getenv("STORE_PATH")
	defer os.Setenv("STORE_PATH", origPath)

	os.Setenv("STORE_PATH", "/tmp/test-library.db")
	os.Setenv("STORE_MAX_OPEN_CONNS", "8")
	os.Setenv("OPEN_HANDLE_TTL_SEC", "30")

	cfg := Load()

	assert.Equal(t, "/tmp/test-library.db", cfg.Store.Path)
	assert.Equal(t, 8, cfg.Store.MaxOpenConns)
	assert.Equal(t, 30, cfg.Library.OpenHandleTTLSec)
	// loopback by default: the library never listens beyond the device
	assert.Equal(t, "127.0.0.1", cfg.Host)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}
