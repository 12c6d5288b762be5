package config

import (
	"os"
	"strconv"
)

// StoreConfig holds settings for the embedded SQLite document store.
type StoreConfig struct {
	// Path is the database file location. The parent directory must exist.
	Path string
	// BusyTimeoutMS is how long a connection waits on a locked database.
	BusyTimeoutMS int
	MaxOpenConns  int
	MaxIdleConns  int
}

// LibraryConfig holds behavior settings for the library controller.
type LibraryConfig struct {
	// OpenHandleTTLSec is how long a temporary open handle stays viewable
	// before it is released.
	OpenHandleTTLSec int
	// MaxUploadMB caps the size of a single uploaded PDF.
	MaxUploadMB int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables.
type AppConfig struct {
	// Host is the listen address. The library is a local, single-device
	// application, so the default binds loopback only.
	Host    string
	Port    string
	Store   StoreConfig
	Library LibraryConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Host: getEnv("HOST", "127.0.0.1"),
		Port: getEnv("PORT", "8080"),
		Store: StoreConfig{
			Path:          getEnv("STORE_PATH", "data/library.db"),
			BusyTimeoutMS: getEnvInt("STORE_BUSY_TIMEOUT_MS", 5000),
			MaxOpenConns:  getEnvInt("STORE_MAX_OPEN_CONNS", 4),
			MaxIdleConns:  getEnvInt("STORE_MAX_IDLE_CONNS", 2),
		},
		Library: LibraryConfig{
			OpenHandleTTLSec: getEnvInt("OPEN_HANDLE_TTL_SEC", 120),
			MaxUploadMB:      getEnvInt("MAX_UPLOAD_MB", 50),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
