// Package config loads application configuration from environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ultraview/enhancer/internal/log"
)

// Storage backends accepted in STORAGE_BACKEND.
const (
	BackendLocal = "local"
	BackendMinio = "minio"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	// Artifact storage. UploadDir is used by the local backend.
	StorageBackend string
	UploadDir      string
	MaxUploadBytes int64 // 0 disables the limit

	// Lifecycle of stored artifacts. A zero TTL keeps artifacts forever.
	ArtifactTTL   time.Duration
	SweepInterval time.Duration

	// Object storage (S3-compatible, used when StorageBackend is "minio")
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool

	// DatabaseURL enables the artifact ledger when non-empty.
	DatabaseURL string

	CORSAllowedOrigins []string
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Infof("no .env file found, reading from environment")
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", log.LevelInfo),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendLocal)),
		UploadDir:      getEnv("UPLOAD_DIR", filepath.Join(os.TempDir(), "enhancer")),
		MaxUploadBytes: getInt64("MAX_UPLOAD_BYTES", 2<<30),

		ArtifactTTL:   getDuration("ARTIFACT_TTL", 24*time.Hour),
		SweepInterval: getDuration("SWEEP_INTERVAL", 10*time.Minute),

		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageAccessKey: getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
		StorageSecretKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
		StorageBucket:    getEnv("STORAGE_BUCKET", "enhanced"),
		StorageUseSSL:    getEnv("STORAGE_USE_SSL", "false") == "true",

		DatabaseURL: os.Getenv("DATABASE_URL"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LedgerEnabled reports whether uploads are recorded in PostgreSQL.
func (c *Config) LedgerEnabled() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		log.Warnf("config: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Warnf("config: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
