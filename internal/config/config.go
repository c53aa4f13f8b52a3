// Package config provides configuration loading and management for the gallery service.
// It handles environment variable parsing and provides default values for all settings.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// init loads environment variables from .env files during package initialization.
// godotenv.Load() does not override already-set variables, preserving
// OS env > .env.local > .env precedence.
func init() {
	if _, err := os.Stat(".env.local"); err == nil {
		if err := godotenv.Load(".env.local"); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load .env.local file: %v\n", err)
		}
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load .env file: %v\n", err)
		}
	}
}

// Config captures environment-driven settings for the gallery service.
type Config struct {
	Env           string // Deployment environment (dev, staging, prod)
	Port          string // HTTP server port
	SitePassword  string // Shared secret gating the whole gallery
	SessionSecret string // HMAC key for session tokens (random per process when empty)
	S3Endpoint    string // S3-compatible storage endpoint (empty for AWS)
	S3Region      string // S3 region
	S3Bucket      string // Bucket holding videos, siblings and the metadata document
	S3AccessKey   string // S3 access key
	S3SecretKey   string // S3 secret key
	NATSURL       string // NATS server URL for event publishing (optional)
	MetadataKey   string // Object key of the metadata document

	// Enrichment limits
	ProbeConcurrency int // Max concurrent sibling probes during a catalog build
}

// Default configuration values used when environment variables are not set
const (
	defaultPort             = "8080"
	defaultS3Region         = "us-east-1"
	defaultEnv              = "dev"
	defaultMetadataKey      = "metadata/videos.json"
	defaultProbeConcurrency = 8
)

// Load reads environment variables and produces a Config suitable for wiring
// the service. The site password is intentionally not required here: when it
// is absent every authentication attempt must fail, not the process start.
func Load() (Config, error) {
	cfg := Config{
		Env:              getEnv("GALLERY_ENV", defaultEnv),
		Port:             getEnv("GALLERY_PORT", defaultPort),
		SitePassword:     os.Getenv("GALLERY_SITE_PASSWORD"),
		SessionSecret:    os.Getenv("GALLERY_SESSION_SECRET"),
		S3Endpoint:       os.Getenv("GALLERY_S3_ENDPOINT"),
		S3Region:         getEnv("GALLERY_S3_REGION", defaultS3Region),
		S3Bucket:         os.Getenv("GALLERY_S3_BUCKET"),
		S3AccessKey:      os.Getenv("GALLERY_S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("GALLERY_S3_SECRET_KEY"),
		NATSURL:          os.Getenv("GALLERY_NATS_URL"),
		MetadataKey:      getEnv("GALLERY_METADATA_KEY", defaultMetadataKey),
		ProbeConcurrency: defaultProbeConcurrency,
	}

	if v, exists := os.LookupEnv("GALLERY_PROBE_CONCURRENCY"); exists {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("GALLERY_PROBE_CONCURRENCY must be a positive integer, got %q", v)
		}
		cfg.ProbeConcurrency = n
	}

	return cfg, nil
}

// getEnv retrieves an environment variable value, returning a fallback if not set or empty
func getEnv(key, fallback string) string {
	if v, exists := os.LookupEnv(key); exists && v != "" {
		return v
	}
	return fallback
}
