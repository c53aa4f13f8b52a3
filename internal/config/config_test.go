// Package config provides tests for the configuration loading and management.
package config

import (
	"os"
	"testing"
)

// galleryEnvVars lists every variable Load consults, so tests can start clean.
var galleryEnvVars = []string{
	"GALLERY_ENV",
	"GALLERY_PORT",
	"GALLERY_SITE_PASSWORD",
	"GALLERY_SESSION_SECRET",
	"GALLERY_S3_ENDPOINT",
	"GALLERY_S3_REGION",
	"GALLERY_S3_BUCKET",
	"GALLERY_S3_ACCESS_KEY",
	"GALLERY_S3_SECRET_KEY",
	"GALLERY_NATS_URL",
	"GALLERY_METADATA_KEY",
	"GALLERY_PROBE_CONCURRENCY",
}

func clearGalleryEnv(t *testing.T) {
	t.Helper()
	for _, k := range galleryEnvVars {
		os.Unsetenv(k)
	}
}

// TestLoadDefaults tests the Load function with no environment set.
func TestLoadDefaults(t *testing.T) {
	clearGalleryEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Env != "dev" {
		t.Errorf("Load() Env = %v, want %v", cfg.Env, "dev")
	}
	if cfg.Port != "8080" {
		t.Errorf("Load() Port = %v, want %v", cfg.Port, "8080")
	}
	if cfg.S3Region != "us-east-1" {
		t.Errorf("Load() S3Region = %v, want %v", cfg.S3Region, "us-east-1")
	}
	if cfg.MetadataKey != "metadata/videos.json" {
		t.Errorf("Load() MetadataKey = %v, want %v", cfg.MetadataKey, "metadata/videos.json")
	}
	if cfg.ProbeConcurrency != 8 {
		t.Errorf("Load() ProbeConcurrency = %v, want %v", cfg.ProbeConcurrency, 8)
	}
	// A missing site password must not be a load error; it fails auth instead.
	if cfg.SitePassword != "" {
		t.Errorf("Load() SitePassword = %q, want empty", cfg.SitePassword)
	}
}

// TestLoadWithEnv tests the Load function with environment variables set.
func TestLoadWithEnv(t *testing.T) {
	clearGalleryEnv(t)

	os.Setenv("GALLERY_ENV", "prod")
	os.Setenv("GALLERY_PORT", "9090")
	os.Setenv("GALLERY_SITE_PASSWORD", "hunter2")
	os.Setenv("GALLERY_SESSION_SECRET", "top-secret")
	os.Setenv("GALLERY_S3_ENDPOINT", "http://localhost:9000")
	os.Setenv("GALLERY_S3_REGION", "us-west-2")
	os.Setenv("GALLERY_S3_BUCKET", "family-videos")
	os.Setenv("GALLERY_S3_ACCESS_KEY", "test-access-key")
	os.Setenv("GALLERY_S3_SECRET_KEY", "test-secret-key")
	os.Setenv("GALLERY_NATS_URL", "nats://localhost:4222")
	os.Setenv("GALLERY_METADATA_KEY", "metadata/other.json")
	os.Setenv("GALLERY_PROBE_CONCURRENCY", "3")

	t.Cleanup(func() { clearGalleryEnv(t) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Env != "prod" {
		t.Errorf("Load() Env = %v, want %v", cfg.Env, "prod")
	}
	if cfg.Port != "9090" {
		t.Errorf("Load() Port = %v, want %v", cfg.Port, "9090")
	}
	if cfg.SitePassword != "hunter2" {
		t.Errorf("Load() SitePassword = %v, want %v", cfg.SitePassword, "hunter2")
	}
	if cfg.SessionSecret != "top-secret" {
		t.Errorf("Load() SessionSecret = %v, want %v", cfg.SessionSecret, "top-secret")
	}
	if cfg.S3Endpoint != "http://localhost:9000" {
		t.Errorf("Load() S3Endpoint = %v, want %v", cfg.S3Endpoint, "http://localhost:9000")
	}
	if cfg.S3Region != "us-west-2" {
		t.Errorf("Load() S3Region = %v, want %v", cfg.S3Region, "us-west-2")
	}
	if cfg.S3Bucket != "family-videos" {
		t.Errorf("Load() S3Bucket = %v, want %v", cfg.S3Bucket, "family-videos")
	}
	if cfg.S3AccessKey != "test-access-key" {
		t.Errorf("Load() S3AccessKey = %v, want %v", cfg.S3AccessKey, "test-access-key")
	}
	if cfg.S3SecretKey != "test-secret-key" {
		t.Errorf("Load() S3SecretKey = %v, want %v", cfg.S3SecretKey, "test-secret-key")
	}
	if cfg.NATSURL != "nats://localhost:4222" {
		t.Errorf("Load() NATSURL = %v, want %v", cfg.NATSURL, "nats://localhost:4222")
	}
	if cfg.MetadataKey != "metadata/other.json" {
		t.Errorf("Load() MetadataKey = %v, want %v", cfg.MetadataKey, "metadata/other.json")
	}
	if cfg.ProbeConcurrency != 3 {
		t.Errorf("Load() ProbeConcurrency = %v, want %v", cfg.ProbeConcurrency, 3)
	}
}

// TestLoadBadProbeConcurrency tests rejection of a non-numeric probe limit.
func TestLoadBadProbeConcurrency(t *testing.T) {
	clearGalleryEnv(t)
	os.Setenv("GALLERY_PROBE_CONCURRENCY", "lots")
	t.Cleanup(func() { clearGalleryEnv(t) })

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for non-numeric GALLERY_PROBE_CONCURRENCY")
	}
}
