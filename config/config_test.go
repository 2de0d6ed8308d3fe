package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, env := range []string{"JWT_SECRET", "SERVER_PORT", "DATABASE_DRIVER", "UPLOAD_BACKEND", "UPLOAD_MAX_SIZE_MB"} {
		t.Setenv(env, "")
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Database.Driver != "postgres" || cfg.Upload.Backend != "local" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Auth.JWTExpiration != 24*time.Hour {
		t.Fatalf("expected 24h token lifetime, got %v", cfg.Auth.JWTExpiration)
	}
	if cfg.MaxUploadBytes() != 10<<20 {
		t.Fatalf("expected 10MB upload limit, got %d", cfg.MaxUploadBytes())
	}
	if !errors.Is(cfg.Validate(), ErrMissingJWTSecret) {
		t.Fatalf("defaults must fail validation without a secret")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("PUBLIC_URL", "https://api.example.com/")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-env" || cfg.Server.Port != "9090" || cfg.Database.URL != "file::memory:" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Server.PublicURL != "https://api.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Server.PublicURL)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins %v", cfg.Server.AllowedOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
server:
  port: "7000"
auth:
  jwt_secret: from-file
  jwt_expiration: 12h
upload:
  backend: minio
  max_size_mb: 5
  minio:
    endpoint: localhost:9000
`)
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "7000" || cfg.Auth.JWTExpiration != 12*time.Hour {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Upload.Minio.Endpoint != "localhost:9000" || cfg.Upload.Minio.Bucket != "projecthub" {
		t.Fatalf("unexpected minio config %+v", cfg.Upload.Minio)
	}
	if cfg.MaxUploadBytes() != 5<<20 {
		t.Fatalf("expected 5MB limit, got %d", cfg.MaxUploadBytes())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Database: DatabaseConfig{Driver: "postgres"},
			Auth:     AuthConfig{JWTSecret: "s", JWTExpiration: time.Hour},
			Upload:   UploadConfig{Backend: "local"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"backend", func(c *Config) { c.Upload.Backend = "ftp" }},
		{"minio endpoint", func(c *Config) { c.Upload.Backend = "minio" }},
		{"expiration", func(c *Config) { c.Auth.JWTExpiration = 0 }},
	}

	ok := base()
	if err := ok.Validate(); err != nil {
		t.Fatalf("base config should be valid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
