package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("expected 1h token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.Login.MaxAttempts != 5 || cfg.Login.Lockout != 15*time.Minute {
		t.Fatalf("unexpected login limits: %+v", cfg.Login)
	}
	if cfg.MaxPictureBytes != 5<<20 {
		t.Fatalf("expected 5MiB picture limit, got %d", cfg.MaxPictureBytes)
	}
	if cfg.Blob.Backend != "minio" {
		t.Fatalf("expected minio backend, got %q", cfg.Blob.Backend)
	}
}

func TestSigningSecretFallbackOutsideProduction(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV": "development",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	secret, fallback := cfg.SigningSecret()
	if !fallback || secret == "" {
		t.Fatalf("expected non-empty fallback secret, got %q fallback=%v", secret, fallback)
	}
}

func TestSigningSecretConfigured(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":        "production",
		"JWT_SECRET": "s3cr3t",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	secret, fallback := cfg.SigningSecret()
	if fallback || secret != "s3cr3t" {
		t.Fatalf("expected configured secret, got %q fallback=%v", secret, fallback)
	}
}

func TestProductionRequiresSecret(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV": "Production",
	}))
	if err == nil {
		t.Fatal("expected error when JWT_SECRET is missing in production")
	}
}

func TestUnknownBlobBackend(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"BLOB_BACKEND": "s3",
	}))
	if err == nil {
		t.Fatal("expected error for unknown blob backend")
	}
}
