package config

import (
	"slices"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "DB_DRIVER", "ENABLE_AUTH", "CORS_ORIGINS", "SESSION_IDLE_TIMEOUT"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	if cfg.Mode != ModeDev || cfg.HTTPAddr != ":8080" || cfg.DBDriver != "sqlite" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.EnableAuth {
		t.Fatalf("auth should be off in dev by default")
	}
	if cfg.SessionIdleTimeout != 2*time.Hour {
		t.Fatalf("idle timeout = %v", cfg.SessionIdleTimeout)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "prod")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("SESSION_IDLE_TIMEOUT", "15m")
	t.Setenv("ENABLE_AUTH", "")

	cfg := FromEnv()
	if !cfg.EnableAuth {
		t.Fatalf("auth should default on in prod")
	}
	if !slices.Equal(cfg.CORSOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("origins = %v", cfg.CORSOrigins)
	}
	if cfg.SessionIdleTimeout != 15*time.Minute {
		t.Fatalf("idle timeout = %v", cfg.SessionIdleTimeout)
	}

	t.Setenv("ENABLE_AUTH", "no")
	if FromEnv().EnableAuth {
		t.Fatalf("explicit ENABLE_AUTH=no ignored")
	}
}
