package core

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, name := range []string{
		"PORT", "JWT_SECRET", "TOKEN_TTL_MINUTES", "LOG_DIR",
		"DATABASE_URL", "POSTGRES_URL", "DATABASE_MAX_CONNS",
		"REDIS_URL", "ALLOWED_ORIGINS",
	} {
		t.Setenv(name, "")
	}

	cfg := Load()
	if cfg.Port != "3000" {
		t.Fatalf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.TokenTTL != 60*time.Minute {
		t.Fatalf("TokenTTL = %v, want 60m", cfg.TokenTTL)
	}
	if cfg.DatabaseMaxConns != 10 {
		t.Fatalf("DatabaseMaxConns = %d, want 10", cfg.DatabaseMaxConns)
	}
	if cfg.LogDir != "/var/log/students-api" {
		t.Fatalf("LogDir = %q", cfg.LogDir)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Fatalf("AllowedOrigins = %v, want empty", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("TOKEN_TTL_MINUTES", "5")
	t.Setenv("DATABASE_MAX_CONNS", "25")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example ,")

	cfg := Load()
	if cfg.Port != "8081" {
		t.Fatalf("Port = %q, want 8081", cfg.Port)
	}
	if cfg.TokenTTL != 5*time.Minute {
		t.Fatalf("TokenTTL = %v, want 5m", cfg.TokenTTL)
	}
	if cfg.DatabaseMaxConns != 25 {
		t.Fatalf("DatabaseMaxConns = %d, want 25", cfg.DatabaseMaxConns)
	}
	want := []string{"http://a.example", "http://b.example"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	for i := range want {
		if cfg.AllowedOrigins[i] != want[i] {
			t.Fatalf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], want[i])
		}
	}
}

func TestLoadIgnoresGarbageInts(t *testing.T) {
	t.Setenv("DATABASE_MAX_CONNS", "lots")
	t.Setenv("TOKEN_TTL_MINUTES", "")

	cfg := Load()
	if cfg.DatabaseMaxConns != 10 {
		t.Fatalf("DatabaseMaxConns = %d, want default 10", cfg.DatabaseMaxConns)
	}
	if cfg.TokenTTL != 60*time.Minute {
		t.Fatalf("TokenTTL = %v, want default 60m", cfg.TokenTTL)
	}
}
