package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 30080 {
		t.Errorf("default port = %d, want 30080", cfg.Server.Port)
	}
	if cfg.Server.SessionTTL != 12*time.Hour {
		t.Errorf("default session ttl = %s, want 12h", cfg.Server.SessionTTL)
	}
	if cfg.Postgres.Database != "customer_crm" {
		t.Errorf("default db = %s", cfg.Postgres.Database)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %s", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://crm.example.com, https://admin.example.com")
	t.Setenv("ENABLE_METRICS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Postgres.Host != "db.internal" {
		t.Errorf("postgres host = %s", cfg.Postgres.Host)
	}
	if len(cfg.Server.AllowOrigins) != 2 || cfg.Server.AllowOrigins[0] != "https://crm.example.com" {
		t.Errorf("allow origins = %v", cfg.Server.AllowOrigins)
	}
	if cfg.Server.EnableMetrics {
		t.Error("metrics should be disabled")
	}
}

func TestValidate_RejectsBadPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "70000")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation failure for port 70000")
	}
}
