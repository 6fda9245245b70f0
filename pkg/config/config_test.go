package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	data := `
server:
  address: 127.0.0.1
  port: 9090
  engine: fasthttp
storage:
  db_path: /tmp/chatfeed-db
security:
  rate_limit:
    rps: 2.5
    burst: 7
retention:
  enabled: true
  cron: "0 2 * * *"
  period: 720h
`
	if err := os.WriteFile(p, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Fatalf("addr: %s", cfg.Addr())
	}
	if cfg.Server.Engine != "fasthttp" {
		t.Fatalf("engine: %s", cfg.Server.Engine)
	}
	if cfg.Security.RateLimit.RPS != 2.5 || cfg.Security.RateLimit.Burst != 7 {
		t.Fatalf("rate limit: %+v", cfg.Security.RateLimit)
	}
	if !cfg.Retention.Enabled || cfg.Retention.Period != "720h" {
		t.Fatalf("retention: %+v", cfg.Retention)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CHATFEED_ADDR", "10.0.0.1:7070")
	t.Setenv("CHATFEED_DB_PATH", "/data/feed")
	t.Setenv("CHATFEED_API_KEYS", "k1, k2")
	t.Setenv("CHATFEED_RATE_RPS", "3")

	cfg := &Config{}
	if !LoadEnvOverrides(cfg) {
		t.Fatal("env overrides not detected")
	}
	if cfg.Addr() != "10.0.0.1:7070" {
		t.Fatalf("addr: %s", cfg.Addr())
	}
	if cfg.Storage.DBPath != "/data/feed" {
		t.Fatalf("db path: %s", cfg.Storage.DBPath)
	}
	if len(cfg.Security.APIKeys.Keys) != 2 || cfg.Security.APIKeys.Keys[1] != "k2" {
		t.Fatalf("api keys: %v", cfg.Security.APIKeys.Keys)
	}
	if cfg.Security.RateLimit.RPS != 3 {
		t.Fatalf("rps: %v", cfg.Security.RateLimit.RPS)
	}
}

func TestLoadEffectiveMissingFile(t *testing.T) {
	cfg, _, err := LoadEffective(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Fatalf("defaults: %s", cfg.Addr())
	}
}
