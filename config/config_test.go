package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
}

func TestLoadConfig_Defaults(t *testing.T) {
	writeConfig(t, "http:\n  addr: \":8085\"\n")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Service != "session-service" || cfg.Logging.Env != "dev" || cfg.Logging.Backend != "std" {
		t.Fatalf("logging defaults not applied: %+v", cfg.Logging)
	}
	if cfg.Session.RoomIDLength != 6 {
		t.Fatalf("expected default id length 6, got %d", cfg.Session.RoomIDLength)
	}
	if cfg.Session.PingEvery() != 15*time.Second {
		t.Fatalf("expected default ping 15s, got %v", cfg.Session.PingEvery())
	}
	if cfg.Session.WriteDeadline() != 5*time.Second {
		t.Fatalf("expected default write timeout 5s, got %v", cfg.Session.WriteDeadline())
	}
}

func TestLoadConfig_RequiresHTTPAddr(t *testing.T) {
	writeConfig(t, "logging:\n  env: dev\n")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for missing http.addr")
	}
}

func TestLoadConfig_ParsesDurations(t *testing.T) {
	writeConfig(t, `
http:
  addr: ":9000"
session:
  pingInterval: "30s"
  writeTimeout: "bogus"
`)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.PingEvery() != 30*time.Second {
		t.Fatalf("ping interval not parsed: %v", cfg.Session.PingEvery())
	}
	// malformed duration falls back to the default
	if cfg.Session.WriteDeadline() != 5*time.Second {
		t.Fatalf("bogus duration should fall back, got %v", cfg.Session.WriteDeadline())
	}
}
