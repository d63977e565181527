package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tradelab/internal/common"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
feed:
  url: "wss://example.test"
  token: "secret"
  subscribe_grace_ms: 500
symbols: ["AAPL", "MSFT"]
candle_interval_sec: 30
log_level: "debug"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.GetServerPort() != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.GetServerPort())
	}
	if cfg.GetFeedURL() != "wss://example.test" {
		t.Errorf("expected configured feed url, got %s", cfg.GetFeedURL())
	}
	if cfg.GetSubscribeGrace() != 500*time.Millisecond {
		t.Errorf("expected 500ms grace, got %v", cfg.GetSubscribeGrace())
	}
	if cfg.GetCandleInterval() != 30*time.Second {
		t.Errorf("expected 30s interval, got %v", cfg.GetCandleInterval())
	}
	if got := cfg.GetSymbols(); len(got) != 2 || got[0] != "AAPL" {
		t.Errorf("expected configured symbols, got %v", got)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug log level, got %s", cfg.LogLevel)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `server: {}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.GetCandleInterval() != time.Duration(common.DefaultCandleIntervalSec)*time.Second {
		t.Errorf("expected default interval, got %v", cfg.GetCandleInterval())
	}
	if cfg.GetChannelBufferSize() != common.DefaultChannelBufferSize {
		t.Errorf("expected default buffer size, got %d", cfg.GetChannelBufferSize())
	}
	if cfg.GetFeedURL() != common.DefaultFeedURL {
		t.Errorf("expected default feed url, got %s", cfg.GetFeedURL())
	}
	if cfg.GetMaxReconnectAttempts() != common.DefaultReconnectMaxTries {
		t.Errorf("expected default reconnect ceiling, got %d", cfg.GetMaxReconnectAttempts())
	}
	if got := cfg.GetSymbols(); len(got) != len(common.Universe) {
		t.Errorf("expected the built-in universe, got %d symbols", len(got))
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default info level, got %s", cfg.LogLevel)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("expected error for missing file")
	}
}
