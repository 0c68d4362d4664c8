package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadConfigFileAndEnvironment(t *testing.T) {
	unsetEnv(t, "DATABASE_URL")
	unsetEnv(t, "URL")
	path := writeConfig(t, `
database:
  url: postgres://file/relay
  conn_max_idle_time: 45s
server:
  port: "9000"
telegram:
  requests_per_second: 2
`)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Database.URL != "postgres://file/relay" {
		t.Errorf("database url = %q", cfg.Database.URL)
	}
	if cfg.Database.ConnMaxIdleTime != 45*time.Second {
		t.Errorf("conn_max_idle_time = %v", cfg.Database.ConnMaxIdleTime)
	}
	if cfg.Database.MaxOpenConns != 10 {
		t.Errorf("max_open_conns = %d, want the default 10", cfg.Database.MaxOpenConns)
	}
	if cfg.Server.Port != "9100" {
		t.Errorf("port = %q, want the environment value", cfg.Server.Port)
	}
	if cfg.Telegram.BotToken != "123:abc" {
		t.Errorf("bot token = %q", cfg.Telegram.BotToken)
	}
	if cfg.Telegram.RequestsPerSecond != 2 {
		t.Errorf("requests_per_second = %v", cfg.Telegram.RequestsPerSecond)
	}
}

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/relay")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Database.URL != "postgres://env/relay" || cfg.Server.Port != "8080" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := LoadConfig(writeConfig(t, "server:\n  port: \"8080\"\n")); err == nil {
		t.Fatal("expected an error without a database url")
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/relay")
	if _, err := LoadConfig(writeConfig(t, "servr:\n  port: \"8080\"\n")); err == nil {
		t.Fatal("expected an error for a misspelled section")
	}
}
