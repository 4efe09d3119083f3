package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("backend = %q, want sqlite", cfg.Storage.Backend)
	}
	if cfg.Storage.Key != "bananaData" {
		t.Errorf("key = %q, want bananaData", cfg.Storage.Key)
	}
	if cfg.Autosave.Debounce != 500*time.Millisecond {
		t.Errorf("debounce = %v, want 500ms", cfg.Autosave.Debounce)
	}
	if cfg.Notify.DismissAfter != 2*time.Second {
		t.Errorf("dismiss_after = %v, want 2s", cfg.Notify.DismissAfter)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: file
  file_dir: /tmp/splitter
autosave:
  debounce: 250ms
http:
  addr: ":9090"
backup:
  cron: "@daily"
`)
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Backend != BackendFile || cfg.Storage.FileDir != "/tmp/splitter" {
		t.Errorf("storage from YAML not applied: %+v", cfg.Storage)
	}
	if cfg.Autosave.Debounce != 250*time.Millisecond {
		t.Errorf("debounce = %v, want 250ms", cfg.Autosave.Debounce)
	}
	if cfg.HTTP.Addr != ":7070" {
		t.Errorf("addr = %q, env should override YAML", cfg.HTTP.Addr)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Storage.Key != "bananaData" {
		t.Errorf("unset key should keep its default, got %q", cfg.Storage.Key)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "storage: [unterminated")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"memory backend", func(c *Config) { c.Storage.Backend = BackendMemory }, false},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "postgres" }, true},
		{"empty key", func(c *Config) { c.Storage.Key = "" }, true},
		{"redis without url", func(c *Config) {
			c.Storage.Backend = BackendRedis
			c.Storage.RedisURL = ""
		}, true},
		{"zero debounce", func(c *Config) { c.Autosave.Debounce = 0 }, true},
		{"negative dismiss", func(c *Config) { c.Notify.DismissAfter = -time.Second }, true},
		{"valid cron", func(c *Config) { c.Backup.Cron = "0 3 * * *" }, false},
		{"invalid cron", func(c *Config) { c.Backup.Cron = "every day" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
