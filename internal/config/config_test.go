package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"SHEET_URL", "SHEET_NAME", "CSV_URL", "CSV_API_KEY", "MOCK_DATA", "CACHE_TTL",
	"LISTEN_ADDR", "CHART_PRESET", "SNAPSHOT_CRON", "TELEGRAM_BOT_TOKEN",
	"TELEGRAM_CHAT_ID", "HTTPS_PROXY", "SQLITE_PATH",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  addr: "127.0.0.1:9000"
sheet:
  url: "https://docs.google.com/spreadsheets/d/abc123/edit"
  name: "Breadth"
  cache_ttl: "5m"
chart:
  preset: "percent"
  visible_months: 3
database:
  sqlite_path: "/tmp/breadth.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Sheet.URL != "https://docs.google.com/spreadsheets/d/abc123/edit" || cfg.Sheet.Name != "Breadth" {
		t.Errorf("Sheet = %+v", cfg.Sheet)
	}
	if cfg.Chart.Preset != "percent" || cfg.Chart.VisibleMonths != 3 {
		t.Errorf("Chart = %+v", cfg.Chart)
	}
	if cfg.Database.SQLitePath != "/tmp/breadth.db" {
		t.Errorf("Database.SQLitePath = %q", cfg.Database.SQLitePath)
	}
	if d, err := cfg.CacheTTL(); err != nil || d != 5*time.Minute {
		t.Errorf("CacheTTL() = %v, %v; want 5m", d, err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Server.Addr != ":8501" {
		t.Errorf("Server.Addr = %q, want :8501", cfg.Server.Addr)
	}
	if cfg.Chart.Preset != "index" {
		t.Errorf("Chart.Preset = %q, want index", cfg.Chart.Preset)
	}
	if d, _ := cfg.CacheTTL(); d != 10*time.Minute {
		t.Errorf("CacheTTL() = %v, want 10m", d)
	}
	if cfg.Schedule.SnapshotCron != "0 30 22 * * 1-5" {
		t.Errorf("Schedule.SnapshotCron = %q", cfg.Schedule.SnapshotCron)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected Validate() to require a data source")
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
sheet:
  url: "from-file"
chart:
  preset: "index"
`)
	t.Setenv("SHEET_URL", "from-env")
	t.Setenv("CHART_PRESET", "percent")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("MOCK_DATA", "true")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Sheet.URL != "from-env" {
		t.Errorf("Sheet.URL = %q, want from-env", cfg.Sheet.URL)
	}
	if cfg.Chart.Preset != "percent" {
		t.Errorf("Chart.Preset = %q, want percent", cfg.Chart.Preset)
	}
	if d, _ := cfg.CacheTTL(); d != 90*time.Second {
		t.Errorf("CacheTTL() = %v, want 90s", d)
	}
	if !cfg.Sheet.Mock {
		t.Error("expected MOCK_DATA to enable mock source")
	}
	if !cfg.TelegramEnabled() {
		t.Error("expected telegram to be enabled")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid sheet", func(c *Config) {}, false},
		{"csv url only", func(c *Config) { c.Sheet.URL = ""; c.Sheet.CSVURL = "http://x/data.csv" }, false},
		{"no source", func(c *Config) { c.Sheet.URL = "" }, true},
		{"bad ttl", func(c *Config) { c.Sheet.CacheTTL = "soon" }, true},
		{"zero ttl", func(c *Config) { c.Sheet.CacheTTL = "0s" }, true},
		{"negative rows", func(c *Config) { c.Chart.TrailingRows = -1 }, true},
		{"full history window", func(c *Config) { c.Chart.VisibleMonths = -1 }, false},
		{"bad window", func(c *Config) { c.Chart.VisibleMonths = -2 }, true},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "t" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			c.Sheet.URL = "abc123"
			c.Sheet.CacheTTL = "10m"
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
