package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Sheet struct {
		URL      string `yaml:"url"`  // sharing URL or bare spreadsheet ID
		Name     string `yaml:"name"` // optional tab name
		CSVURL   string `yaml:"csv_url"`
		APIKey   string `yaml:"api_key"`
		Mock     bool   `yaml:"mock"`
		MockDays int    `yaml:"mock_days"`
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"sheet"`
	Chart struct {
		Preset        string `yaml:"preset"`
		TrailingRows  int    `yaml:"trailing_rows"`
		VisibleMonths int    `yaml:"visible_months"`
	} `yaml:"chart"`
	Schedule struct {
		SnapshotCron string `yaml:"snapshot_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SHEET_URL"); v != "" {
		cfg.Sheet.URL = v
	}
	if v := os.Getenv("SHEET_NAME"); v != "" {
		cfg.Sheet.Name = v
	}
	if v := os.Getenv("CSV_URL"); v != "" {
		cfg.Sheet.CSVURL = v
	}
	if v := os.Getenv("CSV_API_KEY"); v != "" {
		cfg.Sheet.APIKey = v
	}
	if v := os.Getenv("MOCK_DATA"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Sheet.Mock = b
		}
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		cfg.Sheet.CacheTTL = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CHART_PRESET"); v != "" {
		cfg.Chart.Preset = v
	}
	if v := os.Getenv("SNAPSHOT_CRON"); v != "" {
		cfg.Schedule.SnapshotCron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8501"
	}
	if cfg.Sheet.CacheTTL == "" {
		cfg.Sheet.CacheTTL = "10m"
	}
	if cfg.Sheet.MockDays == 0 {
		cfg.Sheet.MockDays = 500
	}
	if cfg.Chart.Preset == "" {
		cfg.Chart.Preset = "index"
	}
	if cfg.Schedule.SnapshotCron == "" {
		cfg.Schedule.SnapshotCron = "0 30 22 * * 1-5"
	}

	return cfg, nil
}

// CacheTTL returns the parsed cache lifetime.
func (c *Config) CacheTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Sheet.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("sheet.cache_ttl: %w", err)
	}
	return d, nil
}

// TelegramEnabled reports whether both bot credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if !c.Sheet.Mock && c.Sheet.URL == "" && c.Sheet.CSVURL == "" {
		return errors.New("one of sheet.url, sheet.csv_url or sheet.mock is required")
	}
	d, err := c.CacheTTL()
	if err != nil {
		return err
	}
	if d <= 0 {
		return errors.New("sheet.cache_ttl must be positive")
	}
	if c.Chart.TrailingRows < 0 {
		return errors.New("chart.trailing_rows must not be negative")
	}
	if c.Chart.VisibleMonths < -1 {
		return errors.New("chart.visible_months must be -1 (full history), 0 (preset default) or positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return errors.New("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
