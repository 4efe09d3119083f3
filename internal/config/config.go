// Package config loads application configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then the
// environment. A .env file in the working directory, if present, is loaded
// into the environment first and never overrides variables that are already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/assetsplitter/internal/backup"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendFile   = "file"
)

// Config holds all application configuration.
type Config struct {
	Storage struct {
		Backend      string        `yaml:"backend"       env:"BACKEND"`
		SQLitePath   string        `yaml:"sqlite_path"   env:"SQLITE_PATH"`
		RedisURL     string        `yaml:"redis_url"     env:"REDIS_URL"`
		RedisTimeout time.Duration `yaml:"redis_timeout" env:"REDIS_TIMEOUT"`
		FileDir      string        `yaml:"file_dir"      env:"FILE_DIR"`
		Key          string        `yaml:"key"           env:"KEY"`
	} `yaml:"storage" envPrefix:"STORAGE_"`

	Autosave struct {
		Debounce time.Duration `yaml:"debounce" env:"DEBOUNCE"`
	} `yaml:"autosave" envPrefix:"AUTOSAVE_"`

	Notify struct {
		DismissAfter time.Duration `yaml:"dismiss_after" env:"DISMISS_AFTER"`
	} `yaml:"notify" envPrefix:"NOTIFY_"`

	HTTP struct {
		Addr            string        `yaml:"addr"             env:"ADDR"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	} `yaml:"http" envPrefix:"HTTP_"`

	Backup struct {
		Cron string `yaml:"cron" env:"CRON"`
		Dir  string `yaml:"dir"  env:"DIR"`
	} `yaml:"backup" envPrefix:"BACKUP_"`

	Log struct {
		Level  string `yaml:"level"  env:"LEVEL"`
		Format string `yaml:"format" env:"FORMAT"`
	} `yaml:"log" envPrefix:"LOG_"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Storage.Backend = BackendSQLite
	cfg.Storage.SQLitePath = "./data/assetsplitter.db"
	cfg.Storage.RedisURL = "redis://localhost:6379/0"
	cfg.Storage.RedisTimeout = 10 * time.Second
	cfg.Storage.FileDir = "./data"
	cfg.Storage.Key = "bananaData"
	cfg.Autosave.Debounce = 500 * time.Millisecond
	cfg.Notify.DismissAfter = 2 * time.Second
	cfg.HTTP.Addr = ":8080"
	cfg.HTTP.ShutdownTimeout = 10 * time.Second
	cfg.Backup.Dir = "./data/backups"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load builds the configuration. path may be empty or point at a file that
// does not exist, in which case only defaults and the environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendSQLite, BackendRedis, BackendFile:
	default:
		return fmt.Errorf("storage.backend must be one of memory, sqlite, redis, file; got %q", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key is required")
	}
	if c.Storage.Backend == BackendSQLite && c.Storage.SQLitePath == "" {
		return fmt.Errorf("storage.sqlite_path is required for the sqlite backend")
	}
	if c.Storage.Backend == BackendRedis && c.Storage.RedisURL == "" {
		return fmt.Errorf("storage.redis_url is required for the redis backend")
	}
	if c.Storage.Backend == BackendFile && c.Storage.FileDir == "" {
		return fmt.Errorf("storage.file_dir is required for the file backend")
	}
	if c.Autosave.Debounce <= 0 {
		return fmt.Errorf("autosave.debounce must be positive")
	}
	if c.Notify.DismissAfter <= 0 {
		return fmt.Errorf("notify.dismiss_after must be positive")
	}
	if c.Backup.Cron != "" {
		if err := backup.ValidateSpec(c.Backup.Cron); err != nil {
			return fmt.Errorf("backup.cron: %w", err)
		}
	}
	return nil
}
