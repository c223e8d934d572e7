// Package config loads the service configuration from defaults, an optional
// YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Store drivers understood by the counter store factory.
const (
	DriverFile     = "file"
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ConfigPathEnvVar overrides the YAML config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is not set.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

type Config struct {
	Port      string `koanf:"port"`
	GinMode   string `koanf:"gin_mode"`
	FEOrigin  string `koanf:"fe_origin"`
	Timezone  string `koanf:"timezone"`
	StaticDir string `koanf:"static_dir"`
	// TrustedProxies is a comma-separated list of proxy IPs or CIDRs whose
	// X-Forwarded-For is believed for the recorded client IP. Empty trusts none.
	TrustedProxies string `koanf:"trusted_proxies"`

	Store   StoreConfig   `koanf:"store"`
	Archive ArchiveConfig `koanf:"archive"`
	Logging LoggingConfig `koanf:"logging"`
}

type StoreConfig struct {
	Driver      string `koanf:"driver"`
	FilePath    string `koanf:"file_path"`
	BadgerPath  string `koanf:"badger_path"`
	DatabaseURL string `koanf:"database_url"`
	MaxEvents   int    `koanf:"max_events"`
}

// ArchiveConfig controls the optional ClickHouse copy of every ingested event.
type ArchiveConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Host          string        `koanf:"clickhouse_host"`
	NativePort    int           `koanf:"clickhouse_native_port"`
	Database      string        `koanf:"clickhouse_db_name"`
	Username      string        `koanf:"clickhouse_username"`
	Password      string        `koanf:"clickhouse_password"`
	BatchSize     int           `koanf:"batch_size"`
	FlushInterval time.Duration `koanf:"flush_interval"`
	BufferSize    int           `koanf:"buffer_size"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() *Config {
	return &Config{
		Port:     "8080",
		FEOrigin: "http://localhost:3000",
		Store: StoreConfig{
			Driver:     DriverFile,
			FilePath:   "visitors.json",
			BadgerPath: "data/visitors",
			MaxEvents:  1000,
		},
		Archive: ArchiveConfig{
			Enabled:       false,
			NativePort:    9000,
			BatchSize:     100,
			FlushInterval: 5 * time.Second,
			BufferSize:    1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration. Precedence is env > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings keeps the variable names the deployment already uses
// (PORT, DATABASE_URL, CLICKHOUSE_*) working alongside the nested keys.
var envMappings = map[string]string{
	"port":                   "port",
	"gin_mode":               "gin_mode",
	"fe_origin":              "fe_origin",
	"timezone":               "timezone",
	"static_dir":             "static_dir",
	"trusted_proxies":        "trusted_proxies",
	"database_url":           "store.database_url",
	"clickhouse_host":        "archive.clickhouse_host",
	"clickhouse_native_port": "archive.clickhouse_native_port",
	"clickhouse_db_name":     "archive.clickhouse_db_name",
	"clickhouse_username":    "archive.clickhouse_username",
	"clickhouse_password":    "archive.clickhouse_password",
	"log_level":              "logging.level",
	"log_format":             "logging.format",
}

var envSections = []string{"store", "archive", "logging"}

// envTransformFunc maps an environment variable name to a koanf path.
// Unrelated variables map to "" and are skipped.
//
//	STORE_FILE_PATH -> store.file_path
//	ARCHIVE_BATCH_SIZE -> archive.batch_size
//	CLICKHOUSE_HOST -> archive.clickhouse_host
func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	for _, section := range envSections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok && rest != "" {
			return section + "." + rest
		}
	}
	return ""
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverFile:
		if c.Store.FilePath == "" {
			errs = append(errs, errors.New("store.file_path is required for the file driver"))
		}
	case DriverBadger:
		if c.Store.BadgerPath == "" {
			errs = append(errs, errors.New("store.badger_path is required for the badger driver"))
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("store.database_url (DATABASE_URL) is required for the postgres driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}

	if c.Store.MaxEvents <= 0 {
		errs = append(errs, fmt.Errorf("store.max_events must be positive, got %d", c.Store.MaxEvents))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}

	if c.Archive.Enabled {
		if c.Archive.Host == "" || c.Archive.Database == "" {
			errs = append(errs, errors.New("archive requires CLICKHOUSE_HOST and CLICKHOUSE_DB_NAME"))
		}
		if c.Archive.BatchSize <= 0 {
			errs = append(errs, errors.New("archive.batch_size must be positive"))
		}
		if c.Archive.FlushInterval <= 0 {
			errs = append(errs, errors.New("archive.flush_interval must be positive"))
		}
	}

	return errors.Join(errs...)
}

// Location resolves the timezone used for the "today" counter.
// An empty timezone means the server's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
