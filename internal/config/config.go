package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/detox-community/detox/internal/db"
	"github.com/detox-community/detox/internal/utils"
)

// DefaultSalt is only acceptable in development.
const DefaultSalt = "detox-dev-salt"

type Config struct {
	Env      string         `yaml:"env"`
	Locale   string         `yaml:"locale"`
	Database DatabaseConfig `yaml:"database"`
	Matching MatchingConfig `yaml:"matching"`
	Privacy  PrivacyConfig  `yaml:"privacy"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	Driver        string `yaml:"driver"`
	DSN           string `yaml:"dsn"`
	MigrationsDir string `yaml:"migrations_dir"`
}

type MatchingConfig struct {
	Workers      int `yaml:"workers"`
	BatchSize    int `yaml:"batch_size"`
	DefaultLimit int `yaml:"default_limit"`
}

type PrivacyConfig struct {
	PseudonymSalt string `yaml:"pseudonym_salt"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Env:    "development",
		Locale: "en",
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "file:detox.db?_busy_timeout=5000",
		},
		Matching: MatchingConfig{Workers: 4, BatchSize: 50, DefaultLimit: 10},
		Privacy:  PrivacyConfig{PseudonymSalt: DefaultSalt},
		Log:      LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads .env (when present), then the YAML file at path (optional),
// then DETOX_* environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Env = utils.SafeEnv("DETOX_ENV", c.Env)
	c.Locale = utils.SafeEnv("DETOX_LOCALE", c.Locale)
	c.Database.Driver = utils.SafeEnv("DETOX_DB_DRIVER", c.Database.Driver)
	c.Database.DSN = utils.SafeEnv("DETOX_DB_DSN", c.Database.DSN)
	c.Database.MigrationsDir = utils.SafeEnv("DETOX_MIGRATIONS_DIR", c.Database.MigrationsDir)
	c.Matching.Workers = utils.EnvInt("DETOX_WORKERS", c.Matching.Workers)
	c.Matching.BatchSize = utils.EnvInt("DETOX_BATCH_SIZE", c.Matching.BatchSize)
	c.Matching.DefaultLimit = utils.EnvInt("DETOX_MATCH_LIMIT", c.Matching.DefaultLimit)
	c.Privacy.PseudonymSalt = utils.SafeEnv("DETOX_PSEUDONYM_SALT", c.Privacy.PseudonymSalt)
	c.Log.Level = utils.SafeEnv("DETOX_LOG_LEVEL", c.Log.Level)
	c.Log.Format = utils.SafeEnv("DETOX_LOG_FORMAT", c.Log.Format)
}

func (c *Config) IsDevelopment() bool {
	switch strings.ToLower(c.Env) {
	case "", "dev", "development", "test":
		return true
	}
	return false
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	if _, err := db.DialectFor(c.Database.Driver); err != nil {
		errs = append(errs, fmt.Errorf("database.driver: %q is not one of %s", c.Database.Driver, strings.Join(db.Drivers(), ", ")))
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.Matching.Workers < 1 {
		errs = append(errs, fmt.Errorf("matching.workers must be positive, got %d", c.Matching.Workers))
	}
	if c.Matching.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("matching.batch_size must be positive, got %d", c.Matching.BatchSize))
	}
	if c.Matching.DefaultLimit < 1 {
		errs = append(errs, fmt.Errorf("matching.default_limit must be positive, got %d", c.Matching.DefaultLimit))
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	if !slices.Contains([]string{"json", "text"}, strings.ToLower(c.Log.Format)) {
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if c.Locale != "" && !slices.Contains(utils.SupportedLocales(), strings.ToLower(c.Locale)) {
		errs = append(errs, fmt.Errorf("locale: unsupported %q", c.Locale))
	}
	if c.Privacy.PseudonymSalt == "" {
		errs = append(errs, errors.New("privacy.pseudonym_salt is required"))
	} else if c.Privacy.PseudonymSalt == DefaultSalt && !c.IsDevelopment() {
		errs = append(errs, errors.New("privacy.pseudonym_salt must be changed outside development"))
	}
	return errors.Join(errs...)
}
