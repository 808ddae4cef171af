// Package config loads dashboard settings from .env files, an optional YAML
// file named by CONFIG_FILE, and the environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting of the dashboard server.
type Config struct {
	Port              string        `yaml:"port"`
	Host              string        `yaml:"host"`
	GinMode           string        `yaml:"gin_mode"`
	APIBaseURL        string        `yaml:"api_base_url"`
	DataDir           string        `yaml:"data_dir"`
	StatisticsFile    string        `yaml:"statistics_file"`
	DevMode           bool          `yaml:"dev_mode"`
	LogLevel          string        `yaml:"log_level"`
	RateLimitRPS      float64       `yaml:"rate_limit_rps"`
	RateLimitBurst    int           `yaml:"rate_limit_burst"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
	MaxSessions       int           `yaml:"max_sessions"`
	StatsRetainMonths int           `yaml:"stats_retain_months"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Port:              "8082",
		GinMode:           "release",
		APIBaseURL:        "http://localhost:8000/api",
		DataDir:           "data",
		StatisticsFile:    "statistics.json",
		LogLevel:          "info",
		RateLimitRPS:      2,
		RateLimitBurst:    5,
		SessionTTL:        30 * time.Minute,
		MaxSessions:       1000,
		StatsRetainMonths: 12,
	}
}

// Load reads .env.development and .env from the working directory, then
// resolves the configuration from the process environment.
func Load() (*Config, error) {
	if err := loadEnvFiles(".env.development", ".env"); err != nil {
		return nil, err
	}
	return FromEnv(os.LookupEnv)
}

// loadEnvFiles never overrides variables that are already set, so earlier
// files win over later ones.
func loadEnvFiles(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv builds a validated Config from defaults, the YAML file named by
// CONFIG_FILE and the variables visible through lookup.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path, ok := lookup("CONFIG_FILE"); ok && path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("PORT", &c.Port)
	str("HOST", &c.Host)
	str("GIN_MODE", &c.GinMode)
	str("API_BASE_URL", &c.APIBaseURL)
	str("DATA_DIR", &c.DataDir)
	str("STATISTICS_FILE", &c.StatisticsFile)
	str("LOG_LEVEL", &c.LogLevel)

	var errs []error
	parse := func(key string, set func(string) error) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		if err := set(strings.TrimSpace(v)); err != nil {
			errs = append(errs, fmt.Errorf("parse %s: %w", key, err))
		}
	}
	parse("DEV_MODE", func(v string) (err error) {
		c.DevMode, err = strconv.ParseBool(v)
		return err
	})
	parse("RATE_LIMIT_RPS", func(v string) (err error) {
		c.RateLimitRPS, err = strconv.ParseFloat(v, 64)
		return err
	})
	parse("RATE_LIMIT_BURST", func(v string) (err error) {
		c.RateLimitBurst, err = strconv.Atoi(v)
		return err
	})
	parse("SESSION_TTL", func(v string) (err error) {
		c.SessionTTL, err = time.ParseDuration(v)
		return err
	})
	parse("MAX_SESSIONS", func(v string) (err error) {
		c.MaxSessions, err = strconv.Atoi(v)
		return err
	})
	parse("STATS_RETAIN_MONTHS", func(v string) (err error) {
		c.StatsRetainMonths, err = strconv.Atoi(v)
		return err
	})
	return errors.Join(errs...)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Port))
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("invalid gin mode %q", c.GinMode))
	}
	if u, err := url.Parse(c.APIBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api base url must be an absolute http(s) url, got %q", c.APIBaseURL))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data dir is required"))
	}
	if c.StatisticsFile == "" {
		errs = append(errs, errors.New("statistics file is required"))
	}
	if c.RateLimitRPS <= 0 {
		errs = append(errs, fmt.Errorf("rate limit rps must be positive, got %v", c.RateLimitRPS))
	}
	if c.RateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("rate limit burst must be positive, got %d", c.RateLimitBurst))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL))
	}
	if c.MaxSessions <= 0 {
		errs = append(errs, fmt.Errorf("max sessions must be positive, got %d", c.MaxSessions))
	}
	if c.StatsRetainMonths <= 0 {
		errs = append(errs, fmt.Errorf("stats retain months must be positive, got %d", c.StatsRetainMonths))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// StatisticsPath resolves the statistics file against the data directory.
func (c *Config) StatisticsPath() string {
	if filepath.IsAbs(c.StatisticsFile) {
		return c.StatisticsFile
	}
	return filepath.Join(c.DataDir, c.StatisticsFile)
}
