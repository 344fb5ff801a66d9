package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAPIBaseURL     = "http://localhost:8000/api"
	defaultTimeoutSeconds = 15
	defaultPageSize       = 8
)

type Config struct {
	APIBaseURL            string `yaml:"api_base_url"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	StateDir              string `yaml:"state_dir"`
	SentryDSN             string `yaml:"sentry_dsn"`
	Environment           string `yaml:"environment"`
	PageSize              int    `yaml:"page_size"`
}

func Default() Config {
	return Config{
		APIBaseURL:            defaultAPIBaseURL,
		RequestTimeoutSeconds: defaultTimeoutSeconds,
		StateDir:              defaultStateDir(),
		Environment:           "development",
		PageSize:              defaultPageSize,
	}
}

// Load builds the effective configuration: defaults, then the optional YAML
// file, then environment overrides.
func Load() (Config, error) {
	cfg := Default()

	path := strings.TrimSpace(os.Getenv("QMS_CONFIG"))
	if path == "" {
		path = filepath.Join(cfg.StateDir, "config.yaml")
	}
	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.APIBaseURL = envOrDefault("QMS_API_URL", cfg.APIBaseURL)
	cfg.RequestTimeoutSeconds = envIntOrDefault("QMS_TIMEOUT_SECONDS", cfg.RequestTimeoutSeconds)
	cfg.StateDir = envOrDefault("QMS_STATE_DIR", cfg.StateDir)
	cfg.SentryDSN = envOrDefault("SENTRY_DSN", cfg.SentryDSN)
	cfg.Environment = envOrDefault("APP_ENV", cfg.Environment)
	cfg.PageSize = envIntOrDefault("QMS_PAGE_SIZE", cfg.PageSize)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	parsed, err := url.Parse(c.APIBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid api base url: %q", c.APIBaseURL)
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request timeout must be positive, got %d", c.RequestTimeoutSeconds)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if strings.TrimSpace(c.StateDir) == "" {
		return fmt.Errorf("state dir must not be empty")
	}
	return nil
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".qms"
	}
	return filepath.Join(home, ".qms")
}

func envOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envIntOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
