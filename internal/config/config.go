package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tekus/provider-console/internal/api"
)

// Environment overrides, also read from an optional .env file.
const (
	EnvAPIURL        = "TEKUS_API_URL"
	EnvLogLevel      = "TEKUS_LOG_LEVEL"
	EnvSuccessMarker = "TEKUS_SUCCESS_MARKER"
)

const defaultTimeout = 30 * time.Second

// Config holds CLI configuration stored at ~/.tekus/config.
type Config struct {
	APIURL         string        `yaml:"api_url"`
	Email          string        `yaml:"email,omitempty"`
	SuccessMarker  string        `yaml:"success_marker,omitempty"`
	LogLevel       string        `yaml:"log_level,omitempty"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:         api.DefaultBaseURL,
		SuccessMarker:  api.DefaultSuccessMarker,
		LogLevel:       "info",
		RequestTimeout: defaultTimeout,
	}
}

// Dir returns the config directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tekus")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), "config")
}

// Load reads and parses the config file. Returns error if missing or insecure.
func Load() (*Config, error) {
	path := Path()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config not found: %w", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		return nil, fmt.Errorf("config permissions too open: %04o (want 0600)", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if strings.TrimSpace(cfg.APIURL) == "" {
		return nil, fmt.Errorf("config missing api_url")
	}

	return &cfg, nil
}

// Resolve loads the config file if present, falls back to defaults when it
// is missing, then applies .env and environment overrides.
func Resolve() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		def := Default()
		cfg = &def
	}
	if err := cfg.ApplyEnv(".env"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv loads envFile when it exists and overrides fields from the
// environment. Variables already set in the process win over the file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSuccessMarker)); v != "" {
		c.SuccessMarker = v
	}
	return nil
}

// Timeout returns the request timeout, defaulting to 30s.
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return defaultTimeout
	}
	return c.RequestTimeout
}

// Client builds an API client from the config.
func (c *Config) Client() *api.Client {
	client := api.NewClient(c.APIURL, c.Timeout())
	client.SetSuccessMarker(c.SuccessMarker)
	return client
}

// Save writes the config to disk with secure permissions.
func (c *Config) Save() error {
	path := Path()
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}
