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

// DefaultBaseURL is used when neither the config file nor the environment
// name a backend.
const DefaultBaseURL = "http://localhost:3000"

type Config struct {
	// Backend API settings
	API APIConfig `yaml:"api"`

	// Invoice settings
	Invoice InvoiceConfig `yaml:"invoice"`

	// Offline snapshot cache
	Cache CacheConfig `yaml:"cache"`

	// Logging
	Log LogConfig `yaml:"log"`
}

type APIConfig struct {
	BaseURL  string        `yaml:"base_url"`  // Backend origin, e.g. http://localhost:3000
	Timeout  time.Duration `yaml:"timeout"`   // Per-request timeout
	NITParam string        `yaml:"nit_param"` // Query parameter name used for NIT filtering
}

type InvoiceConfig struct {
	DueDays      int    `yaml:"due_days"`      // Days from issue date until payment is due
	CurrencySign string `yaml:"currency_sign"` // Prefix used when rendering amounts
}

type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // Path to the encrypted SQLite snapshot
}

type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // console, json
	Output string `yaml:"output"` // stdout, stderr or a file path
}

// Dir returns ~/.config/facturas
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", "facturas")
	}
	return filepath.Join(homeDir, ".config", "facturas")
}

// DefaultConfigPath returns $FACTURAS_CONFIG, or ~/.config/facturas/config.yaml
func DefaultConfigPath() string {
	if p := os.Getenv("FACTURAS_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := Dir()

	return &Config{
		API: APIConfig{
			BaseURL:  DefaultBaseURL,
			Timeout:  15 * time.Second,
			NITParam: "NIT",
		},
		Invoice: InvoiceConfig{
			DueDays:      30,
			CurrencySign: "Q",
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    filepath.Join(dir, "cache.db"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: filepath.Join(dir, "facturas.log"),
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadFile reads defaults plus the YAML file at path, without applying
// FACTURAS_* environment overrides. Use it when the result is saved back.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// applyEnv overrides file values with FACTURAS_* environment variables
func (c *Config) applyEnv() {
	c.API.BaseURL = getEnv("FACTURAS_API_BASE_URL", c.API.BaseURL)
	c.API.Timeout = getEnvDuration("FACTURAS_API_TIMEOUT", c.API.Timeout)
	c.API.NITParam = getEnv("FACTURAS_API_NIT_PARAM", c.API.NITParam)
	c.Invoice.DueDays = getEnvInt("FACTURAS_DUE_DAYS", c.Invoice.DueDays)
	c.Cache.Path = getEnv("FACTURAS_CACHE_PATH", c.Cache.Path)
	if v := os.Getenv("FACTURAS_CACHE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Cache.Enabled = b
		}
	}
	c.Log.Level = getEnv("FACTURAS_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("FACTURAS_LOG_FORMAT", c.Log.Format)
	c.Log.Output = getEnv("FACTURAS_LOG_OUTPUT", c.Log.Output)
}

// Validate returns every problem found in the configuration at once
func (c *Config) Validate() error {
	var errs []string

	if c.API.BaseURL == "" {
		errs = append(errs, "api.base_url cannot be empty")
	} else if u, err := url.Parse(c.API.BaseURL); err != nil {
		errs = append(errs, fmt.Sprintf("invalid api.base_url '%s': %v", c.API.BaseURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("invalid api.base_url scheme '%s': must be 'http' or 'https'", u.Scheme))
	}

	if c.API.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("invalid api.timeout %v: must not be negative", c.API.Timeout))
	}
	if strings.TrimSpace(c.API.NITParam) == "" {
		errs = append(errs, "api.nit_param cannot be empty")
	}

	if c.Invoice.DueDays < 0 {
		errs = append(errs, fmt.Sprintf("invalid invoice.due_days %d: must not be negative", c.Invoice.DueDays))
	}

	if c.Cache.Enabled && c.Cache.Path == "" {
		errs = append(errs, "cache.path cannot be empty when the cache is enabled")
	}

	switch strings.ToLower(c.Log.Format) {
	case "console", "json", "":
	default:
		errs = append(errs, fmt.Sprintf("invalid log.format '%s': must be 'console' or 'json'", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates the directories for the cache and log file
func (c *Config) EnsureDirectories() error {
	if c.Cache.Enabled {
		if err := os.MkdirAll(filepath.Dir(c.Cache.Path), 0700); err != nil {
			return err
		}
	}

	switch c.Log.Output {
	case "", "stdout", "stderr":
	default:
		if err := os.MkdirAll(filepath.Dir(c.Log.Output), 0755); err != nil {
			return err
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
