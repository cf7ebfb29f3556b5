// Package config loads LokalKu settings from an optional YAML file, a
// .env file, and LOKALKU_* environment variables, in increasing order of
// precedence.
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
	"github.com/lokalku/lokalku"
	"gopkg.in/yaml.v3"
)

// Provider names.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderHTTP      = "http"
)

// Storage backend names.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	// APIKey overrides the provider-specific keys below. For the http
	// provider it is sent as a bearer token.
	APIKey          string        `yaml:"api_key"`
	GeminiAPIKey    string        `yaml:"gemini_api_key"`
	AnthropicAPIKey string        `yaml:"anthropic_api_key"`
	Endpoint        string        `yaml:"endpoint"`
	Timeout         time.Duration `yaml:"timeout"`
	Listen          string        `yaml:"listen"`
	LogLevel        string        `yaml:"log_level"`
	Storage         Storage       `yaml:"storage"`
}

// ProviderKey returns the API key for the selected provider.
func (c *Config) ProviderKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	switch c.Provider {
	case ProviderGemini:
		return c.GeminiAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	}
	return ""
}

// Storage selects where the chat session snapshot lives.
type Storage struct {
	Backend string        `yaml:"backend"`
	Path    string        `yaml:"path"` // directory for file, database file for sqlite
	URL     string        `yaml:"url"`  // redis://...
	Key     string        `yaml:"key"`
	TTL     time.Duration `yaml:"ttl"`
}

// LookupFunc reports an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider: ProviderGemini,
		Timeout:  lokalku.DefaultTimeout,
		Listen:   ":8080",
		LogLevel: "info",
		Storage: Storage{
			Backend: StorageFile,
			Path:    filepath.Join(homeDir(), ".lokalku", "sessions"),
			Key:     lokalku.DefaultSnapshotKey,
			TTL:     lokalku.SessionTTL,
		},
	}
}

// DefaultPath returns ~/.lokalku/config.yaml.
func DefaultPath() string {
	return filepath.Join(homeDir(), ".lokalku", "config.yaml")
}

// Load reads .env from the working directory, then the YAML file at path,
// then the process environment. A missing file at the default path is
// tolerated; a missing explicit path is an error. The result is not
// validated: callers apply their own overrides and then call Validate.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	return LoadFrom(path, explicit, os.LookupEnv)
}

// LoadFrom is Load without the .env step and with an injectable
// environment.
func LoadFrom(path string, required bool, lookup LookupFunc) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !required:
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("LOKALKU_PROVIDER", &c.Provider)
	str("LOKALKU_MODEL", &c.Model)
	str("GEMINI_API_KEY", &c.GeminiAPIKey)
	str("ANTHROPIC_API_KEY", &c.AnthropicAPIKey)
	str("LOKALKU_API_KEY", &c.APIKey)
	str("LOKALKU_ENDPOINT", &c.Endpoint)
	str("LOKALKU_LISTEN", &c.Listen)
	str("LOKALKU_LOG_LEVEL", &c.LogLevel)
	str("LOKALKU_STORAGE", &c.Storage.Backend)
	str("LOKALKU_STORAGE_PATH", &c.Storage.Path)
	str("LOKALKU_REDIS_URL", &c.Storage.URL)
	str("LOKALKU_SNAPSHOT_KEY", &c.Storage.Key)
	if err := dur("LOKALKU_TIMEOUT", &c.Timeout); err != nil {
		return err
	}
	return dur("LOKALKU_SESSION_TTL", &c.Storage.TTL)
}

// Validate checks that the provider and storage settings fit together.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderAnthropic:
	case ProviderHTTP:
		if c.Endpoint == "" {
			return fmt.Errorf("provider %q requires endpoint: %w", c.Provider, lokalku.ErrValidation)
		}
	default:
		return fmt.Errorf("unknown provider %q: %w", c.Provider, lokalku.ErrValidation)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0: %w", lokalku.ErrValidation)
	}
	switch c.Storage.Backend {
	case StorageMemory:
	case StorageFile, StorageSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage %q requires path: %w", c.Storage.Backend, lokalku.ErrValidation)
		}
	case StorageRedis:
		if c.Storage.URL == "" {
			return fmt.Errorf("storage %q requires url: %w", c.Storage.Backend, lokalku.ErrValidation)
		}
		if c.Storage.TTL < 0 {
			return fmt.Errorf("storage ttl must be >= 0: %w", lokalku.ErrValidation)
		}
	default:
		return fmt.Errorf("unknown storage backend %q: %w", c.Storage.Backend, lokalku.ErrValidation)
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
