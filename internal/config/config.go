// Package config provides configuration loading and structs for sense.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/sense/internal/apperr"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is wrapped in a Config-kind error when the remote provider has no key.
var ErrMissingAPIKey = errors.New("embedding api key not set")

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Root      string          `yaml:"root"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Indexer   IndexerConfig   `yaml:"indexer"`
	Labels    LabelsConfig    `yaml:"labels"`
	Search    SearchConfig    `yaml:"search"`
	Watch     WatchConfig     `yaml:"watch"`
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the index database and the derived label index locations.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	LabelIndexPath string `yaml:"label_index_path"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	APIKey      string `yaml:"api_key"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Dimensions  int    `yaml:"dimensions"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	CacheSize   int    `yaml:"cache_size"`
}

// ResolveAPIKey returns the inline key, or the value of the configured environment variable.
func (e *EmbeddingConfig) ResolveAPIKey() string {
	if e.APIKey != "" {
		return e.APIKey
	}
	if e.APIKeyEnv != "" {
		return os.Getenv(e.APIKeyEnv)
	}
	return ""
}

// IndexerConfig bounds provider concurrency and retry, and selects which files are scanned.
type IndexerConfig struct {
	Concurrency   int      `yaml:"concurrency"`
	MaxRetries    int      `yaml:"max_retries"`
	BaseDelayMs   int      `yaml:"base_delay_ms"`
	MaxDelayMs    int      `yaml:"max_delay_ms"`
	Extensions    []string `yaml:"extensions"`
	IncludeHidden bool     `yaml:"include_hidden"`
}

// LabelsConfig selects how files get their text label.
type LabelsConfig struct {
	Mode      string `yaml:"mode"`
	SheetPath string `yaml:"sheet_path"`
}

// SearchConfig holds result limits.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// Load reads and parses the config file at path, applies defaults, expands paths,
// and loads a .env file next to it when one exists.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	configDir := filepath.Dir(path)
	if err := loadDotEnv(configDir); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	cfg.expandPaths(configDir)
	return &cfg, nil
}

// Default returns an all-defaults config whose relative paths resolve against dir.
func Default(dir string) *Config {
	var cfg Config
	_ = loadDotEnv(dir)
	ApplyDefaults(&cfg)
	cfg.expandPaths(dir)
	return &cfg
}

// Save writes the config to path. Used for persisting watch directory add/remove.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks the settings a command needs before it talks to the provider.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "remote":
		if c.Embedding.ResolveAPIKey() == "" {
			return apperr.New(apperr.Config, "validate", "",
				fmt.Errorf("%w: set embedding.api_key or $%s", ErrMissingAPIKey, c.Embedding.APIKeyEnv))
		}
	case "mock":
	default:
		return apperr.Errorf(apperr.Config, "validate", "", "unknown embedding provider %q", c.Embedding.Provider)
	}
	switch c.Labels.Mode {
	case "sheet", "prompt", "extract", "chain":
	default:
		return apperr.Errorf(apperr.Config, "validate", "", "unknown labels mode %q", c.Labels.Mode)
	}
	if c.Indexer.Concurrency < 1 {
		return apperr.Errorf(apperr.Config, "validate", "", "indexer.concurrency must be at least 1")
	}
	return nil
}

func (c *Config) expandPaths(configDir string) {
	c.Root = expandPath(c.Root, configDir)
	c.Storage.DatabasePath = expandPath(c.Storage.DatabasePath, configDir)
	c.Storage.LabelIndexPath = expandPath(c.Storage.LabelIndexPath, configDir)
	c.Labels.SheetPath = expandPath(c.Labels.SheetPath, configDir)
	for i := range c.Watch.Directories {
		c.Watch.Directories[i] = expandPath(c.Watch.Directories[i], configDir)
	}
}

// loadDotEnv exports variables from configDir/.env without overriding the environment.
func loadDotEnv(configDir string) error {
	envPath := filepath.Join(configDir, ".env")
	if _, err := os.Stat(envPath); err != nil {
		return nil
	}
	if err := godotenv.Load(envPath); err != nil {
		return fmt.Errorf("failed to load %s: %w", envPath, err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if strings.HasPrefix(path, "~/") {
		path = path[2:]
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}

// DefaultPath is ~/.sense/config.yaml, or "" when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sense", "config.yaml")
}
