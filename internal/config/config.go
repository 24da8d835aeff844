package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ohare93/formula/internal/catalog"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"

	// Defaults for configuration fields
	DefaultCatalogURL    = catalog.DefaultURL
	DefaultLogFile       = "formula.log"
	DefaultMaxCandidates = 0 // no limit
)

// DefaultColumns are the result columns shown when none are configured
var DefaultColumns = []string{"2025-01-24", "2025-01-25", "2025-01-26", "2025-01-27"}

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// ConfigOptions holds configurable options for locating the config file
type ConfigOptions struct {
	ConfigHome string // Override for the home directory
	DirName    string // Name of the config directory (default: ".formula")
}

// DefaultConfigOptions returns the default config options
func DefaultConfigOptions() ConfigOptions {
	home, _ := os.UserHomeDir()
	return ConfigOptions{
		ConfigHome: home,
		DirName:    ".formula",
	}
}

// Dir returns the directory holding the config file
func (o ConfigOptions) Dir() (string, error) {
	home := o.ConfigHome
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		home = h
	}
	name := o.DirName
	if name == "" {
		name = ".formula"
	}
	return filepath.Join(home, name), nil
}

// Path returns the config file location
func (o ConfigOptions) Path() (string, error) {
	dir, err := o.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// CatalogConfig locates the autocomplete item list
type CatalogConfig struct {
	URL  string `yaml:"url"`
	File string `yaml:"file,omitempty"` // takes precedence over URL when set
}

// LogConfig controls the file logger
type LogConfig struct {
	File  string `yaml:"file"`
	Debug bool   `yaml:"debug,omitempty"`
}

// Config holds the formula editor configuration
type Config struct {
	Catalog       CatalogConfig `yaml:"catalog"`
	Columns       []string      `yaml:"columns"`
	Log           LogConfig     `yaml:"log"`
	MaxCandidates int           `yaml:"max_candidates,omitempty"`
}

// DefaultConfig returns a configuration with the public catalog and four columns
func DefaultConfig() *Config {
	return &Config{
		Catalog:       CatalogConfig{URL: DefaultCatalogURL},
		Columns:       append([]string(nil), DefaultColumns...),
		Log:           LogConfig{File: DefaultLogFile},
		MaxCandidates: DefaultMaxCandidates,
	}
}

// LoadConfig loads configuration from ~/.formula/config.yaml
func LoadConfig() (*Config, error) {
	return LoadConfigWithOptions(DefaultConfigOptions())
}

// LoadConfigWithOptions loads configuration with custom options. A missing file
// is created with defaults; empty fields of an existing file fall back to defaults.
func LoadConfigWithOptions(opts ConfigOptions) (*Config, error) {
	configPath, err := opts.Path()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.SaveWithOptions(opts); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Catalog.URL == "" {
		c.Catalog.URL = DefaultCatalogURL
	}
	if len(c.Columns) == 0 {
		c.Columns = append([]string(nil), DefaultColumns...)
	}
	if c.Log.File == "" {
		c.Log.File = DefaultLogFile
	}
}

// Validate checks column dates and limits
func (c *Config) Validate() error {
	for _, d := range c.Columns {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("%w: column %q is not a YYYY-MM-DD date", ErrInvalidConfig, d)
		}
	}
	if c.MaxCandidates < 0 {
		return fmt.Errorf("%w: max_candidates must not be negative, got %d", ErrInvalidConfig, c.MaxCandidates)
	}
	return nil
}

// LogPath resolves the log file, relative paths living in the config directory
func (c *Config) LogPath(opts ConfigOptions) (string, error) {
	if filepath.IsAbs(c.Log.File) {
		return c.Log.File, nil
	}
	dir, err := opts.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Log.File), nil
}

// Save persists the configuration to disk
func (c *Config) Save() error {
	return c.SaveWithOptions(DefaultConfigOptions())
}

// SaveWithOptions persists the configuration with custom options
func (c *Config) SaveWithOptions(opts ConfigOptions) error {
	configPath, err := opts.Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
