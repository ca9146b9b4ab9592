// Package config provides centralized configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Cache kinds accepted in Config.Cache.
const (
	CacheMemory = "memory"
	CacheNATS   = "nats"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configuration values for stepwise.
type Config struct {
	PagesDir    string   `mapstructure:"pages_dir" yaml:"pages_dir"`
	Flow        []string `mapstructure:"flow" yaml:"flow"`
	Cache       string   `mapstructure:"cache" yaml:"cache"`
	DataDir     string   `mapstructure:"data_dir" yaml:"data_dir"`
	LookupsFile string   `mapstructure:"lookups_file" yaml:"lookups_file"`
	HooksFile   string   `mapstructure:"hooks_file" yaml:"hooks_file"`
	LogLevel    string   `mapstructure:"log_level" yaml:"log_level"`
	LogFile     string   `mapstructure:"log_file" yaml:"log_file"`
	Watch       bool     `mapstructure:"watch" yaml:"watch"`
}

// DefaultFlow is the page order used when no flow is configured.
var DefaultFlow = []string{"welcome", "login", "finish"}

// Default returns the configuration Load produces with no files or env vars.
func Default() *Config {
	return &Config{
		Flow:      append([]string(nil), DefaultFlow...),
		Cache:     CacheMemory,
		DataDir:   ".stepwise",
		HooksFile: ".stepwise.hooks.yml",
		LogLevel:  "info",
	}
}

var keys = []string{
	"pages_dir",
	"flow",
	"cache",
	"data_dir",
	"lookups_file",
	"hooks_file",
	"log_level",
	"log_file",
	"watch",
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("stepwise")

	def := Default()
	v.SetDefault("pages_dir", def.PagesDir)
	v.SetDefault("flow", def.Flow)
	v.SetDefault("cache", def.Cache)
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("lookups_file", def.LookupsFile)
	v.SetDefault("hooks_file", def.HooksFile)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("watch", def.Watch)

	v.SetEnvPrefix("STEPWISE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit bindings so bools and lists parse from the environment
	for _, key := range keys {
		if err := v.BindEnv(key, "STEPWISE_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the values Load cannot check on its own.
func (c *Config) Validate() error {
	switch c.Cache {
	case CacheMemory, CacheNATS:
	default:
		return fmt.Errorf("%w: unknown cache %q (want %s or %s)", ErrInvalidConfig, c.Cache, CacheMemory, CacheNATS)
	}
	if len(c.Flow) == 0 {
		return fmt.Errorf("%w: flow must name at least one page", ErrInvalidConfig)
	}
	for i, id := range c.Flow {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: flow entry %d is empty", ErrInvalidConfig, i)
		}
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is required", ErrInvalidConfig)
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/stepwise/stepwise.yml or $XDG_CONFIG_HOME/stepwise/stepwise.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "stepwise", "stepwise.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "stepwise", "stepwise.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "stepwise.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
