package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrison/runcollect/internal/collector"
	"github.com/harrison/runcollect/internal/logger"
	"github.com/harrison/runcollect/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where LoadConfigFromDir looks, relative to the directory given.
var DefaultConfigPath = filepath.Join(".runcollect", "config.yaml")

// Config represents runcollect configuration options
type Config struct {
	// ResultFile is the name of the result document in a run directory
	ResultFile string `yaml:"result_file"`

	// ConfigFile is the name of the config document in a run directory
	ConfigFile string `yaml:"config_file"`

	// MarkerFile marks a run directory to be skipped
	MarkerFile string `yaml:"marker_file"`

	// Ignore lists file name substrings that exclude a run directory
	Ignore []string `yaml:"ignore"`

	// IgnoreMarkerOverride collects runs even when the marker file is present
	IgnoreMarkerOverride bool `yaml:"ignore_marker_override"`

	// CollectAll collects every directory holding a config file
	CollectAll bool `yaml:"collect_all"`

	// ExcludeDirs names directories that are never walked into
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// MaxDepth limits the walk (0 = unlimited, 1 = root only)
	MaxDepth int `yaml:"max_depth"`

	// SkipHidden leaves directories whose name starts with "." unwalked
	SkipHidden bool `yaml:"skip_hidden"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir, when set, receives a run log per invocation
	LogDir string `yaml:"log_dir"`
}

// DefaultConfig returns a Config with the standard file names and no filtering
func DefaultConfig() *Config {
	return &Config{
		ResultFile:  models.DefaultResultFile,
		ConfigFile:  models.DefaultConfigFile,
		MarkerFile:  models.DefaultMarkerFile,
		Ignore:      nil,
		ExcludeDirs: nil,
		MaxDepth:    0, // Unlimited
		LogLevel:    "info",
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Key presence decides what overrides a default, so an explicit
	// "ignore: []" or "collect_all: false" is honoured.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	set := func(key string) bool {
		_, ok := rawMap[key]
		return ok
	}

	if fileCfg.ResultFile != "" {
		cfg.ResultFile = fileCfg.ResultFile
	}
	if fileCfg.ConfigFile != "" {
		cfg.ConfigFile = fileCfg.ConfigFile
	}
	if fileCfg.MarkerFile != "" {
		cfg.MarkerFile = fileCfg.MarkerFile
	}
	if set("ignore") {
		cfg.Ignore = fileCfg.Ignore
	}
	if set("ignore_marker_override") {
		cfg.IgnoreMarkerOverride = fileCfg.IgnoreMarkerOverride
	}
	if set("collect_all") {
		cfg.CollectAll = fileCfg.CollectAll
	}
	if set("exclude_dirs") {
		cfg.ExcludeDirs = fileCfg.ExcludeDirs
	}
	if set("max_depth") {
		cfg.MaxDepth = fileCfg.MaxDepth
	}
	if set("skip_hidden") {
		cfg.SkipHidden = fileCfg.SkipHidden
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogDir != "" {
		cfg.LogDir = fileCfg.LogDir
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .runcollect/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, DefaultConfigPath))
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(ignore []string, ignoreMarkerOverride *bool, collectAll *bool, excludeDirs []string, maxDepth *int, skipHidden *bool, logLevel *string, logDir *string) {
	if ignore != nil {
		c.Ignore = ignore
	}
	if ignoreMarkerOverride != nil {
		c.IgnoreMarkerOverride = *ignoreMarkerOverride
	}
	if collectAll != nil {
		c.CollectAll = *collectAll
	}
	if excludeDirs != nil {
		c.ExcludeDirs = excludeDirs
	}
	if maxDepth != nil {
		c.MaxDepth = *maxDepth
	}
	if skipHidden != nil {
		c.SkipHidden = *skipHidden
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.ResultFile == "" {
		return fmt.Errorf("result_file cannot be empty")
	}
	if c.ConfigFile == "" {
		return fmt.Errorf("config_file cannot be empty")
	}
	if c.MarkerFile == "" {
		return fmt.Errorf("marker_file cannot be empty")
	}

	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}

	return nil
}

// ToOptions builds collector options from the configuration.
// Output and Logger are left for the caller to set.
func (c *Config) ToOptions() collector.Options {
	return collector.Options{
		Ignore:               c.Ignore,
		IgnoreMarkerOverride: c.IgnoreMarkerOverride,
		CollectAll:           c.CollectAll,
		ResultFile:           c.ResultFile,
		ConfigFile:           c.ConfigFile,
		MarkerFile:           c.MarkerFile,
		ExcludeDirs:          c.ExcludeDirs,
		MaxDepth:             c.MaxDepth,
		SkipHidden:           c.SkipHidden,
	}
}
