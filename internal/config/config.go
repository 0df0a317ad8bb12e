package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// HistoryConfig controls the optional run-history store.
type HistoryConfig struct {
	// Enabled turns on run recording.
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database.
	DBPath string `yaml:"db_path"`

	// KeepRuns is the maximum number of runs to keep per test
	// (0 = unlimited).
	KeepRuns int `yaml:"keep_runs"`
}

// Config represents p4check configuration options.
type Config struct {
	// Compiler is the external compiler executable to invoke.
	Compiler string `yaml:"compiler"`

	// Timeout is the wall-clock limit for one compiler run.
	Timeout time.Duration `yaml:"timeout"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// ScratchRoot is the parent directory for scratch directories
	// (empty = system temp directory).
	ScratchRoot string `yaml:"scratch_root"`

	// KeepScratch retains scratch directories after the run.
	KeepScratch bool `yaml:"keep_scratch"`

	// History contains run-history store configuration.
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values.
// The 10 minute timeout matches the historical test-harness limit.
func DefaultConfig() *Config {
	return &Config{
		Compiler:    "./p4c-of",
		Timeout:     10 * time.Minute,
		LogLevel:    "info",
		ScratchRoot: "",
		KeepScratch: false,
		History: HistoryConfig{
			Enabled:  false,
			DBPath:   filepath.Join(".p4check", "history.db"),
			KeepRuns: 100,
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Temporary struct so the timeout can be parsed from a duration string.
	type yamlConfig struct {
		Compiler    string        `yaml:"compiler"`
		Timeout     string        `yaml:"timeout"`
		LogLevel    string        `yaml:"log_level"`
		ScratchRoot string        `yaml:"scratch_root"`
		KeepScratch bool          `yaml:"keep_scratch"`
		History     HistoryConfig `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.Compiler != "" {
		cfg.Compiler = yamlCfg.Compiler
	}
	if yamlCfg.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", yamlCfg.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.ScratchRoot != "" {
		cfg.ScratchRoot = yamlCfg.ScratchRoot
	}
	if yamlCfg.KeepScratch {
		cfg.KeepScratch = yamlCfg.KeepScratch
	}

	// History is a nested section; detect which fields were actually set.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if historySection, exists := rawMap["history"]; exists && historySection != nil {
			history := yamlCfg.History
			historyMap, _ := historySection.(map[string]interface{})

			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = history.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = history.DBPath
			}
			if _, exists := historyMap["keep_runs"]; exists {
				cfg.History.KeepRuns = history.KeepRuns
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .p4check/config.yaml in the
// specified directory. If the directory or file doesn't exist, returns
// default configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".p4check", "config.yaml")
	return LoadConfig(configPath)
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values, so CLI flags take
// precedence over config file settings.
func (c *Config) MergeWithFlags(compiler *string, timeout *time.Duration, scratchRoot *string, keepScratch *bool) {
	if compiler != nil {
		c.Compiler = *compiler
	}
	if timeout != nil {
		c.Timeout = *timeout
	}
	if scratchRoot != nil {
		c.ScratchRoot = *scratchRoot
	}
	if keepScratch != nil {
		c.KeepScratch = *keepScratch
	}
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	if c.Compiler == "" {
		return fmt.Errorf("compiler cannot be empty")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.History.Enabled {
		if c.History.DBPath == "" {
			return fmt.Errorf("history.db_path cannot be empty when history is enabled")
		}
		if c.History.KeepRuns < 0 {
			return fmt.Errorf("history.keep_runs must be >= 0, got %d", c.History.KeepRuns)
		}
	}

	return nil
}
