package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Compiler != "./p4c-of" {
		t.Errorf("Compiler = %q, want %q", cfg.Compiler, "./p4c-of")
	}
	if cfg.Timeout != 10*time.Minute {
		t.Errorf("Timeout = %v, want 10m", cfg.Timeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.ScratchRoot != "" {
		t.Errorf("ScratchRoot = %q, want empty (system temp)", cfg.ScratchRoot)
	}
	if cfg.KeepScratch {
		t.Error("KeepScratch = true, want false")
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false")
	}
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `compiler: /usr/local/bin/p4c-of
timeout: 30m
log_level: debug
scratch_root: /tmp/p4check
keep_scratch: true
history:
  enabled: true
  db_path: /tmp/history.db
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Compiler != "/usr/local/bin/p4c-of" {
		t.Errorf("Compiler = %q, want /usr/local/bin/p4c-of", cfg.Compiler)
	}
	if cfg.Timeout != 30*time.Minute {
		t.Errorf("Timeout = %v, want 30m", cfg.Timeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.ScratchRoot != "/tmp/p4check" {
		t.Errorf("ScratchRoot = %q, want /tmp/p4check", cfg.ScratchRoot)
	}
	if !cfg.KeepScratch {
		t.Error("KeepScratch = false, want true")
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if cfg.History.DBPath != "/tmp/history.db" {
		t.Errorf("History.DBPath = %q, want /tmp/history.db", cfg.History.DBPath)
	}
	// keep_runs not in file, default survives the partial history section
	if cfg.History.KeepRuns != 100 {
		t.Errorf("History.KeepRuns = %d, want default 100", cfg.History.KeepRuns)
	}
}

// TestLoadConfigMissingFile verifies defaults are returned for a missing file
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil for missing file", err)
	}
	if cfg.Timeout != 10*time.Minute {
		t.Errorf("Timeout = %v, want default 10m", cfg.Timeout)
	}
}

// TestLoadConfigMalformed verifies malformed YAML is an error
func TestLoadConfigMalformed(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("timeout: [broken"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("LoadConfig() error = nil, want parse error")
	}
}

// TestLoadConfigBadTimeout verifies an unparseable timeout string is an error
func TestLoadConfigBadTimeout(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("timeout: soon\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("LoadConfig() error = nil, want invalid timeout error")
	}
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()

	compiler := "/opt/p4c"
	timeout := 90 * time.Second
	keep := true
	cfg.MergeWithFlags(&compiler, &timeout, nil, &keep)

	if cfg.Compiler != "/opt/p4c" {
		t.Errorf("Compiler = %q, want /opt/p4c", cfg.Compiler)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", cfg.Timeout)
	}
	if cfg.ScratchRoot != "" {
		t.Errorf("ScratchRoot = %q, nil flag must not override", cfg.ScratchRoot)
	}
	if !cfg.KeepScratch {
		t.Error("KeepScratch = false, want true")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "empty compiler", mutate: func(c *Config) { c.Compiler = "" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Timeout = -time.Second }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{
			name: "history enabled without db path",
			mutate: func(c *Config) {
				c.History.Enabled = true
				c.History.DBPath = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
