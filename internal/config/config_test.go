package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Backend != "auto" {
		t.Errorf("Expected default backend to be 'auto', got '%s'", cfg.Backend)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}

	if cfg.Version != "1.0.0" {
		t.Errorf("Expected default version to be '1.0.0', got '%s'", cfg.Version)
	}

	if cfg.HistoryPath != "" {
		t.Errorf("Expected history to be disabled by default, got '%s'", cfg.HistoryPath)
	}

	if cfg.WeightDays != 0.4 || cfg.WeightCounting != 0.3 || cfg.WeightValidation != 0.2 || cfg.WeightOpen != 0.1 {
		t.Errorf("Unexpected default weights: %v %v %v %v",
			cfg.WeightDays, cfg.WeightCounting, cfg.WeightValidation, cfg.WeightOpen)
	}

	if len(cfg.LevelCutoffs) != 2 || cfg.LevelCutoffs[0] != 15 || cfg.LevelCutoffs[1] != 25 {
		t.Errorf("Unexpected default level cutoffs: %v", cfg.LevelCutoffs)
	}

	if len(cfg.LevelLabels) != 3 {
		t.Errorf("Expected 3 default level labels, got %v", cfg.LevelLabels)
	}

	// Output directory defaults to the current working directory
	currentDir, _ := os.Getwd()
	if cfg.OutDir != currentDir {
		t.Errorf("Expected default output directory to be '%s', got '%s'", currentDir, cfg.OutDir)
	}
}

func validTestConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Input = "report.pdf"
	cfg.OutDir = t.TempDir()
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty input",
			mutate:  func(c *Config) { c.Input = "" },
			wantErr: true,
		},
		{
			name:    "invalid backend",
			mutate:  func(c *Config) { c.Backend = "ocr" },
			wantErr: true,
		},
		{
			name:    "empty output directory",
			mutate:  func(c *Config) { c.OutDir = "" },
			wantErr: true,
		},
		{
			name:    "zero max file size",
			mutate:  func(c *Config) { c.MaxFileSize = 0 },
			wantErr: true,
		},
		{
			name:    "negative weight",
			mutate:  func(c *Config) { c.WeightDays = -0.1 },
			wantErr: true,
		},
		{
			name: "all weights zero",
			mutate: func(c *Config) {
				c.WeightDays = 0
				c.WeightCounting = 0
				c.WeightValidation = 0
				c.WeightOpen = 0
			},
			wantErr: true,
		},
		{
			name:    "label count mismatch",
			mutate:  func(c *Config) { c.LevelLabels = []string{"Low", "High"} },
			wantErr: true,
		},
		{
			name:    "descending cutoffs",
			mutate:  func(c *Config) { c.LevelCutoffs = []float64{25, 15} },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateCreatesOutDir(t *testing.T) {
	cfg := validTestConfig(t)
	cfg.OutDir = filepath.Join(t.TempDir(), "reports", "out")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	info, err := os.Stat(cfg.OutDir)
	if err != nil {
		t.Fatalf("output directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory", cfg.OutDir)
	}
}

func TestIsDebug(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.IsDebug() {
		t.Error("IsDebug() should be false for the default log level")
	}

	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("IsDebug() should be true when log level is debug")
	}
}

func TestConfigString(t *testing.T) {
	cfg := validTestConfig(t)
	s := cfg.String()

	if !strings.Contains(s, "report.pdf") {
		t.Errorf("String() should include the input path, got %s", s)
	}
	if !strings.Contains(s, "auto") {
		t.Errorf("String() should include the backend, got %s", s)
	}
}
