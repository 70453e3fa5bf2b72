// Package config holds the CLI configuration, loaded from flags and
// TABLILLAS_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Backend constants
	BackendText  = "text"
	BackendTable = "table"
	BackendAuto  = "auto"

	// Default values
	DefaultBackend     = BackendAuto
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the tablillas report processor
type Config struct {
	// Input configuration
	Input       string // source PDF path
	Backend     string // "text", "table" or "auto"
	MaxFileSize int64  // Maximum PDF file size in bytes

	// Output configuration
	OutDir      string
	HistoryPath string // empty disables the run history database

	// Scoring configuration
	WeightDays       float64
	WeightCounting   float64
	WeightValidation float64
	WeightOpen       float64
	LevelCutoffs     []float64
	LevelLabels      []string

	// Application configuration
	Version  string
	LogLevel string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Backend:          DefaultBackend,
		MaxFileSize:      DefaultMaxFileSize,
		OutDir:           currentDir,
		WeightDays:       0.4,
		WeightCounting:   0.3,
		WeightValidation: 0.2,
		WeightOpen:       0.1,
		LevelCutoffs:     []float64{15, 25},
		LevelLabels:      []string{"Low", "Medium", "High"},
		Version:          "1.0.0",
		LogLevel:         DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.Input != "" {
		if expandedPath, err := filepath.Abs(cfg.Input); err == nil {
			cfg.Input = expandedPath
		}
	}
	if cfg.OutDir != "" {
		if expandedPath, err := filepath.Abs(cfg.OutDir); err == nil {
			cfg.OutDir = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("TABLILLAS")
	viper.AutomaticEnv()

	viper.SetDefault("input", cfg.Input)
	viper.SetDefault("backend", cfg.Backend)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("outdir", cfg.OutDir)
	viper.SetDefault("history", cfg.HistoryPath)
	viper.SetDefault("weight-days", cfg.WeightDays)
	viper.SetDefault("weight-counting", cfg.WeightCounting)
	viper.SetDefault("weight-validation", cfg.WeightValidation)
	viper.SetDefault("weight-open", cfg.WeightOpen)
	viper.SetDefault("level-cutoffs", cfg.LevelCutoffs)
	viper.SetDefault("level-labels", cfg.LevelLabels)
	viper.SetDefault("loglevel", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("input", cfg.Input, "Source PDF file to process")
	pflag.String("backend", cfg.Backend, "Extraction backend: 'text', 'table' or 'auto'")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.String("outdir", cfg.OutDir, "Directory for the generated XLSX report")
	pflag.String("history", cfg.HistoryPath, "Run history SQLite database path (empty disables history)")
	pflag.Float64("weight-days", cfg.WeightDays, "Priority weight for days since return")
	pflag.Float64("weight-counting", cfg.WeightCounting, "Priority weight for counting delay")
	pflag.Float64("weight-validation", cfg.WeightValidation, "Priority weight for validation delay")
	pflag.Float64("weight-open", cfg.WeightOpen, "Priority weight for open tablet count")
	pflag.Float64Slice("level-cutoffs", cfg.LevelCutoffs, "Ascending score cutoffs between priority levels")
	pflag.StringSlice("level-labels", cfg.LevelLabels, "Priority level labels (one more than cutoffs)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"input", "backend", "maxfilesize", "outdir", "history",
		"weight-days", "weight-counting", "weight-validation", "weight-open",
		"level-cutoffs", "level-labels", "loglevel",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nTablillas - outstanding count returns report processor\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --input=report.pdf                          # auto backend, report in cwd\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input=report.pdf --backend=table          # force table extraction\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input=report.pdf --history=runs.db        # keep run history\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  TABLILLAS_INPUT       Source PDF file\n")
		fmt.Fprintf(os.Stderr, "  TABLILLAS_BACKEND     Extraction backend\n")
		fmt.Fprintf(os.Stderr, "  TABLILLAS_OUTDIR      Report output directory\n")
		fmt.Fprintf(os.Stderr, "  TABLILLAS_HISTORY     Run history database path\n")
		fmt.Fprintf(os.Stderr, "  TABLILLAS_LOGLEVEL    Log level\n")
		fmt.Fprintf(os.Stderr, "  TABLILLAS_MAXFILESIZE Maximum file size\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Input = viper.GetString("input")
	cfg.Backend = viper.GetString("backend")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.OutDir = viper.GetString("outdir")
	cfg.HistoryPath = viper.GetString("history")
	cfg.WeightDays = viper.GetFloat64("weight-days")
	cfg.WeightCounting = viper.GetFloat64("weight-counting")
	cfg.WeightValidation = viper.GetFloat64("weight-validation")
	cfg.WeightOpen = viper.GetFloat64("weight-open")
	cfg.LevelCutoffs = getFloat64Slice("level-cutoffs", cfg.LevelCutoffs)
	cfg.LevelLabels = viper.GetStringSlice("level-labels")
	cfg.LogLevel = viper.GetString("loglevel")
}

// getFloat64Slice reads a []float64 key. Viper hands float64Slice flags back
// in their "[a,b]" string form, so that shape is parsed as well; anything
// unusable keeps the fallback.
func getFloat64Slice(key string, fallback []float64) []float64 {
	switch v := viper.Get(key).(type) {
	case []float64:
		return v
	case []interface{}:
		out := make([]float64, 0, len(v))
		for _, item := range v {
			f, ok := item.(float64)
			if !ok {
				return fallback
			}
			out = append(out, f)
		}
		return out
	case string:
		return parseFloatList(v, fallback)
	default:
		return fallback
	}
}

func parseFloatList(s string, fallback []float64) []float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return fallback
	}

	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fallback
		}
		out = append(out, f)
	}
	return out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("input PDF path cannot be empty")
	}

	if c.Backend != BackendText && c.Backend != BackendTable && c.Backend != BackendAuto {
		return fmt.Errorf("invalid backend: %s (must be one of: text, table, auto)", c.Backend)
	}

	if c.OutDir == "" {
		return errors.New("output directory cannot be empty")
	}

	// Create the output directory if it doesn't exist
	if _, err := os.Stat(c.OutDir); os.IsNotExist(err) {
		if err := os.MkdirAll(c.OutDir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create output directory %s: %w", c.OutDir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access output directory %s: %w", c.OutDir, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	for _, w := range []float64{c.WeightDays, c.WeightCounting, c.WeightValidation, c.WeightOpen} {
		if w < 0 {
			return errors.New("priority weights must not be negative")
		}
	}
	if c.WeightDays+c.WeightCounting+c.WeightValidation+c.WeightOpen == 0 {
		return errors.New("at least one priority weight must be positive")
	}

	if len(c.LevelLabels) != len(c.LevelCutoffs)+1 {
		return fmt.Errorf("need %d level labels for %d cutoffs, have %d",
			len(c.LevelCutoffs)+1, len(c.LevelCutoffs), len(c.LevelLabels))
	}
	for i := 1; i < len(c.LevelCutoffs); i++ {
		if c.LevelCutoffs[i] <= c.LevelCutoffs[i-1] {
			return fmt.Errorf("level cutoffs must be strictly ascending, got %v", c.LevelCutoffs)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Input: %s, Backend: %s, OutDir: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Input, c.Backend, c.OutDir, c.LogLevel, c.MaxFileSize)
}
