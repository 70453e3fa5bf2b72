package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/alsinaforms/tablillas/internal/config"
	"github.com/alsinaforms/tablillas/internal/engine"
	"github.com/alsinaforms/tablillas/internal/extract"
	"github.com/alsinaforms/tablillas/internal/history"
	"github.com/alsinaforms/tablillas/internal/report"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging builds the process logger from the configured level.
func setupLogging(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}
	if cfg.IsDebug() {
		logger.Debug("starting", "config", cfg.String())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	factory := extract.NewFactory(cfg.MaxFileSize, logger)
	if err := factory.ValidateSource(cfg.Input); err != nil {
		return err
	}

	mode, err := extract.ParseMode(cfg.Backend)
	if err != nil {
		return err
	}
	backend, err := factory.Create(mode)
	if err != nil {
		return err
	}

	if pages, err := factory.PageCount(cfg.Input); err == nil {
		logger.Info("processing report", "input", cfg.Input, "pages", pages, "backend", backend.Name())
	} else {
		logger.Info("processing report", "input", cfg.Input, "backend", backend.Name())
	}

	lines, err := backend.ExtractLines(ctx, cfg.Input)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	eng, err := engine.New(engine.Options{
		Weights: engine.Weights{
			DaysSinceReturn: cfg.WeightDays,
			CountingDelay:   cfg.WeightCounting,
			ValidationDelay: cfg.WeightValidation,
			OpenTablets:     cfg.WeightOpen,
		},
		Levels: engine.LevelScale{
			Cutoffs: cfg.LevelCutoffs,
			Labels:  cfg.LevelLabels,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	res := eng.ProcessLines(lines)
	logger.Info("run complete",
		"records", len(res.Records),
		"open_tablets", res.TotalOpenTablets(),
		"rejected", res.Summary.RejectedCount,
		"duplicates", res.Summary.DuplicateCount)
	for reason, count := range res.Summary.RejectionReasons {
		logger.Info("rejections", "reason", string(reason), "count", count)
	}

	outPath := filepath.Join(cfg.OutDir, fmt.Sprintf("tablillas_%s.xlsx", time.Now().Format("20060102_1504")))
	if err := report.NewWriter(logger).SaveFile(res, outPath); err != nil {
		return err
	}
	fmt.Printf("Report written to %s (%d records, %d open tablets)\n",
		outPath, len(res.Records), res.TotalOpenTablets())

	if cfg.HistoryPath != "" {
		if err := recordHistory(ctx, cfg, backend.Name(), res, logger); err != nil {
			// History is best effort; the report already exists.
			logger.Warn("failed to record run history", "error", err)
		}
	}

	return nil
}

func recordHistory(ctx context.Context, cfg *config.Config, backendName string, res *engine.RunResult, logger *slog.Logger) error {
	store, err := history.Open(ctx, cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	rec := history.FromResult(filepath.Base(cfg.Input), backendName, res)
	if prev, ok, err := store.LastRunFor(ctx, rec.SourceFile); err == nil && ok {
		logger.Info("previous run",
			"records", prev.RecordCount,
			"open_tablets", prev.TotalOpenTablets,
			"open_tablets_delta", rec.TotalOpenTablets-prev.TotalOpenTablets,
			"at", prev.CreatedAt.Format(time.RFC3339))
	}

	id, err := store.RecordRun(ctx, rec)
	if err != nil {
		return err
	}
	logger.Debug("run recorded", "id", id, "history", cfg.HistoryPath)
	return nil
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Tablillas Report Processor\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
