package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/alsinaforms/tablillas/internal/config"
)

func TestSetupLoggingLevels(t *testing.T) {
	tests := []struct {
		level   string
		debugOn bool
		warnOn  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, true},
		{"error", false, false},
	}

	ctx := context.Background()
	for _, tt := range tests {
		cfg := config.DefaultConfig()
		cfg.LogLevel = tt.level

		logger := setupLogging(cfg)
		if got := logger.Handler().Enabled(ctx, slog.LevelDebug); got != tt.debugOn {
			t.Errorf("level %s: debug enabled = %v, want %v", tt.level, got, tt.debugOn)
		}
		if got := logger.Handler().Enabled(ctx, slog.LevelWarn); got != tt.warnOn {
			t.Errorf("level %s: warn enabled = %v, want %v", tt.level, got, tt.warnOn)
		}
	}
}

func TestPrintVersion(t *testing.T) {
	originalStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	oldVersion := version
	version = "1.2.3"
	defer func() {
		version = oldVersion
		os.Stdout = originalStdout
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		printVersion()
		w.Close()
	}()

	var buf bytes.Buffer
	io.Copy(&buf, r)
	<-done

	out := buf.String()
	if !strings.Contains(out, "Tablillas") {
		t.Errorf("printVersion() output missing product name: %q", out)
	}
	if !strings.Contains(out, "1.2.3") {
		t.Errorf("printVersion() output missing version: %q", out)
	}
}
