// Package extract recovers raw text lines from report PDFs. Two backends are
// provided: text mode reads the built-in row grouping of ledongthuc/pdf,
// table mode rebuilds rows from positioned glyphs and renders column gaps as
// wide space runs so downstream name-splitting can see them. Auto mode tries
// table mode first and falls back to text mode.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/alsinaforms/tablillas/internal/engine"
)

// Mode selects an extraction backend.
type Mode string

const (
	ModeText  Mode = "text"
	ModeTable Mode = "table"
	ModeAuto  Mode = "auto"
)

// ParseMode converts a user-supplied string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeText:
		return ModeText, nil
	case ModeTable:
		return ModeTable, nil
	case ModeAuto, Mode(""):
		return ModeAuto, nil
	default:
		return "", fmt.Errorf("unknown extraction mode %q (want text, table or auto)", s)
	}
}

// Backend extracts the raw lines of one document in reading order.
type Backend interface {
	Name() string
	ExtractLines(ctx context.Context, path string) ([]engine.RawLine, error)
}

// Factory builds extraction backends and gates source files before any
// backend touches them.
type Factory struct {
	maxFileSize int64
	logger      *slog.Logger
}

// DefaultMaxFileSize limits source PDFs to 100MB.
const DefaultMaxFileSize = 100 * 1024 * 1024

// NewFactory creates a factory. maxFileSize <= 0 uses DefaultMaxFileSize;
// a nil logger uses slog.Default.
func NewFactory(maxFileSize int64, logger *slog.Logger) *Factory {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{maxFileSize: maxFileSize, logger: logger}
}

// Create returns the backend for the given mode.
func (f *Factory) Create(mode Mode) (Backend, error) {
	switch mode {
	case ModeText:
		return NewTextBackend(f.logger), nil
	case ModeTable:
		return NewTableBackend(f.logger), nil
	case ModeAuto:
		return NewAutoBackend(NewTableBackend(f.logger), NewTextBackend(f.logger), f.logger), nil
	default:
		return nil, fmt.Errorf("unknown extraction mode %q", mode)
	}
}

// ValidateSource checks a source file before extraction: it must exist, be a
// .pdf under the size limit, and pass pdfcpu's relaxed structural validation.
func (f *Factory) ValidateSource(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access source file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("source %s is a directory", path)
	}
	if info.Size() > f.maxFileSize {
		return fmt.Errorf("source file size %d exceeds maximum %d", info.Size(), f.maxFileSize)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".pdf" {
		return fmt.Errorf("source file does not have a .pdf extension: %q", ext)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return fmt.Errorf("source file failed PDF validation: %w", err)
	}
	return nil
}

// PageCount returns the page count of a PDF without extracting it.
func (f *Factory) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}

// AutoBackend runs a primary backend and falls back to a secondary when the
// primary errors or yields nothing. Scanned reports vary enough between
// print runs that neither backend wins on every file.
type AutoBackend struct {
	primary  Backend
	fallback Backend
	logger   *slog.Logger
}

// NewAutoBackend chains two backends.
func NewAutoBackend(primary, fallback Backend, logger *slog.Logger) *AutoBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoBackend{primary: primary, fallback: fallback, logger: logger}
}

func (b *AutoBackend) Name() string {
	return fmt.Sprintf("auto(%s,%s)", b.primary.Name(), b.fallback.Name())
}

func (b *AutoBackend) ExtractLines(ctx context.Context, path string) ([]engine.RawLine, error) {
	lines, err := b.primary.ExtractLines(ctx, path)
	if err == nil && len(lines) > 0 {
		return lines, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		b.logger.Warn("primary extraction backend failed, falling back",
			"primary", b.primary.Name(),
			"fallback", b.fallback.Name(),
			"error", err)
	} else {
		b.logger.Warn("primary extraction backend produced no lines, falling back",
			"primary", b.primary.Name(),
			"fallback", b.fallback.Name())
	}
	return b.fallback.ExtractLines(ctx, path)
}
