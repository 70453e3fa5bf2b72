package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/alsinaforms/tablillas/internal/engine"
)

// TextBackend extracts lines using ledongthuc/pdf's row grouping. It is fast
// and keeps the library's own reading order, but collapses all horizontal
// spacing to single spaces, so the column-gap name heuristic never fires on
// its output.
type TextBackend struct {
	logger *slog.Logger
}

// NewTextBackend creates a text-mode backend.
func NewTextBackend(logger *slog.Logger) *TextBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextBackend{logger: logger}
}

func (b *TextBackend) Name() string {
	return "text"
}

// ExtractLines reads every page and emits one RawLine per text row. A page
// that fails to decode is skipped with a warning; the document keeps going.
func (b *TextBackend) ExtractLines(ctx context.Context, path string) ([]engine.RawLine, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var lines []engine.RawLine
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			b.logger.Warn("failed to extract page text, skipping page",
				"page", pageNum, "error", err)
			continue
		}

		for _, row := range rows {
			var sb strings.Builder
			for _, word := range row.Content {
				if word.S == "" {
					continue
				}
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(word.S)
			}
			text := strings.TrimSpace(sb.String())
			if text == "" {
				continue
			}
			lines = append(lines, engine.RawLine{Text: text, Page: pageNum})
		}
	}

	return lines, nil
}
