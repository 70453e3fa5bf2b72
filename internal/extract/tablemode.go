package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/alsinaforms/tablillas/internal/engine"
)

const (
	// rowTolerancePts groups glyph runs whose baselines differ by less than
	// this many points into one row.
	rowTolerancePts = 2.0

	// wordGapPts is the horizontal distance that separates two words.
	wordGapPts = 1.5

	// columnGapPts is the horizontal distance treated as a table column
	// boundary and rendered as a wide space run.
	columnGapPts = 18.0
)

// TableBackend rebuilds report rows from positioned glyph runs. Runs are
// clustered by baseline, ordered by X, and column-sized horizontal gaps are
// rendered as runs of three spaces, which preserves the customer/site column
// boundary inside the name span.
type TableBackend struct {
	logger *slog.Logger
}

// NewTableBackend creates a table-mode backend.
func NewTableBackend(logger *slog.Logger) *TableBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableBackend{logger: logger}
}

func (b *TableBackend) Name() string {
	return "table"
}

// ExtractLines reads every page's positioned text and emits one RawLine per
// reconstructed row, top to bottom.
func (b *TableBackend) ExtractLines(ctx context.Context, path string) ([]engine.RawLine, error) {
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

		content := page.Content()
		for _, row := range clusterRows(content.Text) {
			text := assembleLine(row)
			if text == "" {
				continue
			}
			lines = append(lines, engine.RawLine{Text: text, Page: pageNum})
		}
	}

	return lines, nil
}

// clusterRows groups glyph runs into rows by baseline and orders the result
// top to bottom, left to right. PDF coordinates grow upward, so higher Y
// means closer to the top of the page.
func clusterRows(texts []pdf.Text) [][]pdf.Text {
	if len(texts) == 0 {
		return nil
	}

	byY := make([]pdf.Text, len(texts))
	copy(byY, texts)
	sort.SliceStable(byY, func(i, j int) bool { return byY[i].Y > byY[j].Y })

	var rows [][]pdf.Text
	current := []pdf.Text{byY[0]}
	for _, t := range byY[1:] {
		if current[0].Y-t.Y > rowTolerancePts {
			rows = append(rows, current)
			current = []pdf.Text{t}
			continue
		}
		current = append(current, t)
	}
	rows = append(rows, current)

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return rows
}

// assembleLine joins one row's glyph runs, rendering word gaps as a single
// space and column gaps as three spaces.
func assembleLine(row []pdf.Text) string {
	var sb strings.Builder
	prevEnd := 0.0

	for i, t := range row {
		if t.S == "" {
			continue
		}
		if i > 0 && sb.Len() > 0 {
			switch gap := t.X - prevEnd; {
			case gap > columnGapPts:
				sb.WriteString("   ")
			case gap > wordGapPts:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	return strings.TrimSpace(sb.String())
}
