// Package report renders a processed run into an XLSX workbook for the
// operations team: all records sorted by priority, a high-priority slice for
// triage, and a run summary.
package report

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/alsinaforms/tablillas/internal/engine"
)

const (
	recordsSheet  = "Records"
	prioritySheet = "HighPriority"
	summarySheet  = "Summary"

	dateLayout = "2006-01-02"
)

// Writer produces XLSX workbooks from run results.
type Writer struct {
	logger *slog.Logger

	// Now stamps the summary sheet; overridable in tests.
	Now func() time.Time
}

// NewWriter creates a writer. A nil logger uses slog.Default.
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger, Now: time.Now}
}

var recordHeaders = []string{
	"Warehouse",
	"Packing Slip",
	"Return Date",
	"Jobsite",
	"Cost Center",
	"Invoice Start",
	"Invoice End",
	"Customer",
	"Site",
	"Definitive",
	"Counted Date",
	"Tablet Codes",
	"Open Tablet Codes",
	"Total Tablets",
	"Total Open",
	"Counting Delay",
	"Validation Delay",
	"Days Since Return",
	"Priority Score",
	"Priority Level",
	"Urgency",
	"Page",
}

// WriteWorkbook renders a run into XLSX bytes. Records are sorted by
// descending priority score; ties keep document order.
func (w *Writer) WriteWorkbook(res *engine.RunResult) ([]byte, error) {
	f, err := w.build(res)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveFile renders a run and writes the workbook to path.
func (w *Writer) SaveFile(res *engine.RunResult, path string) error {
	f, err := w.build(res)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx save: %w", err)
	}
	w.logger.Info("report written",
		"path", path,
		"records", len(res.Records),
		"high_priority", len(highPriority(res.Records)))
	return nil
}

func (w *Writer) build(res *engine.RunResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), recordsSheet); err != nil {
		return nil, err
	}

	sorted := make([]*engine.DeliveryRecord, len(res.Records))
	copy(sorted, res.Records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PriorityScore > sorted[j].PriorityScore
	})

	if err := w.writeRecordSheet(f, recordsSheet, sorted); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(prioritySheet); err != nil {
		return nil, err
	}
	if err := w.writeRecordSheet(f, prioritySheet, highPriority(sorted)); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	if err := w.writeSummarySheet(f, res); err != nil {
		return nil, err
	}

	idx, err := f.GetSheetIndex(recordsSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	return f, nil
}

func (w *Writer) writeRecordSheet(f *excelize.File, sheet string, recs []*engine.DeliveryRecord) error {
	for i, h := range recordHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for rowIdx, rec := range recs {
		row := rowIdx + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, rec.WarehouseCode)
		write(2, rec.SlipID)
		write(3, fmtDate(rec.ReturnDate))
		write(4, rec.JobsiteID)
		write(5, rec.CostCenter)
		write(6, fmtDate(rec.InvoiceStartDate))
		write(7, fmtDate(rec.InvoiceEndDate))
		write(8, rec.CustomerName)
		write(9, rec.SiteName)
		write(10, yesNo(rec.IsDefinitive))
		write(11, fmtDate(rec.CountedDate))
		write(12, joinCodes(rec.TabletCodes))
		write(13, joinCodes(rec.OpenTabletCodes))
		write(14, rec.TotalTablets)
		write(15, rec.TotalOpen)
		write(16, rec.CountingDelay)
		write(17, rec.ValidationDelay)
		write(18, rec.DaysSinceReturn)
		write(19, rec.PriorityScore)
		write(20, rec.PriorityLevel)
		write(21, rec.UrgencyCategory)
		write(22, rec.SourcePage)
	}

	_ = f.SetColWidth(sheet, "B", "B", 16) // slip
	_ = f.SetColWidth(sheet, "C", "C", 12) // return date
	_ = f.SetColWidth(sheet, "H", "I", 32) // names
	_ = f.SetColWidth(sheet, "L", "M", 28) // code lists
	return nil
}

func (w *Writer) writeSummarySheet(f *excelize.File, res *engine.RunResult) error {
	row := 1
	write := func(label string, v any) {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(summarySheet, cell, label)
		cell, _ = excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(summarySheet, cell, v)
		row++
	}

	write("Generated", w.Now().Format(time.RFC3339))
	write("Records", len(res.Records))
	write("Total Open Tablets", res.TotalOpenTablets())
	write("Accepted Lines", res.Summary.AcceptedCount)
	write("Rejected Lines", res.Summary.RejectedCount)
	write("Duplicates Removed", res.Summary.DuplicateCount)
	write("Mean Counting Delay", meanOf(res.Records, func(r *engine.DeliveryRecord) int { return r.CountingDelay }))
	write("Mean Validation Delay", meanOf(res.Records, func(r *engine.DeliveryRecord) int { return r.ValidationDelay }))

	reasons := make([]string, 0, len(res.Summary.RejectionReasons))
	for r := range res.Summary.RejectionReasons {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		write("Rejected: "+r, res.Summary.RejectionReasons[engine.RejectReason(r)])
	}

	counts := urgencyCounts(res.Records)
	for _, u := range []string{engine.UrgencyUrgent, engine.UrgencyAttention, engine.UrgencyNormal} {
		write("Urgency: "+u, counts[u])
	}

	_ = f.SetColWidth(summarySheet, "A", "A", 28)
	_ = f.SetColWidth(summarySheet, "B", "B", 24)
	return nil
}

// highPriority selects the records the triage sheet shows: anything the
// scorer flagged urgent or needing attention.
func highPriority(recs []*engine.DeliveryRecord) []*engine.DeliveryRecord {
	var out []*engine.DeliveryRecord
	for _, rec := range recs {
		switch rec.UrgencyCategory {
		case engine.UrgencyUrgent, engine.UrgencyAttention:
			out = append(out, rec)
		}
	}
	return out
}

func meanOf(recs []*engine.DeliveryRecord, field func(*engine.DeliveryRecord) int) float64 {
	if len(recs) == 0 {
		return 0
	}
	sum := 0
	for _, rec := range recs {
		sum += field(rec)
	}
	return float64(sum) / float64(len(recs))
}

func urgencyCounts(recs []*engine.DeliveryRecord) map[string]int {
	counts := make(map[string]int)
	for _, rec := range recs {
		counts[rec.UrgencyCategory]++
	}
	return counts
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func joinCodes(codes []string) string {
	out := ""
	for i, c := range codes {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
