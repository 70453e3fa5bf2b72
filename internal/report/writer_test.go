package report

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/alsinaforms/tablillas/internal/engine"
)

func testResult() *engine.RunResult {
	ret := time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)
	return &engine.RunResult{
		Records: []*engine.DeliveryRecord{
			{
				WarehouseCode:   "61D",
				SlipID:          "729000018669",
				ReturnDate:      &ret,
				CustomerName:    "3c Construction Corp",
				SiteName:        "Biscayne Bay Coastal Wetl",
				TabletCodes:     []string{"81", "134", "1666", "1708"},
				OpenTabletCodes: []string{"1666M", "1708M"},
				TotalTablets:    4,
				TotalOpen:       2,
				CountingDelay:   15,
				DaysSinceReturn: 18,
				PriorityScore:   11.9,
				PriorityLevel:   "Low",
				UrgencyCategory: engine.UrgencyAttention,
				SourcePage:      1,
			},
			{
				WarehouseCode:   "61D",
				SlipID:          "729000018700",
				CustomerName:    "Vertex LLC",
				SiteName:        "Downtown Tower",
				TotalTablets:    1,
				DaysSinceReturn: 40,
				PriorityScore:   36.0,
				PriorityLevel:   "High",
				UrgencyCategory: engine.UrgencyUrgent,
				SourcePage:      2,
			},
			{
				WarehouseCode:   "61D",
				SlipID:          "729000018701",
				CustomerName:    "Acme Corp",
				SiteName:        "Yard",
				PriorityScore:   2.0,
				PriorityLevel:   "Low",
				UrgencyCategory: engine.UrgencyNone,
				SourcePage:      2,
			},
		},
		Summary: engine.RunSummary{
			AcceptedCount:  4,
			RejectedCount:  2,
			DuplicateCount: 1,
			RejectionReasons: map[engine.RejectReason]int{
				engine.ReasonPatternMismatch:    1,
				engine.ReasonInsufficientFields: 1,
			},
		},
	}
}

func newTestWriter() *Writer {
	w := NewWriter(slog.New(slog.DiscardHandler))
	w.Now = func() time.Time { return time.Date(2025, 9, 20, 12, 0, 0, 0, time.UTC) }
	return w
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWriteWorkbookSheets(t *testing.T) {
	data, err := newTestWriter().WriteWorkbook(testResult())
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.ElementsMatch(t, []string{"Records", "HighPriority", "Summary"}, f.GetSheetList())
}

func TestWriteWorkbookRecordsSortedByScore(t *testing.T) {
	data, err := newTestWriter().WriteWorkbook(testResult())
	require.NoError(t, err)

	f := openWorkbook(t, data)

	header, err := f.GetCellValue("Records", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Packing Slip", header)

	var slips []string
	for row := 2; row <= 4; row++ {
		cell, _ := excelize.CoordinatesToCellName(2, row)
		v, err := f.GetCellValue("Records", cell)
		require.NoError(t, err)
		slips = append(slips, v)
	}
	assert.Equal(t, []string{"729000018700", "729000018669", "729000018701"}, slips)

	customer, err := f.GetCellValue("Records", "H3")
	require.NoError(t, err)
	assert.Equal(t, "3c Construction Corp", customer)

	codes, err := f.GetCellValue("Records", "L3")
	require.NoError(t, err)
	assert.Equal(t, "81, 134, 1666, 1708", codes)

	ret, err := f.GetCellValue("Records", "C3")
	require.NoError(t, err)
	assert.Equal(t, "2025-09-02", ret)
}

func TestWriteWorkbookHighPrioritySlice(t *testing.T) {
	data, err := newTestWriter().WriteWorkbook(testResult())
	require.NoError(t, err)

	f := openWorkbook(t, data)

	rows, err := f.GetRows(prioritySheet)
	require.NoError(t, err)
	// Header plus the urgent and attention records; the quiet slip is absent.
	require.Len(t, rows, 3)
	assert.Equal(t, "729000018700", rows[1][1])
	assert.Equal(t, "729000018669", rows[2][1])
}

func TestWriteWorkbookSummary(t *testing.T) {
	data, err := newTestWriter().WriteWorkbook(testResult())
	require.NoError(t, err)

	f := openWorkbook(t, data)

	rows, err := f.GetRows(summarySheet)
	require.NoError(t, err)

	got := make(map[string]string)
	for _, row := range rows {
		if len(row) >= 2 {
			got[row[0]] = row[1]
		}
	}

	assert.Equal(t, "3", got["Records"])
	assert.Equal(t, "2", got["Total Open Tablets"])
	assert.Equal(t, "4", got["Accepted Lines"])
	assert.Equal(t, "2", got["Rejected Lines"])
	assert.Equal(t, "1", got["Duplicates Removed"])
	assert.Equal(t, "5", got["Mean Counting Delay"])
	assert.Equal(t, "0", got["Mean Validation Delay"])
	assert.Equal(t, "1", got["Rejected: pattern-mismatch"])
	assert.Equal(t, "1", got["Rejected: insufficient-fields"])
	assert.Equal(t, "1", got["Urgency: Urgent"])
	assert.Equal(t, "1", got["Urgency: Attention"])
	assert.Equal(t, "0", got["Urgency: Normal"])
}

func TestSaveFile(t *testing.T) {
	path := t.TempDir() + "/tablillas.xlsx"
	require.NoError(t, newTestWriter().SaveFile(testResult(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Records", "A2")
	require.NoError(t, err)
	assert.Equal(t, "61D", v)
}

func TestWriteWorkbookEmptyRun(t *testing.T) {
	res := &engine.RunResult{Summary: engine.RunSummary{}}
	data, err := newTestWriter().WriteWorkbook(res)
	require.NoError(t, err)

	f := openWorkbook(t, data)
	rows, err := f.GetRows(recordsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
