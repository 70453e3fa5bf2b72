// Package engine converts raw text lines recovered from delivery-return
// reports into validated DeliveryRecord values with derived urgency metrics.
// The pipeline is strictly linear: classify, segment, split names, extract
// codes, validate, deduplicate, score. A malformed line is rejected with a
// reason and can never abort a run.
package engine

import (
	"log/slog"
)

// Options configures an Engine. Zero-value fields fall back to the defaults
// of the outstanding-count-returns report.
type Options struct {
	Grammar Grammar
	Weights Weights
	Levels  LevelScale

	// Logger receives debug-level rejection traces. Nil uses slog.Default.
	Logger *slog.Logger
}

// Engine is the record extraction and normalization pipeline for one report
// format. It holds no per-run state: runs are independent and an Engine may
// process documents sequentially or be shared across goroutines as long as
// each document's lines are fed in order within a single call.
type Engine struct {
	cg        *CompiledGrammar
	classify  *LineClassifier
	segment   *FieldSegmenter
	names     *NameSplitter
	tablets   *TabletCodeExtractor
	validator *RecordValidator
	scorer    *PriorityScorer
	logger    *slog.Logger
}

// New builds an engine from the given options.
func New(opts Options) (*Engine, error) {
	if opts.Grammar.Prefix == "" {
		opts.Grammar = DefaultGrammar()
	}
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights()
	}
	if len(opts.Levels.Labels) == 0 {
		opts.Levels = DefaultLevelScale()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	cg, err := opts.Grammar.Compile()
	if err != nil {
		return nil, err
	}
	scorer, err := NewPriorityScorer(opts.Weights, opts.Levels)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cg:        cg,
		classify:  NewLineClassifier(cg),
		segment:   NewFieldSegmenter(cg),
		names:     NewNameSplitter(cg),
		tablets:   NewTabletCodeExtractor(),
		validator: NewRecordValidator(cg),
		scorer:    scorer,
		logger:    opts.Logger,
	}, nil
}

// Scorer exposes the engine's priority scorer, mainly so tests and callers
// can pin its clock.
func (e *Engine) Scorer() *PriorityScorer {
	return e.scorer
}

// ProcessLines runs one document's lines, in order, through the pipeline and
// returns the deduplicated, scored records plus the run summary. Lines must
// be passed in document order: the wrapped-status repair depends on line
// adjacency.
func (e *Engine) ProcessLines(lines []RawLine) *RunResult {
	accepted := make([]*DeliveryRecord, 0, len(lines))
	summary := RunSummary{
		RejectionReasons: make(map[RejectReason]int),
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if e.classify.Classify(line.Text) != LineData {
			continue
		}

		text := line.Text
		if i+1 < len(lines) {
			if merged, consumed := e.classify.MergeWrapped(text, lines[i+1].Text); consumed {
				text = merged
				i++
			}
		}

		rec, reason, ok := e.buildRecord(text, line.Page)
		if !ok {
			summary.RejectedCount++
			summary.RejectionReasons[reason]++
			e.logger.Debug("line rejected",
				"page", line.Page,
				"reason", string(reason))
			continue
		}

		accepted = append(accepted, rec)
	}

	summary.AcceptedCount = len(accepted)
	records := Deduplicate(accepted)
	summary.DuplicateCount = len(accepted) - len(records)

	for _, rec := range records {
		e.scorer.Score(rec)
	}

	return &RunResult{Records: records, Summary: summary}
}

// buildRecord turns one merged logical line into a validated record.
func (e *Engine) buildRecord(text string, page int) (*DeliveryRecord, RejectReason, bool) {
	seg, reason, ok := e.segment.Segment(text)
	if !ok {
		return nil, reason, false
	}

	rec := &DeliveryRecord{
		WarehouseCode:    seg.WarehouseCode,
		SlipID:           seg.SlipID,
		ReturnDate:       CoerceDate(seg.ReturnDate),
		JobsiteID:        seg.JobsiteID,
		CostCenter:       seg.CostCenter,
		InvoiceStartDate: CoerceDate(seg.InvoiceStart),
		InvoiceEndDate:   CoerceDate(seg.InvoiceEnd),
		IsDefinitive:     seg.Definitive,
		SourcePage:       page,
	}

	if seg.CountedDate != "" {
		rec.CountedDate = CoerceDate(seg.CountedDate)
	}

	rec.CustomerName, rec.SiteName = e.names.Split(seg.NameSpan)
	rec.TabletCodes, rec.OpenTabletCodes = e.tablets.Extract(seg.TailTokens)

	rec.TotalTablets = CoerceInt(seg.Totals[0])
	rec.TotalOpen = CoerceInt(seg.Totals[1])
	rec.CountingDelay = CoerceInt(seg.Totals[2])
	rec.ValidationDelay = CoerceInt(seg.Totals[3])

	if rec.TotalOpen > rec.TotalTablets {
		rec.TotalsInconsistent = true
		e.logger.Debug("inconsistent totals",
			"slip", rec.SlipID,
			"total_tablets", rec.TotalTablets,
			"total_open", rec.TotalOpen)
	}

	if reason, ok := e.validator.Validate(rec); !ok {
		return nil, reason, false
	}

	return rec, "", true
}
