package engine

import "time"

// RawLine is a single text line recovered by an extraction backend,
// tagged with the 1-based page it came from.
type RawLine struct {
	Text string
	Page int
}

// RejectReason identifies why a line was rejected instead of producing a record.
type RejectReason string

const (
	ReasonPatternMismatch    RejectReason = "pattern-mismatch"
	ReasonMissingIdentifier  RejectReason = "missing-identifier"
	ReasonInsufficientFields RejectReason = "insufficient-fields"
)

// LineClass is the classifier's verdict for a raw line.
type LineClass int

const (
	LineData LineClass = iota
	LineHeader
	LineNoise
)

func (c LineClass) String() string {
	switch c {
	case LineData:
		return "data"
	case LineHeader:
		return "header"
	default:
		return "noise"
	}
}

// DeliveryRecord is the normalized unit of work: one warehouse return slip.
// Scalar fields are nullable except SlipID; name fields are never empty.
type DeliveryRecord struct {
	WarehouseCode    string
	SlipID           string
	ReturnDate       *time.Time
	JobsiteID        string
	CostCenter       string
	InvoiceStartDate *time.Time
	InvoiceEndDate   *time.Time

	CustomerName string
	SiteName     string

	IsDefinitive bool
	CountedDate  *time.Time

	// TabletCodes keeps duplicates: each code denotes one physical item.
	TabletCodes     []string
	OpenTabletCodes []string

	TotalTablets    int
	TotalOpen       int
	CountingDelay   int
	ValidationDelay int

	// TotalsInconsistent is set when TotalOpen exceeds TotalTablets.
	// Source totals are sometimes inconsistent with the code lists, so
	// this is flagged rather than rejected.
	TotalsInconsistent bool

	SourcePage int

	// Derived fields, populated once by the PriorityScorer after dedup.
	DaysSinceReturn int
	PriorityScore   float64
	PriorityLevel   string
	UrgencyCategory string
}

// RunSummary reports the outcome of one document run.
type RunSummary struct {
	AcceptedCount    int
	RejectedCount    int
	DuplicateCount   int
	RejectionReasons map[RejectReason]int
}

// RunResult is the pipeline's output for one document: the post-dedup,
// scored records in stable document order plus the run summary.
type RunResult struct {
	Records []*DeliveryRecord
	Summary RunSummary
}

// TotalOpenTablets sums TotalOpen across the run's records.
func (r *RunResult) TotalOpenTablets() int {
	total := 0
	for _, rec := range r.Records {
		total += rec.TotalOpen
	}
	return total
}
