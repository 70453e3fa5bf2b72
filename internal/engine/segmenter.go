package engine

import "strings"

// trailingTotals is the number of reserved integer totals at the end of every
// complete data row: total tablets, total open, counting delay, validation
// delay, in that order.
const trailingTotals = 4

// Segments is the output of the field segmenter: the seven anchored leading
// fields as raw substrings, the name span with its internal spacing intact,
// the status token, the optional counted-date token, the tail-span tokens the
// code extractor scans, and the four trailing totals.
type Segments struct {
	WarehouseCode string
	SlipID        string
	ReturnDate    string
	JobsiteID     string
	CostCenter    string
	InvoiceStart  string
	InvoiceEnd    string

	// NameSpan preserves multi-space runs; the splitter depends on them.
	NameSpan string

	// Definitive is true when the status token is the "yes" word,
	// including its merged wrapped form.
	Definitive bool

	CountedDate string

	// TailTokens are the comma/space-separated tokens between the status
	// token (and counted date) and the trailing totals.
	TailTokens []string

	// Totals holds the four trailing integer tokens in row order.
	Totals [trailingTotals]string
}

// FieldSegmenter anchors the fixed leading fields of a data row and isolates
// the free-text name span and the item-code tail. The anchor sequence fails
// closed: a line that does not match in strict order is rejected with a
// reason, never a panic.
type FieldSegmenter struct {
	cg *CompiledGrammar
}

// NewFieldSegmenter creates a segmenter for the given compiled grammar.
func NewFieldSegmenter(cg *CompiledGrammar) *FieldSegmenter {
	return &FieldSegmenter{cg: cg}
}

// Segment splits one merged logical line into its spans. On failure it
// returns the rejection reason and ok=false.
func (s *FieldSegmenter) Segment(line string) (seg *Segments, reason RejectReason, ok bool) {
	line = strings.TrimSpace(line)

	m := s.cg.lead.FindStringSubmatch(line)
	if m == nil {
		return nil, ReasonPatternMismatch, false
	}

	seg = &Segments{
		WarehouseCode: m[1],
		SlipID:        m[2],
		ReturnDate:    m[3],
		JobsiteID:     m[4],
		CostCenter:    m[5],
		InvoiceStart:  m[6],
		InvoiceEnd:    m[7],
	}
	remainder := m[8]

	// The status token delimits the name span. Without it the span has no
	// right edge, so the anchor sequence is considered unmatched.
	loc := s.cg.status.FindStringSubmatchIndex(remainder)
	if loc == nil {
		return nil, ReasonPatternMismatch, false
	}
	tokStart, tokEnd := loc[4], loc[5]

	seg.NameSpan = strings.TrimRight(remainder[:tokStart], " \t")
	statusTok := remainder[tokStart:tokEnd]
	seg.Definitive = statusTok != s.cg.def.StatusNo

	rest := strings.Fields(remainder[tokEnd:])

	// Only definitive rows carry a counted date, and only when a date
	// token immediately follows the status word.
	if seg.Definitive && len(rest) > 0 && s.cg.dateTok.MatchString(rest[0]) {
		seg.CountedDate = rest[0]
		rest = rest[1:]
	}

	tail, totals, ok := s.splitTrailingTotals(rest)
	if !ok {
		// Truncated by a page break: fewer integer totals than the
		// format reserves.
		return nil, ReasonInsufficientFields, false
	}
	seg.TailTokens = tail
	seg.Totals = totals

	return seg, "", true
}

// splitTrailingTotals walks the tail backwards collecting the last four
// all-digit tokens as the reserved totals. Item-code tokens (comma-suffixed
// digit runs, letter-suffixed open codes) are skipped, so a row whose open
// codes sit between the per-row total and the delay columns still resolves
// correctly. The collected positions are excluded from the tail span.
func (s *FieldSegmenter) splitTrailingTotals(tokens []string) (tail []string, totals [trailingTotals]string, ok bool) {
	found := 0
	used := make(map[int]bool, trailingTotals)

	for i := len(tokens) - 1; i >= 0 && found < trailingTotals; i-- {
		if s.cg.digits.MatchString(tokens[i]) {
			totals[trailingTotals-1-found] = tokens[i]
			used[i] = true
			found++
		}
	}
	if found < trailingTotals {
		return nil, totals, false
	}

	tail = make([]string, 0, len(tokens)-trailingTotals)
	for i, tok := range tokens {
		if !used[i] {
			tail = append(tail, tok)
		}
	}
	return tail, totals, true
}
