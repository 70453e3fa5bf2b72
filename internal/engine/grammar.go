package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// Grammar describes the row format of a delivery-return report. The source
// repository grew more than a dozen near-identical parsers differing only in
// regex tweaks; this is the single parameterized definition they collapse to.
type Grammar struct {
	// Prefix is the fixed leading token of every data row, e.g. "FL".
	Prefix string

	// StatusYes and StatusNo are the literal boolean status words. The
	// wrapped artifact splits StatusYes one character before its end.
	StatusYes string
	StatusNo  string

	// SlipMinDigits and SlipMaxDigits bound the slip-number digit run.
	SlipMinDigits int
	SlipMaxDigits int

	// MinTokens is the minimum whitespace-split token count for a
	// candidate data row.
	MinTokens int

	// CompanySuffixes are the keywords that mark the end of a customer
	// name inside the collapsed name span.
	CompanySuffixes []string
}

// DefaultGrammar returns the grammar of the outstanding-count-returns report.
func DefaultGrammar() Grammar {
	return Grammar{
		Prefix:        "FL",
		StatusYes:     "Yes",
		StatusNo:      "No",
		SlipMinDigits: 9,
		SlipMaxDigits: 12,
		MinTokens:     10,
		CompanySuffixes: []string{
			"corp", "corporation", "llc", "inc", "incorporated",
			"ltd", "limited", "construction", "builders", "services",
			"group", "company", "co", "development",
		},
	}
}

// CompiledGrammar holds the compiled regular expressions for one grammar.
// Compile once per run; the compiled form is read-only afterwards.
type CompiledGrammar struct {
	def Grammar

	// lead anchors the seven ordered leading fields and captures the
	// remainder: warehouse code, slip number, return date, jobsite id,
	// cost center, invoice start, invoice end, rest-of-line.
	lead *regexp.Regexp

	slip     *regexp.Regexp
	status   *regexp.Regexp
	dateTok  *regexp.Regexp
	digits   *regexp.Regexp
	suffixes map[string]struct{}
}

// Compile validates the grammar and builds its matchers.
func (g Grammar) Compile() (*CompiledGrammar, error) {
	if g.Prefix == "" {
		return nil, fmt.Errorf("grammar: prefix must not be empty")
	}
	if g.SlipMinDigits <= 0 || g.SlipMaxDigits < g.SlipMinDigits {
		return nil, fmt.Errorf("grammar: invalid slip digit bounds %d..%d", g.SlipMinDigits, g.SlipMaxDigits)
	}
	if len(g.StatusYes) < 2 || g.StatusNo == "" {
		return nil, fmt.Errorf("grammar: status words must be set")
	}

	slipRun := fmt.Sprintf(`\d{%d,%d}`, g.SlipMinDigits, g.SlipMaxDigits)

	lead, err := regexp.Compile(
		`^` + regexp.QuoteMeta(g.Prefix) +
			`\s+([A-Za-z0-9]{2,4})` + // warehouse code
			`\s+(` + slipRun + `)` + // slip number
			`\s+(\d{1,2}/\d{1,2}/\d{4})` + // return date
			`\s+(\d+)` + // jobsite id
			`\s+([A-Za-z0-9]+)` + // cost center
			`\s+(\d{1,2}/\d{1,2}/\d{4})` + // invoice start
			`\s+(\d{1,2}/\d{1,2}/\d{4})` + // invoice end
			`\s+(.*)$`,
	)
	if err != nil {
		return nil, fmt.Errorf("grammar: compiling lead pattern: %w", err)
	}

	// The wrapped form keeps the truncated word and its final character as
	// two tokens on the merged logical line, e.g. "Ye s".
	truncated := regexp.QuoteMeta(g.StatusYes[:len(g.StatusYes)-1]) +
		`\s+` + regexp.QuoteMeta(g.StatusYes[len(g.StatusYes)-1:])
	status, err := regexp.Compile(
		`(^|\s)(` + regexp.QuoteMeta(g.StatusYes) + `|` +
			regexp.QuoteMeta(g.StatusNo) + `|` + truncated + `)(\s|$)`,
	)
	if err != nil {
		return nil, fmt.Errorf("grammar: compiling status pattern: %w", err)
	}

	suffixes := make(map[string]struct{}, len(g.CompanySuffixes))
	for _, s := range g.CompanySuffixes {
		suffixes[strings.ToLower(s)] = struct{}{}
	}

	return &CompiledGrammar{
		def:      g,
		lead:     lead,
		slip:     regexp.MustCompile(`^` + slipRun + `$`),
		status:   status,
		dateTok:  regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		digits:   regexp.MustCompile(`^\d+$`),
		suffixes: suffixes,
	}, nil
}

// Definition returns the grammar this matcher was compiled from.
func (cg *CompiledGrammar) Definition() Grammar {
	return cg.def
}

// HasSlipToken reports whether any whitespace-split token of the line is a
// slip-shaped digit run.
func (cg *CompiledGrammar) HasSlipToken(line string) bool {
	for _, tok := range strings.Fields(line) {
		if cg.slip.MatchString(tok) {
			return true
		}
	}
	return false
}

// IsCompanySuffix reports whether a token, ignoring case and trailing
// punctuation, is one of the company-suffix keywords.
func (cg *CompiledGrammar) IsCompanySuffix(tok string) bool {
	tok = strings.ToLower(strings.Trim(tok, ".,"))
	_, ok := cg.suffixes[tok]
	return ok
}
