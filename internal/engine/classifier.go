package engine

import "strings"

// headerWords are column-heading fragments seen on report pages. A dropped
// line containing one of them is classified HEADER rather than NOISE, which
// keeps rejection logs readable; both classes are discarded either way.
var headerWords = []string{
	"packing slip", "return date", "jobsite", "cost center",
	"invoice", "counted", "tablets", "delay", "validation",
}

// LineClassifier decides whether a raw line is a candidate data row and
// repairs the wrapped-status extraction artifact before any parsing happens.
type LineClassifier struct {
	cg *CompiledGrammar
}

// NewLineClassifier creates a classifier for the given compiled grammar.
func NewLineClassifier(cg *CompiledGrammar) *LineClassifier {
	return &LineClassifier{cg: cg}
}

// Classify returns the class of a single trimmed line.
func (c *LineClassifier) Classify(line string) LineClass {
	line = strings.TrimSpace(line)
	if line == "" {
		return LineNoise
	}

	if c.isCandidate(line) {
		return LineData
	}

	lower := strings.ToLower(line)
	for _, w := range headerWords {
		if strings.Contains(lower, w) {
			return LineHeader
		}
	}
	return LineNoise
}

// isCandidate applies the data-row gate: fixed prefix token, minimum token
// count, and at least one slip-shaped digit run.
func (c *LineClassifier) isCandidate(line string) bool {
	def := c.cg.Definition()
	if !strings.HasPrefix(line, def.Prefix+" ") && line != def.Prefix {
		return false
	}
	if len(strings.Fields(line)) < def.MinTokens {
		return false
	}
	return c.cg.HasSlipToken(line)
}

// MergeWrapped repairs the known backend artifact where the two-letter
// status abbreviation is split across a line boundary: the data line ends in
// the truncated status word and the very next line holds only its final
// character. When detected, the continuation character is appended and the
// next line is consumed; the merged line then carries the full status word.
func (c *LineClassifier) MergeWrapped(line, next string) (merged string, consumed bool) {
	line = strings.TrimRight(line, " \t")
	def := c.cg.Definition()

	truncated := def.StatusYes[:len(def.StatusYes)-1]
	remainder := def.StatusYes[len(def.StatusYes)-1:]

	if !strings.HasSuffix(line, " "+truncated) {
		return line, false
	}
	if strings.TrimSpace(next) != remainder {
		return line, false
	}
	return line + remainder, true
}
