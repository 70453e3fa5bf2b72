package engine

import (
	"regexp"
	"strings"
)

var (
	// plainCode matches a tracked item code: a 1-4 digit run.
	plainCode = regexp.MustCompile(`^\d{1,4}$`)

	// openCode matches an outstanding-item exception code: a 1-4 digit
	// run with an uppercase letter suffix, e.g. "1666M".
	openCode = regexp.MustCompile(`^\d{1,4}[A-Z]+$`)
)

// TabletCodeExtractor scans the tail span of a data row for item codes.
// A token is either a plain code or an open code, never both; tokens matching
// neither are extraction artifacts and are ignored. Repeated codes are kept
// since each denotes a distinct physical item instance.
type TabletCodeExtractor struct{}

// NewTabletCodeExtractor creates a code extractor.
func NewTabletCodeExtractor() *TabletCodeExtractor {
	return &TabletCodeExtractor{}
}

// Extract returns the plain and open codes of the tail span in order of
// appearance. Tokens may be comma-terminated or carry embedded commas when
// the backend collapsed separators.
func (e *TabletCodeExtractor) Extract(tailTokens []string) (plain, open []string) {
	for _, tok := range tailTokens {
		for _, part := range strings.Split(tok, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			switch {
			case plainCode.MatchString(part):
				plain = append(plain, part)
			case openCode.MatchString(part):
				open = append(open, part)
			}
		}
	}
	return plain, open
}
