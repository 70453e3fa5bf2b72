package engine

import (
	"regexp"
	"strings"
)

// Sentinels substituted when a split side trims to nothing. The engine never
// emits an empty name field.
const (
	UnknownCustomer = "Unknown Customer"
	UnknownSite     = "Unknown Site"
)

// columnGap matches a run of three or more spaces, the surviving trace of a
// column boundary from the original tabular layout.
var columnGap = regexp.MustCompile(` {3,}`)

// NameSplitter divides the collapsed "customer name + site name" span using
// an ordered heuristic chain. Arbitrary company names make this inherently
// ambiguous; the chain is a documented convention, not a guarantee.
type NameSplitter struct {
	cg *CompiledGrammar
}

// NewNameSplitter creates a splitter for the given compiled grammar.
func NewNameSplitter(cg *CompiledGrammar) *NameSplitter {
	return &NameSplitter{cg: cg}
}

// Split applies the heuristics in fixed priority order, first match wins:
//
//  1. split on the first run of three or more consecutive spaces;
//  2. split immediately after the last (rightmost) company-suffix keyword,
//     so a site name that itself contains a generic word like
//     "Construction" does not truncate the customer name;
//  3. split the token list at its midpoint (floor division).
func (s *NameSplitter) Split(span string) (customer, site string) {
	span = strings.TrimSpace(span)

	if loc := columnGap.FindStringIndex(span); loc != nil {
		return s.finish(span[:loc[0]], span[loc[1]:])
	}

	tokens := strings.Fields(span)
	if len(tokens) <= 1 {
		return s.finish(span, "")
	}

	split := -1
	for i, tok := range tokens {
		if s.cg.IsCompanySuffix(tok) {
			split = i + 1
		}
	}
	if split < 0 {
		split = len(tokens) / 2
	}

	return s.finish(
		strings.Join(tokens[:split], " "),
		strings.Join(tokens[split:], " "),
	)
}

func (s *NameSplitter) finish(customer, site string) (string, string) {
	customer = strings.TrimSpace(customer)
	site = strings.TrimSpace(site)
	if customer == "" {
		customer = UnknownCustomer
	}
	if site == "" {
		site = UnknownSite
	}
	return customer, site
}
