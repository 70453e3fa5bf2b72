package engine

import (
	"strconv"
	"time"
)

// primaryDateLayout is the report's native month/day/four-digit-year format.
const primaryDateLayout = "1/2/2006"

// fallbackDateLayouts are tried, in order, when the primary layout fails.
// Table-mode backends occasionally re-render dates in one of these shapes.
var fallbackDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"1-2-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// dateSentinels are tokens that look like values but never are: the boolean
// status words and their wrapped fragments.
var dateSentinels = map[string]struct{}{
	"":    {},
	"Yes": {},
	"No":  {},
	"Ye":  {},
	"s":   {},
}

// CoerceDate parses a date token defensively. Sentinel words, empty input,
// and unparseable tokens yield nil. It never panics.
func CoerceDate(tok string) *time.Time {
	if _, sentinel := dateSentinels[tok]; sentinel {
		return nil
	}
	if t, err := time.Parse(primaryDateLayout, tok); err == nil {
		return &t
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, tok); err == nil {
			return &t
		}
	}
	return nil
}

// CoerceInt parses an all-digit token, returning 0 for anything else,
// including overflow. It never panics.
func CoerceInt(tok string) int {
	if tok == "" {
		return 0
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0
	}
	return n
}
