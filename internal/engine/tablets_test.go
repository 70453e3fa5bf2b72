package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTabletCodes(t *testing.T) {
	e := NewTabletCodeExtractor()

	plain, open := e.Extract([]string{"81,", "134,", "1666,", "1708", "1666M,", "1708M"})
	assert.Equal(t, []string{"81", "134", "1666", "1708"}, plain)
	assert.Equal(t, []string{"1666M", "1708M"}, open)
}

func TestExtractKeepsDuplicates(t *testing.T) {
	e := NewTabletCodeExtractor()

	// Each code is one physical item; repeats must survive in order.
	plain, open := e.Extract([]string{"1480,", "1480,", "1481"})
	assert.Equal(t, []string{"1480", "1480", "1481"}, plain)
	assert.Empty(t, open)
}

func TestExtractCategoriesAreExclusive(t *testing.T) {
	e := NewTabletCodeExtractor()

	tokens := []string{"12", "34A", "5678", "9XYZ,", "777,"}
	plain, open := e.Extract(tokens)

	seen := make(map[string]int)
	for _, c := range plain {
		seen[c]++
	}
	for _, c := range open {
		if _, dup := seen[c]; dup {
			t.Fatalf("token %q classified as both plain and open", c)
		}
	}
	assert.Equal(t, []string{"12", "5678", "777"}, plain)
	assert.Equal(t, []string{"34A", "9XYZ"}, open)
}

func TestExtractIgnoresArtifacts(t *testing.T) {
	e := NewTabletCodeExtractor()

	plain, open := e.Extract([]string{"", ",", "-", "12345", "abc", "M12", "1.2"})
	assert.Empty(t, plain, "five-digit runs and non-code tokens are ignored")
	assert.Empty(t, open)
}

func TestExtractEmbeddedCommas(t *testing.T) {
	e := NewTabletCodeExtractor()

	// A backend may collapse "81, 134" into one token.
	plain, open := e.Extract([]string{"81,134", "1666M,1708M"})
	assert.Equal(t, []string{"81", "134"}, plain)
	assert.Equal(t, []string{"1666M", "1708M"}, open)
}
