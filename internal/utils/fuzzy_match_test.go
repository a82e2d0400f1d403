package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type named struct {
	name string
}

func names(vals ...string) []named {
	out := make([]named, len(vals))
	for i, v := range vals {
		out[i] = named{name: v}
	}
	return out
}

func TestBestMatchExactWinsOverSubstring(t *testing.T) {
	items := names("Dockside Annex", "Dock")
	got, ok := BestMatch("dock", items, func(n named) string { return n.name })
	require.True(t, ok)
	assert.Equal(t, "Dock", got.name)
}

func TestBestMatchExactIsCaseInsensitive(t *testing.T) {
	items := names("Harborview Lofts")
	got, ok := BestMatch("  HARBORVIEW LOFTS ", items, func(n named) string { return n.name })
	require.True(t, ok)
	assert.Equal(t, "Harborview Lofts", got.name)
}

func TestBestMatchSubstringClosestLengthWins(t *testing.T) {
	items := names("Harborview Lofts Tower", "Harbor Point")
	got, ok := BestMatch("harbor", items, func(n named) string { return n.name })
	require.True(t, ok)
	assert.Equal(t, "Harbor Point", got.name)
}

func TestBestMatchSubstringEitherDirection(t *testing.T) {
	// Query longer than the name: name contained in query
	items := names("Dockside Annex")
	got, ok := BestMatch("the dockside annex building", items, func(n named) string { return n.name })
	require.True(t, ok)
	assert.Equal(t, "Dockside Annex", got.name)
}

func TestBestMatchPositionalSimilarity(t *testing.T) {
	// One character off, no substring relation in either direction
	items := names("fedex office")
	got, ok := BestMatch("fedec office", items, func(n named) string { return n.name })
	require.True(t, ok)
	assert.Equal(t, "fedex office", got.name)
}

func TestBestMatchBelowThreshold(t *testing.T) {
	items := names("Harborview Lofts")
	_, ok := BestMatch("zzzzzzzz", items, func(n named) string { return n.name })
	assert.False(t, ok)
}

func TestBestMatchEmptyInputs(t *testing.T) {
	_, ok := BestMatch("", names("Harborview Lofts"), func(n named) string { return n.name })
	assert.False(t, ok)

	_, ok = BestMatch("harbor", nil, func(n named) string { return n.name })
	assert.False(t, ok)
}

func TestPositionalSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, positionalSimilarity("fedex", "fedex"), 1e-9)
	assert.InDelta(t, 0.8, positionalSimilarity("fedec", "fedex"), 1e-9)
	// Divided by the longer length
	assert.InDelta(t, 0.5, positionalSimilarity("fed", "fedex2"), 1e-9)
	assert.Zero(t, positionalSimilarity("", ""))
}
