package utils

import (
	"strings"
)

// similarityThreshold is the minimum positional similarity accepted by the
// last matching tier.
const similarityThreshold = 0.70

// BestMatch resolves a free-text query against a set of named candidates.
// Tiers, first tier with any result wins:
//  1. Case-insensitive exact equality.
//  2. Case-insensitive substring in either direction; among qualifiers the
//     name whose length is closest to the query wins, ties by input order.
//  3. Positional character similarity >= 0.70; first qualifier in input order.
//
// The positional metric counts equal characters at the same index, divided by
// the longer length. It is deliberately not an edit distance: which candidate
// wins on ambiguous input depends on it, so it must stay as-is.
func BestMatch[T any](query string, items []T, name func(T) string) (T, bool) {
	var zero T
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || len(items) == 0 {
		return zero, false
	}

	// Tier 1: exact match
	for _, item := range items {
		if strings.ToLower(strings.TrimSpace(name(item))) == q {
			return item, true
		}
	}

	// Tier 2: substring match in either direction, closest length wins
	bestIdx := -1
	bestDelta := 0
	for i, item := range items {
		n := strings.ToLower(strings.TrimSpace(name(item)))
		if n == "" {
			continue
		}
		if !strings.Contains(n, q) && !strings.Contains(q, n) {
			continue
		}
		delta := len(n) - len(q)
		if delta < 0 {
			delta = -delta
		}
		if bestIdx < 0 || delta < bestDelta {
			bestIdx = i
			bestDelta = delta
		}
	}
	if bestIdx >= 0 {
		return items[bestIdx], true
	}

	// Tier 3: positional similarity
	for _, item := range items {
		n := strings.ToLower(strings.TrimSpace(name(item)))
		if n == "" {
			continue
		}
		if positionalSimilarity(q, n) >= similarityThreshold {
			return item, true
		}
	}

	return zero, false
}

// positionalSimilarity counts positions where both strings carry the same
// character, over the length of the longer string.
func positionalSimilarity(a, b string) float64 {
	shorter := len(a)
	longer := len(b)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if longer == 0 {
		return 0
	}

	matches := 0
	for i := 0; i < shorter; i++ {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(longer)
}
