package utils

import (
	"strings"
)

// shippingAlias maps a canonical shipping token to the raw spellings that
// resolve to it. Order matters: carriers are checked top to bottom and the
// first hit wins, so a query naming several carriers resolves to the
// earliest entry, not the "most specific" one.
var shippingAliases = []struct {
	token   string
	aliases []string
}{
	{"fedex", []string{"fedex", "fed ex", "federal express", "fedec"}},
	{"ups", []string{"united parcel service", "united parcel", "ups"}},
	{"usps", []string{"usps", "post office", "postal service"}},
	{"dhl", []string{"dhl"}},
}

// poiKeywords is the vocabulary scanned by ExtractCandidateTypes, in the
// order results are reported. The list is open; extend as new POI types show
// up in the data.
var poiKeywords = []string{
	"fedex", "ups", "usps", "dhl", "shipping", "post office",
	"restaurant", "coffee", "cafe", "food", "grocery", "supermarket",
	"airport", "train", "bus", "transit", "station",
	"park", "landmark", "hotel", "bank", "hospital", "pharmacy",
	"gas station", "gym", "school",
}

// NormalizeShippingToken maps free-text shipping-service mentions (including
// common misspellings) to a canonical carrier token. Matching is
// case-insensitive substring containment. Text with no carrier mention is
// returned unchanged.
func NormalizeShippingToken(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))

	for _, entry := range shippingAliases {
		for _, alias := range entry.aliases {
			if strings.Contains(lower, alias) {
				return entry.token
			}
		}
	}

	return text
}

// IsShippingToken reports whether token is one of the canonical carrier tokens
func IsShippingToken(token string) bool {
	for _, entry := range shippingAliases {
		if entry.token == token {
			return true
		}
	}
	return false
}

// ExtractCandidateTypes returns every vocabulary keyword contained in the
// query, in vocabulary order, each at most once.
func ExtractCandidateTypes(text string) []string {
	lower := strings.ToLower(text)

	var matched []string
	for _, keyword := range poiKeywords {
		if strings.Contains(lower, keyword) {
			matched = append(matched, keyword)
		}
	}
	return matched
}
