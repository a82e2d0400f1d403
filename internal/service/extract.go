package service

import (
	"regexp"
	"strconv"
	"strings"

	"propmap/internal/model"
	"propmap/internal/utils"
)

// The AI-mode reply is free text, so the map side effects it implies have to
// be recovered heuristically. Exactly two fixed patterns are recognized; if
// the boundary ever supports structured function-calling output, this file is
// the only thing to replace.
var (
	// "Now looking at Harborview Lofts", "I've selected the property Dockside Annex."
	propertyRefPattern = regexp.MustCompile(`(?i)\b(?:looking at|selected|now viewing)\s+(?:the\s+)?(?:property\s+)?"?([^".,!?\n]+)"?`)

	// "I found 3 coffee shops near Harborview Lofts"
	poiCountPattern = regexp.MustCompile(`(?i)\bfound\s+(\d+)\s+([a-zA-Z][a-zA-Z ]*?)\s+near\b`)
)

// ExtractSideEffectsFromText recovers map side effects from an LLM reply.
// Returns the effects plus the new active property id when the reply
// references one ("" otherwise). Purely heuristic; never errors.
func ExtractSideEffectsFromText(dataset *model.Dataset, activeID, text string) ([]model.SideEffect, string) {
	var effects []model.SideEffect
	newActiveID := ""

	if m := propertyRefPattern.FindStringSubmatch(text); len(m) > 1 {
		fragment := strings.TrimSpace(m[1])
		if match, ok := utils.BestMatch(fragment, dataset.Listings, func(l model.Listing) string {
			return l.Name
		}); ok {
			effects = append(effects, model.SelectProperty(match.ID))
			newActiveID = match.ID
		}
	}

	if m := poiCountPattern.FindStringSubmatch(text); len(m) > 2 {
		count, _ := strconv.Atoi(m[1])
		poiType := strings.TrimSpace(m[2])

		matched := MatchPOIsByType(dataset.POIs, utils.NormalizeShippingToken(poiType))
		if len(matched) == 0 && strings.HasSuffix(poiType, "s") {
			// "coffee shops" vs the singular type label
			matched = MatchPOIsByType(dataset.POIs, utils.NormalizeShippingToken(strings.TrimSuffix(poiType, "s")))
		}

		// Anchor on whichever property the turn ended up referencing
		anchorID := newActiveID
		if anchorID == "" {
			anchorID = activeID
		}
		if anchor := dataset.ListingByID(anchorID); anchor != nil {
			matched = POIsNear(matched, anchor.Latitude, anchor.Longitude, DefaultRadiusKm)
			matched = SortPOIsByDistance(matched, anchor.Latitude, anchor.Longitude)
		}
		if count > 0 && count < len(matched) {
			matched = matched[:count]
		}
		if len(matched) > 0 {
			effects = append(effects, model.ShowPOIs(poiIDs(matched)))
		}
	}

	return effects, newActiveID
}
