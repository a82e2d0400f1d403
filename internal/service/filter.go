package service

import (
	"sort"
	"strings"

	"propmap/internal/geo"
	"propmap/internal/model"
	"propmap/internal/utils"
)

const (
	// DefaultRadiusKm is substituted when a proximity query carries no radius
	// or a non-positive one (~5 miles). Fallback policy, not an error.
	DefaultRadiusKm = 8.0

	// toleranceBand is the symmetric band around "around"-style numeric
	// targets (size, price).
	toleranceBand = 0.25
)

// POIsNear keeps the POIs within maxKm of the anchor, preserving input order
func POIsNear(pois []model.POI, lat, lon, maxKm float64) []model.POI {
	if maxKm <= 0 {
		maxKm = DefaultRadiusKm
	}

	var out []model.POI
	for _, p := range pois {
		if geo.DistanceKm(lat, lon, p.Latitude, p.Longitude) <= maxKm {
			out = append(out, p)
		}
	}
	return out
}

// MatchPOIsByType keeps the POIs whose type or name contains the resolved
// type token as a case-insensitive substring
func MatchPOIsByType(pois []model.POI, poiType string) []model.POI {
	token := strings.ToLower(utils.NormalizeShippingToken(poiType))

	var out []model.POI
	for _, p := range pois {
		if strings.Contains(strings.ToLower(p.Type), token) ||
			strings.Contains(strings.ToLower(p.Name), token) {
			out = append(out, p)
		}
	}
	return out
}

// ListingsNear keeps the listings within maxKm of at least one POI matching
// the given type
func ListingsNear(listings []model.Listing, pois []model.POI, poiType string, maxKm float64) []model.Listing {
	if maxKm <= 0 {
		maxKm = DefaultRadiusKm
	}
	matched := MatchPOIsByType(pois, poiType)
	if len(matched) == 0 {
		return nil
	}

	var out []model.Listing
	for _, l := range listings {
		for _, p := range matched {
			if geo.DistanceKm(l.Latitude, l.Longitude, p.Latitude, p.Longitude) <= maxKm {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// FilterBySize keeps the listings within the tolerance band of the target
// size, inclusive
func FilterBySize(target float64, listings []model.Listing) []model.Listing {
	lo := target * (1 - toleranceBand)
	hi := target * (1 + toleranceBand)

	var out []model.Listing
	for _, l := range listings {
		if l.SizeSqft >= lo && l.SizeSqft <= hi {
			out = append(out, l)
		}
	}
	return out
}

// FilterByPrice filters listings against a price target. Mode "below" keeps
// price <= target, "above" keeps price >= target, anything else keeps the
// tolerance band around the target, inclusive.
func FilterByPrice(target float64, mode string, listings []model.Listing) []model.Listing {
	var out []model.Listing
	for _, l := range listings {
		price := float64(l.Price)
		switch mode {
		case model.PriceBelow:
			if price <= target {
				out = append(out, l)
			}
		case model.PriceAbove:
			if price >= target {
				out = append(out, l)
			}
		default:
			if price >= target*(1-toleranceBand) && price <= target*(1+toleranceBand) {
				out = append(out, l)
			}
		}
	}
	return out
}

// FilterByFeature keeps the listings with any feature tag containing the
// fragment as a case-insensitive substring
func FilterByFeature(fragment string, listings []model.Listing) []model.Listing {
	frag := strings.ToLower(strings.TrimSpace(fragment))
	if frag == "" {
		return nil
	}

	var out []model.Listing
	for _, l := range listings {
		for _, feature := range l.Features {
			if strings.Contains(strings.ToLower(feature), frag) {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// SortPOIsByDistance returns the POIs in ascending distance from the anchor.
// The sort is stable and the input slice is left untouched.
func SortPOIsByDistance(pois []model.POI, lat, lon float64) []model.POI {
	out := make([]model.POI, len(pois))
	copy(out, pois)
	sort.SliceStable(out, func(i, j int) bool {
		return geo.DistanceKm(lat, lon, out[i].Latitude, out[i].Longitude) <
			geo.DistanceKm(lat, lon, out[j].Latitude, out[j].Longitude)
	})
	return out
}

// SortListingsByDistance returns the listings in ascending distance from the
// anchor, stable, without mutating the input.
func SortListingsByDistance(listings []model.Listing, lat, lon float64) []model.Listing {
	out := make([]model.Listing, len(listings))
	copy(out, listings)
	sort.SliceStable(out, func(i, j int) bool {
		return geo.DistanceKm(lat, lon, out[i].Latitude, out[i].Longitude) <
			geo.DistanceKm(lat, lon, out[j].Latitude, out[j].Longitude)
	})
	return out
}
