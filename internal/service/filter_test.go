package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmap/internal/model"
)

func listingIDs(listings []model.Listing) []string {
	ids := make([]string, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}
	return ids
}

func TestFilterBySizeToleranceBand(t *testing.T) {
	listings := []model.Listing{
		{ID: "a", SizeSqft: 749},
		{ID: "b", SizeSqft: 750}, // lower bound, inclusive
		{ID: "c", SizeSqft: 900},
		{ID: "d", SizeSqft: 1250}, // upper bound, inclusive
		{ID: "e", SizeSqft: 1251},
	}
	got := FilterBySize(1000, listings)
	assert.Equal(t, []string{"b", "c", "d"}, listingIDs(got))
}

func TestFilterByPriceModes(t *testing.T) {
	listings := []model.Listing{
		{ID: "a", Price: 74},
		{ID: "b", Price: 75},
		{ID: "c", Price: 100},
		{ID: "d", Price: 125},
		{ID: "e", Price: 200},
	}

	assert.Equal(t, []string{"a", "b", "c"}, listingIDs(FilterByPrice(100, model.PriceBelow, listings)))
	assert.Equal(t, []string{"c", "d", "e"}, listingIDs(FilterByPrice(100, model.PriceAbove, listings)))
	// Around keeps the inclusive +/-25% band
	assert.Equal(t, []string{"b", "c", "d"}, listingIDs(FilterByPrice(100, model.PriceAround, listings)))
	// Unknown mode behaves like around
	assert.Equal(t, []string{"b", "c", "d"}, listingIDs(FilterByPrice(100, "", listings)))
}

func TestFilterByFeature(t *testing.T) {
	dataset := newTestDataset()

	got := FilterByFeature("parking", dataset.Listings)
	assert.Equal(t, []string{"l-1", "l-3"}, listingIDs(got))

	// Substring of a tag is enough
	got = FilterByFeature("ocean", dataset.Listings)
	assert.Equal(t, []string{"l-1"}, listingIDs(got))

	assert.Empty(t, FilterByFeature("helipad", dataset.Listings))
	assert.Empty(t, FilterByFeature("  ", dataset.Listings))
}

func TestPOIsNearDefaultRadius(t *testing.T) {
	pois := []model.POI{
		{ID: "close", Latitude: 0, Longitude: 0.070}, // ~7.8 km
		{ID: "far", Latitude: 0, Longitude: 0.075},   // ~8.3 km
	}

	got := POIsNear(pois, 0, 0, 8)
	require.Len(t, got, 1)
	assert.Equal(t, "close", got[0].ID)

	// Non-positive radius falls back to the default 8 km
	assert.Equal(t, got, POIsNear(pois, 0, 0, 0))
	assert.Equal(t, got, POIsNear(pois, 0, 0, -1))
}

func TestMatchPOIsByType(t *testing.T) {
	dataset := newTestDataset()

	got := MatchPOIsByType(dataset.POIs, "coffee")
	require.Len(t, got, 1)
	assert.Equal(t, "p-2", got[0].ID)

	// FedEx resolves through the name, not the type
	got = MatchPOIsByType(dataset.POIs, "Fed Ex")
	require.Len(t, got, 1)
	assert.Equal(t, "p-1", got[0].ID)

	assert.Empty(t, MatchPOIsByType(dataset.POIs, "bowling"))
}

func TestListingsNear(t *testing.T) {
	dataset := newTestDataset()

	got := ListingsNear(dataset.Listings, dataset.POIs, "fedex", DefaultRadiusKm)
	assert.Equal(t, []string{"l-1"}, listingIDs(got))

	// No POI of that type means no listings, regardless of geometry
	assert.Empty(t, ListingsNear(dataset.Listings, dataset.POIs, "bowling", DefaultRadiusKm))
}

func TestSortPOIsByDistance(t *testing.T) {
	dataset := newTestDataset()
	anchor := dataset.ListingByID("l-1")

	before := make([]model.POI, len(dataset.POIs))
	copy(before, dataset.POIs)

	got := SortPOIsByDistance(dataset.POIs, anchor.Latitude, anchor.Longitude)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"p-2", "p-1", "p-3", "p-4"}, poiIDs(got))

	// Input untouched
	assert.Equal(t, before, dataset.POIs)
}

func TestSortListingsByDistance(t *testing.T) {
	dataset := newTestDataset()
	poi := dataset.POIByID("p-4")

	got := SortListingsByDistance(dataset.Listings, poi.Latitude, poi.Longitude)
	require.Len(t, got, 3)
	assert.Equal(t, "l-3", got[0].ID)
}
