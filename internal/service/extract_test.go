package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmap/internal/model"
)

func newExtractDataset() *model.Dataset {
	listings := []model.Listing{
		{ID: "l-1", Name: "Harborview Lofts", Latitude: 37.7749, Longitude: -122.4194},
		{ID: "l-2", Name: "Dockside Annex", Latitude: 37.6011, Longitude: -122.3011},
	}
	pois := []model.POI{
		{ID: "c-far", Name: "Harbor Coffee", Type: "Coffee Shop", Latitude: 37.8000, Longitude: -122.4400},
		{ID: "c-near", Name: "Counter Coffee", Type: "Coffee Shop", Latitude: 37.7760, Longitude: -122.4200},
	}
	return model.NewDataset(listings, pois)
}

func TestExtractPropertyReference(t *testing.T) {
	dataset := newExtractDataset()

	cases := []string{
		"Now looking at Harborview Lofts, a great downtown option.",
		`I've selected the property "Harborview Lofts" for you.`,
		"You are now viewing Harborview Lofts.",
	}
	for _, text := range cases {
		effects, newActiveID := ExtractSideEffectsFromText(dataset, "", text)
		assert.Equal(t, "l-1", newActiveID, text)
		require.Len(t, effects, 1, text)
		assert.Equal(t, model.SelectProperty("l-1"), effects[0], text)
	}
}

func TestExtractPropertyReferenceUnknownName(t *testing.T) {
	dataset := newExtractDataset()

	effects, newActiveID := ExtractSideEffectsFromText(dataset, "", "Now looking at Grand Plaza Tower.")
	assert.Empty(t, effects)
	assert.Empty(t, newActiveID)
}

func TestExtractPOICountTruncatesToNearest(t *testing.T) {
	dataset := newExtractDataset()

	text := "I found 1 coffee shop near Harborview Lofts."
	effects, newActiveID := ExtractSideEffectsFromText(dataset, "l-1", text)

	assert.Empty(t, newActiveID)
	require.Len(t, effects, 1)
	// Both coffee shops are in range; the claimed count keeps only the nearest
	assert.Equal(t, model.ShowPOIs([]string{"c-near"}), effects[0])
}

func TestExtractPOICountLargerThanMatches(t *testing.T) {
	dataset := newExtractDataset()

	text := "I found 5 coffee shops near Harborview Lofts."
	effects, _ := ExtractSideEffectsFromText(dataset, "l-1", text)

	require.Len(t, effects, 1)
	assert.Equal(t, model.ShowPOIs([]string{"c-near", "c-far"}), effects[0])
}

func TestExtractCombinedReference(t *testing.T) {
	dataset := newExtractDataset()

	text := "Now looking at Harborview Lofts. I found 2 coffee shops near it."
	effects, newActiveID := ExtractSideEffectsFromText(dataset, "", text)

	assert.Equal(t, "l-1", newActiveID)
	require.Len(t, effects, 2)
	assert.Equal(t, model.SelectProperty("l-1"), effects[0])
	assert.Equal(t, model.ShowPOIs([]string{"c-near", "c-far"}), effects[1])
}

func TestExtractNoSignals(t *testing.T) {
	dataset := newExtractDataset()

	effects, newActiveID := ExtractSideEffectsFromText(dataset, "l-1", "The weather is lovely today.")
	assert.Empty(t, effects)
	assert.Empty(t, newActiveID)
}
