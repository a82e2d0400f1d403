package service

import (
	"context"
	"math/rand"

	"propmap/internal/model"
)

// newTestDataset builds a small San Francisco bay snapshot. Harborview Lofts
// sits downtown within walking distance of the FedEx center and the coffee
// shop; the villa and the annex are both well outside the default radius of
// either.
func newTestDataset() *model.Dataset {
	listings := []model.Listing{
		{
			ID: "l-1", Name: "Harborview Lofts", Address: "12 Pier Ave",
			Latitude: 37.7749, Longitude: -122.4194,
			Price: 500_000, SizeSqft: 900, YearBuilt: 2001, Type: "Condo",
			Features: model.JSONArray{"Parking", "Ocean View"},
		},
		{
			ID: "l-2", Name: "Luxury Villa with Ocean View", Address: "8 Cliff Rd",
			Latitude: 37.8715, Longitude: -122.5110,
			Price: 900_000, SizeSqft: 2500, YearBuilt: 2015, Type: "Villa",
			Features: model.JSONArray{"Pool", "Garden"},
		},
		{
			ID: "l-3", Name: "Dockside Annex", Address: "3 Wharf St",
			Latitude: 37.6011, Longitude: -122.3011,
			Price: 1_200_000, SizeSqft: 1250, YearBuilt: 1988, Type: "Warehouse",
			Features: model.JSONArray{"Loading Dock", "Parking"},
		},
	}
	pois := []model.POI{
		{ID: "p-1", Name: "FedEx Office Print & Ship Center", Type: "Shipping", Latitude: 37.7780, Longitude: -122.4150},
		{ID: "p-2", Name: "Blue Bottle Coffee", Type: "Coffee Shop", Latitude: 37.7765, Longitude: -122.4230},
		{ID: "p-3", Name: "Union Square Park", Type: "Park", Latitude: 37.7879, Longitude: -122.4075},
		{ID: "p-4", Name: "SFO Airport", Type: "Airport", Latitude: 37.6213, Longitude: -122.3790},
	}
	return model.NewDataset(listings, pois)
}

func newTestResolver(dataset *model.Dataset) *Resolver {
	return NewResolver(dataset, rand.New(rand.NewSource(1)))
}

// stubCompleter answers every completion with a fixed reply or error
type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(_ context.Context, _ []ChatMessage, _ string) (string, error) {
	return s.reply, s.err
}

func (s *stubCompleter) CompleteStream(_ context.Context, _ []ChatMessage, _ string, callback StreamCallback) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if callback != nil {
		if err := callback(&StreamChunk{Content: s.reply}); err != nil {
			return "", err
		}
		if err := callback(&StreamChunk{Done: true}); err != nil {
			return "", err
		}
	}
	return s.reply, nil
}

func (s *stubCompleter) IsEnabled() bool { return true }

// blockingCompleter parks inside Complete until released, signalling entry
// first, so tests can observe an in-flight turn.
type blockingCompleter struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingCompleter) Complete(_ context.Context, _ []ChatMessage, _ string) (string, error) {
	b.entered <- struct{}{}
	<-b.release
	return "done thinking", nil
}

func (b *blockingCompleter) CompleteStream(ctx context.Context, messages []ChatMessage, modelName string, _ StreamCallback) (string, error) {
	return b.Complete(ctx, messages, modelName)
}

func (b *blockingCompleter) IsEnabled() bool { return true }
