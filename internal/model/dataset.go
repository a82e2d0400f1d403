package model

// Dataset is the immutable in-memory snapshot of listings and POIs shared by
// all sessions. It is loaded once at startup and never mutated afterwards, so
// no locking is required around reads.
type Dataset struct {
	Listings []Listing
	POIs     []POI

	listingByID map[string]*Listing
	poiByID     map[string]*POI
}

// NewDataset builds a dataset snapshot with identifier indexes
func NewDataset(listings []Listing, pois []POI) *Dataset {
	d := &Dataset{
		Listings:    listings,
		POIs:        pois,
		listingByID: make(map[string]*Listing, len(listings)),
		poiByID:     make(map[string]*POI, len(pois)),
	}
	for i := range d.Listings {
		d.listingByID[d.Listings[i].ID] = &d.Listings[i]
	}
	for i := range d.POIs {
		d.poiByID[d.POIs[i].ID] = &d.POIs[i]
	}
	return d
}

// ListingByID returns the listing with the given identifier, or nil
func (d *Dataset) ListingByID(id string) *Listing {
	return d.listingByID[id]
}

// POIByID returns the POI with the given identifier, or nil
func (d *Dataset) POIByID(id string) *POI {
	return d.poiByID[id]
}
