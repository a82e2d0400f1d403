package model

// POI represents a point of interest near the listings.
// Type is free text ("Shipping", "Restaurant", "Airport", ...), not a closed enum.
type POI struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Type        string  `json:"type" db:"type"`
	Latitude    float64 `json:"latitude" db:"latitude"`
	Longitude   float64 `json:"longitude" db:"longitude"`
	Description string  `json:"description,omitempty" db:"description"`
}
