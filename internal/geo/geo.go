// Package geo provides great-circle distance math for listings and POIs.
package geo

import "math"

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula
	EarthRadiusKm = 6371.0

	milesPerKm = 0.621371
)

// DistanceKm returns the great-circle distance in kilometers between two
// WGS84 coordinate pairs, via the haversine formula. Symmetric, non-negative,
// and zero for identical points.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// KmToMiles converts kilometers to statute miles
func KmToMiles(km float64) float64 {
	return km * milesPerKm
}

// MilesToKm converts statute miles to kilometers
func MilesToKm(miles float64) float64 {
	return miles / milesPerKm
}
