package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKmIdenticalPoints(t *testing.T) {
	assert.Zero(t, DistanceKm(37.7749, -122.4194, 37.7749, -122.4194))
}

func TestDistanceKmSymmetric(t *testing.T) {
	a := DistanceKm(37.7749, -122.4194, 40.7128, -74.0060)
	b := DistanceKm(40.7128, -74.0060, 37.7749, -122.4194)
	assert.Equal(t, a, b)
}

func TestDistanceKmKnownValues(t *testing.T) {
	// One degree of latitude along a meridian is ~111.19 km
	assert.InDelta(t, 111.19, DistanceKm(0, 0, 1, 0), 0.1)

	// SF to NYC, ~4130 km great-circle
	assert.InDelta(t, 4130, DistanceKm(37.7749, -122.4194, 40.7128, -74.0060), 20)
}

func TestDistanceKmNonNegative(t *testing.T) {
	assert.GreaterOrEqual(t, DistanceKm(-33.8688, 151.2093, 51.5074, -0.1278), 0.0)
}

func TestKmToMiles(t *testing.T) {
	assert.InDelta(t, 4.97, KmToMiles(8), 0.01)
	assert.Zero(t, KmToMiles(0))
}

func TestMilesToKmRoundTrip(t *testing.T) {
	for _, km := range []float64{0.5, 1, 8, 42.195} {
		assert.InDelta(t, km, MilesToKm(KmToMiles(km)), 1e-9)
	}
}
