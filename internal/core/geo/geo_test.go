package geo

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

func TestDistanceMilesNearbyPoints(t *testing.T) {
	d := DistanceMiles(
		domain.GeoPoint{Lat: 37.4220, Lng: -122.0841},
		domain.GeoPoint{Lat: 37.4221, Lng: -122.0840},
	)
	assert.Less(t, d, 0.1)
	assert.Greater(t, d, 0.0)
}

func TestDistanceMilesQuarterCircle(t *testing.T) {
	d := DistanceMiles(domain.GeoPoint{Lat: 0, Lng: 0}, domain.GeoPoint{Lat: 0, Lng: 90})
	assert.InDelta(t, EarthRadiusMiles*math.Pi/2, d, 1e-6)
	assert.InDelta(t, 6217, d, 2)
}

func TestDistanceMilesNearAntipodalIsFinite(t *testing.T) {
	halfCircumference := EarthRadiusMiles * math.Pi
	for lat := 0.5; lat < 90; lat += 0.5 {
		d := DistanceMiles(domain.GeoPoint{Lat: lat, Lng: 0}, domain.GeoPoint{Lat: -lat, Lng: 180})
		require.False(t, math.IsNaN(d), "lat=%v", lat)
		assert.InDelta(t, halfCircumference, d, 0.01, "lat=%v", lat)
		assert.True(t, WithinRadius(domain.GeoPoint{Lat: lat, Lng: 0}, domain.GeoPoint{Lat: -lat, Lng: 180}, halfCircumference+1))
	}
}

func TestDistanceMilesSymmetric(t *testing.T) {
	a := domain.GeoPoint{Lat: 51.5, Lng: -0.12}
	b := domain.GeoPoint{Lat: 48.85, Lng: 2.35}
	assert.InDelta(t, DistanceMiles(a, b), DistanceMiles(b, a), 1e-9)
	assert.Zero(t, DistanceMiles(a, a))
}

func TestWithinRadiusIsMonotonic(t *testing.T) {
	center := domain.GeoPoint{Lat: 40.7128, Lng: -74.0060}
	points := []domain.GeoPoint{
		{Lat: 40.7138, Lng: -74.0050},
		{Lat: 40.7306, Lng: -73.9352},
		{Lat: 40.6782, Lng: -73.9442},
		{Lat: 41.0, Lng: -74.5},
		{Lat: 42.36, Lng: -71.06},
	}
	radii := []float64{0, 0.5, 1, 5, 25, 250}
	for i := 0; i < len(radii)-1; i++ {
		for _, p := range points {
			if WithinRadius(center, p, radii[i]) {
				assert.True(t, WithinRadius(center, p, radii[i+1]), "point %v in r=%v but not r=%v", p, radii[i], radii[i+1])
			}
		}
	}
}

func TestWithinRadiusBoundaryInclusive(t *testing.T) {
	a := domain.GeoPoint{Lat: 0, Lng: 0}
	b := domain.GeoPoint{Lat: 0, Lng: 1}
	assert.True(t, WithinRadius(a, b, DistanceMiles(a, b)))
}

func TestOpenAt(t *testing.T) {
	// 2024-08-07 is a Wednesday.
	wednesdayNoon := time.Date(2024, 8, 7, 12, 30, 0, 0, time.UTC)
	wednesdayLate := time.Date(2024, 8, 7, 23, 15, 0, 0, time.UTC)
	require.Equal(t, time.Wednesday, wednesdayNoon.Weekday())

	hours := &domain.OpeningHours{Periods: []domain.OpeningPeriod{
		{Open: domain.DayTime{Day: 3, Time: "1100"}, Close: &domain.DayTime{Day: 3, Time: "2200"}},
		{Open: domain.DayTime{Day: 5, Time: "1700"}},
	}}

	assert.True(t, OpenAt(hours, wednesdayNoon))
	assert.False(t, OpenAt(hours, wednesdayLate))
	assert.False(t, OpenAt(nil, wednesdayNoon))
	assert.False(t, OpenAt(&domain.OpeningHours{}, wednesdayNoon))

	fridayLate := time.Date(2024, 8, 9, 23, 59, 0, 0, time.UTC)
	assert.True(t, OpenAt(hours, fridayLate), "missing close defaults to 2400")
}

func TestHHMM(t *testing.T) {
	assert.Equal(t, "0705", HHMM(time.Date(2024, 1, 1, 7, 5, 0, 0, time.UTC)))
}
