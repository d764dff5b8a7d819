// Package geo holds the great-circle and opening-hours predicates shared by
// every place filter.
package geo

import (
	"fmt"
	"math"
	"time"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

// EarthRadiusMiles is the sphere radius used by every distance computation,
// including the SQL expression emitted by the Postgres repository.
const EarthRadiusMiles = 3958.8

// DefaultCloseTime applies to opening periods without a close time.
const DefaultCloseTime = "2400"

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceMiles returns the haversine distance between a and b.
func DistanceMiles(a, b domain.GeoPoint) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push h past 1 for near-antipodal points; the SQL
	// expression clamps the same way.
	h = min(max(h, 0), 1)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMiles * c
}

func WithinRadius(center, p domain.GeoPoint, miles float64) bool {
	return DistanceMiles(center, p) <= miles
}

// HHMM formats t as a four-digit wall-clock time.
func HHMM(t time.Time) string {
	return fmt.Sprintf("%02d%02d", t.Hour(), t.Minute())
}

// OpenAt reports whether some period of the schedule opens on t's weekday and
// t's wall-clock time falls within [open, close].
func OpenAt(hours *domain.OpeningHours, t time.Time) bool {
	if hours == nil || len(hours.Periods) == 0 {
		return false
	}
	day := int(t.Weekday())
	now := HHMM(t)
	for _, period := range hours.Periods {
		if period.Open.Day != day {
			continue
		}
		closeAt := DefaultCloseTime
		if period.Close != nil && period.Close.Time != "" {
			closeAt = period.Close.Time
		}
		if now >= period.Open.Time && now <= closeAt {
			return true
		}
	}
	return false
}
