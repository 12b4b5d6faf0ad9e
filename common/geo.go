package common

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusM is the mean earth radius, in meters.
const EarthRadiusM = 6371.0 * 1000

// DistanceMeters returns the haversine great-circle distance
// between two lng/lat points, in meters.
func DistanceMeters(a, b orb.Point) float64 {
	lat1, lon1 := radians(a.Lat()), radians(a.Lon())
	lat2, lon2 := radians(b.Lat()), radians(b.Lon())

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Sqrt(h))

	return EarthRadiusM * c
}

// SegmentBearing returns the direction of travel from a to b as
// atan2(dLat, dLon) in the raw coordinate plane.
// This is NOT a geodesic bearing, and must not become one:
// segment boundaries are defined against this planar angle.
func SegmentBearing(a, b orb.Point) float64 {
	dy := b.Lat() - a.Lat()
	dx := b.Lon() - a.Lon()
	return math.Atan2(dy, dx)
}

// BearingDelta normalizes the absolute difference of two planar
// bearings into [0, pi].
func BearingDelta(b1, b2 float64) float64 {
	d := math.Abs(b2 - b1)
	return math.Min(d, 2*math.Pi-d)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
