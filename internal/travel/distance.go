package travel

import (
	"math"
	"strings"
)

// MetersPerMile converts provider meters into statute miles.
const MetersPerMile = 1609.344

const earthRadiusMiles = 3958.8

// Method records how a distance was computed.
type Method string

const (
	// MethodRoute is the driving distance returned by the routing provider.
	MethodRoute Method = "route"
	// MethodStraightLine is the great-circle approximation used when no route is available.
	MethodStraightLine Method = "straight-line"
)

// DistanceResult is a distance together with the method that produced it.
type DistanceResult struct {
	Miles  float64 `json:"miles"`
	Method Method  `json:"method"`
}

// Approximate reports whether the distance is a straight-line estimate.
func (d DistanceResult) Approximate() bool {
	return d.Method == MethodStraightLine
}

// GeoPoint is a WGS 84 coordinate in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HaversineMiles returns the great-circle distance between a and b.
func HaversineMiles(a, b GeoPoint) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180.0 }
	dLat := rad(b.Lat - a.Lat)
	dLng := rad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(a.Lat))*math.Cos(rad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMiles * c
}

// NormalizeAddress lowercases and collapses whitespace so equivalent inputs
// share cache keys and lookups.
func NormalizeAddress(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}
