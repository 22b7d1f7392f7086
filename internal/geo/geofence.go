// Package geo holds the geofence validation primitives. Distances are
// great-circle (haversine) because inputs are degrees of latitude/longitude
// and the tolerances involved (tens of meters) are sensitive to the spherical
// correction that planar distance ignores.
package geo

import "math"

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Distance returns the great-circle distance between two points in meters.
func Distance(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// WithinRadius reports whether subject lies within radius meters of target.
// The boundary is inclusive: a point exactly at the radius is inside.
func WithinRadius(subject, target Point, radiusMeters float64) bool {
	return Distance(subject, target) <= radiusMeters
}

// EffectiveRadius resolves the geofence radius for a check: the
// project-specific radius wins when set, else the organization default when
// geofencing is enabled there. enabled=false means no fence applies and the
// check must pass.
func EffectiveRadius(projectRadius *int, orgEnabled bool, orgRadius *int) (radius int, enabled bool) {
	if projectRadius != nil {
		return *projectRadius, true
	}
	if orgEnabled && orgRadius != nil {
		return *orgRadius, true
	}
	return 0, false
}
