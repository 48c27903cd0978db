// Package geo implements the distance filter used to match reports to nearby
// NGOs. The filter is a planar bounding-box approximation: one degree of
// latitude (and, approximated, longitude) is treated as 111 km. That is good
// enough for short-range local dispatch and intentionally preserved for
// behavioral compatibility; it is inaccurate near the poles and for very large
// radii. Callers go through BoundingBox so a geodesic implementation could be
// swapped in without touching call sites.
package geo

// MetersPerDegree is the planar approximation of one degree of latitude.
const MetersPerDegree = 111000.0

// Bounds is an axis-aligned box in degrees around a query point.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// BoundingBox returns the box of half-width radiusMeters/111000 degrees in
// both axes around the query point.
func BoundingBox(lat, lng, radiusMeters float64) Bounds {
	d := radiusMeters / MetersPerDegree
	return Bounds{
		MinLat: lat - d,
		MaxLat: lat + d,
		MinLng: lng - d,
		MaxLng: lng + d,
	}
}

// Contains reports whether the point falls inside the box, edges inclusive.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}
