package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundingBoxIncludesNearbyPoint(t *testing.T) {
	// report ~1.1km east of the query point, 5km radius
	b := BoundingBox(18.52, 73.86, 5000)
	assert.True(t, b.Contains(18.52, 73.85))
}

func TestBoundingBoxExcludesPointOutsideRadius(t *testing.T) {
	// same report, 100m radius
	b := BoundingBox(18.52, 73.86, 100)
	assert.False(t, b.Contains(18.52, 73.85))
}

func TestBoundingBoxEdgesInclusive(t *testing.T) {
	b := BoundingBox(0, 0, 111000) // exactly one degree
	assert.True(t, b.Contains(1, 0))
	assert.True(t, b.Contains(-1, 0))
	assert.True(t, b.Contains(0, 1))
	assert.False(t, b.Contains(1.0001, 0))
}

func TestBoundingBoxHalfWidth(t *testing.T) {
	b := BoundingBox(12.9, 77.6, 3000)
	d := 3000.0 / MetersPerDegree
	assert.InDelta(t, 12.9-d, b.MinLat, 1e-9)
	assert.InDelta(t, 12.9+d, b.MaxLat, 1e-9)
	assert.InDelta(t, 77.6-d, b.MinLng, 1e-9)
	assert.InDelta(t, 77.6+d, b.MaxLng, 1e-9)
}
