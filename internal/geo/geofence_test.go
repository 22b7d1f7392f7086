package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// pointAtDistance returns a point roughly meters north of origin. One degree
// of latitude is ~111320 meters everywhere on the sphere used by Distance.
func pointAtDistance(origin Point, meters float64) Point {
	return Point{
		Latitude:  origin.Latitude + meters/111194.9, // meters per degree on R=6371km
		Longitude: origin.Longitude,
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// Brussels Grand-Place to Atomium, roughly 4.9 km
	grandPlace := Point{Latitude: 50.8467, Longitude: 4.3499}
	atomium := Point{Latitude: 50.8949, Longitude: 4.3415}

	d := Distance(grandPlace, atomium)
	assert.InDelta(t, 5370, d, 100)
}

func TestDistanceZero(t *testing.T) {
	p := Point{Latitude: 50.85, Longitude: 4.35}
	assert.Equal(t, 0.0, Distance(p, p))
}

func TestWithinRadiusBoundary(t *testing.T) {
	target := Point{Latitude: 50.8467, Longitude: 4.3499}
	radius := 100.0

	inside := pointAtDistance(target, radius-1)
	outside := pointAtDistance(target, radius+1)

	assert.True(t, WithinRadius(inside, target, radius), "point at radius-1m must be inside")
	assert.False(t, WithinRadius(outside, target, radius), "point at radius+1m must be outside")

	// The boundary itself is inclusive.
	assert.True(t, WithinRadius(target, target, 0))
}

func TestEffectiveRadiusResolution(t *testing.T) {
	projectRadius := 50
	orgRadius := 100

	tests := []struct {
		name          string
		projectRadius *int
		orgEnabled    bool
		orgRadius     *int
		wantRadius    int
		wantEnabled   bool
	}{
		{"project radius wins", &projectRadius, true, &orgRadius, 50, true},
		{"project radius wins even when org disabled", &projectRadius, false, nil, 50, true},
		{"org default applies", nil, true, &orgRadius, 100, true},
		{"org enabled without radius disables the check", nil, true, nil, 0, false},
		{"org disabled disables the check", nil, false, &orgRadius, 0, false},
		{"nothing configured", nil, false, nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			radius, enabled := EffectiveRadius(tt.projectRadius, tt.orgEnabled, tt.orgRadius)
			assert.Equal(t, tt.wantRadius, radius)
			assert.Equal(t, tt.wantEnabled, enabled)
		})
	}
}
