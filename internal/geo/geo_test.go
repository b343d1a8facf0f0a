package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var box = Region{Name: "Test Box", MinLat: 32.0, MaxLat: 34.0, MinLng: -120.0, MaxLng: -117.0}

func TestContains(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"center", 33.0, -118.5, true},
		{"min corner inclusive", 32.0, -120.0, true},
		{"max corner inclusive", 34.0, -117.0, true},
		{"north of box", 34.001, -118.5, false},
		{"south of box", 31.999, -118.5, false},
		{"west of box", 33.0, -120.001, false},
		{"east of box", 33.0, -116.999, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, box.Contains(tt.lat, tt.lng))
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, box.Validate())

	bad := Region{MinLat: 34.0, MaxLat: 32.0, MinLng: -120.0, MaxLng: -117.0}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidBounds)

	flipped := Region{MinLat: 32.0, MaxLat: 34.0, MinLng: -117.0, MaxLng: -120.0}
	assert.ErrorIs(t, flipped.Validate(), ErrInvalidBounds)

	offGlobe := Region{MinLat: 32.0, MaxLat: 94.0, MinLng: -120.0, MaxLng: -117.0}
	assert.ErrorIs(t, offGlobe.Validate(), ErrInvalidBounds)
}

func TestGrid(t *testing.T) {
	r := Region{MinLat: 0, MaxLat: 2, MinLng: 10, MaxLng: 13}

	pts := r.Grid(1.0)
	// 3 latitude rows x 4 longitude columns, edges inclusive.
	require.Len(t, pts, 12)
	assert.Equal(t, Point{Lat: 0, Lng: 10}, pts[0])
	assert.Equal(t, Point{Lat: 2, Lng: 13}, pts[11])
}

func TestGridNonpositiveStep(t *testing.T) {
	r := Region{MinLat: 0, MaxLat: 2, MinLng: 10, MaxLng: 14}

	pts := r.Grid(0)
	require.Len(t, pts, 1)
	assert.Equal(t, Point{Lat: 1, Lng: 12}, pts[0])
}

func TestLookup(t *testing.T) {
	r, ok := Lookup("socal")
	require.True(t, ok)
	assert.Equal(t, "Southern California", r.Name)

	r, ok = Lookup("  SoCal ")
	require.True(t, ok)
	assert.Equal(t, "Southern California", r.Name)

	_, ok = Lookup("atlantis")
	assert.False(t, ok)
}

func TestRegistryEntriesAreValid(t *testing.T) {
	for slug, r := range RegionRegistry {
		assert.NoErrorf(t, r.Validate(), "region %q", slug)
	}
}

func TestDefaultRegionExists(t *testing.T) {
	_, ok := Lookup(DefaultRegion)
	assert.True(t, ok)
}

func TestSlugsSorted(t *testing.T) {
	slugs := Slugs()
	require.NotEmpty(t, slugs)
	for i := 1; i < len(slugs); i++ {
		assert.Less(t, slugs[i-1], slugs[i])
	}
	assert.Contains(t, slugs, DefaultRegion)
}
