// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package mapping

import (
	"testing"

	"github.com/jcodagnone/geomap/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// place is a named coordinate source, like a stored location.
type place struct {
	name     string
	lat, lng float64
}

func (p place) Latitude() float64  { return p.lat }
func (p place) Longitude() float64 { return p.lng }
func (p place) Name() string       { return p.name }

var soho = place{name: "Soho", lat: 51.5, lng: -0.1}

func TestNewMarker(t *testing.T) {
	m, err := NewMarker(soho, MarkerOptions{})
	require.NoError(t, err)

	assert.Equal(t, spatial.Point{Lat: 51.5, Lng: -0.1}, m.Point)
	assert.Equal(t, "Soho", m.Label)
	assert.False(t, m.Draggable)
	assert.Nil(t, m.Attrs)
}

func TestNewMarkerOverrides(t *testing.T) {
	m, err := NewMarker(soho, MarkerOptions{
		Label:     Ptr("X"),
		Draggable: Ptr(true),
		Attrs:     map[string]string{"icon": "pin"},
	})
	require.NoError(t, err)

	assert.Equal(t, "X", m.Label)
	assert.True(t, m.Draggable)
	assert.Equal(t, map[string]string{"icon": "pin"}, m.Attrs)

	t.Run("point override wins", func(t *testing.T) {
		m, err := NewMarker(soho, MarkerOptions{Point: &spatial.Point{Lat: 1, Lng: 2}})
		require.NoError(t, err)
		assert.Equal(t, spatial.Point{Lat: 1, Lng: 2}, m.Point)
		assert.Equal(t, "Soho", m.Label)
	})

	t.Run("empty label override clears the name", func(t *testing.T) {
		m, err := NewMarker(soho, MarkerOptions{Label: Ptr("")})
		require.NoError(t, err)
		assert.Empty(t, m.Label)
	})
}

func TestNewMarkerFromTuple(t *testing.T) {
	m, err := NewMarker(spatial.Tuple{20, 22}, MarkerOptions{})
	require.NoError(t, err)

	assert.Equal(t, spatial.Point{Lat: 20, Lng: 22}, m.Point)
	assert.Empty(t, m.Label)
	assert.Equal(t, "Map Marker at (20, 22)", m.String())
	assert.Equal(t, map[string]float64{"latitude": 20, "longitude": 22}, m.Coords())
}

func TestNewMarkerUnsupported(t *testing.T) {
	_, err := NewMarker(spatial.Tuple{"1.0", "2.0"}, MarkerOptions{})
	require.ErrorIs(t, err, spatial.ErrUnsupportedSource)

	_, err = NewMarker("1.0", MarkerOptions{})
	require.ErrorIs(t, err, spatial.ErrUnsupportedSource)
}

func TestMarkerPlace(t *testing.T) {
	m, err := NewMarker(soho, MarkerOptions{Attrs: map[string]string{"icon": "pin"}})
	require.NoError(t, err)

	require.NoError(t, m.Place([]float64{-34.9, -56.16}))
	assert.Equal(t, spatial.Point{Lat: -34.9, Lng: -56.16}, m.Point)
	assert.Equal(t, "Soho", m.Label)
	assert.Equal(t, "pin", m.Attrs["icon"])

	err = m.Place("nowhere")
	require.ErrorIs(t, err, spatial.ErrUnsupportedSource)
	assert.Equal(t, spatial.Point{Lat: -34.9, Lng: -56.16}, m.Point)
}

func TestMarkerIsCoordinateSource(t *testing.T) {
	m, err := NewMarker(soho, MarkerOptions{})
	require.NoError(t, err)

	other, err := NewMarker(m, MarkerOptions{})
	require.NoError(t, err)
	assert.Equal(t, m.Point, other.Point)
	assert.Empty(t, other.Label)
}
