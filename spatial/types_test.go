// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	london := &Point{Lat: 51.5074, Lng: -0.1278}
	paris := &Point{Lat: 48.8566, Lng: 2.3522}

	assert.InDelta(t, 343_500, london.HaversineDistance(paris), 1_500)
	assert.InDelta(t, 0, london.HaversineDistance(london), 1e-6)
}

func TestWithinBounds(t *testing.T) {
	london := Point{Lat: 51.5074, Lng: -0.1278}
	birmingham := Point{Lat: 52.4862, Lng: -1.8904}
	brussels := Point{Lat: 50.8503, Lng: 4.3517}
	newYork := Point{Lat: 40.7128, Lng: -74.0060}
	sydney := Point{Lat: -33.8688, Lng: 151.2093}
	darwin := Point{Lat: -12.4634, Lng: 130.8456}
	wellington := Point{Lat: -41.2865, Lng: 174.7762}

	assert.True(t, london.WithinBounds(birmingham, brussels))
	assert.True(t, sydney.WithinBounds(darwin, wellington))
	assert.False(t, london.WithinBounds(newYork, birmingham))

	// box from Fiji to Samoa wraps the antimeridian
	fijiNW := Point{Lat: -10, Lng: 175}
	samoaSE := Point{Lat: -20, Lng: -170}
	assert.True(t, Point{Lat: -15, Lng: 179.9}.WithinBounds(fijiNW, samoaSE))
	assert.True(t, Point{Lat: -15, Lng: -175}.WithinBounds(fijiNW, samoaSE))
	assert.False(t, Point{Lat: -15, Lng: 0}.WithinBounds(fijiNW, samoaSE))
}

func TestPointString(t *testing.T) {
	assert.Equal(t, "POINT(-0.100000 51.500000)", Point{Lat: 51.5, Lng: -0.1}.String())
	assert.Equal(t, map[string]float64{"latitude": 51.5, "longitude": -0.1}, Point{Lat: 51.5, Lng: -0.1}.Coords())
}
