// Copyright 2025 The GeoMap Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"math"
)

const earthRadius = 6371e3 // meters

// Point represents a geographical point with latitude and longitude.
// Values are accepted as-is, out of range latitudes included.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Latitude implements LatLng.
func (p Point) Latitude() float64 { return p.Lat }

// Longitude implements LatLng.
func (p Point) Longitude() float64 { return p.Lng }

// Coords returns the point as a latitude/longitude map, the shape templates expect.
func (p Point) Coords() map[string]float64 {
	return map[string]float64{"latitude": p.Lat, "longitude": p.Lng}
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p *Point) HaversineDistance(other *Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// WithinBounds reports whether p lies inside the box spanned by its north-west
// and south-east corners. Edges are inclusive. A box whose west edge is east of
// its east edge wraps the antimeridian.
func (p Point) WithinBounds(northWest, southEast Point) bool {
	if p.Lat > northWest.Lat || p.Lat < southEast.Lat {
		return false
	}

	if northWest.Lng <= southEast.Lng {
		return p.Lng >= northWest.Lng && p.Lng <= southEast.Lng
	}

	return p.Lng >= northWest.Lng || p.Lng <= southEast.Lng
}
