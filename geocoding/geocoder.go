// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocoding turns place queries into coordinates and flattens raw
// geocoder responses.
package geocoding

import (
	"context"

	"github.com/jcodagnone/geomap/spatial"
)

// Result represents a geocoding result from any provider.
type Result struct {
	Point       spatial.Point `json:"point"`
	Confidence  string        `json:"confidence"` // high, medium, low
	Provider    string        `json:"provider"`
	DisplayName string        `json:"display_name"`
}

// Latitude implements spatial.LatLng.
func (r *Result) Latitude() float64 { return r.Point.Lat }

// Longitude implements spatial.LatLng.
func (r *Result) Longitude() float64 { return r.Point.Lng }

// Name implements spatial.Named.
func (r *Result) Name() string { return r.DisplayName }

// Geocoder interface for different geocoding providers.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Result, error)
}

// RawGeocoder is implemented by providers able to hand back the whole
// response instead of a single location.
type RawGeocoder interface {
	GeocodeRaw(ctx context.Context, query string) (*Response, error)
}
