// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package places persists named, geocoded locations.
package places

import (
	"fmt"
	"time"

	"github.com/jcodagnone/geomap/geocoding"
	"github.com/jcodagnone/geomap/spatial"
	"github.com/uber/h3-go/v4"
)

// CellResolution is the H3 resolution used to index places (edges of ~1.2km).
const CellResolution = 7

// Place is a saved geocoding result.
type Place struct {
	ID          int           `json:"id"`
	Query       string        `json:"query"`
	DisplayName string        `json:"display_name"`
	Point       spatial.Point `json:"point"`
	Provider    string        `json:"provider"`   // nominatim, google_maps, manual
	Confidence  string        `json:"confidence"` // high, medium, low
	H3Cell      int64         `json:"-"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// FromResult builds an unsaved place for query out of a geocoder result.
func FromResult(query string, result *geocoding.Result) *Place {
	return &Place{
		Query:       query,
		DisplayName: result.DisplayName,
		Point:       result.Point,
		Provider:    result.Provider,
		Confidence:  result.Confidence,
	}
}

// Latitude implements spatial.LatLng.
func (p *Place) Latitude() float64 { return p.Point.Lat }

// Longitude implements spatial.LatLng.
func (p *Place) Longitude() float64 { return p.Point.Lng }

// Name implements spatial.Named. It is the display name, or the query.
func (p *Place) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}

	return p.Query
}

// Len implements spatial.Indexable as a (lat, lng) pair.
func (p *Place) Len() int { return 2 }

// At implements spatial.Indexable.
func (p *Place) At(i int) any {
	switch i {
	case 0:
		return p.Point.Lat
	case 1:
		return p.Point.Lng
	default:
		panic(fmt.Sprintf("places: index %d out of range", i))
	}
}

// WithinBounds reports whether the place lies inside the box.
func (p *Place) WithinBounds(northWest, southEast spatial.Point) bool {
	return p.Point.WithinBounds(northWest, southEast)
}

func (p *Place) computeH3() error {
	cell, err := cellOf(p.Point, CellResolution)
	if err != nil {
		return err
	}

	p.H3Cell = int64(cell)

	return nil
}

func cellOf(point spatial.Point, res int) (h3.Cell, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(point.Lat, point.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
	}

	return cell, nil
}
