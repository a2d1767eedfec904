// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package mapping

import (
	"fmt"
	"maps"

	"github.com/jcodagnone/geomap/spatial"
)

// Marker is a point of interest placed on a map widget.
type Marker struct {
	Point     spatial.Point     `json:"point"`
	Label     string            `json:"label,omitempty"`
	Draggable bool              `json:"draggable"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

// MarkerOptions overrides marker defaults. Nil fields are left alone.
type MarkerOptions struct {
	Point     *spatial.Point
	Label     *string
	Draggable *bool
	// Attrs are merged into the marker attributes.
	Attrs map[string]string
}

// Ptr returns a pointer to v, handy to fill MarkerOptions.
func Ptr[T any](v T) *T {
	return &v
}

func (o MarkerOptions) apply(m *Marker) {
	if o.Point != nil {
		m.Point = *o.Point
	}

	if o.Label != nil {
		m.Label = *o.Label
	}

	if o.Draggable != nil {
		m.Draggable = *o.Draggable
	}

	if len(o.Attrs) > 0 {
		if m.Attrs == nil {
			m.Attrs = make(map[string]string, len(o.Attrs))
		}

		maps.Copy(m.Attrs, o.Attrs)
	}
}

// NewMarker places a new marker on source. The label defaults to the source
// name when it has one; opts are applied last and win over every default.
func NewMarker(source any, opts MarkerOptions) (*Marker, error) {
	point, err := extract(source)
	if err != nil {
		return nil, err
	}

	m := &Marker{Point: point}
	if named, ok := source.(spatial.Named); ok {
		m.Label = named.Name()
	}

	opts.apply(m)

	return m, nil
}

// Place moves the marker onto source. Label and attributes are kept.
func (m *Marker) Place(source any) error {
	point, err := extract(source)
	if err != nil {
		return err
	}

	m.Point = point

	return nil
}

// extract is spatial.Extract aware of this package's pointer sources, a nil
// marker or widget is unsupported.
func extract(source any) (spatial.Point, error) {
	switch s := source.(type) {
	case *Marker:
		if s == nil {
			return spatial.Point{}, fmt.Errorf("%w: nil %T", spatial.ErrUnsupportedSource, s)
		}
	case *BaseWidget:
		if s == nil {
			return spatial.Point{}, fmt.Errorf("%w: nil %T", spatial.ErrUnsupportedSource, s)
		}
	}

	return spatial.Extract(source)
}

// Latitude implements spatial.LatLng.
func (m *Marker) Latitude() float64 { return m.Point.Lat }

// Longitude implements spatial.LatLng.
func (m *Marker) Longitude() float64 { return m.Point.Lng }

// Coords returns the marker position as a latitude/longitude map.
func (m *Marker) Coords() map[string]float64 { return m.Point.Coords() }

func (m *Marker) String() string {
	return fmt.Sprintf("Map Marker at (%v, %v)", m.Point.Lat, m.Point.Lng)
}
