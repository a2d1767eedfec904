// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package mapping builds map widgets for HTML pages.
package mapping

import (
	"errors"
	"fmt"
	"html/template"

	"github.com/jcodagnone/geomap/spatial"
)

// ErrNotImplemented is returned by rendering operations of BaseWidget.
var ErrNotImplemented = errors.New("not implemented by this widget")

const (
	defaultElement   = "div"
	defaultElementID = "map"
	defaultZoom      = 13
)

// Widget is a map bound to a page element, with a center and markers.
type Widget interface {
	spatial.LatLng

	Center() spatial.Point
	SetCenter(source any) error
	AddMarker(source any, opts MarkerOptions) (*Marker, error)
	Markers() []*Marker
	Bind(id, element string)
	Bound() bool
	BoundTo() string
	ElementID() string
	Element() string
	ForLocation(location any, addMarker bool, label string) error

	// HeadTags returns the markup for the page <head>.
	HeadTags() (template.HTML, error)
	// RenderPage renders a full HTML page holding the widget.
	RenderPage() (string, error)
	// RenderPageResponse renders the same page wrapped as an HTTP response.
	RenderPageResponse() (*PageResponse, error)
}

// BaseWidget keeps the state shared by every provider. It cannot render.
type BaseWidget struct {
	// Zoom is the initial zoom level.
	Zoom int

	center    spatial.Point
	bound     bool
	elementID string
	element   string
	markers   []*Marker
}

// NewBaseWidget returns an unbound widget centered on (0, 0) with no markers.
func NewBaseWidget() *BaseWidget {
	return &BaseWidget{
		Zoom:    defaultZoom,
		markers: make([]*Marker, 0),
	}
}

// Center returns the map center.
func (w *BaseWidget) Center() spatial.Point { return w.center }

// Latitude implements spatial.LatLng with the center latitude.
func (w *BaseWidget) Latitude() float64 { return w.center.Lat }

// Longitude implements spatial.LatLng with the center longitude.
func (w *BaseWidget) Longitude() float64 { return w.center.Lng }

// Coords returns the center as a latitude/longitude map.
func (w *BaseWidget) Coords() map[string]float64 { return w.center.Coords() }

// SetCenter centers the map on source. On error the center is unchanged.
func (w *BaseWidget) SetCenter(source any) error {
	point, err := extract(source)
	if err != nil {
		return err
	}

	w.center = point

	return nil
}

// AddMarker appends a marker for source. An existing *Marker gets opts applied
// in place and is appended as is.
func (w *BaseWidget) AddMarker(source any, opts MarkerOptions) (*Marker, error) {
	if m, ok := source.(*Marker); ok && m != nil {
		opts.apply(m)
		w.markers = append(w.markers, m)

		return m, nil
	}

	m, err := NewMarker(source, opts)
	if err != nil {
		return nil, err
	}

	w.markers = append(w.markers, m)

	return m, nil
}

// Markers returns the markers in insertion order.
func (w *BaseWidget) Markers() []*Marker {
	return append(make([]*Marker, 0, len(w.markers)), w.markers...)
}

// Bind attaches the widget to the page element with the given id. An empty
// element means "div". The element is not required to exist.
func (w *BaseWidget) Bind(id, element string) {
	if element == "" {
		element = defaultElement
	}

	w.bound = true
	w.elementID = id
	w.element = element
}

// Bound reports whether Bind was called.
func (w *BaseWidget) Bound() bool { return w.bound }

// BoundTo returns the bound element as a selector, e.g. "div#map".
func (w *BaseWidget) BoundTo() string {
	if !w.bound {
		return ""
	}

	return fmt.Sprintf("%s#%s", w.element, w.elementID)
}

// ElementID returns the id of the element hosting the map.
func (w *BaseWidget) ElementID() string {
	if !w.bound {
		return defaultElementID
	}

	return w.elementID
}

// Element returns the kind of element hosting the map, "div" unless bound to
// another one.
func (w *BaseWidget) Element() string {
	if !w.bound {
		return defaultElement
	}

	return w.element
}

// ForLocation centers the map on location and optionally marks it.
func (w *BaseWidget) ForLocation(location any, addMarker bool, label string) error {
	if err := w.SetCenter(location); err != nil {
		return err
	}

	if !addMarker {
		return nil
	}

	var opts MarkerOptions
	if label != "" {
		opts.Label = &label
	}

	_, err := w.AddMarker(location, opts)

	return err
}

// HeadTags is provided by concrete widgets.
func (w *BaseWidget) HeadTags() (template.HTML, error) {
	return "", ErrNotImplemented
}

// RenderPage is provided by concrete widgets.
func (w *BaseWidget) RenderPage() (string, error) {
	return "", ErrNotImplemented
}

// RenderPageResponse is provided by concrete widgets.
func (w *BaseWidget) RenderPageResponse() (*PageResponse, error) {
	return nil, ErrNotImplemented
}

// NewWidget returns the widget for provider: "google" or "leaflet".
func NewWidget(provider, apiKey string, renderer Renderer) (Widget, error) {
	switch provider {
	case ProviderGoogle:
		return NewGoogleWidget(apiKey, renderer), nil
	case ProviderLeaflet, "":
		return NewLeafletWidget(renderer), nil
	default:
		return nil, fmt.Errorf("unknown map provider %q", provider)
	}
}
