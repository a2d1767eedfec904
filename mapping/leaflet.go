// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package mapping

import "html/template"

const (
	// ProviderLeaflet selects the Leaflet widget over OpenStreetMap tiles.
	ProviderLeaflet = "leaflet"

	osmTileURL     = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	osmAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
)

// LeafletWidget is a map rendered with Leaflet. It needs no API key.
type LeafletWidget struct {
	*BaseWidget

	TileURL     string
	Attribution string
	renderer    Renderer
}

// NewLeafletWidget creates a Leaflet widget over OpenStreetMap tiles.
func NewLeafletWidget(renderer Renderer) *LeafletWidget {
	if renderer == nil {
		renderer = DefaultRenderer()
	}

	return &LeafletWidget{
		BaseWidget:  NewBaseWidget(),
		TileURL:     osmTileURL,
		Attribution: osmAttribution,
		renderer:    renderer,
	}
}

// HeadTags returns the stylesheet and script tags for the page head.
func (w *LeafletWidget) HeadTags() (template.HTML, error) {
	return renderHead(w.renderer, "leaflet_head.html", w)
}

// RenderPage renders a full page holding the map.
func (w *LeafletWidget) RenderPage() (string, error) {
	return renderPage(w.renderer, "leaflet_head.html", "widget_page.html", w)
}

// RenderPageResponse renders the page as an HTTP response.
func (w *LeafletWidget) RenderPageResponse() (*PageResponse, error) {
	return renderResponse(w.renderer, "leaflet_head.html", "widget_page.html", w)
}
