// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package mapping

import "html/template"

// ProviderGoogle selects the Google Maps widget.
const ProviderGoogle = "google"

// GoogleWidget is a map rendered with the Google Maps JavaScript API.
type GoogleWidget struct {
	*BaseWidget

	APIKey   string
	renderer Renderer
}

// NewGoogleWidget creates a Google map widget. A nil renderer selects DefaultRenderer.
func NewGoogleWidget(apiKey string, renderer Renderer) *GoogleWidget {
	if renderer == nil {
		renderer = DefaultRenderer()
	}

	return &GoogleWidget{
		BaseWidget: NewBaseWidget(),
		APIKey:     apiKey,
		renderer:   renderer,
	}
}

// HeadTags returns the <script> tags for the page head.
func (w *GoogleWidget) HeadTags() (template.HTML, error) {
	return renderHead(w.renderer, "google_head.html", w)
}

// RenderPage renders a full page holding the map.
func (w *GoogleWidget) RenderPage() (string, error) {
	return renderPage(w.renderer, "google_head.html", "widget_page.html", w)
}

// RenderPageResponse renders the page as an HTTP response.
func (w *GoogleWidget) RenderPageResponse() (*PageResponse, error) {
	return renderResponse(w.renderer, "google_head.html", "widget_page.html", w)
}
