// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jcodagnone/geomap/spatial"
)

// DefaultXMLEndpoint is the Nominatim search endpoint.
const DefaultXMLEndpoint = "https://nominatim.openstreetmap.org/search"

// XMLGeocoder queries a geocoder speaking XML, Nominatim by default.
type XMLGeocoder struct {
	provider   string
	endpoint   string
	queryParam string
	params     url.Values
	httpClient *http.Client
}

// XMLGeocoderOptions configures an XMLGeocoder. Zero values select Nominatim.
type XMLGeocoderOptions struct {
	// Provider names the results, "nominatim" by default.
	Provider string
	// Endpoint is the search URL.
	Endpoint string
	// QueryParam names the parameter carrying the query, "q" by default.
	QueryParam string
	// Params are sent with every request.
	Params url.Values
	// HTTPClient defaults to a client with a 10s timeout.
	HTTPClient *http.Client
}

// NewXMLGeocoder creates a new XML geocoder.
func NewXMLGeocoder(options XMLGeocoderOptions) *XMLGeocoder {
	g := &XMLGeocoder{
		provider:   options.Provider,
		endpoint:   options.Endpoint,
		queryParam: options.QueryParam,
		params:     options.Params,
		httpClient: options.HTTPClient,
	}

	if g.endpoint == "" {
		g.endpoint = DefaultXMLEndpoint
		if g.params == nil {
			g.params = url.Values{
				"format":         {"xml"},
				"addressdetails": {"1"},
				"limit":          {"1"},
			}
		}
	}

	if g.provider == "" {
		g.provider = "nominatim"
	}

	if g.queryParam == "" {
		g.queryParam = "q"
	}

	if g.httpClient == nil {
		g.httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return g
}

// GeocodeRaw returns the normalized response for query.
func (g *XMLGeocoder) GeocodeRaw(ctx context.Context, query string) (*Response, error) {
	params := url.Values{}
	for k, v := range g.params {
		params[k] = v
	}

	params.Set(g.queryParam, query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building geocoding request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeNetworkError,
			Message: "geocoding request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading geocoding response: %w", err)
	}

	return NormalizeBytes(body, resp.Header.Get("Content-Type"))
}

// Geocode returns the location for query. The coordinate comes from the
// latitude/longitude fields, or from lat/lon attributes as Nominatim sends them.
func (g *XMLGeocoder) Geocode(ctx context.Context, query string) (*Result, error) {
	resp, err := g.GeocodeRaw(ctx, query)
	if err != nil {
		return nil, err
	}

	point := resp.Coordinate
	if point == nil {
		lat, okLat := resp.Attributes["lat"]
		lng, okLng := resp.Attributes["lon"]

		if !okLat || !okLng {
			return nil, &GeocodingError{
				Type:    ErrorTypeNotFound,
				Message: fmt.Sprintf("no results found for location: %s", query),
			}
		}

		if point, err = parseCoordinate(lat, lng); err != nil {
			return nil, err
		}
	}

	displayName := resp.Attributes["display_name"]
	if displayName == "" {
		displayName = query
	}

	return &Result{
		Point:       spatial.Point{Lat: point.Lat, Lng: point.Lng},
		Confidence:  confidenceFromRank(resp.Attributes["place_rank"]),
		Provider:    g.provider,
		DisplayName: displayName,
	}, nil
}

// Nominatim ranks go from 4 (country) to 30 (building).
func confidenceFromRank(rank string) string {
	r, err := strconv.Atoi(rank)
	if err != nil {
		return "low"
	}

	switch {
	case r >= 26:
		return "high"
	case r >= 16:
		return "medium"
	default:
		return "low"
	}
}
