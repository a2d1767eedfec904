// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes geocoding, saved places and map pages over HTTP.
package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/geomap/geocoding"
	"github.com/jcodagnone/geomap/mapping"
	"github.com/jcodagnone/geomap/places"
	"github.com/jcodagnone/geomap/spatial"
)

const (
	defaultPerPage      = 50
	defaultRings        = 1
	defaultClusterMeter = 10.0
)

// Options configures a Server.
type Options struct {
	// Provider is the map widget provider: "leaflet" or "google".
	Provider string
	// APIKey is handed to widgets that need one.
	APIKey string
	// Debug enables the /debug routes.
	Debug bool
}

// Server serves the HTTP surface.
type Server struct {
	repo     places.Repository
	geocoder geocoding.Geocoder
	options  Options
}

// NewServer creates a server over repo and geocoder.
func NewServer(repo places.Repository, geocoder geocoding.Geocoder, options Options) *Server {
	if options.Provider == "" {
		options.Provider = mapping.ProviderLeaflet
	}

	return &Server{
		repo:     repo,
		geocoder: geocoder,
		options:  options,
	}
}

// Handler returns the gin engine with every route registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/", func(ctx *gin.Context) { ctx.Redirect(http.StatusFound, "/map") })
	r.GET("/map", s.mapView)
	r.GET("/debug/widget", s.debugWidgetView)
	r.GET("/api/geocode", s.geocode)
	r.GET("/api/places", s.listPlaces)
	r.POST("/api/places", s.addPlace)
	r.DELETE("/api/places", s.deletePlace)
	r.GET("/api/places/near", s.listNear)
	r.GET("/api/places/within", s.listWithin)
	r.GET("/api/places/duplicates", s.listDuplicates)

	return r
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	log.Printf("Serving maps with %s on http://%s", s.options.Provider, addr)

	return s.Handler().Run(addr)
}

func (s *Server) newWidget(provider string) (mapping.Widget, error) {
	if provider == "" {
		provider = s.options.Provider
	}

	return mapping.NewWidget(provider, s.options.APIKey, nil)
}

func (s *Server) renderWidget(ctx *gin.Context, w mapping.Widget) {
	page, err := w.RenderPageResponse()
	if err != nil {
		ctx.String(http.StatusInternalServerError, "rendering map: %v", err)

		return
	}

	ctx.Render(page.Status, page)
}

func (s *Server) mapView(ctx *gin.Context) {
	w, err := s.newWidget(ctx.Query("provider"))
	if err != nil {
		ctx.String(http.StatusBadRequest, "%v", err)

		return
	}

	saved, err := s.repo.List(0, 0)
	if err != nil {
		ctx.String(http.StatusInternalServerError, "listing places: %v", err)

		return
	}

	for _, p := range saved {
		if _, err := w.AddMarker(p, mapping.MarkerOptions{}); err != nil {
			log.Printf("Skipping place %q: %v", p.Query, err)
		}
	}

	center, ok, err := pointFromQuery(ctx, "lat", "lng")
	if err != nil {
		ctx.String(http.StatusBadRequest, "%v", err)

		return
	}

	switch {
	case ok:
		err = w.SetCenter(center)
	case len(saved) > 0:
		err = w.SetCenter(saved[0])
	}

	if err != nil {
		ctx.String(http.StatusInternalServerError, "%v", err)

		return
	}

	s.renderWidget(ctx, w)
}

// debugWidgetView renders a sample widget, only available in debug mode.
func (s *Server) debugWidgetView(ctx *gin.Context) {
	if !s.options.Debug {
		ctx.Status(http.StatusNotFound)

		return
	}

	w, err := s.newWidget(ctx.Query("provider"))
	if err != nil {
		ctx.String(http.StatusBadRequest, "%v", err)

		return
	}

	if err := w.ForLocation(spatial.Tuple{20, 22}, true, "Test marker"); err != nil {
		ctx.String(http.StatusInternalServerError, "%v", err)

		return
	}

	s.renderWidget(ctx, w)
}

func (s *Server) geocode(ctx *gin.Context) {
	query := places.SanitizeQuery(ctx.Query("q"))
	if query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "q query parameter is required"})

		return
	}

	if ctx.Query("raw") == "" || ctx.Query("raw") == "0" {
		result, err := s.geocoder.Geocode(ctx.Request.Context(), query)
		if err != nil {
			ctx.JSON(statusFor(err), gin.H{"error": err.Error()})

			return
		}

		ctx.JSON(http.StatusOK, result)

		return
	}

	raw, ok := s.geocoder.(geocoding.RawGeocoder)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "geocoder can't return raw responses"})

		return
	}

	resp, err := raw.GeocodeRaw(ctx.Request.Context(), query)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, resp)
}

func (s *Server) listPlaces(ctx *gin.Context) {
	page := 1
	perPage := defaultPerPage

	if p := ctx.Query("page"); p != "" {
		if _, err := fmt.Sscanf(p, "%d", &page); err != nil || page < 1 {
			page = 1
		}
	}

	if pp := ctx.Query("per_page"); pp != "" {
		if _, err := fmt.Sscanf(pp, "%d", &perPage); err != nil || perPage < 1 {
			perPage = defaultPerPage
		}
	}

	offset := (page - 1) * perPage

	list, err := s.repo.List(perPage, offset)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	total, err := s.repo.Count()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"places":   nonNil(list),
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// AddPlaceRequest saves a place. Without coordinates the query is geocoded.
type AddPlaceRequest struct {
	Query     string   `json:"query"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Name      string   `json:"name,omitempty"`
}

func (s *Server) addPlace(ctx *gin.Context) {
	var req AddPlaceRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	query := places.SanitizeQuery(req.Query)

	var place *places.Place

	switch {
	case req.Latitude != nil && req.Longitude != nil:
		place = &places.Place{
			Query:       query,
			DisplayName: req.Name,
			Point:       spatial.Point{Lat: *req.Latitude, Lng: *req.Longitude},
			Provider:    "manual",
			Confidence:  "high",
		}
	case req.Latitude != nil || req.Longitude != nil:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude go together"})

		return
	default:
		if query == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})

			return
		}

		result, err := s.geocoder.Geocode(ctx.Request.Context(), query)
		if err != nil {
			ctx.JSON(statusFor(err), gin.H{"error": err.Error()})

			return
		}

		place = places.FromResult(query, result)
		if req.Name != "" {
			place.DisplayName = req.Name
		}
	}

	if err := places.Validate(place); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("validation failed: %v", err)})

		return
	}

	if err := s.repo.Save(place); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("saving place: %v", err)})

		return
	}

	ctx.JSON(http.StatusOK, place)
}

func (s *Server) deletePlace(ctx *gin.Context) {
	query := ctx.Query("q")
	if query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "q query parameter is required"})

		return
	}

	if err := s.repo.Delete(query); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, places.ErrNotFound) {
			status = http.StatusNotFound
		}

		ctx.JSON(status, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) listNear(ctx *gin.Context) {
	point, ok, err := pointFromQuery(ctx, "lat", "lng")
	if err == nil && !ok {
		err = errors.New("lat and lng query parameters are required")
	}

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	rings := defaultRings
	if r := ctx.Query("rings"); r != "" {
		if rings, err = strconv.Atoi(r); err != nil || rings < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "rings must be a positive integer"})

			return
		}
	}

	list, err := s.repo.ListNear(point, rings)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"places": nonNil(list)})
}

func (s *Server) listWithin(ctx *gin.Context) {
	northWest, okNW, err := pointFromQuery(ctx, "north", "west")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	southEast, okSE, err := pointFromQuery(ctx, "south", "east")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if !okNW || !okSE {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "north, west, south and east query parameters are required"})

		return
	}

	list, err := s.repo.ListWithinBounds(northWest, southEast)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"places": nonNil(list)})
}

func (s *Server) listDuplicates(ctx *gin.Context) {
	meters := defaultClusterMeter
	if m := ctx.Query("meters"); m != "" {
		var err error
		if meters, err = strconv.ParseFloat(m, 64); err != nil || meters < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "meters must be a positive number"})

			return
		}
	}

	all, err := s.repo.List(0, 0)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	dups := places.Duplicates(all, meters)
	if dups == nil {
		dups = [][]*places.Place{}
	}

	ctx.JSON(http.StatusOK, gin.H{"clusters": dups})
}

// pointFromQuery reads a point from two query parameters. ok is false when
// both are missing.
func pointFromQuery(ctx *gin.Context, latParam, lngParam string) (point spatial.Point, ok bool, err error) {
	lat, lng := ctx.Query(latParam), ctx.Query(lngParam)
	if lat == "" && lng == "" {
		return point, false, nil
	}

	if point.Lat, err = strconv.ParseFloat(lat, 64); err != nil {
		return point, false, fmt.Errorf("invalid %s: %q", latParam, lat)
	}

	if point.Lng, err = strconv.ParseFloat(lng, 64); err != nil {
		return point, false, fmt.Errorf("invalid %s: %q", lngParam, lng)
	}

	return point, true, nil
}

// statusFor maps geocoding failures onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case geocoding.IsNotFoundError(err):
		return http.StatusNotFound
	case geocoding.IsRateLimitError(err), geocoding.IsQuotaExceededError(err):
		return http.StatusTooManyRequests
	case geocoding.IsTimeoutError(err):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func nonNil(list []*places.Place) []*places.Place {
	if list == nil {
		return []*places.Place{}
	}

	return list
}
