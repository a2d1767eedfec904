// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jcodagnone/geomap/geocoding"
	"github.com/jcodagnone/geomap/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeocoder struct {
	calls   []string
	results map[string]spatial.Point
	err     error
}

func (s *stubGeocoder) Geocode(_ context.Context, query string) (*geocoding.Result, error) {
	s.calls = append(s.calls, query)

	if s.err != nil {
		return nil, s.err
	}

	point, ok := s.results[query]
	if !ok {
		return nil, &geocoding.GeocodingError{Type: geocoding.ErrorTypeNotFound, Message: "no results found for location: " + query}
	}

	return &geocoding.Result{Point: point, Provider: "nominatim", Confidence: "high", DisplayName: query}, nil
}

func TestReadQueries(t *testing.T) {
	queries, err := ReadQueries(strings.NewReader("london\n\n  # capitals\n paris \r\nmadrid"))
	require.NoError(t, err)
	assert.Equal(t, []string{"london", "paris", "madrid"}, queries)
}

func TestImport(t *testing.T) {
	repo := setupTestDB(t)
	require.NoError(t, repo.Save(newPlace("madrid", 40.4168, -3.7038)))

	geocoder := &stubGeocoder{results: map[string]spatial.Point{
		"london": {Lat: 51.5074, Lng: -0.1278},
		"paris":  {Lat: 48.8566, Lng: 2.3522},
	}}

	outcomes := map[string]error{}
	im := NewImporter(repo, geocoder)
	im.OnQuery = func(query string, err error) { outcomes[query] = err }

	require.NoError(t, im.Import(context.Background(), []string{"london", "atlantis", "Madrid", "paris"}))

	assert.Equal(t, ImportMetrics{Total: 4, Saved: 2, Skipped: 1, Failed: 1}, im.Metrics)
	assert.Equal(t, []string{"london", "atlantis", "paris"}, geocoder.calls)
	require.NoError(t, outcomes["london"])
	require.ErrorIs(t, outcomes["Madrid"], ErrAlreadySaved)
	assert.True(t, geocoding.IsNotFoundError(outcomes["atlantis"]))

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestImportRefresh(t *testing.T) {
	repo := setupTestDB(t)
	require.NoError(t, repo.Save(newPlace("london", 0, 0)))

	geocoder := &stubGeocoder{results: map[string]spatial.Point{"london": {Lat: 51.5074, Lng: -0.1278}}}

	im := NewImporter(repo, geocoder)
	im.Refresh = true
	require.NoError(t, im.Import(context.Background(), []string{"london"}))

	got, err := repo.Get("london")
	require.NoError(t, err)
	assert.InDelta(t, 51.5074, got.Point.Lat, 1e-9)
	assert.Equal(t, "nominatim", got.Provider)
}

func TestImportStopsOnQuota(t *testing.T) {
	repo := setupTestDB(t)
	geocoder := &stubGeocoder{err: geocoding.ClassifyHTTPError(http.StatusForbidden)}

	im := NewImporter(repo, geocoder)
	err := im.Import(context.Background(), []string{"london", "paris"})
	require.Error(t, err)
	assert.True(t, geocoding.IsQuotaExceededError(err))
	assert.Equal(t, []string{"london"}, geocoder.calls)
	assert.Equal(t, 1, im.Metrics.Failed)
}

func TestImportDelay(t *testing.T) {
	repo := setupTestDB(t)
	geocoder := &stubGeocoder{results: map[string]spatial.Point{
		"a": {Lat: 1, Lng: 1},
		"b": {Lat: 2, Lng: 2},
		"c": {Lat: 3, Lng: 3},
	}}

	im := NewImporter(repo, geocoder)
	im.Delay = 20 * time.Millisecond

	start := time.Now()
	require.NoError(t, im.Import(context.Background(), []string{"a", "b", "c"}))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	im = NewImporter(repo, geocoder)
	im.Refresh = true
	im.Delay = time.Hour
	require.ErrorIs(t, im.Import(ctx, []string{"a", "b"}), context.Canceled)
}

func TestImportMetricsMerge(t *testing.T) {
	m := &ImportMetrics{Total: 1, Saved: 1}
	m.Merge(&ImportMetrics{Total: 2, Failed: 1, Skipped: 1}).Merge(nil)
	assert.Equal(t, ImportMetrics{Total: 3, Saved: 1, Skipped: 1, Failed: 1}, *m)
}
