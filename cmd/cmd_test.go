// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jcodagnone/geomap/geocoding"
	"github.com/jcodagnone/geomap/places"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestDebugNormalize(t *testing.T) {
	out, err := run(t, `<place lat="51.5"><latitude>51.5131</latitude><longitude>-0.1319</longitude><Name>Soho</Name></place>`,
		"debug", "normalize")
	require.NoError(t, err)

	var resp geocoding.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "Soho", resp.Fields["name"])
	assert.Equal(t, "51.5", resp.Attributes["lat"])
	require.NotNil(t, resp.Coordinate)
	assert.InDelta(t, -0.1319, resp.Coordinate.Lng, 1e-9)

	_, err = run(t, "not xml", "debug", "normalize")
	require.Error(t, err)
	assert.True(t, geocoding.IsMalformedResponse(err))
}

func TestDebugWidget(t *testing.T) {
	out, err := run(t, "", "debug", "widget", "--provider", "leaflet", "--", "-34.9", "-56.16")
	require.NoError(t, err)
	assert.Contains(t, out, "leaflet.js")
	assert.Contains(t, out, `"label":"Test marker"`)
	assert.Contains(t, out, `"lat":-34.9`)

	_, err = run(t, "", "debug", "widget", "--", "-34.9")
	require.Error(t, err)
}

func TestPlacesManualWorkflow(t *testing.T) {
	dbPath := t.TempDir()
	exported := filepath.Join(t.TempDir(), "places.json")

	_, err := run(t, "", "--db-path", dbPath, "places", "add", "--name", "Plaza", "plaza independencia", "--", "-34.9065", "-56.1998")
	require.NoError(t, err)

	_, err = run(t, "", "--db-path", dbPath, "places", "add", "--name", "", "london", "--", "51.5074", "-0.1278")
	require.NoError(t, err)

	out, err := run(t, "", "--db-path", dbPath, "places", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "plaza independencia")
	assert.Contains(t, out, "Plaza")
	assert.Contains(t, out, "london")

	out, err = run(t, "", "--db-path", dbPath, "places", "near", "--", "-34.9070", "-56.2010")
	require.NoError(t, err)
	assert.Contains(t, out, "plaza independencia")
	assert.NotContains(t, out, "london")

	_, err = run(t, "", "--db-path", dbPath, "places", "export", exported)
	require.NoError(t, err)

	data, err := os.ReadFile(exported)
	require.NoError(t, err)

	var list []*places.Place
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "london", list[0].Query)

	_, err = run(t, "", "--db-path", dbPath, "places", "delete", "LONDON")
	require.NoError(t, err)

	_, err = run(t, "", "--db-path", dbPath, "places", "delete", "london")
	require.ErrorIs(t, err, places.ErrNotFound)

	_, err = run(t, "", "--db-path", dbPath, "places", "load", exported)
	require.NoError(t, err)

	out, err = run(t, "", "--db-path", dbPath, "places", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "london")
}

func TestPlacesAddRejectsBadCoordinates(t *testing.T) {
	_, err := run(t, "", "--db-path", t.TempDir(), "places", "add", "nowhere", "95", "0")
	require.Error(t, err)

	_, err = run(t, "", "--db-path", t.TempDir(), "places", "add", "nowhere", "1")
	require.Error(t, err)
}

func TestUnknownGeocoder(t *testing.T) {
	_, err := run(t, "", "--geocoder", "yahoo", "geocode", "soho")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown geocoder")

	options.Geocoder = providerNominatim
}

func TestLoadEnv(t *testing.T) {
	require.NoError(t, loadEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEOMAP_TEST_VALUE=from-file\n"), 0o600))

	t.Setenv("GEOMAP_TEST_VALUE", "from-env")
	require.NoError(t, loadEnv(path))
	assert.Equal(t, "from-env", os.Getenv("GEOMAP_TEST_VALUE"))
}

func TestUserAgent(t *testing.T) {
	t.Setenv(userAgentEnv, "")
	assert.Contains(t, userAgent(), "geomap/")

	t.Setenv(userAgentEnv, "custom/1.0")
	assert.Equal(t, "custom/1.0", userAgent())
}
