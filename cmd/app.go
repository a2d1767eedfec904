// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/geomap/geocoding"
	"github.com/jcodagnone/geomap/places"
	"github.com/jcodagnone/geomap/utils/httputils"
)

const (
	providerNominatim = "nominatim"
	providerGoogle    = "google"

	dbFile       = "geomap.duckdb"
	userAgentEnv = "GEOMAP_USER_AGENT"
)

// appOptions holds the persistent flags shared by every command.
type appOptions struct {
	DbPath    string
	Geocoder  string
	Region    string
	EnvFile   string
	Trace     bool
	TraceBody bool
}

var options = &appOptions{}

func userAgent() string {
	if ua := os.Getenv(userAgentEnv); ua != "" {
		return ua
	}

	return fmt.Sprintf("geomap/%s (+https://github.com/jcodagnone/geomap)", Version)
}

func (o *appOptions) clientOptions() httputils.ClientOptions {
	opts := httputils.ClientOptions{UserAgent: userAgent(), TraceBody: o.TraceBody}
	if o.Trace || o.TraceBody {
		opts.Trace = os.Stderr
	}

	return opts
}

// openRepository opens the places database, creating it when missing.
func (o *appOptions) openRepository() (places.Repository, io.Closer, error) {
	if err := os.MkdirAll(o.DbPath, 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(o.DbPath, dbFile))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := places.NewRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating places schema: %w", err)
	}

	return repo, db, nil
}

// newGeocoder builds the geocoder selected with --geocoder.
func (o *appOptions) newGeocoder(ctx context.Context) (geocoding.Geocoder, error) {
	client := httputils.NewClient(o.clientOptions())

	switch o.Geocoder {
	case providerNominatim, "":
		return geocoding.NewXMLGeocoder(geocoding.XMLGeocoderOptions{HTTPClient: client}), nil
	case providerGoogle:
		key, err := geocoding.ResolveAPIKey(ctx, geocoding.APIKeyEnv, geocoding.APIKeyDisplayName)
		if err != nil {
			return nil, err
		}

		return geocoding.NewGoogleMapsGeocoder(key, o.Region, client), nil
	default:
		return nil, fmt.Errorf("unknown geocoder %q, expected %s or %s", o.Geocoder, providerNominatim, providerGoogle)
	}
}

func printJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}

	_, err = fmt.Fprintln(w, string(output))

	return err
}
