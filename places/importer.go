// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jcodagnone/geomap/geocoding"
)

// ImportMetrics tracks the outcome of an import.
type ImportMetrics struct {
	Total   int
	Saved   int
	Skipped int
	Failed  int
}

// Merge combines the metrics from another ImportMetrics into this one.
func (m *ImportMetrics) Merge(other *ImportMetrics) *ImportMetrics {
	if other == nil {
		return m
	}

	m.Total += other.Total
	m.Saved += other.Saved
	m.Skipped += other.Skipped
	m.Failed += other.Failed

	return m
}

// Importer geocodes queries one after the other and saves the results.
type Importer struct {
	repo     Repository
	geocoder geocoding.Geocoder

	// Delay is the minimum time between two geocoder requests.
	Delay time.Duration
	// Refresh geocodes queries that are already saved.
	Refresh bool
	// OnQuery is called after every query with its outcome, nil on success.
	OnQuery func(query string, err error)

	Metrics ImportMetrics
}

// ErrAlreadySaved is reported to OnQuery for skipped queries.
var ErrAlreadySaved = errors.New("already saved")

// NewImporter creates an importer saving into repo.
func NewImporter(repo Repository, geocoder geocoding.Geocoder) *Importer {
	return &Importer{repo: repo, geocoder: geocoder}
}

// ReadQueries returns the non blank lines of r. Lines starting with # are
// comments.
func ReadQueries(r io.Reader) ([]string, error) {
	var queries []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := SanitizeQuery(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		queries = append(queries, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading queries: %w", err)
	}

	return queries, nil
}

// Import geocodes and saves every query. Failures of single queries are
// counted and reported through OnQuery. Import stops early when ctx is done or
// the geocoder quota is exhausted.
func (im *Importer) Import(ctx context.Context, queries []string) error {
	var last time.Time

	for _, query := range queries {
		im.Metrics.Total++

		if !im.Refresh {
			_, err := im.repo.Get(query)
			if err == nil {
				im.Metrics.Skipped++
				im.report(query, ErrAlreadySaved)

				continue
			}

			if !errors.Is(err, ErrNotFound) {
				return err
			}
		}

		if wait := im.Delay - time.Since(last); !last.IsZero() && wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		last = time.Now()

		err := im.importOne(ctx, query)
		if err != nil {
			im.Metrics.Failed++
		} else {
			im.Metrics.Saved++
		}

		im.report(query, err)

		if err != nil && geocoding.IsQuotaExceededError(err) {
			return fmt.Errorf("stopping import: %w", err)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return nil
}

func (im *Importer) importOne(ctx context.Context, query string) error {
	result, err := im.geocoder.Geocode(ctx, query)
	if err != nil {
		return err
	}

	place := FromResult(query, result)
	if err := Validate(place); err != nil {
		return err
	}

	return im.repo.Save(place)
}

func (im *Importer) report(query string, err error) {
	if im.OnQuery != nil {
		im.OnQuery(query, err)
	}
}
