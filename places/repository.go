// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jcodagnone/geomap/spatial"
	"github.com/jcodagnone/geomap/utils/textutils"
	"github.com/uber/h3-go/v4"
)

// ErrNotFound is returned when no place matches.
var ErrNotFound = errors.New("place not found")

// Repository handles persistence of places.
type Repository interface {
	// CreateSchema creates the places table
	CreateSchema() error

	// Save inserts the place or updates the one saved under the same query
	Save(place *Place) error

	// Get returns the place saved under query
	Get(query string) (*Place, error)

	// List returns places, most recently updated first
	List(limit, offset int) ([]*Place, error)

	// ListWithinBounds returns the places inside the box
	ListWithinBounds(northWest, southEast spatial.Point) ([]*Place, error)

	// ListNear returns places within rings H3 cells of point, nearest first
	ListNear(point spatial.Point, rings int) ([]*Place, error)

	// Count returns the total number of places
	Count() (int, error)

	// Delete removes the place saved under query
	Delete(query string) error

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlRepository struct {
	db *sql.DB
}

// NewRepository creates a place repository over db.
func NewRepository(db *sql.DB) Repository {
	return &sqlRepository{db: db}
}

func (r *sqlRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS places_seq START 1;

		CREATE TABLE IF NOT EXISTS places (
			id INTEGER PRIMARY KEY DEFAULT nextval('places_seq'),
			query_key VARCHAR NOT NULL UNIQUE,
			query VARCHAR NOT NULL,
			display_name VARCHAR NOT NULL,
			lat DOUBLE NOT NULL,
			lng DOUBLE NOT NULL,
			provider VARCHAR NOT NULL,
			confidence VARCHAR NOT NULL,
			h3_cell BIGINT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)

	return err
}

func (r *sqlRepository) Save(place *Place) error {
	key := textutils.QueryKey(place.Query)
	if key == "" {
		return errors.New("query can't be empty")
	}

	existing, err := r.Get(place.Query)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if err = place.computeH3(); err != nil {
		return err
	}

	place.UpdatedAt = time.Now()
	if existing != nil {
		_, err = r.db.Exec(`
			UPDATE places
			SET query = ?, display_name = ?, lat = ?, lng = ?,
			    provider = ?, confidence = ?, h3_cell = ?, updated_at = ?
			WHERE query_key = ?
		`,
			place.Query,
			place.DisplayName,
			place.Point.Lat,
			place.Point.Lng,
			place.Provider,
			place.Confidence,
			place.H3Cell,
			place.UpdatedAt,
			key,
		)
		if err != nil {
			return fmt.Errorf("updating place %q: %w", place.Query, err)
		}

		place.ID = existing.ID
		place.CreatedAt = existing.CreatedAt

		return nil
	}

	place.CreatedAt = place.UpdatedAt

	_, err = r.db.Exec(`
		INSERT INTO places(
			query_key,
			query,
			display_name,
			lat,
			lng,
			provider,
			confidence,
			h3_cell,
			created_at,
			updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		key,
		place.Query,
		place.DisplayName,
		place.Point.Lat,
		place.Point.Lng,
		place.Provider,
		place.Confidence,
		place.H3Cell,
		place.CreatedAt,
		place.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting place %q: %w", place.Query, err)
	}

	return r.db.QueryRow(`SELECT id FROM places WHERE query_key = ?`, key).Scan(&place.ID)
}

const baseSelect = `
	SELECT id, query, display_name, lat, lng, provider, confidence,
	       h3_cell, created_at, updated_at
	FROM places
`

type scanner interface {
	Scan(dest ...any) error
}

func scanPlace(row scanner) (*Place, error) {
	place := &Place{}

	err := row.Scan(
		&place.ID, &place.Query, &place.DisplayName,
		&place.Point.Lat, &place.Point.Lng,
		&place.Provider, &place.Confidence,
		&place.H3Cell, &place.CreatedAt, &place.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return place, nil
}

func (r *sqlRepository) Get(query string) (*Place, error) {
	place, err := scanPlace(r.db.QueryRow(baseSelect+` WHERE query_key = ?`, textutils.QueryKey(query)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, query)
	}

	return place, err
}

func (r *sqlRepository) list(query string, args []any) ([]*Place, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var places []*Place

	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}

		places = append(places, place)
	}

	return places, rows.Err()
}

func (r *sqlRepository) List(limit, offset int) ([]*Place, error) {
	query := baseSelect + " ORDER BY updated_at DESC, id DESC"

	args := []any{}

	if limit > 0 {
		query += " LIMIT ? OFFSET ?"

		args = append(args, limit, offset)
	}

	return r.list(query, args)
}

func (r *sqlRepository) ListWithinBounds(northWest, southEast spatial.Point) ([]*Place, error) {
	query := baseSelect + " WHERE lat <= ? AND lat >= ?"
	args := []any{northWest.Lat, southEast.Lat}

	if northWest.Lng <= southEast.Lng {
		query += " AND lng >= ? AND lng <= ?"
	} else {
		query += " AND (lng >= ? OR lng <= ?)"
	}

	args = append(args, northWest.Lng, southEast.Lng)

	return r.list(query+" ORDER BY id", args)
}

func (r *sqlRepository) ListNear(point spatial.Point, rings int) ([]*Place, error) {
	if rings < 0 {
		return nil, fmt.Errorf("rings must be positive, got %d", rings)
	}

	origin, err := cellOf(point, CellResolution)
	if err != nil {
		return nil, err
	}

	cells, err := h3.GridDisk(origin, rings)
	if err != nil {
		return nil, fmt.Errorf("computing grid disk: %w", err)
	}

	placeholders := make([]string, len(cells))
	args := make([]any, len(cells))

	for i, c := range cells {
		placeholders[i] = "?"
		args[i] = int64(c)
	}

	places, err := r.list(baseSelect+" WHERE h3_cell IN ("+strings.Join(placeholders, ", ")+")", args)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(places, func(i, j int) bool {
		return point.HaversineDistance(&places[i].Point) < point.HaversineDistance(&places[j].Point)
	})

	return places, nil
}

func (r *sqlRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM places",
	).Scan(&count)

	return count, err
}

func (r *sqlRepository) Delete(query string) error {
	result, err := r.db.Exec(`DELETE FROM places WHERE query_key = ?`, textutils.QueryKey(query))
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, query)
	}

	return nil
}
