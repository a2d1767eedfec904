// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"errors"
	"fmt"
	"strings"
)

const maxQueryLen = 500

// validProviders holds the accepted place providers.
var validProviders = map[string]bool{
	"nominatim":   true,
	"google_maps": true,
	"manual":      true,
}

// validConfidence holds the accepted confidence levels.
var validConfidence = map[string]bool{
	"high":   true,
	"medium": true,
	"low":    true,
}

// ValidateCoordinates checks lat and lng are within WGS84 ranges.
func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90 (got: %f)", lat)
	}

	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180 (got: %f)", lng)
	}

	return nil
}

// Validate checks a place holds acceptable data before it is saved.
func Validate(p *Place) error {
	if p == nil {
		return errors.New("place can't be nil")
	}

	if strings.TrimSpace(p.Query) == "" {
		return errors.New("query can't be empty")
	}

	if len(p.Query) > maxQueryLen {
		return fmt.Errorf("query too long (max %d characters)", maxQueryLen)
	}

	if err := ValidateCoordinates(p.Point.Lat, p.Point.Lng); err != nil {
		return fmt.Errorf("invalid coordinates: %w", err)
	}

	if p.Provider != "" && !validProviders[p.Provider] {
		return fmt.Errorf("invalid provider: %s", p.Provider)
	}

	if p.Confidence != "" && !validConfidence[p.Confidence] {
		return fmt.Errorf("invalid confidence: %s", p.Confidence)
	}

	return nil
}

// SanitizeQuery trims a query and caps its length.
func SanitizeQuery(query string) string {
	query = strings.TrimSpace(query)

	if len(query) > maxQueryLen {
		query = query[:maxQueryLen]
	}

	return query
}
