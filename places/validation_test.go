// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"strings"
	"testing"

	"github.com/jcodagnone/geomap/spatial"
)

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{name: "montevideo", lat: -34.9011, lng: -56.1645},
		{name: "poles and antimeridian", lat: 90, lng: -180},
		{name: "latitude too high", lat: 91, lng: 0, wantErr: true},
		{name: "latitude too low", lat: -91, lng: 0, wantErr: true},
		{name: "longitude too high", lat: 0, lng: 181, wantErr: true},
		{name: "longitude too low", lat: 0, lng: -181, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinates() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Place {
		return &Place{
			Query:      "soho",
			Point:      spatial.Point{Lat: 51.5131, Lng: -0.1319},
			Provider:   "nominatim",
			Confidence: "medium",
		}
	}

	tests := []struct {
		name    string
		mutate  func(p *Place)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Place) {}},
		{name: "provider and confidence are optional", mutate: func(p *Place) { p.Provider, p.Confidence = "", "" }},
		{name: "empty query", mutate: func(p *Place) { p.Query = "  " }, wantErr: true},
		{name: "long query", mutate: func(p *Place) { p.Query = strings.Repeat("a", 501) }, wantErr: true},
		{name: "bad latitude", mutate: func(p *Place) { p.Point.Lat = 100 }, wantErr: true},
		{name: "bad provider", mutate: func(p *Place) { p.Provider = "yahoo" }, wantErr: true},
		{name: "bad confidence", mutate: func(p *Place) { p.Confidence = "certain" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)

			err := Validate(p)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if err := Validate(nil); err == nil {
		t.Error("Validate(nil) should fail")
	}
}

func TestSanitizeQuery(t *testing.T) {
	if got := SanitizeQuery("  soho  "); got != "soho" {
		t.Errorf("SanitizeQuery() = %q", got)
	}

	if got := SanitizeQuery(strings.Repeat("a", 600)); len(got) != 500 {
		t.Errorf("SanitizeQuery() length = %d, want 500", len(got))
	}
}
