// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/geomap/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yahooResponse = `<?xml version="1.0" encoding="UTF-8"?>
<ResultSet xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns="urn:yahoo:maps"
    xsi:schemaLocation="urn:yahoo:maps http://api.local.yahoo.com/MapsService/V1/GeocodeResponse.xsd">
  <Result precision="address">
    <Latitude>37.416384</Latitude>
    <Longitude>-122.024853</Longitude>
    <Address>701 FIRST AVE</Address>
    <City>SUNNYVALE</City>
    <State>CA</State>
    <Zip>94089-1019</Zip>
    <Country>US</Country>
  </Result>
</ResultSet>
`

func TestNormalize(t *testing.T) {
	resp, err := Normalize(yahooResponse)
	require.NoError(t, err)

	wantFields := map[string]string{
		"latitude":  "37.416384",
		"longitude": "-122.024853",
		"address":   "701 FIRST AVE",
		"city":      "SUNNYVALE",
		"state":     "CA",
		"zip":       "94089-1019",
		"country":   "US",
	}
	if diff := cmp.Diff(wantFields, resp.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}

	wantAttrs := map[string]string{
		"schemaLocation": "urn:yahoo:maps http://api.local.yahoo.com/MapsService/V1/GeocodeResponse.xsd",
		"precision":      "address",
	}
	if diff := cmp.Diff(wantAttrs, resp.Attributes); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}

	require.NotNil(t, resp.Coordinate)
	assert.Equal(t, spatial.Point{Lat: 37.416384, Lng: -122.024853}, *resp.Coordinate)
	assert.Equal(t, yahooResponse, resp.Raw)
}

func TestNormalizeFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "root text is recorded",
			input: `<city> Montevideo </city>`,
			want:  map[string]string{"city": "Montevideo"},
		},
		{
			name:  "duplicate tags keep the last value",
			input: `<r><item><name>first</name></item><item><name>second</name></item></r>`,
			want:  map[string]string{"name": "second"},
		},
		{
			name:  "whitespace only text is skipped",
			input: "<r>\n  <a>  </a>\n  <b>x</b>\n</r>",
			want:  map[string]string{"b": "x"},
		},
		{
			name:  "only text before the first child counts",
			input: `<r>head<child>x</child>tail</r>`,
			want:  map[string]string{"r": "head", "child": "x"},
		},
		{
			name:  "tag names are lower-cased",
			input: `<Result><PostalCode>11200</PostalCode></Result>`,
			want:  map[string]string{"postalcode": "11200"},
		},
		{
			name:  "namespace prefixes are dropped",
			input: `<r xmlns:geo="http://www.w3.org/2003/01/geo/wgs84_pos#"><geo:lat>1.5</geo:lat></r>`,
			want:  map[string]string{"lat": "1.5"},
		},
		{
			name:  "cdata and entities",
			input: `<r><desc><![CDATA[a & b]]></desc><t>x &amp; y</t></r>`,
			want:  map[string]string{"desc": "a & b", "t": "x & y"},
		},
		{
			name:  "comments are skipped",
			input: `<r><!-- note --> value </r>`,
			want:  map[string]string{"r": "value"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := Normalize(tt.input)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, resp.Fields); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeAttributes(t *testing.T) {
	resp, err := Normalize(`<r id="1" lang="es"><c id="2"/><d kind="x"></d></r>`)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"id": "2", "lang": "es", "kind": "x"}, resp.Attributes)
	assert.Empty(t, resp.Fields)
}

func TestNormalizeCoordinate(t *testing.T) {
	t.Run("absent without both fields", func(t *testing.T) {
		resp, err := Normalize(`<r><latitude>1.0</latitude></r>`)
		require.NoError(t, err)
		assert.Nil(t, resp.Coordinate)
	})

	t.Run("lat and lon attributes are not fields", func(t *testing.T) {
		resp, err := Normalize(`<place lat="1.0" lon="2.0"/>`)
		require.NoError(t, err)
		assert.Nil(t, resp.Coordinate)
		assert.Equal(t, "1.0", resp.Attributes["lat"])
	})

	t.Run("last occurrence is used", func(t *testing.T) {
		resp, err := Normalize(`<r><latitude>1</latitude><longitude>2</longitude><latitude>3</latitude></r>`)
		require.NoError(t, err)
		require.NotNil(t, resp.Coordinate)
		assert.Equal(t, spatial.Point{Lat: 3, Lng: 2}, *resp.Coordinate)
	})

	t.Run("out of range is accepted", func(t *testing.T) {
		resp, err := Normalize(`<r><latitude>95</latitude><longitude>-200</longitude></r>`)
		require.NoError(t, err)
		require.NotNil(t, resp.Coordinate)
		assert.Equal(t, spatial.Point{Lat: 95, Lng: -200}, *resp.Coordinate)
	})

	t.Run("beyond float range saturates", func(t *testing.T) {
		resp, err := Normalize(`<r><latitude>1e400</latitude><longitude>-1e400</longitude></r>`)
		require.NoError(t, err)
		require.NotNil(t, resp.Coordinate)
		assert.True(t, math.IsInf(resp.Coordinate.Lat, 1))
		assert.True(t, math.IsInf(resp.Coordinate.Lng, -1))
	})

	t.Run("non numeric", func(t *testing.T) {
		_, err := Normalize(`<r><latitude>north</latitude><longitude>1</longitude></r>`)
		require.Error(t, err)
		assert.True(t, IsInvalidCoordinate(err))
	})
}

func TestNormalizeMalformed(t *testing.T) {
	for name, input := range map[string]string{
		"empty":          "",
		"plain text":     "not xml at all",
		"mismatched tag": "<a><b></a>",
		"unclosed":       "<a><b>text</b>",
		"two roots":      "<a/><b>x</b>",
		"trailing text":  "<a>1</a> junk",
		"leading text":   "junk <a>1</a>",
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := Normalize(input)
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.True(t, IsMalformedResponse(err))
		})
	}
}

func TestNormalizeBytes(t *testing.T) {
	t.Run("charset from xml declaration", func(t *testing.T) {
		raw := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><r><city>S\xe3o Paulo</city></r>")

		resp, err := NormalizeBytes(raw, "")
		require.NoError(t, err)
		assert.Equal(t, "São Paulo", resp.Fields["city"])
	})

	t.Run("charset from content type", func(t *testing.T) {
		raw := []byte("<r><city>Par\xeds</city></r>")

		resp, err := NormalizeBytes(raw, "text/xml; charset=windows-1252")
		require.NoError(t, err)
		assert.Equal(t, "París", resp.Fields["city"])
	})

	t.Run("utf-8 passthrough", func(t *testing.T) {
		resp, err := NormalizeBytes([]byte("<r><city>Bogotá</city></r>"), "application/xml")
		require.NoError(t, err)
		assert.Equal(t, "Bogotá", resp.Fields["city"])
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := NormalizeBytes([]byte("<r>"), "text/xml; charset=utf-8")
		assert.True(t, IsMalformedResponse(err))
	})
}
