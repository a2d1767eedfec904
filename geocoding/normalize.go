// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/jcodagnone/geomap/spatial"
	"golang.org/x/net/html/charset"
)

// Response is a geocoder XML response flattened into plain maps.
type Response struct {
	// Fields maps lower-cased, namespace-less tag names to their trimmed text.
	// Duplicate tags overwrite, the last one in document order wins.
	Fields map[string]string `json:"fields"`
	// Attributes collects every element attribute across the document, last one wins.
	Attributes map[string]string `json:"attributes"`
	// Coordinate is set iff both latitude and longitude fields are present.
	Coordinate *spatial.Point `json:"coordinate,omitempty"`
	// Raw is the decoded response as received.
	Raw string `json:"-"`
}

var xmlDeclEncoding = regexp.MustCompile(`^(\s*<\?xml[^>]*?encoding\s*=\s*["'])([A-Za-z0-9._:-]+)(["'])`)

// Normalize flattens an already decoded XML document.
func Normalize(raw string) (*Response, error) {
	// raw is text already, a declared encoding would make the parser decode it twice
	doc, err := xmlquery.Parse(strings.NewReader(xmlDeclEncoding.ReplaceAllString(raw, "${1}UTF-8${3}")))
	if err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeMalformedResponse,
			Message: "parsing geocoder response",
			Err:     err,
		}
	}

	if err := checkSingleRoot(doc); err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeMalformedResponse,
			Message: "parsing geocoder response",
			Err:     err,
		}
	}

	resp := &Response{
		Fields:     make(map[string]string),
		Attributes: make(map[string]string),
		Raw:        raw,
	}
	resp.collect(doc)

	lat, okLat := resp.Fields["latitude"]
	lng, okLng := resp.Fields["longitude"]

	if okLat && okLng {
		point, err := parseCoordinate(lat, lng)
		if err != nil {
			return nil, err
		}

		resp.Coordinate = point
	}

	return resp, nil
}

// NormalizeBytes decodes a response body to UTF-8 and flattens it. The charset
// comes from contentType, or from the XML declaration when the header has none.
func NormalizeBytes(raw []byte, contentType string) (*Response, error) {
	text, err := decode(raw, contentType)
	if err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeMalformedResponse,
			Message: "decoding geocoder response",
			Err:     err,
		}
	}

	return Normalize(text)
}

func decode(raw []byte, contentType string) (string, error) {
	if _, params, err := mime.ParseMediaType(contentType); err != nil || params["charset"] == "" {
		m := xmlDeclEncoding.FindSubmatch(raw)
		if m == nil {
			return string(raw), nil
		}

		contentType = "text/xml; charset=" + string(m[2])
	}

	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return "", err
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func (resp *Response) collect(n *xmlquery.Node) {
	if n.Type == xmlquery.ElementNode {
		if text := leadingText(n); text != "" {
			resp.Fields[strings.ToLower(n.Data)] = text
		}

		for _, attr := range n.Attr {
			if isNamespaceDecl(attr) {
				continue
			}

			resp.Attributes[attr.Name.Local] = attr.Value
		}
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		resp.collect(child)
	}
}

// checkSingleRoot rejects what the parser tolerates at document level: no
// element, more than one element, or text outside the root element.
func checkSingleRoot(doc *xmlquery.Node) error {
	roots := 0

	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		switch n.Type {
		case xmlquery.ElementNode:
			roots++
			if roots > 1 {
				return fmt.Errorf("junk after document element: <%s>", n.Data)
			}
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if strings.TrimSpace(n.Data) != "" {
				return fmt.Errorf("text outside the document element: %q", strings.TrimSpace(n.Data))
			}
		default:
			// declaration, comments and processing instructions
		}
	}

	if roots == 0 {
		return errors.New("no element found")
	}

	return nil
}

// leadingText returns the trimmed character data that precedes the first child element.
func leadingText(n *xmlquery.Node) string {
	var sb strings.Builder

loop:
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			sb.WriteString(child.Data)
		case xmlquery.ElementNode:
			break loop
		default:
			// comments and processing instructions
		}
	}

	return strings.TrimSpace(sb.String())
}

func isNamespaceDecl(attr xmlquery.Attr) bool {
	return attr.NamespaceURI == "xmlns" || (attr.Name.Space == "" && attr.Name.Local == "xmlns")
}

func parseCoordinate(lat, lng string) (*spatial.Point, error) {
	la, err := parseFloat(lat)
	if err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeInvalidCoordinate,
			Message: fmt.Sprintf("latitude %q is not a number", lat),
			Err:     err,
		}
	}

	lo, err := parseFloat(lng)
	if err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeInvalidCoordinate,
			Message: fmt.Sprintf("longitude %q is not a number", lng),
			Err:     err,
		}
	}

	return &spatial.Point{Lat: la, Lng: lo}, nil
}

// parseFloat accepts values beyond float64 range, they saturate to ±Inf or 0.
func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if errors.Is(err, strconv.ErrRange) {
		return f, nil
	}

	return f, err
}
