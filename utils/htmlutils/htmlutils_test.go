// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package htmlutils

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func response(contentType, body string) *http.Response {
	resp := &http.Response{
		StatusCode: http.StatusForbidden,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
	resp.Header.Set("Content-Type", contentType)

	return resp
}

func TestText(t *testing.T) {
	doc, err := AsDocument(strings.NewReader("<div><pre>foo\n</pre>  <span>bar</span></div>"))
	if err != nil {
		t.Fatalf("parsing HTML: %s", err)
	}

	if got := Text(doc.Find("div")); got != "foo bar" {
		t.Errorf("expected `foo bar' but got `%v'", got)
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"<html><head><title> Access  blocked </title></head><body><h1>x</h1></body></html>", "Access blocked"},
		{"<html><body><h2>Too many\nrequests</h2><h1>later</h1></body></html>", "Too many requests"},
		{"<html><body><p>nothing</p></body></html>", ""},
	}

	for _, test := range tests {
		doc, err := AsDocument(strings.NewReader(test.input))
		if err != nil {
			t.Fatalf("parsing HTML `%s': %s", test.input, err)
		}

		if got := Summary(doc); got != test.expected {
			t.Errorf("`%s': expected `%v' but got `%v'", test.input, test.expected, got)
		}
	}
}

func TestAsReader_WithWrongMediaType(t *testing.T) {
	r, err := AsReader(response("text/plain", "plain text"))
	if r != nil {
		t.Errorf("Expected nil reader")
	}

	if !errors.Is(err, ErrNotHTML) {
		t.Errorf("Expected ErrNotHTML, got %v", err)
	}
}

func TestResponseSummary(t *testing.T) {
	resp := response("text/html; charset=ISO-8859-1", "<title>Acceso denegado a la direcci\xf3n</title>")
	if got := ResponseSummary(resp); got != "Acceso denegado a la dirección" {
		t.Errorf("unexpected summary %q", got)
	}

	if got := ResponseSummary(response("application/xml", "<title>x</title>")); got != "" {
		t.Errorf("non HTML responses should not be summarized, got %q", got)
	}
}
