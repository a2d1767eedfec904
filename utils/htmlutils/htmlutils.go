// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils provides utility functions for working with HTML.
package htmlutils

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// ErrNotHTML is returned when a response does not declare an HTML body.
var ErrNotHTML = errors.New("not an HTML response")

// IsHTML reports whether resp declares an HTML body.
func IsHTML(resp *http.Response) bool {
	media, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))

	return err == nil && strings.EqualFold(media, "text/html")
}

// AsReader returns the body of an HTML response decoded to UTF-8.
func AsReader(resp *http.Response) (io.Reader, error) {
	if !IsHTML(resp) {
		return nil, fmt.Errorf("%w: media type is %q", ErrNotHTML, resp.Header.Get("Content-Type"))
	}

	rr, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	return rr, nil
}

// AsDocument parses r as an HTML document.
func AsDocument(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing body as HTML: %w", err)
	}

	return doc, nil
}

// Text returns the text of the selection with whitespace runs collapsed.
func Text(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// Summary describes a page in one line: its title, else its first heading.
func Summary(doc *goquery.Document) string {
	if title := Text(doc.Find("title").First()); title != "" {
		return title
	}

	return Text(doc.Find("h1, h2, h3").First())
}

// ResponseSummary summarizes an HTML response, "" when resp is not HTML.
func ResponseSummary(resp *http.Response) string {
	r, err := AsReader(resp)
	if err != nil {
		return ""
	}

	doc, err := AsDocument(r)
	if err != nil {
		return ""
	}

	return Summary(doc)
}
