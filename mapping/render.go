// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package mapping

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer renders a named template. It is the seam to the page templating layer.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// TemplateRenderer renders html/template templates.
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer wraps an already parsed template set.
func NewTemplateRenderer(t *template.Template) *TemplateRenderer {
	return &TemplateRenderer{templates: t}
}

var defaultRenderer = NewTemplateRenderer(
	template.Must(template.New("").ParseFS(templateFS, "templates/*.html")),
)

// DefaultRenderer renders the templates shipped with the package.
func DefaultRenderer() *TemplateRenderer {
	return defaultRenderer
}

// Templates exposes the template set, e.g. for gin's SetHTMLTemplate.
func (r *TemplateRenderer) Templates() *template.Template {
	return r.templates
}

func (r *TemplateRenderer) Render(w io.Writer, name string, data any) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// PageResponse is a rendered page ready to be written to a client.
type PageResponse struct {
	Status int
	Body   []byte
}

var _ render.Render = (*PageResponse)(nil)

var htmlContentType = []string{"text/html; charset=utf-8"}

// Render implements gin's render.Render.
func (p *PageResponse) Render(w http.ResponseWriter) error {
	p.WriteContentType(w)
	_, err := w.Write(p.Body)

	return err
}

// WriteContentType implements gin's render.Render.
func (p *PageResponse) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = htmlContentType
	}
}

// ServeHTTP implements http.Handler.
func (p *PageResponse) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	p.WriteContentType(w)
	w.WriteHeader(p.Status)
	_, _ = w.Write(p.Body)
}

var tagName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)

// container is the element hosting the map. Element kinds that are not plain
// tag names fall back to a div.
func container(w Widget) template.HTML {
	element := defaultElement
	if tagName.MatchString(w.Element()) {
		element = strings.ToLower(w.Element())
	}

	//nolint:gosec // element is a validated tag name and the id is escaped
	return template.HTML(fmt.Sprintf(`<%s id="%s" style="width: 100%%; height: 100vh"></%s>`,
		element, html.EscapeString(w.ElementID()), element))
}

// templateData is the variable set every widget template receives.
func templateData(w Widget, head template.HTML) map[string]any {
	return map[string]any{
		"widget":    w,
		"center":    w.Center(),
		"markers":   w.Markers(),
		"head":      head,
		"container": container(w),
	}
}

func renderHead(r Renderer, name string, w Widget) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, templateData(w, "")); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}

	//nolint:gosec // output of html/template
	return template.HTML(buf.String()), nil
}

func renderPage(r Renderer, headName, pageName string, w Widget) (string, error) {
	head, err := renderHead(r, headName, w)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, pageName, templateData(w, head)); err != nil {
		return "", fmt.Errorf("rendering %s: %w", pageName, err)
	}

	return buf.String(), nil
}

func renderResponse(r Renderer, headName, pageName string, w Widget) (*PageResponse, error) {
	page, err := renderPage(r, headName, pageName, w)
	if err != nil {
		return nil, err
	}

	return &PageResponse{Status: http.StatusOK, Body: []byte(page)}, nil
}
