// Package web renders the server-side HTML pages.
//
// Each page is parsed once, at construction, together with the shared layout.
// Pages render into a buffer first so a template failure never leaves a
// half-written response.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names a renderable page.
type Page string

const (
	PageHome     Page = "home"
	PageIndex    Page = "index"
	PageProfile  Page = "profile"
	PageVerify   Page = "verify"
	PageNotFound Page = "not_found"
)

var pages = []Page{PageHome, PageIndex, PageProfile, PageVerify, PageNotFound}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages   map[Page]*template.Template
	siteKey string
	logger  *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

// New parses every page. siteKey is the public reCAPTCHA key embedded in the
// verification form.
func New(siteKey string, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		pages:   make(map[Page]*template.Template, len(pages)),
		siteKey: siteKey,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, p := range pages {
		t, err := template.New(string(p)).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+string(p)+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", p, err)
		}
		r.pages[p] = t
	}
	return r, nil
}

// layoutData is the root value every page executes against.
type layoutData struct {
	Meta    Meta
	SiteKey string
	Page    any
}

// Render writes page with the given status. On template failure it logs and
// writes a bare 500.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, page Page, meta Meta, data any) {
	t, ok := r.pages[page]
	if !ok {
		r.logger.ErrorContext(req.Context(), "unknown page", "page", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", layoutData{Meta: meta, SiteKey: r.siteKey, Page: data}); err != nil {
		r.logger.ErrorContext(req.Context(), "failed to render page", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Static serves the embedded stylesheet under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

var funcs = template.FuncMap{
	"formatDate":     FormatDate,
	"datePart":       datePart,
	"bloodTypeClass": bloodTypeClass,
	"join":           strings.Join,
	"inc":            func(i int) int { return i + 1 },
}

// FormatDate renders an upstream date as D/M/YYYY. Values that do not start
// with a YYYY-MM-DD date are returned unchanged.
func FormatDate(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return s
	}
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}

func datePart(s, part string) string {
	t, ok := parseDate(s)
	if !ok {
		return ""
	}
	switch part {
	case "year":
		return strconv.Itoa(t.Year())
	case "month":
		return strconv.Itoa(int(t.Month()))
	case "day":
		return strconv.Itoa(t.Day())
	}
	return ""
}

func parseDate(s string) (time.Time, bool) {
	if len(s) < 10 {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func bloodTypeClass(bloodType string) string {
	switch strings.TrimRight(bloodType, "+-") {
	case "A":
		return "bt-a"
	case "B":
		return "bt-b"
	case "AB":
		return "bt-ab"
	case "O":
		return "bt-o"
	}
	return ""
}
