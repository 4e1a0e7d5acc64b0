package seo

import (
	"encoding/xml"
	"io"
	"strings"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// PageKind selects change frequency and priority of a sitemap entry.
type PageKind int

const (
	PageHome PageKind = iota
	PageSection
	PageItem
)

func (k PageKind) changeFreq() string {
	if k == PageItem {
		return "monthly"
	}
	return "weekly"
}

func (k PageKind) priority() string {
	switch k {
	case PageHome:
		return "1.0"
	case PageSection:
		return "0.8"
	}
	return "0.6"
}

type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Sitemap collects site URLs in insertion order.
type Sitemap struct {
	baseURL string
	urls    []URL
	seen    map[string]bool
}

func NewSitemap(baseURL string) *Sitemap {
	return &Sitemap{baseURL: strings.TrimRight(baseURL, "/"), seen: make(map[string]bool)}
}

// Add registers path; duplicates are ignored. A zero lastMod is omitted.
func (s *Sitemap) Add(path string, kind PageKind, lastMod time.Time) {
	loc := AbsoluteURL(s.baseURL, path)
	if s.seen[loc] {
		return
	}
	s.seen[loc] = true
	u := URL{Loc: loc, ChangeFreq: kind.changeFreq(), Priority: kind.priority()}
	if !lastMod.IsZero() {
		u.LastMod = lastMod.UTC().Format("2006-01-02")
	}
	s.urls = append(s.urls, u)
}

func (s *Sitemap) URLs() []URL {
	return s.urls
}

func (s *Sitemap) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if _, err := io.WriteString(cw, xml.Header); err != nil {
		return cw.n, err
	}
	enc := xml.NewEncoder(cw)
	enc.Indent("", "  ")
	if err := enc.Encode(urlSet{Xmlns: sitemapNS, URLs: s.urls}); err != nil {
		return cw.n, err
	}
	_, err := io.WriteString(cw, "\n")
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// AbsoluteURL joins baseURL and path. Absolute paths and URLs are kept as given
// when baseURL is empty.
func AbsoluteURL(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(baseURL, "/") + path
}
