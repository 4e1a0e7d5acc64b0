package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"folio/pkg/expr"
)

// ContentItem is the normalized unit of displayable content: a publication,
// project, talk, blog post or teaching entry.
type ContentItem struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Abstract    string            `json:"abstract,omitempty"`
	Authors     []string          `json:"authors,omitempty"`
	Year        string            `json:"year,omitempty"`
	Date        string            `json:"date,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Links       map[string]string `json:"links,omitempty"`
	Image       string            `json:"image,omitempty"`
	Venue       string            `json:"venue,omitempty"`
	Journal     string            `json:"journal,omitempty"`
	Booktitle   string            `json:"booktitle,omitempty"`
	Institution string            `json:"institution,omitempty"`
	Award       string            `json:"award,omitempty"`
	ShortURL    string            `json:"shortUrl,omitempty"`
	Extra       map[string]any    `json:"-"`
}

var knownKeys = map[string]bool{
	"id": true, "title": true, "description": true, "abstract": true, "authors": true,
	"year": true, "date": true, "tags": true, "links": true, "image": true, "venue": true,
	"journal": true, "booktitle": true, "institution": true, "award": true, "shortUrl": true,
}

var yearPrefix = regexp.MustCompile(`^(\d{4})`)

// SortKey is the date falling back to the year.
func (c *ContentItem) SortKey() string {
	if c.Date != "" {
		return c.Date
	}
	return c.Year
}

// YearValue is the year field, or the leading four digits of the date.
func (c *ContentItem) YearValue() string {
	if c.Year != "" {
		return c.Year
	}
	if m := yearPrefix.FindStringSubmatch(c.Date); m != nil {
		return m[1]
	}
	return ""
}

// Summary prefers the description and falls back to the abstract.
func (c *ContentItem) Summary() string {
	if c.Description != "" {
		return c.Description
	}
	return c.Abstract
}

// VenueName is the first non-empty of venue, journal, booktitle and institution.
func (c *ContentItem) VenueName() string {
	for _, v := range []string{c.Venue, c.Journal, c.Booktitle, c.Institution} {
		if v != "" {
			return v
		}
	}
	return ""
}

// AsMap returns the JSON view of the item, extra fields included.
func (c *ContentItem) AsMap() map[string]any {
	m := make(map[string]any, len(c.Extra)+len(knownKeys))
	for k, v := range c.Extra {
		m[k] = v
	}
	set := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	set("id", c.ID)
	set("title", c.Title)
	set("description", c.Description)
	set("abstract", c.Abstract)
	set("year", c.Year)
	set("date", c.Date)
	set("image", c.Image)
	set("venue", c.Venue)
	set("journal", c.Journal)
	set("booktitle", c.Booktitle)
	set("institution", c.Institution)
	set("award", c.Award)
	set("shortUrl", c.ShortURL)
	if len(c.Authors) > 0 {
		m["authors"] = c.Authors
	}
	if len(c.Tags) > 0 {
		m["tags"] = c.Tags
	}
	if len(c.Links) > 0 {
		m["links"] = c.Links
	}
	return m
}

func (c *ContentItem) Lookup(path expr.Path) (any, bool) {
	return expr.Walk(c.AsMap(), path)
}

func (c ContentItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.AsMap())
}

func (c *ContentItem) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	item, err := ItemFromMap(raw)
	if err != nil {
		return err
	}
	*c = item
	return nil
}

// ItemFromMap coerces a decoded JSON/YAML object into a ContentItem. Numbers are
// accepted for year, and a single string for authors/tags.
func ItemFromMap(raw map[string]any) (ContentItem, error) {
	var c ContentItem
	str := func(k string) string { return scalarString(raw[k]) }
	c.ID = str("id")
	c.Title = str("title")
	c.Description = str("description")
	c.Abstract = str("abstract")
	c.Year = str("year")
	c.Date = str("date")
	c.Image = str("image")
	c.Venue = str("venue")
	c.Journal = str("journal")
	c.Booktitle = str("booktitle")
	c.Institution = str("institution")
	c.Award = str("award")
	c.ShortURL = str("shortUrl")

	var err error
	if c.Authors, err = stringList(raw["authors"], " and "); err != nil {
		return c, fmt.Errorf("authors: %w", err)
	}
	if c.Tags, err = stringList(raw["tags"], ","); err != nil {
		return c, fmt.Errorf("tags: %w", err)
	}
	if links, ok := raw["links"]; ok && links != nil {
		obj, ok := links.(map[string]any)
		if !ok {
			return c, fmt.Errorf("links: expected object, got %T", links)
		}
		c.Links = make(map[string]string, len(obj))
		for k, v := range obj {
			if s := scalarString(v); s != "" {
				c.Links[k] = s
			}
		}
	}
	for k, v := range raw {
		if knownKeys[k] {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[k] = v
	}
	return c, nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func stringList(v any, sep string) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return SplitList(t, sep), nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s := scalarString(e); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list, got %T", v)
	}
}

// SplitList splits s on sep and drops empty, whitespace-only entries.
func SplitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var slugDrop = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe id from a title.
func Slugify(s string) string {
	return strings.Trim(slugDrop.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// LinkKinds returns the link kinds of the item in display order: well-known kinds
// first, the rest alphabetically.
func (c *ContentItem) LinkKinds() []string {
	kinds := make([]string, 0, len(c.Links))
	for k := range c.Links {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		ri, rj := linkRank(kinds[i]), linkRank(kinds[j])
		if ri != rj {
			return ri < rj
		}
		return kinds[i] < kinds[j]
	})
	return kinds
}

var linkOrder = []string{"pdf", "doi", "url", "code", "github", "demo", "video", "slides", "poster", "supplementary"}

func linkRank(kind string) int {
	for i, k := range linkOrder {
		if k == kind {
			return i
		}
	}
	return len(linkOrder)
}
