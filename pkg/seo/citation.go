package seo

import (
	"encoding/json"
	"html/template"
	"strings"

	"folio/pkg/models"
)

// Meta is one <meta name=... content=...> tag.
type Meta struct {
	Name    string
	Content string
}

// CitationMeta builds the Highwire Press tags read by scholarly indexers.
func CitationMeta(baseURL string, item *models.ContentItem) []Meta {
	var out []Meta
	add := func(name, content string) {
		if content = strings.TrimSpace(content); content != "" {
			out = append(out, Meta{Name: name, Content: content})
		}
	}

	add("citation_title", item.Title)
	for _, a := range item.Authors {
		add("citation_author", a)
	}
	add("citation_publication_date", publicationDate(item))

	switch {
	case item.Journal != "":
		add("citation_journal_title", item.Journal)
	case item.Booktitle != "":
		add("citation_conference_title", item.Booktitle)
	case item.Venue != "" && extra(item, "type") == "article":
		add("citation_journal_title", item.Venue)
	case item.Venue != "":
		add("citation_conference_title", item.Venue)
	}
	add("citation_publisher", extra(item, "publisher"))
	add("citation_volume", extra(item, "volume"))
	add("citation_issue", extra(item, "number"))
	if first, last, ok := strings.Cut(extra(item, "pages"), "–"); ok {
		add("citation_firstpage", first)
		add("citation_lastpage", last)
	}
	if pdf := item.Links["pdf"]; pdf != "" {
		add("citation_pdf_url", AbsoluteURL(baseURL, pdf))
	}
	add("citation_doi", DOI(item))
	add("citation_abstract", item.Abstract)
	for _, k := range item.Tags {
		add("citation_keywords", k)
	}
	return out
}

// publicationDate formats the date as YYYY/MM/DD, or just the year.
func publicationDate(item *models.ContentItem) string {
	if item.Date != "" {
		return strings.ReplaceAll(item.Date, "-", "/")
	}
	return item.YearValue()
}

func extra(item *models.ContentItem, key string) string {
	if v, ok := item.Extra[key].(string); ok {
		return v
	}
	return ""
}

// DOI returns the bare DOI of item, from its doi field or a doi.org link.
func DOI(item *models.ContentItem) string {
	if d := extra(item, "doi"); d != "" {
		return strings.TrimPrefix(strings.TrimPrefix(d, "https://doi.org/"), "http://doi.org/")
	}
	if link := item.Links["doi"]; link != "" {
		return strings.TrimPrefix(strings.TrimPrefix(link, "https://doi.org/"), "http://doi.org/")
	}
	return ""
}

type person struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type scholarlyArticle struct {
	Context       string   `json:"@context"`
	Type          string   `json:"@type"`
	Headline      string   `json:"headline"`
	Name          string   `json:"name"`
	Author        []person `json:"author,omitempty"`
	DatePublished string   `json:"datePublished,omitempty"`
	Abstract      string   `json:"abstract,omitempty"`
	Keywords      string   `json:"keywords,omitempty"`
	URL           string   `json:"url,omitempty"`
	SameAs        string   `json:"sameAs,omitempty"`
	IsPartOf      string   `json:"isPartOf,omitempty"`
	Image         string   `json:"image,omitempty"`
}

// ScholarlyArticle renders the schema.org JSON-LD description of item.
func ScholarlyArticle(baseURL, pageURL string, item *models.ContentItem) (template.JS, error) {
	doc := scholarlyArticle{
		Context:       "https://schema.org",
		Type:          "ScholarlyArticle",
		Headline:      item.Title,
		Name:          item.Title,
		DatePublished: item.Date,
		Abstract:      item.Abstract,
		Keywords:      strings.Join(item.Tags, ", "),
		URL:           AbsoluteURL(baseURL, pageURL),
		IsPartOf:      item.VenueName(),
	}
	if doc.DatePublished == "" {
		doc.DatePublished = item.YearValue()
	}
	for _, a := range item.Authors {
		doc.Author = append(doc.Author, person{Type: "Person", Name: a})
	}
	if d := DOI(item); d != "" {
		doc.SameAs = "https://doi.org/" + d
	}
	if item.Image != "" {
		doc.Image = AbsoluteURL(baseURL, item.Image)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return template.JS(raw), nil
}
