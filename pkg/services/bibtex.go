package services

import (
	"bytes"
	"fmt"
	"strings"

	"folio/pkg/models"

	"github.com/nickng/bibtex"
)

// bibLinkFields maps BibTeX fields onto link kinds.
var bibLinkFields = map[string]string{
	"paperurl":      "pdf",
	"pdf":           "pdf",
	"url":           "url",
	"video":         "video",
	"github":        "github",
	"code":          "code",
	"demo":          "demo",
	"slides":        "slides",
	"poster":        "poster",
	"supplementary": "supplementary",
}

// ParseBibTeX parses a BibTeX document into normalized content items, in file order.
func ParseBibTeX(data []byte) ([]models.ContentItem, error) {
	normalized, err := NormalizeBibTeX(data)
	if err != nil {
		return nil, fmt.Errorf("parse bibtex: %w", err)
	}
	parsed, err := bibtex.Parse(bytes.NewReader(normalized))
	if err != nil {
		return nil, fmt.Errorf("parse bibtex: %w", err)
	}
	items := make([]models.ContentItem, 0, len(parsed.Entries))
	for _, entry := range parsed.Entries {
		fields := make(map[string]string, len(entry.Fields))
		for k, v := range entry.Fields {
			if v == nil {
				continue
			}
			name := strings.ToLower(strings.TrimSpace(k))
			fields[name] = cleanBibField(name, v.String())
		}
		items = append(items, BibEntryToItem(entry.CiteName, entry.Type, fields))
	}
	return items, nil
}

// BibEntryToItem maps the fields of one BibTeX entry onto a ContentItem.
func BibEntryToItem(citeName, entryType string, fields map[string]string) models.ContentItem {
	item := models.ContentItem{
		ID:          citeName,
		Title:       fields["title"],
		Abstract:    fields["abstract"],
		Description: fields["abstract"],
		Year:        fields["year"],
		Date:        fields["date"],
		Journal:     fields["journal"],
		Booktitle:   fields["booktitle"],
		Venue:       fields["venue"],
		Institution: fields["institution"],
		Award:       fields["award"],
		Image:       fields["image"],
		ShortURL:    fields["shorturl"],
		Authors:     models.SplitList(fields["author"], " and "),
		Tags:        models.SplitList(fields["keywords"], ","),
	}
	if item.Venue == "" {
		if item.Journal != "" {
			item.Venue = item.Journal
		} else {
			item.Venue = item.Booktitle
		}
	}
	if d := fields["description"]; d != "" {
		item.Description = d
	}

	links := map[string]string{}
	for field, kind := range bibLinkFields {
		if v := fields[field]; v != "" {
			if _, taken := links[kind]; !taken || field == "paperurl" {
				links[kind] = v
			}
		}
	}
	if doi := fields["doi"]; doi != "" {
		if strings.HasPrefix(doi, "http") {
			links["doi"] = doi
		} else {
			links["doi"] = "https://doi.org/" + doi
		}
	}
	if len(links) > 0 {
		item.Links = links
	}

	extra := map[string]any{"type": strings.ToLower(entryType)}
	for _, k := range []string{"publisher", "volume", "number", "pages", "month", "note", "doi", "series", "address"} {
		if v := fields[k]; v != "" {
			extra[k] = v
		}
	}
	item.Extra = extra
	return item
}

var (
	braceStripper  = strings.NewReplacer("{", "", "}", "")
	latexReplacer  = strings.NewReplacer(`\&`, "&", `\%`, "%", `\_`, "_", `\$`, "$", `\#`, "#", "--", "–")
	verbatimFields = map[string]bool{"doi": true, "shorturl": true, "image": true}
)

// cleanBibField strips braces from every value. Prose fields also lose LaTeX
// escapes and get en dashes; link-like fields are kept verbatim.
func cleanBibField(name, s string) string {
	s = braceStripper.Replace(s)
	if _, link := bibLinkFields[name]; link || verbatimFields[name] {
		return strings.TrimSpace(s)
	}
	s = latexReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
