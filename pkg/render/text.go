package render

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Humanize turns an identifier such as "recent-talks" into "Recent Talks".
func Humanize(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return titleCaser.String(strings.TrimSpace(s))
}

var linkLabels = map[string]string{
	"pdf":           "PDF",
	"doi":           "DOI",
	"url":           "Website",
	"github":        "GitHub",
	"code":          "Code",
	"supplementary": "Supplementary",
}

// LinkLabel is the button label for a link kind.
func LinkLabel(kind string) string {
	if l, ok := linkLabels[kind]; ok {
		return l
	}
	return Humanize(kind)
}

// FormatAuthorName turns "Last, First" into "First Last"; other forms are kept.
func FormatAuthorName(name string) string {
	last, first, ok := strings.Cut(name, ",")
	if !ok {
		return strings.TrimSpace(name)
	}
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)
	if first == "" {
		return last
	}
	return first + " " + last
}

// authorPart is one author with the separator printed before it.
type authorPart struct {
	Sep   string
	Name  string
	Owner bool
}

func authorParts(authors []string, owner string) []authorPart {
	owner = FormatAuthorName(owner)
	parts := make([]authorPart, len(authors))
	for i, a := range authors {
		name := FormatAuthorName(a)
		p := authorPart{Name: name, Owner: owner != "" && strings.EqualFold(name, owner)}
		switch {
		case i == 0:
		case len(authors) == 2:
			p.Sep = " and "
		case i == len(authors)-1:
			p.Sep = ", and "
		default:
			p.Sep = ", "
		}
		parts[i] = p
	}
	return parts
}

// FormatAuthors joins reformatted author names: "A", "A and B", "A, B, and C".
func FormatAuthors(authors []string) string {
	var b strings.Builder
	for _, p := range authorParts(authors, "") {
		b.WriteString(p.Sep)
		b.WriteString(p.Name)
	}
	return b.String()
}
