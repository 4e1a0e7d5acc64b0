package services

import (
	"sort"

	"folio/pkg/models"
)

// SortByDate orders items by date, falling back to year, descending. The comparison
// is on the raw strings, which is correct for ISO dates and bare years.
func SortByDate(items []models.ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SortKey() > items[j].SortKey()
	})
}

// Years returns the distinct years present, most recent first.
func Years(items []models.ContentItem) []string {
	seen := make(map[string]bool)
	var years []string
	for i := range items {
		y := items[i].YearValue()
		if y == "" || seen[y] {
			continue
		}
		seen[y] = true
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}

// FilterByYear keeps items of the given year; an empty year keeps everything.
func FilterByYear(items []models.ContentItem, year string) []models.ContentItem {
	if year == "" {
		return items
	}
	out := make([]models.ContentItem, 0, len(items))
	for i := range items {
		if items[i].YearValue() == year {
			out = append(out, items[i])
		}
	}
	return out
}

// ListQuery is the search and filter state of a list page.
type ListQuery struct {
	Search string `form:"q" json:"q"`
	Year   string `form:"year" json:"year"`
}

type ListResult struct {
	Items []models.ContentItem `json:"items"`
	Years []string             `json:"years"`
	Total int                  `json:"total"`
}

// Query searches first and narrows by year second.
func Query(ix *Index, q ListQuery) ListResult {
	all := ix.Items()
	items := FilterByYear(ix.Search(q.Search), q.Year)
	return ListResult{Items: items, Years: Years(all), Total: len(all)}
}
