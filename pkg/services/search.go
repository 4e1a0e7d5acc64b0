package services

import (
	"sort"
	"strings"
	"unicode/utf8"

	"folio/pkg/expr"
	"folio/pkg/models"

	"github.com/sahilm/fuzzy"
)

// MinMatchLength is the shortest search term that filters; shorter terms return the
// list unchanged.
const MinMatchLength = 3

// maxSpanFactor bounds how far a fuzzy match may be spread over a field, relative to
// the term length.
const maxSpanFactor = 3

var DefaultSearchKeys = []models.SearchKey{
	{Name: "title", Weight: 3},
	{Name: "authors", Weight: 2},
	{Name: "tags", Weight: 2},
	{Name: "description", Weight: 1},
	{Name: "abstract", Weight: 1},
	{Name: "venue", Weight: 1},
	{Name: "journal", Weight: 1},
	{Name: "booktitle", Weight: 1},
}

// column is one searchable field across all items.
type column []string

func (c column) String(i int) string { return c[i] }
func (c column) Len() int            { return len(c) }

// Index is a weighted fuzzy index over one item list.
type Index struct {
	items   []models.ContentItem
	keys    []models.SearchKey
	columns []column
}

func NewIndex(items []models.ContentItem, keys []models.SearchKey) *Index {
	if len(keys) == 0 {
		keys = DefaultSearchKeys
	}
	ix := &Index{items: items, keys: keys, columns: make([]column, len(keys))}
	for k, key := range keys {
		path, err := expr.ParsePath(key.Name)
		col := make(column, len(items))
		if err == nil {
			for i := range items {
				if v, ok := items[i].Lookup(path); ok {
					col[i] = expr.Stringify(v)
				}
			}
		}
		ix.columns[k] = col
	}
	return ix
}

func (ix *Index) Items() []models.ContentItem {
	return ix.items
}

// Search returns matching items in relevance order.
func (ix *Index) Search(term string) []models.ContentItem {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < MinMatchLength {
		return ix.items
	}

	scores := make(map[int]float64)
	for k, key := range ix.keys {
		for _, m := range fuzzy.FindFrom(term, ix.columns[k]) {
			q := matchQuality(m, len(term))
			if q == 0 {
				continue
			}
			scores[m.Index] += key.Weight * q
		}
	}

	hits := make([]int, 0, len(scores))
	for i := range scores {
		hits = append(hits, i)
	}
	sort.Slice(hits, func(a, b int) bool {
		sa, sb := scores[hits[a]], scores[hits[b]]
		if sa != sb {
			return sa > sb
		}
		return hits[a] < hits[b]
	})

	out := make([]models.ContentItem, len(hits))
	for i, idx := range hits {
		out[i] = ix.items[idx]
	}
	return out
}

// matchQuality is 1 for a contiguous match and falls towards 0 as the matched
// characters spread out; matches spread beyond maxSpanFactor score 0.
func matchQuality(m fuzzy.Match, termLen int) float64 {
	if len(m.MatchedIndexes) == 0 {
		return 0
	}
	span := m.MatchedIndexes[len(m.MatchedIndexes)-1] - m.MatchedIndexes[0] + 1
	if span > termLen*maxSpanFactor {
		return 0
	}
	q := float64(termLen) / float64(span)
	if q > 1 {
		q = 1
	}
	return q
}
