package services

import (
	"testing"

	"folio/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestSortByDateStableAndIdempotent(t *testing.T) {
	items := []models.ContentItem{
		{ID: "a", Year: "2020"},
		{ID: "b", Date: "2023-05-01"},
		{ID: "c", Year: "2020"},
		{ID: "d", Date: "2022-01-01"},
		{ID: "e"},
	}
	SortByDate(items)
	first := ids(items)
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, first)

	SortByDate(items)
	assert.Equal(t, first, ids(items))
}

func TestYearsAndFilter(t *testing.T) {
	items := []models.ContentItem{
		{ID: "first", Date: "2022-01-01"},
		{ID: "second", Date: "2023-05-01"},
	}
	assert.Equal(t, []string{"2023", "2022"}, Years(items))
	assert.Equal(t, []string{"first"}, ids(FilterByYear(items, "2022")))
	assert.Len(t, FilterByYear(items, ""), 2)
}

func TestQuerySearchThenYear(t *testing.T) {
	items := []models.ContentItem{
		{ID: "g22", Title: "Graph Databases", Year: "2022"},
		{ID: "g23", Title: "Graph Mining", Year: "2023"},
		{ID: "n23", Title: "Neural Networks", Year: "2023"},
	}
	res := Query(NewIndex(items, nil), ListQuery{Search: "graph", Year: "2023"})
	assert.Equal(t, []string{"g23"}, ids(res.Items))
	assert.Equal(t, []string{"2023", "2022"}, res.Years)
	assert.Equal(t, 3, res.Total)
}
