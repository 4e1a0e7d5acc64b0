package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAuthors(t *testing.T) {
	assert.Equal(t, "", FormatAuthors(nil))
	assert.Equal(t, "Jane Smith", FormatAuthors([]string{"Smith, Jane"}))
	assert.Equal(t, "Jane Smith and John Doe", FormatAuthors([]string{"Smith, Jane", "Doe, John"}))
	assert.Equal(t, "A B, C D, and E F", FormatAuthors([]string{"B, A", "D, C", "F, E"}))
	assert.Equal(t, "Plato", FormatAuthors([]string{"Plato,"}))
}

func TestAuthorPartsMarksOwner(t *testing.T) {
	parts := authorParts([]string{"Doe, John", "Jane Smith"}, "Smith, Jane")
	assert.False(t, parts[0].Owner)
	assert.True(t, parts[1].Owner)
	assert.Equal(t, " and ", parts[1].Sep)
}

func TestHumanizeAndLinkLabel(t *testing.T) {
	assert.Equal(t, "Recent Talks", Humanize("recent-talks"))
	assert.Equal(t, "PDF", LinkLabel("pdf"))
	assert.Equal(t, "Slides", LinkLabel("slides"))
}
