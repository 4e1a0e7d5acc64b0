package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBib = `
@article{smith2022graphs,
  title = {Graph {Databases} at Scale},
  author = {Smith, Jane and Doe, John},
  journal = {Journal of Data},
  year = {2022},
  keywords = {graphs, databases ,storage},
  paperurl = {https://example.org/a_b--graphs.pdf},
  github = {https://github.com/example/graphs},
  url = {https://example.org/my--paper},
  doi = {10.1000/xyz--123},
  pages = {1--10},
  abstract = {We study graphs \& databases.}
}

@inproceedings{doe2023nets,
  title = {Neural Networks},
  author = {Doe, John},
  booktitle = {Proc. of Things},
  year = {2023},
  video = {https://video.example.org/nets}
}
`

func TestParseBibTeX(t *testing.T) {
	items, err := ParseBibTeX([]byte(sampleBib))
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := map[string]int{}
	for i, it := range items {
		byID[it.ID] = i
	}
	g := items[byID["smith2022graphs"]]
	assert.Equal(t, "Graph Databases at Scale", g.Title)
	assert.Equal(t, []string{"Smith, Jane", "Doe, John"}, g.Authors)
	assert.Equal(t, []string{"graphs", "databases", "storage"}, g.Tags)
	assert.Equal(t, "2022", g.Year)
	assert.Equal(t, "Journal of Data", g.Venue)
	assert.Equal(t, "https://example.org/a_b--graphs.pdf", g.Links["pdf"])
	assert.Equal(t, "https://github.com/example/graphs", g.Links["github"])
	assert.Equal(t, "https://example.org/my--paper", g.Links["url"])
	assert.Equal(t, "https://doi.org/10.1000/xyz--123", g.Links["doi"])
	assert.Equal(t, "1–10", g.Extra["pages"])
	assert.Equal(t, "We study graphs & databases.", g.Abstract)
	assert.Equal(t, "article", g.Extra["type"])

	n := items[byID["doe2023nets"]]
	assert.Equal(t, "Proc. of Things", n.Venue)
	assert.Equal(t, "https://video.example.org/nets", n.Links["video"])
}

func TestBibEntryToItemLinkMapping(t *testing.T) {
	fields := map[string]string{
		"author":        "Smith, Jane and Doe, John",
		"paperurl":      "p.pdf",
		"pdf":           "other.pdf",
		"slides":        "s",
		"poster":        "po",
		"demo":          "d",
		"supplementary": "sup",
	}
	item := BibEntryToItem("key", "misc", fields)
	assert.Equal(t, "key", item.ID)
	assert.Equal(t, []string{"Smith, Jane", "Doe, John"}, item.Authors)
	assert.Equal(t, map[string]string{
		"pdf": "p.pdf", "slides": "s", "poster": "po", "demo": "d", "supplementary": "sup",
	}, item.Links)
}

func TestParseBibTeXInvalid(t *testing.T) {
	_, err := ParseBibTeX([]byte("@article{broken, title = {x"))
	assert.Error(t, err)
}

func TestParseBibTeXUndefinedMacro(t *testing.T) {
	_, err := ParseBibTeX([]byte(`@article{k4, title={C}, journal = jmlr, year={2019}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUndefinedMacro)
	assert.Contains(t, err.Error(), "jmlr")
}

func TestParseBibTeXMacrosAndConcatenation(t *testing.T) {
	items, err := ParseBibTeX([]byte(`
@string{conf = "Proc. Conf"}
@comment{ignored {nested} text}
@inproceedings(k5,
  title = "Quoted {Title}",
  booktitle = conf # " 2020",
  month = jan,
  year = 2020
)
`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "k5", items[0].ID)
	assert.Equal(t, "Quoted Title", items[0].Title)
	assert.Equal(t, "Proc. Conf 2020", items[0].Booktitle)
	assert.Equal(t, "2020", items[0].Year)
	assert.Equal(t, "jan", items[0].Extra["month"])
}

func TestNormalizeBibTeX(t *testing.T) {
	out, err := NormalizeBibTeX([]byte(`@STRING{ jd = {Journal of Data} }
@article{a1, journal = jd # {, vol.} # 3, note = "x"}`))
	require.NoError(t, err)
	assert.Equal(t, "@article{a1,\n  journal = {Journal of Data, vol.3},\n  note = {x}\n}\n\n", string(out))
}
