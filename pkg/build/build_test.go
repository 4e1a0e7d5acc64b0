package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"folio/pkg/config"
	"folio/pkg/handlers"
	"folio/pkg/models"
	"folio/pkg/seo"
	"folio/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuilder(t *testing.T, out string) *Builder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	site, err := config.LoadSite("testdata/site.yaml")
	require.NoError(t, err)
	loader := &services.Loader{Fetcher: services.NewSourceFetcher("testdata", 5*time.Second)}
	h := handlers.New(services.NewContentStore(site, loader, true), services.NewMarkdown(), "testdata/media")
	engine, err := handlers.NewEngine(h, "secret")
	require.NoError(t, err)
	return New(h, engine, Options{
		OutputDir:      out,
		SiteConfigPath: "testdata/site.yaml",
		DataRoot:       "testdata",
		MediaDir:       "testdata/media",
		Concurrency:    2,
	})
}

func TestRoutes(t *testing.T) {
	b := newBuilder(t, t.TempDir())
	pages, err := b.Routes(context.Background())
	require.NoError(t, err)

	var paths []string
	for _, p := range pages {
		paths = append(paths, p.Path)
	}
	assert.Equal(t, []string{"/", "/cv-page", "/publications", "/publications/p2", "/publications/p1"}, paths)
	assert.Equal(t, seo.PageHome, pages[0].Kind)
	assert.Equal(t, seo.PageItem, pages[3].Kind)
	assert.False(t, pages[2].LastMod.IsZero())
}

func TestRedirects(t *testing.T) {
	b := newBuilder(t, t.TempDir())
	r, err := b.Redirects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"cv": "/cv-page", "first": "/publications/p1"}, r)
}

func TestRun(t *testing.T) {
	out := t.TempDir()
	b := newBuilder(t, out)
	res, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, res.Pages)
	assert.Equal(t, 2, res.Redirects)
	assert.Equal(t, 1, res.ShortTexts)
	assert.Equal(t, 0, res.Reused)

	read := func(rel string) string {
		data, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(rel)))
		require.NoError(t, err, rel)
		return string(data)
	}

	assert.Contains(t, read("index.html"), "Hello there.")
	detail := read("publications/p1/index.html")
	assert.Contains(t, detail, `<meta name="citation_title" content="First Paper">`)
	assert.Contains(t, detail, `<meta name="citation_conference_title" content="NeurIPS">`)
	assert.Contains(t, read("publications/p2/index.html"), `<meta name="citation_journal_title" content="JMLR">`)
	assert.Contains(t, read("first/index.html"), `url=/publications/p1`)
	assert.Contains(t, read("404.html"), "Not found")
	assert.Contains(t, read("static/site.css"), "--accent")
	assert.Equal(t, "png\n", read("media/photo.png"))

	sitemap := read("sitemap.xml")
	assert.Contains(t, sitemap, "<loc>https://jane.example.org/publications/p1</loc>")
	assert.Contains(t, sitemap, "<priority>0.6</priority>")

	var texts seo.ShortTexts
	require.NoError(t, json.Unmarshal([]byte(read("shortened-texts.json")), &texts))
	assert.Equal(t, "A first paper about things.", texts["publications/p1"].Text)

	again, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, again.Reused)
}

func TestRunFailsOnBrokenSource(t *testing.T) {
	b := newBuilder(t, t.TempDir())
	site := *b.site()
	site.ContentTypes = map[string]models.ContentTypeConfig{
		"publications": {Title: "Publications", DataSource: "data/missing.json", Path: "/publications"},
	}
	b.handler.Store().SetSite(&site)
	b.handler.Reload()
	_, err := b.Run(context.Background())
	assert.Error(t, err)
}
