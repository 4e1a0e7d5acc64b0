package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	app, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "site.yaml", app.SiteConfig)
	assert.Equal(t, ":8080", app.Addr)
	assert.True(t, app.CacheContent)
	assert.Equal(t, 8, app.BuildConcurrency)
	assert.Equal(t, 15*time.Second, app.FetchTimeout)
	assert.False(t, app.Development())
}

func TestLoadEnvFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "folio.yaml"), []byte("addr: \":9000\"\nout: dist\n"), 0o644))
	t.Setenv("FOLIO_CACHE_CONTENT", "false")
	t.Setenv("FOLIO_FETCH_TIMEOUT", "3s")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("build-concurrency", 2, "")
	require.NoError(t, flags.Parse([]string{"--build-concurrency=4"}))

	app, err := Load(filepath.Join(dir, "folio.yaml"), flags)
	require.NoError(t, err)
	assert.Equal(t, ":9000", app.Addr)
	assert.Equal(t, "dist", app.OutputDir)
	assert.False(t, app.CacheContent)
	assert.Equal(t, 3*time.Second, app.FetchTimeout)
	assert.Equal(t, 4, app.BuildConcurrency)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadSite(t *testing.T) {
	site, err := LoadSite("testdata/site.yaml")
	require.NoError(t, err)

	assert.Equal(t, "Jane Smith", site.Site.Title)
	require.Len(t, site.Sections, 3)
	exp := site.Sections[1]
	require.Len(t, exp.Subsections, 2)
	assert.Equal(t, "work", exp.Subsections[0].Key)
	assert.Equal(t, 1, *exp.Subsections[1].Section.Order)

	ct, ok := site.ContentType("publications")
	require.True(t, ok)
	assert.Equal(t, "publications", ct.Name)
	assert.Equal(t, "bibtex", string(ct.Kind()))
	assert.Equal(t, "{venue}, {year}", ct.Fields["card"][2].Format.String())
}

func TestParseSiteJSON(t *testing.T) {
	site, err := ParseSite([]byte(`{"site":{"title":"T"},"sections":[{"id":"a","template":"Markdown","content":"hi"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "hi", site.Sections[0].Content)
}

func TestParseSiteValidation(t *testing.T) {
	_, err := ParseSite([]byte("sections:\n  - id: a\n  - id: a\n"))
	assert.ErrorContains(t, err, "duplicate")

	_, err = ParseSite([]byte("sections:\n  - id: a\n    contentType: nope\n"))
	assert.ErrorContains(t, err, "unknown content type")

	_, err = ParseSite([]byte("contentTypes:\n  pubs: {title: P}\n"))
	assert.ErrorContains(t, err, "dataSource")
}
