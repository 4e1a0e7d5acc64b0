package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"folio/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoaderJSONFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "talks.json", `[{"title":"Graph Talk","date":"2023-05-01"},{"id":"b","title":"B"}]`)

	l := &Loader{Fetcher: NewSourceFetcher(dir, time.Second)}
	items, err := l.Load(context.Background(), models.ContentTypeConfig{Name: "talks", DataSource: "talks.json"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "graph-talk", items[0].ID)
}

func TestLoaderBibTeXByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pubs.bib", sampleBib)

	l := &Loader{Fetcher: NewSourceFetcher(dir, time.Second)}
	items, err := l.Load(context.Background(), models.ContentTypeConfig{Name: "publications", DataSource: "pubs.bib"})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestLoaderDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "p.json", `[{"id":"a","title":"x"},{"id":"a","title":"y"}]`)

	l := &Loader{Fetcher: NewSourceFetcher(dir, time.Second)}
	_, err := l.Load(context.Background(), models.ContentTypeConfig{Name: "p", DataSource: "p.json"})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestLoaderHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok.json" {
			_, _ = w.Write([]byte(`[{"id":"a","title":"A"}]`))
			return
		}
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := &Loader{Fetcher: NewSourceFetcher("", time.Second)}
	items, err := l.Load(context.Background(), models.ContentTypeConfig{Name: "a", DataSource: srv.URL + "/ok.json"})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = l.Load(context.Background(), models.ContentTypeConfig{Name: "a", DataSource: srv.URL + "/broken.json"})
	assert.ErrorIs(t, err, ErrFetchStatus)
}

func TestLoaderParseFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.json", `{"not":"a list"}`)

	l := &Loader{Fetcher: NewSourceFetcher(dir, time.Second)}
	items, err := l.Load(context.Background(), models.ContentTypeConfig{Name: "bad", DataSource: "bad.json"})
	assert.Error(t, err)
	assert.Nil(t, items)
}

func TestSafeJoin(t *testing.T) {
	assert.Equal(t, filepath.Join("root", "a", "b.json"), SafeJoin("root", "a", "b.json"))
	assert.Equal(t, "", SafeJoin("root", "", "../etc/passwd"))
	assert.Equal(t, "", SafeJoin("root", "", "/etc/passwd"))
}
