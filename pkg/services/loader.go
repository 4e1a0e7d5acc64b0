package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"folio/pkg/models"
)

// Fetcher reads a data source by name.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// SourceFetcher reads http(s) URLs over the network and everything else from Root.
type SourceFetcher struct {
	Root   string
	Client *http.Client
}

func NewSourceFetcher(root string, timeout time.Duration) *SourceFetcher {
	return &SourceFetcher{Root: root, Client: &http.Client{Timeout: timeout}}
}

func (f *SourceFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if IsRemote(source) {
		return f.fetchHTTP(ctx, source)
	}
	path := SafeJoin(f.Root, "", source)
	if path == "" {
		return nil, fmt.Errorf("invalid data source path %q", source)
	}
	return os.ReadFile(path)
}

func (f *SourceFetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrFetchStatus, url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// LocalPath returns the file backing source, or "" for remote sources.
func (f *SourceFetcher) LocalPath(source string) string {
	if IsRemote(source) {
		return ""
	}
	return SafeJoin(f.Root, "", source)
}

func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// SafeJoin joins target under root/sub, rejecting paths that escape it.
func SafeJoin(root, sub, target string) string {
	cleanTarget := filepath.Clean(filepath.FromSlash(target))
	if filepath.IsAbs(cleanTarget) || strings.HasPrefix(cleanTarget, "..") {
		return ""
	}
	return filepath.Join(root, sub, cleanTarget)
}

// Loader fetches and normalizes the items of a content type.
type Loader struct {
	Fetcher Fetcher
}

// Load returns the complete item list or an error; a partial list is never returned.
func (l *Loader) Load(ctx context.Context, ct models.ContentTypeConfig) ([]models.ContentItem, error) {
	data, err := l.Fetcher.Fetch(ctx, ct.DataSource)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ct.DataSource, err)
	}
	var items []models.ContentItem
	switch ct.Kind() {
	case models.DataKindBibTeX:
		items, err = ParseBibTeX(data)
	case models.DataKindJSON:
		items, err = ParseJSONItems(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataKind, ct.DataKind)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ct.Name, err)
	}
	if err := checkUniqueIDs(items); err != nil {
		return nil, fmt.Errorf("load %s: %w", ct.Name, err)
	}
	return items, nil
}

// ParseJSONItems decodes an array of content items. Items without id get a slug of
// their title.
func ParseJSONItems(data []byte) ([]models.ContentItem, error) {
	var items []models.ContentItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = models.Slugify(items[i].Title)
		}
	}
	return items, nil
}

func checkUniqueIDs(items []models.ContentItem) error {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.ID == "" {
			return fmt.Errorf("%w: %q", ErrMissingID, it.Title)
		}
		if seen[it.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateID, it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}
