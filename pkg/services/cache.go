package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"folio/pkg/models"

	"go.uber.org/zap"
)

type cacheEntry struct {
	items []models.ContentItem
	index *Index
}

// ContentStore owns the site configuration and the loaded item lists. Lists are
// replaced whole on reload and never mutated in place.
type ContentStore struct {
	loader   *Loader
	site     atomic.Pointer[models.SiteConfig]
	useCache bool

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

func NewContentStore(site *models.SiteConfig, loader *Loader, useCache bool) *ContentStore {
	s := &ContentStore{loader: loader, useCache: useCache, entries: make(map[string]*cacheEntry)}
	s.site.Store(site)
	return s
}

func (s *ContentStore) Site() *models.SiteConfig {
	return s.site.Load()
}

// SetSite swaps the site configuration and drops every cached list.
func (s *ContentStore) SetSite(site *models.SiteConfig) {
	s.site.Store(site)
	s.InvalidateCache()
}

func (s *ContentStore) ContentType(name string) (models.ContentTypeConfig, error) {
	ct, ok := s.Site().ContentType(name)
	if !ok {
		return ct, fmt.Errorf("%w: %q", ErrContentTypeNotFound, name)
	}
	return ct, nil
}

// Items returns the sorted items of a content type.
func (s *ContentStore) Items(ctx context.Context, contentType string) ([]models.ContentItem, error) {
	e, err := s.entry(ctx, contentType)
	if err != nil {
		return nil, err
	}
	return e.items, nil
}

// Index returns the search index built over the current item list.
func (s *ContentStore) Index(ctx context.Context, contentType string) (*Index, error) {
	e, err := s.entry(ctx, contentType)
	if err != nil {
		return nil, err
	}
	return e.index, nil
}

// Item finds one item by id with a linear scan.
func (s *ContentStore) Item(ctx context.Context, contentType, id string) (models.ContentItem, error) {
	items, err := s.Items(ctx, contentType)
	if err != nil {
		return models.ContentItem{}, err
	}
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return models.ContentItem{}, fmt.Errorf("%w: %s/%s", ErrItemNotFound, contentType, id)
}

func (s *ContentStore) entry(ctx context.Context, contentType string) (*cacheEntry, error) {
	ct, err := s.ContentType(contentType)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[contentType]; ok && s.useCache {
		return e, nil
	}

	items, err := s.loader.Load(ctx, ct)
	if err != nil {
		return nil, err
	}
	SortByDate(items)
	e := &cacheEntry{items: items, index: NewIndex(items, ct.SearchKeys)}
	if s.useCache {
		s.entries[contentType] = e
	}
	zap.L().Debug("content loaded", zap.String("type", contentType), zap.Int("items", len(items)))
	return e, nil
}

func (s *ContentStore) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*cacheEntry)
}
