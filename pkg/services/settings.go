package services

import (
	"fmt"
	"sync"

	"folio/pkg/models"

	"github.com/gin-contrib/sessions"
)

// SettingsStore persists visitor preferences. Writes are last-write-wins per key.
type SettingsStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// SessionStore keeps settings in the visitor's session cookie.
type SessionStore struct {
	Session sessions.Session
}

func (s SessionStore) Get(key string) (string, bool) {
	v, ok := s.Session.Get(key).(string)
	return v, ok
}

func (s SessionStore) Set(key, value string) error {
	s.Session.Set(key, value)
	return s.Session.Save()
}

// MemoryStore is an in-process SettingsStore, used by the static build and tests.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

const themeKey = "theme"

// Settings reads and writes typed preferences through a SettingsStore.
type Settings struct {
	store SettingsStore
}

func NewSettings(store SettingsStore) *Settings {
	return &Settings{store: store}
}

func ViewModeKey(contentType string) string {
	return "viewMode:" + contentType
}

// ViewMode returns the stored mode for contentType, grid when unset or invalid.
func (s *Settings) ViewMode(contentType string) models.ViewMode {
	v, ok := s.store.Get(ViewModeKey(contentType))
	if !ok {
		return models.ViewModeGrid
	}
	mode, _ := models.ParseViewMode(v)
	return mode
}

func (s *Settings) SetViewMode(contentType string, mode models.ViewMode) error {
	if _, ok := models.ParseViewMode(string(mode)); !ok {
		return fmt.Errorf("invalid view mode %q", mode)
	}
	return s.store.Set(ViewModeKey(contentType), string(mode))
}

func (s *Settings) Theme() Theme {
	if v, ok := s.store.Get(themeKey); ok && Theme(v) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

func (s *Settings) SetTheme(t Theme) error {
	if t != ThemeLight && t != ThemeDark {
		return fmt.Errorf("invalid theme %q", t)
	}
	return s.store.Set(themeKey, string(t))
}
