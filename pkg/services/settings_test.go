package services

import (
	"testing"

	"folio/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewModePersistsPerContentType(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, NewSettings(store).SetViewMode("projects", models.ViewModeList))

	reloaded := NewSettings(store)
	assert.Equal(t, models.ViewModeList, reloaded.ViewMode("projects"))
	assert.Equal(t, models.ViewModeGrid, reloaded.ViewMode("talks"))
}

func TestViewModeRejectsInvalid(t *testing.T) {
	store := NewMemoryStore()
	s := NewSettings(store)
	assert.Error(t, s.SetViewMode("projects", "carousel"))

	require.NoError(t, store.Set(ViewModeKey("projects"), "bogus"))
	assert.Equal(t, models.ViewModeGrid, s.ViewMode("projects"))
}

func TestTheme(t *testing.T) {
	s := NewSettings(NewMemoryStore())
	assert.Equal(t, ThemeLight, s.Theme())
	require.NoError(t, s.SetTheme(ThemeDark))
	assert.Equal(t, ThemeDark, s.Theme())
	assert.Error(t, s.SetTheme("sepia"))
}
