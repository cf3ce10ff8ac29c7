package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cristianoliveira/flightdeck/internal/domain"
	"github.com/cristianoliveira/flightdeck/internal/livequery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, 10, s.Limit)
	assert.Equal(t, Filter{}, s.Filters)
}

func TestSaveLoadRoundTripsFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	f := livequery.Filter{Search: "pk", Status: domain.StatusDelayed, Airline: "PIA", Page: 3, Limit: 25}

	require.NoError(t, Save(path, FromFilter(f)))
	s, err := Load(path)
	require.NoError(t, err)

	got := s.Filter()
	assert.Equal(t, domain.StatusDelayed, got.Status)
	assert.Equal(t, "PIA", got.Airline)
	assert.Equal(t, 25, got.Limit)
	assert.Equal(t, 1, got.Page, "page is not remembered")
	assert.Empty(t, got.Search, "search is not remembered")
}

func TestSaveRejectsInvalidSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	err := Save(path, &Settings{Limit: 30})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid limit")

	err = Save(path, &Settings{Limit: 10, Filters: Filter{Status: domain.OptionAll}})
	require.Error(t, err, "All is stored as empty")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse settings file")
}

func TestLoadRejectsUnknownOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"filters":{"airline":"Lufthansa"},"limit":10}`), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid airline filter")
}
