package favorites

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-leisure-bot/internal/store"
	"github.com/FACorreiaa/go-leisure-bot/internal/types"
)

func setupFavoritesTest(t *testing.T) *RepositoryImpl {
	t.Helper()
	path := filepath.Join(t.TempDir(), "favorites.json")
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewRepositoryImpl(store.NewJSONFile(path), logger)
}

func testVenue() types.FavoriteVenue {
	lat, lon := 55.75, 37.61
	return types.FavoriteVenue{
		VenueRecord: types.VenueRecord{
			ID: 321, Type: "node", Name: "Кафе Пушкинъ", Address: "Тверской б-р, 26А",
			Lat: &lat, Lon: &lon,
		},
		Category: types.CategoryCafe,
		City:     "Москва",
	}
}

func TestRepositoryImpl_AddVenue(t *testing.T) {
	ctx := context.Background()
	repo := setupFavoritesTest(t)

	t.Run("first add", func(t *testing.T) {
		added, err := repo.AddVenue(ctx, 42, testVenue())
		require.NoError(t, err)
		assert.True(t, added)
	})

	t.Run("duplicate add is a no-op", func(t *testing.T) {
		added, err := repo.AddVenue(ctx, 42, testVenue())
		require.NoError(t, err)
		assert.False(t, added)

		record, err := repo.Get(ctx, 42)
		require.NoError(t, err)
		require.Len(t, record.Venues, 1)
		assert.Equal(t, "Кафе Пушкинъ", record.Venues[0].Name)
	})

	t.Run("same id different type is a distinct venue", func(t *testing.T) {
		other := testVenue()
		other.Type = "way"
		added, err := repo.AddVenue(ctx, 42, other)
		require.NoError(t, err)
		assert.True(t, added)

		record, err := repo.Get(ctx, 42)
		require.NoError(t, err)
		assert.Len(t, record.Venues, 2)
	})

	t.Run("users are isolated", func(t *testing.T) {
		record, err := repo.Get(ctx, 77)
		require.NoError(t, err)
		assert.True(t, record.Empty())
	})
}

func TestRepositoryImpl_AddActivity(t *testing.T) {
	ctx := context.Background()
	repo := setupFavoritesTest(t)

	added, err := repo.AddActivity(ctx, 42, "Каток")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddActivity(ctx, 42, "Каток")
	require.NoError(t, err)
	assert.False(t, added)

	added, err = repo.AddActivity(ctx, 42, "Музей")
	require.NoError(t, err)
	assert.True(t, added)

	record, err := repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"Каток", "Музей"}, record.Activities)
}

func TestRepositoryImpl_AddQuery(t *testing.T) {
	ctx := context.Background()
	repo := setupFavoritesTest(t)

	query := types.FavoriteQuery{City: "Сочи", Weather: types.BucketClear, Mood: types.MoodActive}

	added, err := repo.AddQuery(ctx, 42, query)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddQuery(ctx, 42, query)
	require.NoError(t, err)
	assert.False(t, added)
}

func TestRepositoryImpl_FindVenue(t *testing.T) {
	ctx := context.Background()
	repo := setupFavoritesTest(t)

	_, err := repo.AddVenue(ctx, 42, testVenue())
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		venue, err := repo.FindVenue(ctx, 42, "node", 321)
		require.NoError(t, err)
		assert.Equal(t, "Кафе Пушкинъ", venue.Name)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := repo.FindVenue(ctx, 42, "way", 321)
		require.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := repo.FindVenue(ctx, 99, "node", 321)
		require.ErrorIs(t, err, types.ErrNotFound)
	})
}
