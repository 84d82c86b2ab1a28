package catalog

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-leisure-bot/internal/store"
	"github.com/FACorreiaa/go-leisure-bot/internal/types"
)

func setupCatalogTest(t *testing.T, activities map[string][]string) *RepositoryImpl {
	t.Helper()
	path := filepath.Join(t.TempDir(), "activities.json")
	st := store.NewJSONFile(path)
	if activities != nil {
		require.NoError(t, st.Save(activities))
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo, err := NewRepositoryImpl(st, logger)
	require.NoError(t, err)
	return repo
}

func TestRepositoryImpl_Lookup(t *testing.T) {
	repo := setupCatalogTest(t, map[string][]string{
		"ясно_активное_низкий_один": {"Пробежка в парке", "Велопрогулка", "Уличная тренировка"},
		"дождь_расслабленное_средний_пара": {},
	})

	t.Run("stored combination keeps order", func(t *testing.T) {
		options := repo.Lookup(types.BucketClear, types.MoodActive, types.BudgetLow, types.PartySolo)
		assert.Equal(t, []string{"Пробежка в парке", "Велопрогулка", "Уличная тренировка"}, options)
	})

	t.Run("absent combination falls back", func(t *testing.T) {
		options := repo.Lookup(types.BucketSnow, types.MoodExtreme, types.BudgetUnlimited, types.PartyGroup)
		assert.Equal(t, []string{FallbackOption}, options)
	})

	t.Run("empty combination falls back", func(t *testing.T) {
		options := repo.Lookup(types.BucketRain, types.MoodRelaxed, types.BudgetMedium, types.PartyPair)
		assert.Equal(t, []string{FallbackOption}, options)
	})

	t.Run("missing catalog file serves fallback for everything", func(t *testing.T) {
		empty := setupCatalogTest(t, nil)
		options := empty.Lookup(types.BucketClear, types.MoodActive, types.BudgetLow, types.PartySolo)
		assert.Equal(t, []string{FallbackOption}, options)
	})
}

func TestKey(t *testing.T) {
	key := Key(types.BucketOvercast, types.MoodRelaxed, types.BudgetUnlimited, types.PartyGroup)
	assert.Equal(t, "пасмурно_расслабленное_неограниченный_компания", key)
}
