package catalog

import (
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/go-leisure-bot/internal/store"
	"github.com/FACorreiaa/go-leisure-bot/internal/types"
)

// FallbackOption is returned as the single recommendation when no catalog
// entry exists for a composite key.
const FallbackOption = "К сожалению, нет подходящих вариантов"

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the read-only activity catalog.
type Repository interface {
	Lookup(weather types.WeatherBucket, mood types.Mood, budget types.Budget, people types.Party) []string
}

// RepositoryImpl holds the catalog loaded once at startup. The map is never
// mutated afterwards, so reads need no locking.
type RepositoryImpl struct {
	logger     *slog.Logger
	activities map[string][]string
}

func NewRepositoryImpl(st *store.JSONFile, logger *slog.Logger) (*RepositoryImpl, error) {
	activities := map[string][]string{}
	if err := st.Load(&activities); err != nil {
		return nil, fmt.Errorf("load activity catalog: %w", err)
	}
	logger.Info("Activity catalog loaded", slog.Int("combinations", len(activities)))
	return &RepositoryImpl{logger: logger, activities: activities}, nil
}

// Key builds the composite catalog key for a completed flow.
func Key(weather types.WeatherBucket, mood types.Mood, budget types.Budget, people types.Party) string {
	return fmt.Sprintf("%s_%s_%s_%s", weather, mood, budget, people)
}

// Lookup returns the stored option list for the combination, in stored
// order, or the single-element fallback when the combination is absent.
func (r *RepositoryImpl) Lookup(weather types.WeatherBucket, mood types.Mood, budget types.Budget, people types.Party) []string {
	key := Key(weather, mood, budget, people)
	options, ok := r.activities[key]
	if !ok || len(options) == 0 {
		r.logger.Debug("No catalog entry for combination", slog.String("key", key))
		return []string{FallbackOption}
	}
	return options
}
