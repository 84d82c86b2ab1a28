package favorites

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-leisure-bot/app/observability/metrics"
	"github.com/FACorreiaa/go-leisure-bot/internal/store"
	"github.com/FACorreiaa/go-leisure-bot/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists the per-user favorites lists. Adds are idempotent:
// false means the item was already pinned. De-duplication is full
// structural equality of the stored item.
type Repository interface {
	AddVenue(ctx context.Context, userID int64, venue types.FavoriteVenue) (bool, error)
	AddActivity(ctx context.Context, userID int64, activity string) (bool, error)
	AddQuery(ctx context.Context, userID int64, query types.FavoriteQuery) (bool, error)
	Get(ctx context.Context, userID int64) (*types.Favorites, error)
	FindVenue(ctx context.Context, userID int64, venueType string, venueID int64) (*types.FavoriteVenue, error)
}

// document is the on-disk shape: favorites keyed by user id.
type document map[string]*types.Favorites

type RepositoryImpl struct {
	store  *store.JSONFile
	logger *slog.Logger
}

func NewRepositoryImpl(st *store.JSONFile, logger *slog.Logger) *RepositoryImpl {
	metrics.InitAppMetrics()
	return &RepositoryImpl{store: st, logger: logger}
}

func (r *RepositoryImpl) AddVenue(ctx context.Context, userID int64, venue types.FavoriteVenue) (bool, error) {
	return r.add(ctx, userID, "AddVenue", func(f *types.Favorites) bool {
		for _, existing := range f.Venues {
			if sameJSON(existing, venue) {
				return false
			}
		}
		f.Venues = append(f.Venues, venue)
		return true
	})
}

func (r *RepositoryImpl) AddActivity(ctx context.Context, userID int64, activity string) (bool, error) {
	return r.add(ctx, userID, "AddActivity", func(f *types.Favorites) bool {
		for _, existing := range f.Activities {
			if existing == activity {
				return false
			}
		}
		f.Activities = append(f.Activities, activity)
		return true
	})
}

func (r *RepositoryImpl) AddQuery(ctx context.Context, userID int64, query types.FavoriteQuery) (bool, error) {
	return r.add(ctx, userID, "AddQuery", func(f *types.Favorites) bool {
		for _, existing := range f.Queries {
			if sameJSON(existing, query) {
				return false
			}
		}
		f.Queries = append(f.Queries, query)
		return true
	})
}

// add loads the whole document, mutates one user's record and saves it
// back, all under the store lock. A record is created lazily on first
// favorite.
func (r *RepositoryImpl) add(ctx context.Context, userID int64, method string, mutate func(*types.Favorites) bool) (bool, error) {
	ctx, span := otel.Tracer("FavoritesRepository").Start(ctx, method, trace.WithAttributes(
		attribute.Int64("user_id", userID),
	))
	defer span.End()

	doc := document{}
	added := false
	err := r.store.Update(&doc, func() error {
		record, ok := doc[key(userID)]
		if !ok {
			record = &types.Favorites{}
			doc[key(userID)] = record
		}
		added = mutate(record)
		return nil
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to persist favorite",
			slog.String("method", method), slog.Any("error", err))
		metrics.Get().StoreWriteErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("store", "favorites")))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store update failed")
		return false, err
	}

	span.SetAttributes(attribute.Bool("favorite.added", added))
	span.SetStatus(codes.Ok, "Favorite processed")
	return added, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userID int64) (*types.Favorites, error) {
	ctx, span := otel.Tracer("FavoritesRepository").Start(ctx, "Get", trace.WithAttributes(
		attribute.Int64("user_id", userID),
	))
	defer span.End()

	doc := document{}
	if err := r.store.Load(&doc); err != nil {
		r.logger.ErrorContext(ctx, "Failed to load favorites", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store load failed")
		return nil, err
	}
	record, ok := doc[key(userID)]
	if !ok {
		record = &types.Favorites{}
	}
	span.SetStatus(codes.Ok, "Favorites retrieved")
	return record, nil
}

// FindVenue resolves a pinned venue by (type, id). Used as the fallback for
// map links once the live result set no longer holds the venue.
func (r *RepositoryImpl) FindVenue(ctx context.Context, userID int64, venueType string, venueID int64) (*types.FavoriteVenue, error) {
	record, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, venue := range record.Venues {
		if venue.ID == venueID && venue.Type == venueType {
			return &venue, nil
		}
	}
	return nil, types.ErrNotFound
}

func key(userID int64) string { return strconv.FormatInt(userID, 10) }

// sameJSON compares two values by their canonical JSON encoding.
func sameJSON(a, b any) bool {
	rawA, errA := json.Marshal(a)
	rawB, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(rawA, rawB)
}
