package history

import (
	"context"
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

// Repository persists completed recommendation flows, append-only, ordered
// by occurrence (newest last), never deduplicated.
type Repository interface {
	Append(ctx context.Context, entry types.HistoryEntry) error
	List(ctx context.Context, userID int64) ([]types.HistoryEntry, error)
}

// document is the on-disk shape: entry lists keyed by user id.
type document map[string][]types.HistoryEntry

type RepositoryImpl struct {
	store  *store.JSONFile
	logger *slog.Logger
}

func NewRepositoryImpl(st *store.JSONFile, logger *slog.Logger) *RepositoryImpl {
	metrics.InitAppMetrics()
	return &RepositoryImpl{store: st, logger: logger}
}

func (r *RepositoryImpl) Append(ctx context.Context, entry types.HistoryEntry) error {
	ctx, span := otel.Tracer("HistoryRepository").Start(ctx, "Append", trace.WithAttributes(
		attribute.Int64("user_id", entry.UserID),
		attribute.String("city", entry.City),
	))
	defer span.End()

	doc := document{}
	err := r.store.Update(&doc, func() error {
		id := strconv.FormatInt(entry.UserID, 10)
		doc[id] = append(doc[id], entry)
		return nil
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to append history entry", slog.Any("error", err))
		metrics.Get().StoreWriteErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("store", "history")))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store update failed")
		return err
	}
	span.SetStatus(codes.Ok, "History entry appended")
	return nil
}

func (r *RepositoryImpl) List(ctx context.Context, userID int64) ([]types.HistoryEntry, error) {
	ctx, span := otel.Tracer("HistoryRepository").Start(ctx, "List", trace.WithAttributes(
		attribute.Int64("user_id", userID),
	))
	defer span.End()

	doc := document{}
	if err := r.store.Load(&doc); err != nil {
		r.logger.ErrorContext(ctx, "Failed to load history", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store load failed")
		return nil, err
	}
	entries := doc[strconv.FormatInt(userID, 10)]
	span.SetAttributes(attribute.Int("entries", len(entries)))
	span.SetStatus(codes.Ok, "History retrieved")
	return entries, nil
}
