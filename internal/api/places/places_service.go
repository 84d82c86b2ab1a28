package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-leisure-bot/app/observability/metrics"
	"github.com/FACorreiaa/go-leisure-bot/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the venue search contract used by the session manager.
type Service interface {
	Search(ctx context.Context, city string, category types.Category) ([]types.VenueRecord, error)
}

// categoryFilters maps a user-facing category to the Overpass tag filters
// queried for it. Filters are queried one by one and their results
// concatenated without de-duplication.
var categoryFilters = map[types.Category][]string{
	types.CategoryCafe:       {"amenity=cafe"},
	types.CategoryRestaurant: {"amenity=restaurant"},
	types.CategoryCinema:     {"amenity=cinema"},
	types.CategoryPark:       {"leisure=park"},
	types.CategoryMuseum:     {"tourism=museum"},
	types.CategoryMall:       {"shop=mall"},
}

type ServiceImpl struct {
	logger     *slog.Logger
	client     *http.Client
	url        string
	maxResults int
}

func NewServiceImpl(overpassURL string, timeout time.Duration, maxResults int, logger *slog.Logger) *ServiceImpl {
	metrics.InitAppMetrics()
	return &ServiceImpl{
		logger:     logger,
		client:     &http.Client{Timeout: timeout},
		url:        overpassURL,
		maxResults: maxResults,
	}
}

type overpassResponse struct {
	Elements []struct {
		ID     int64             `json:"id"`
		Type   string            `json:"type"`
		Lat    *float64          `json:"lat"`
		Lon    *float64          `json:"lon"`
		Tags   map[string]string `json:"tags"`
		Center *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"center"`
	} `json:"elements"`
}

// Search returns venues of the given category in a city, capped at the
// configured maximum. Once the cap is reached no further tag filters are
// queried. An unknown category yields an empty result.
func (s *ServiceImpl) Search(ctx context.Context, city string, category types.Category) ([]types.VenueRecord, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("city", city),
		attribute.String("category", string(category)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Search"), slog.String("city", city))

	filters, ok := categoryFilters[category]
	if !ok {
		l.WarnContext(ctx, "Unknown venue category", slog.String("category", string(category)))
		return nil, nil
	}

	var results []types.VenueRecord
	for _, filter := range filters {
		if len(results) >= s.maxResults {
			break
		}
		batch, err := s.query(ctx, city, filter)
		if err != nil {
			l.ErrorContext(ctx, "Overpass sub-query failed",
				slog.String("filter", filter), slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Provider request failed")
			return nil, err
		}
		for _, venue := range batch {
			results = append(results, venue)
			if len(results) >= s.maxResults {
				break
			}
		}
	}

	l.InfoContext(ctx, "Venue search completed", slog.Int("count", len(results)))
	span.SetAttributes(attribute.Int("results.count", len(results)))
	span.SetStatus(codes.Ok, "Venues retrieved")
	return results, nil
}

func (s *ServiceImpl) query(ctx context.Context, city, filter string) ([]types.VenueRecord, error) {
	overpassQuery := fmt.Sprintf(`
[out:json];
area["name"=%q]->.searchArea;
(
  node[%s](area.searchArea);
  way[%s](area.searchArea);
  relation[%s](area.searchArea);
);
out center;
`, city, filter, filter, filter)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, strings.NewReader(overpassQuery))
	if err != nil {
		return nil, &types.UpstreamError{Provider: "places", Err: err}
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.Get().ProviderRequestSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return nil, &types.UpstreamError{Provider: "places", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.UpstreamError{Provider: "places", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var body overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &types.UpstreamError{Provider: "places", Err: fmt.Errorf("decode response: %w", err)}
	}

	venues := make([]types.VenueRecord, 0, len(body.Elements))
	for _, element := range body.Elements {
		name := element.Tags["name"]
		if name == "" {
			name = "Без названия"
		}
		address := element.Tags["address"]
		if address == "" {
			address = "Адрес не указан"
		}
		venue := types.VenueRecord{
			ID:      element.ID,
			Type:    element.Type,
			Name:    name,
			Address: address,
			Lat:     element.Lat,
			Lon:     element.Lon,
		}
		if venue.Lat == nil && element.Center != nil {
			lat, lon := element.Center.Lat, element.Center.Lon
			venue.Lat, venue.Lon = &lat, &lon
		}
		venues = append(venues, venue)
	}
	return venues, nil
}
