package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-leisure-bot/app/observability/metrics"
	"github.com/FACorreiaa/go-leisure-bot/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the weather lookup contract used by the session manager.
type Service interface {
	Lookup(ctx context.Context, city string) (*types.WeatherSnapshot, error)
}

type ServiceImpl struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
	apiKey  string
	cache   *cache.Cache
}

func NewServiceImpl(baseURL, apiKey string, timeout, cacheTTL time.Duration, logger *slog.Logger) *ServiceImpl {
	metrics.InitAppMetrics()
	return &ServiceImpl{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
		cache:   cache.New(cacheTTL, cacheTTL),
	}
}

// owmResponse mirrors the subset of the OpenWeatherMap current-weather body
// the bot needs. Cod is a json.Number because the provider returns a number
// on success and a string on errors.
type owmResponse struct {
	Cod  json.Number `json:"cod"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Message string `json:"message"`
}

// Lookup fetches the current weather snapshot for a city. Snapshots are
// cached per city for the configured TTL.
func (s *ServiceImpl) Lookup(ctx context.Context, city string) (*types.WeatherSnapshot, error) {
	ctx, span := otel.Tracer("WeatherService").Start(ctx, "Lookup", trace.WithAttributes(
		attribute.String("city", city),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Lookup"), slog.String("city", city))

	cacheKey := strings.ToLower(strings.TrimSpace(city))
	if cached, found := s.cache.Get(cacheKey); found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		snapshot := cached.(types.WeatherSnapshot)
		return &snapshot, nil
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", s.apiKey)
	params.Set("units", "metric")
	params.Set("lang", "ru")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		span.RecordError(err)
		return nil, &types.UpstreamError{Provider: "weather", Err: err}
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.Get().ProviderRequestSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		l.ErrorContext(ctx, "Weather request failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Provider request failed")
		return nil, &types.UpstreamError{Provider: "weather", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		l.ErrorContext(ctx, "Weather provider returned non-success status", slog.Int("status", resp.StatusCode))
		span.SetStatus(codes.Error, "Provider status not OK")
		return nil, &types.UpstreamError{Provider: "weather", Err: err}
	}

	var body owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		l.ErrorContext(ctx, "Failed to decode weather response", slog.Any("error", err))
		span.RecordError(err)
		return nil, &types.UpstreamError{Provider: "weather", Err: fmt.Errorf("decode response: %w", err)}
	}
	if body.Cod.String() != "200" {
		err := fmt.Errorf("provider code %s: %s", body.Cod.String(), body.Message)
		span.SetStatus(codes.Error, "Provider code not OK")
		return nil, &types.UpstreamError{Provider: "weather", Err: err}
	}
	if len(body.Weather) == 0 {
		err := fmt.Errorf("response missing weather block")
		span.RecordError(err)
		return nil, &types.UpstreamError{Provider: "weather", Err: err}
	}

	snapshot := types.WeatherSnapshot{
		Bucket:      Bucket(body.Weather[0].ID),
		Temp:        body.Main.Temp,
		Description: body.Weather[0].Description,
		Humidity:    body.Main.Humidity,
		Wind:        body.Wind.Speed,
	}
	s.cache.Set(cacheKey, snapshot, cache.DefaultExpiration)

	l.InfoContext(ctx, "Weather snapshot retrieved",
		slog.String("bucket", string(snapshot.Bucket)),
		slog.Float64("temp", snapshot.Temp))
	span.SetAttributes(attribute.String("weather.bucket", string(snapshot.Bucket)))
	span.SetStatus(codes.Ok, "Weather retrieved")
	return &snapshot, nil
}

// Bucket maps a provider condition code to one of the six catalog buckets.
func Bucket(code int) types.WeatherBucket {
	switch code {
	case 800:
		return types.BucketClear
	case 801, 802:
		return types.BucketCloudy
	case 803, 804:
		return types.BucketOvercast
	case 300, 301, 302, 310, 311, 312, 313, 314, 321,
		500, 501, 502, 503, 504, 511, 520, 521, 522, 531:
		return types.BucketRain
	case 600, 601, 602, 611, 612, 613, 615, 616, 620, 621, 622:
		return types.BucketSnow
	default:
		return types.BucketVaried
	}
}
