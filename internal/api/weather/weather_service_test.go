package weather

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-leisure-bot/internal/types"
)

func setupWeatherServiceTest(t *testing.T, handler http.HandlerFunc) *ServiceImpl {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewServiceImpl(server.URL, "test-key", 5*time.Second, 10*time.Minute, logger)
}

func TestServiceImpl_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		var requests atomic.Int64
		service := setupWeatherServiceTest(t, func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			assert.Equal(t, "Самара", r.URL.Query().Get("q"))
			assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
			assert.Equal(t, "metric", r.URL.Query().Get("units"))
			assert.Equal(t, "ru", r.URL.Query().Get("lang"))
			w.Write([]byte(`{
				"cod": 200,
				"main": {"temp": 21.4, "humidity": 55},
				"weather": [{"id": 800, "description": "ясно"}],
				"wind": {"speed": 3.2}
			}`))
		})

		snapshot, err := service.Lookup(ctx, "Самара")
		require.NoError(t, err)
		assert.Equal(t, types.BucketClear, snapshot.Bucket)
		assert.Equal(t, 21.4, snapshot.Temp)
		assert.Equal(t, "ясно", snapshot.Description)
		assert.Equal(t, 55, snapshot.Humidity)
		assert.Equal(t, 3.2, snapshot.Wind)

		// Second lookup for the same city must hit the cache, case and
		// whitespace insensitively.
		again, err := service.Lookup(ctx, "  самара ")
		require.NoError(t, err)
		assert.Equal(t, snapshot, again)
		assert.Equal(t, int64(1), requests.Load())
	})

	t.Run("provider error code", func(t *testing.T) {
		service := setupWeatherServiceTest(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"cod": "404", "message": "city not found"}`))
		})

		snapshot, err := service.Lookup(ctx, "Нигде")
		require.Error(t, err)
		assert.Nil(t, snapshot)
		assert.True(t, types.IsUpstreamError(err))
	})

	t.Run("non-success status", func(t *testing.T) {
		service := setupWeatherServiceTest(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := service.Lookup(ctx, "Самара")
		require.Error(t, err)
		assert.True(t, types.IsUpstreamError(err))
	})

	t.Run("malformed body", func(t *testing.T) {
		service := setupWeatherServiceTest(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		})

		_, err := service.Lookup(ctx, "Самара")
		require.Error(t, err)
		assert.True(t, types.IsUpstreamError(err))
	})

	t.Run("missing weather block", func(t *testing.T) {
		service := setupWeatherServiceTest(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"cod": 200, "main": {"temp": 1}, "weather": []}`))
		})

		_, err := service.Lookup(ctx, "Самара")
		require.Error(t, err)
		assert.True(t, types.IsUpstreamError(err))
	})
}

func TestBucket(t *testing.T) {
	cases := []struct {
		code int
		want types.WeatherBucket
	}{
		{800, types.BucketClear},
		{801, types.BucketCloudy},
		{802, types.BucketCloudy},
		{803, types.BucketOvercast},
		{804, types.BucketOvercast},
		{310, types.BucketRain},
		{500, types.BucketRain},
		{531, types.BucketRain},
		{600, types.BucketSnow},
		{616, types.BucketSnow},
		{622, types.BucketSnow},
		{701, types.BucketVaried},
		{200, types.BucketVaried},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Bucket(tc.code), "code %d", tc.code)
	}
}
