package places

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-leisure-bot/internal/types"
)

func setupPlacesServiceTest(t *testing.T, maxResults int, handler http.HandlerFunc) *ServiceImpl {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewServiceImpl(server.URL, 5*time.Second, maxResults, logger)
}

func TestServiceImpl_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		service := setupPlacesServiceTest(t, 15, func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), `area["name"="Казань"]`)
			assert.Contains(t, string(body), "amenity=cafe")
			w.Write([]byte(`{"elements": [
				{"id": 101, "type": "node", "lat": 55.79, "lon": 49.12,
				 "tags": {"name": "Кафе Восток", "address": "ул. Баумана, 1"}},
				{"id": 202, "type": "way",
				 "tags": {},
				 "center": {"lat": 55.80, "lon": 49.10}}
			]}`))
		})

		venues, err := service.Search(ctx, "Казань", types.CategoryCafe)
		require.NoError(t, err)
		require.Len(t, venues, 2)

		assert.Equal(t, int64(101), venues[0].ID)
		assert.Equal(t, "node", venues[0].Type)
		assert.Equal(t, "Кафе Восток", venues[0].Name)
		assert.Equal(t, "ул. Баумана, 1", venues[0].Address)
		require.NotNil(t, venues[0].Lat)
		assert.Equal(t, 55.79, *venues[0].Lat)

		// Unnamed way falls back to placeholder text and center coordinates.
		assert.Equal(t, "Без названия", venues[1].Name)
		assert.Equal(t, "Адрес не указан", venues[1].Address)
		require.NotNil(t, venues[1].Lat)
		assert.Equal(t, 55.80, *venues[1].Lat)
		assert.Equal(t, 49.10, *venues[1].Lon)
	})

	t.Run("result cap", func(t *testing.T) {
		service := setupPlacesServiceTest(t, 15, func(w http.ResponseWriter, r *http.Request) {
			var elements []string
			for i := 0; i < 40; i++ {
				elements = append(elements, fmt.Sprintf(
					`{"id": %d, "type": "node", "lat": 1, "lon": 1, "tags": {"name": "Парк %d"}}`, i, i))
			}
			fmt.Fprintf(w, `{"elements": [%s]}`, strings.Join(elements, ","))
		})

		venues, err := service.Search(ctx, "Казань", types.CategoryPark)
		require.NoError(t, err)
		assert.Len(t, venues, 15)
	})

	t.Run("unknown category", func(t *testing.T) {
		service := setupPlacesServiceTest(t, 15, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected for an unknown category")
		})

		venues, err := service.Search(ctx, "Казань", types.Category("Бани"))
		require.NoError(t, err)
		assert.Empty(t, venues)
	})

	t.Run("empty result", func(t *testing.T) {
		service := setupPlacesServiceTest(t, 15, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"elements": []}`))
		})

		venues, err := service.Search(ctx, "Казань", types.CategoryCinema)
		require.NoError(t, err)
		assert.Empty(t, venues)
	})

	t.Run("provider failure", func(t *testing.T) {
		service := setupPlacesServiceTest(t, 15, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		venues, err := service.Search(ctx, "Казань", types.CategoryMuseum)
		require.Error(t, err)
		assert.Nil(t, venues)
		assert.True(t, types.IsUpstreamError(err))
	})
}
