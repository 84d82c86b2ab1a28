package callback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-leisure-bot/internal/types"
)

func TestDecode_RoundTrip(t *testing.T) {
	queryID := "6f1c2a9e-3b4d-4c1e-9a2f-1d2e3f4a5b6c"

	t.Run("place", func(t *testing.T) {
		ref, err := Decode(Place(queryID, "node", 123456789))
		require.NoError(t, err)
		assert.Equal(t, KindPlace, ref.Kind)
		assert.Equal(t, queryID, ref.QueryID)
		assert.Equal(t, "node", ref.VenueType)
		assert.Equal(t, int64(123456789), ref.VenueID)
	})

	t.Run("favorite place", func(t *testing.T) {
		ref, err := Decode(FavPlace(queryID, "relation", 42))
		require.NoError(t, err)
		assert.Equal(t, KindFavPlace, ref.Kind)
		assert.Equal(t, "relation", ref.VenueType)
		assert.Equal(t, int64(42), ref.VenueID)
	})

	t.Run("map", func(t *testing.T) {
		ref, err := Decode(Map("way", 7))
		require.NoError(t, err)
		assert.Equal(t, KindMap, ref.Kind)
		assert.Equal(t, "way", ref.VenueType)
		assert.Equal(t, int64(7), ref.VenueID)
	})

	t.Run("activity favorite", func(t *testing.T) {
		ref, err := Decode(FavActivity(queryID, 2))
		require.NoError(t, err)
		assert.Equal(t, KindFavActivity, ref.Kind)
		assert.Equal(t, queryID, ref.QueryID)
		assert.Equal(t, 2, ref.Option)
	})

	t.Run("category", func(t *testing.T) {
		ref, err := Decode(Category(types.CategoryMall))
		require.NoError(t, err)
		assert.Equal(t, types.CategoryMall, ref.Category)
	})

	t.Run("mood choice", func(t *testing.T) {
		ref, err := Decode(Mood(types.MoodRelaxed))
		require.NoError(t, err)
		assert.Equal(t, string(types.MoodRelaxed), ref.Value)
	})

	t.Run("back to places", func(t *testing.T) {
		ref, err := Decode(BackPlaces(queryID))
		require.NoError(t, err)
		assert.Equal(t, queryID, ref.QueryID)
	})

	t.Run("bare kinds", func(t *testing.T) {
		for _, data := range []string{"restart", "hist", "cancel", "back", "bkc"} {
			ref, err := Decode(data)
			require.NoError(t, err, data)
			assert.Equal(t, Kind(data), ref.Kind)
		}
	})
}

func TestDecode_RejectsMalformedPayloads(t *testing.T) {
	malformed := []string{
		"",
		"bogus",
		"pl",                        // missing everything
		"pl:qid:node",               // missing id
		"pl:qid:node:NaN",           // id not numeric
		"pl:qid:building:1",         // invalid geometry type
		"pl::node:1",                // empty query id
		"fav:qid",                   // missing index
		"fav:qid:-1",                // negative index
		"fav:qid:two",               // index not numeric
		"map:node",                  // missing id
		"map:city:5",                // invalid geometry type
		"ven:",                      // empty query id
		"restart:extra",             // arity violation
		"cancel:now",                // arity violation
		"mood:",                     // empty value
		"pl:qid:node:1:extra",       // arity violation
		"fvp:qid:node:1:surplus:x2", // arity violation
	}
	for _, data := range malformed {
		_, err := Decode(data)
		require.Error(t, err, "payload %q must be rejected", data)
		assert.True(t, types.IsInputError(err), "payload %q must map to an input error", data)
	}
}
