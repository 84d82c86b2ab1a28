package bot

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/go-leisure-bot/internal/session"
	"github.com/FACorreiaa/go-leisure-bot/internal/types"
)

func TestAckText(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{types.NewInputError("superseded", types.ErrStaleQuery), ackStale},
		{types.NewInputError("index", types.ErrOutOfRange), ackBadOption},
		{types.NewInputError("gone", types.ErrNotFound), ackNotFound},
		{types.NewInputError("no city", types.ErrNoSession), ackNoCity},
		{&types.UpstreamError{Provider: "weather", Err: assert.AnError}, ackUpstream},
		{&types.PersistenceError{Store: "favorites", Err: assert.AnError}, ackPersistence},
		{assert.AnError, ackBadPayload},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ackText(tc.err), "%v", tc.err)
	}
}

func TestCallerName(t *testing.T) {
	assert.Equal(t, "ivan", callerName(&CallbackQuery{From: User{Username: "ivan", FirstName: "Иван"}}))
	assert.Equal(t, "Иван", callerName(&CallbackQuery{From: User{FirstName: "Иван"}}))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Активное", capitalize("активное"))
	assert.Equal(t, "X", capitalize("x"))
	assert.Equal(t, "", capitalize(""))
}

func TestMapURL(t *testing.T) {
	url := mapURL(55.79, 49.12)
	assert.Contains(t, url, "openstreetmap.org")
	assert.Contains(t, url, "mlat=55.790000")
	assert.Contains(t, url, "mlon=49.120000")
}

func TestHistoryText_ShowsLastFiveEntries(t *testing.T) {
	var entries []types.HistoryEntry
	for i := 0; i < 7; i++ {
		entries = append(entries, types.HistoryEntry{
			Timestamp:  time.Date(2025, 6, 1+i, 12, 0, 0, 0, time.UTC),
			City:       fmt.Sprintf("Город%d", i),
			Weather:    types.BucketClear,
			Mood:       types.MoodActive,
			Budget:     types.BudgetLow,
			People:     types.PartySolo,
			Activities: []string{"a", "b", "c", "d"},
		})
	}

	text := historyText(entries)
	assert.NotContains(t, text, "Город0")
	assert.NotContains(t, text, "Город1")
	assert.Contains(t, text, "Город2")
	assert.Contains(t, text, "Город6")
	// Only the first three activities of an entry are listed.
	assert.Contains(t, text, "3. c")
	assert.NotContains(t, text, "4. d")
}

func TestChoiceRows(t *testing.T) {
	buttons := []InlineKeyboardButton{{Text: "a"}, {Text: "b"}, {Text: "c"}}
	rows := choiceRows(buttons)
	assert.Len(t, rows, 2)
	assert.Len(t, rows[0], 2)
	assert.Len(t, rows[1], 1)
}

func TestRecommendationKeyboard_CapsPinButtons(t *testing.T) {
	rec := &session.Recommendation{
		QueryID: "qid",
		Options: []string{"a", "b", "c", "d", "e"},
	}
	markup := recommendationKeyboard(rec)

	var pins int
	for _, row := range markup.InlineKeyboard {
		for _, button := range row {
			if button.Text == "⭐ Вариант 1" || button.Text == "⭐ Вариант 2" || button.Text == "⭐ Вариант 3" {
				pins++
			}
			assert.NotEqual(t, "⭐ Вариант 4", button.Text)
		}
	}
	assert.Equal(t, 3, pins)
}

func TestVenueDetailKeyboard(t *testing.T) {
	detail := &session.VenueDetail{
		QueryID: "qid",
		Venue:   types.VenueRecord{ID: 1, Type: "node", Name: "Кафе"},
	}

	t.Run("not pinned offers the favorite button", func(t *testing.T) {
		markup := venueDetailKeyboard(detail)
		assert.Len(t, markup.InlineKeyboard, 2)
		assert.Equal(t, "❤️ В избранное", markup.InlineKeyboard[0][0].Text)
	})

	t.Run("pinned hides it", func(t *testing.T) {
		pinned := *detail
		pinned.IsFavorite = true
		markup := venueDetailKeyboard(&pinned)
		assert.Len(t, markup.InlineKeyboard, 1)
	})
}
