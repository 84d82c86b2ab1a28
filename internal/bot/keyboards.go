package bot

import (
	"strconv"

	"github.com/FACorreiaa/go-leisure-bot/internal/callback"
	"github.com/FACorreiaa/go-leisure-bot/internal/session"
	"github.com/FACorreiaa/go-leisure-bot/internal/types"
)

func mainKeyboard() *ReplyKeyboardMarkup {
	return &ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]KeyboardButton{
			{{Text: buttonActivities}, {Text: buttonPlaces}},
			{{Text: buttonFavorites}, {Text: buttonHistory}},
		},
	}
}

// choiceRows lays buttons out two per row, the way the source bot did.
func choiceRows(buttons []InlineKeyboardButton) [][]InlineKeyboardButton {
	var rows [][]InlineKeyboardButton
	for i := 0; i < len(buttons); i += 2 {
		end := i + 2
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[i:end])
	}
	return rows
}

func backCancelButtons() []InlineKeyboardButton {
	return []InlineKeyboardButton{
		{Text: "🔙 Назад", CallbackData: string(callback.KindBack)},
		{Text: "❌ Отмена", CallbackData: string(callback.KindCancel)},
	}
}

func moodKeyboard() *InlineKeyboardMarkup {
	var buttons []InlineKeyboardButton
	for _, mood := range types.Moods {
		buttons = append(buttons, InlineKeyboardButton{
			Text:         moodIcons[mood] + " " + capitalize(string(mood)),
			CallbackData: callback.Mood(mood),
		})
	}
	buttons = append(buttons, backCancelButtons()...)
	return &InlineKeyboardMarkup{InlineKeyboard: choiceRows(buttons)}
}

func budgetKeyboard() *InlineKeyboardMarkup {
	var buttons []InlineKeyboardButton
	for _, budget := range types.Budgets {
		buttons = append(buttons, InlineKeyboardButton{
			Text:         budgetIcons[budget] + " " + capitalize(string(budget)),
			CallbackData: callback.Budget(budget),
		})
	}
	buttons = append(buttons, backCancelButtons()...)
	return &InlineKeyboardMarkup{InlineKeyboard: choiceRows(buttons)}
}

func peopleKeyboard() *InlineKeyboardMarkup {
	var buttons []InlineKeyboardButton
	for _, party := range types.Parties {
		buttons = append(buttons, InlineKeyboardButton{
			Text:         partyIcons[party] + " " + capitalize(string(party)),
			CallbackData: callback.People(party),
		})
	}
	buttons = append(buttons, backCancelButtons()...)
	return &InlineKeyboardMarkup{InlineKeyboard: choiceRows(buttons)}
}

func categoriesKeyboard() *InlineKeyboardMarkup {
	var buttons []InlineKeyboardButton
	for _, category := range types.Categories {
		buttons = append(buttons, InlineKeyboardButton{
			Text:         string(category),
			CallbackData: callback.Category(category),
		})
	}
	return &InlineKeyboardMarkup{InlineKeyboard: choiceRows(buttons)}
}

// placesKeyboard lists one venue per row plus a back row. References carry
// the result set's query token and the venue's (type, id) identity.
func placesKeyboard(r *session.VenueResults) *InlineKeyboardMarkup {
	var rows [][]InlineKeyboardButton
	for _, place := range r.Places {
		rows = append(rows, []InlineKeyboardButton{{
			Text:         "🏢 " + place.Name,
			CallbackData: callback.Place(r.QueryID, place.Type, place.ID),
		}})
	}
	rows = append(rows, []InlineKeyboardButton{{
		Text:         "🔙 Назад",
		CallbackData: callback.BackCategories(),
	}})
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}

func venueDetailKeyboard(d *session.VenueDetail) *InlineKeyboardMarkup {
	var rows [][]InlineKeyboardButton
	if !d.IsFavorite {
		rows = append(rows, []InlineKeyboardButton{{
			Text:         "❤️ В избранное",
			CallbackData: callback.FavPlace(d.QueryID, d.Venue.Type, d.Venue.ID),
		}})
	}
	rows = append(rows, []InlineKeyboardButton{
		{Text: "📍 На карте", CallbackData: callback.Map(d.Venue.Type, d.Venue.ID)},
		{Text: "🔙 Назад", CallbackData: callback.BackPlaces(d.QueryID)},
	})
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}

// recommendationKeyboard offers restart/history/venues plus a pin button
// for each of the first three options.
func recommendationKeyboard(rec *session.Recommendation) *InlineKeyboardMarkup {
	buttons := []InlineKeyboardButton{
		{Text: "🔄 Новый поиск", CallbackData: string(callback.KindRestart)},
		{Text: "📜 История", CallbackData: string(callback.KindHistory)},
		{Text: "🏢 Показать заведения", CallbackData: callback.Venues(rec.QueryID)},
	}
	for i := range rec.Options {
		if i == 3 {
			break
		}
		buttons = append(buttons, InlineKeyboardButton{
			Text:         "⭐ Вариант " + strconv.Itoa(i+1),
			CallbackData: callback.FavActivity(rec.QueryID, i),
		})
	}
	return &InlineKeyboardMarkup{InlineKeyboard: choiceRows(buttons)}
}
