package bot

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-leisure-bot/internal/session"
	"github.com/FACorreiaa/go-leisure-bot/internal/types"
)

// Pure projection of session state and query results into chat texts.
// Nothing in this file holds state.

var weatherIcons = map[types.WeatherBucket]string{
	types.BucketClear:    "☀️",
	types.BucketCloudy:   "⛅️",
	types.BucketOvercast: "☁️",
	types.BucketRain:     "🌧",
	types.BucketSnow:     "❄️",
	types.BucketVaried:   "🌈",
}

var moodIcons = map[types.Mood]string{
	types.MoodActive:  "🏃‍♂️",
	types.MoodRelaxed: "🧘‍♀️",
	types.MoodExtreme: "⚡",
}

var budgetIcons = map[types.Budget]string{
	types.BudgetLow:       "💰",
	types.BudgetMedium:    "💵",
	types.BudgetUnlimited: "💎",
}

var partyIcons = map[types.Party]string{
	types.PartySolo:  "👤",
	types.PartyPair:  "👫",
	types.PartyGroup: "👪",
}

const (
	buttonActivities = "🎯 Найти занятия"
	buttonPlaces     = "🏢 Найти заведения"
	buttonFavorites  = "⭐ Избранное"
	buttonHistory    = "📜 История"

	promptActivityCity = "Введите название вашего города:"
	promptPlacesCity   = "В каком городе ищем заведения?"
	promptCategory     = "Выберите категорию:"
)

func welcomeText() string {
	return "Добро пожаловать в АнТиСкУкА БОТ (OSM версия)!\n\n" +
		"Я помогу найти:\n" +
		"🎯 - Интересные занятия по погоде и настроению\n" +
		"🏢 - Лучшие заведения из OpenStreetMap\n\n" +
		"Используйте меню или кнопки ниже:"
}

func weatherText(p *session.WeatherPrompt) string {
	return fmt.Sprintf(
		"%s Погода в %s:\n"+
			"• Состояние: %s\n"+
			"• Температура: %.1f°C\n"+
			"• Влажность: %d%%\n"+
			"• Ветер: %.1f м/с\n\n"+
			"Какое у вас настроение?",
		weatherIcons[p.Snapshot.Bucket], p.City,
		p.Snapshot.Description, p.Snapshot.Temp, p.Snapshot.Humidity, p.Snapshot.Wind,
	)
}

func weatherErrorText(city string) string {
	return fmt.Sprintf(
		"%s Ошибка!\nНе удалось получить данные для города %s.\nПопробуйте ввести другой город:",
		weatherIcons[types.BucketVaried], city,
	)
}

func recommendationText(rec *session.Recommendation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Рекомендации для %s:\n\n", rec.City)
	fmt.Fprintf(&b, "%s Погода: %s\n", weatherIcons[rec.Weather], rec.Weather)
	fmt.Fprintf(&b, "%s Настроение: %s\n", moodIcons[rec.Mood], rec.Mood)
	fmt.Fprintf(&b, "%s Бюджет: %s\n", budgetIcons[rec.Budget], rec.Budget)
	fmt.Fprintf(&b, "%s Участники: %s\n\n", partyIcons[rec.People], rec.People)
	b.WriteString("Варианты досуга:\n")
	for i, option := range rec.Options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, option)
	}
	return b.String()
}

func chosenText(previous, icon, value string) string {
	return fmt.Sprintf("%s\n\nВыбрано: %s %s", previous, icon, capitalize(value))
}

func placesListText(r *session.VenueResults) string {
	return fmt.Sprintf("🏢 %s в %s (найдено %d):", r.Category, r.City, len(r.Places))
}

func noPlacesText(r *session.VenueResults) string {
	return fmt.Sprintf("Не найдено %s в %s", strings.ToLower(string(r.Category)), r.City)
}

func venueDetailText(d *session.VenueDetail) string {
	return fmt.Sprintf(
		"🏢 <b>%s</b>\n📍 Адрес: %s\n🗺️ Категория: %s\n",
		d.Venue.Name, d.Venue.Address, d.Category,
	)
}

func historyText(entries []types.HistoryEntry) string {
	var b strings.Builder
	b.WriteString("📜 Ваша история запросов:\n\n")
	// Last five entries, oldest of them first.
	start := 0
	if len(entries) > 5 {
		start = len(entries) - 5
	}
	for i, entry := range entries[start:] {
		fmt.Fprintf(&b, "%d. %s\n", i+1, entry.Timestamp.Format("2006-01-02 15:04"))
		fmt.Fprintf(&b, "🏙️ Город: %s\n", entry.City)
		fmt.Fprintf(&b, "%s Погода: %s (%.1f°C)\n", weatherIcons[entry.Weather], entry.Weather, entry.Temp)
		fmt.Fprintf(&b, "%s Настроение: %s\n", moodIcons[entry.Mood], entry.Mood)
		fmt.Fprintf(&b, "%s Бюджет: %s\n", budgetIcons[entry.Budget], entry.Budget)
		fmt.Fprintf(&b, "%s Участники: %s\n", partyIcons[entry.People], entry.People)
		b.WriteString("Варианты:\n")
		for j, activity := range entry.Activities {
			if j == 3 {
				break
			}
			fmt.Fprintf(&b, "   %d. %s\n", j+1, activity)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func favoritesText(f *types.Favorites) string {
	var b strings.Builder
	b.WriteString("⭐ <b>Ваше избранное</b>\n\n")
	if len(f.Venues) > 0 {
		b.WriteString("🏢 <b>Заведения:</b>\n")
		for _, venue := range f.Venues {
			fmt.Fprintf(&b, "- %s (%s)\n", venue.Name, venue.Address)
		}
		b.WriteString("\n")
	}
	if len(f.Activities) > 0 {
		b.WriteString("🎯 <b>Активности:</b>\n")
		for _, activity := range f.Activities {
			fmt.Fprintf(&b, "- %s\n", activity)
		}
		b.WriteString("\n")
	}
	if len(f.Queries) > 0 {
		b.WriteString("🔍 <b>Запросы:</b>\n")
		for _, query := range f.Queries {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", query.City, query.Weather, query.Mood)
		}
	}
	return b.String()
}

func mapURL(lat, lon float64) string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%f&mlon=%f#map=18/%f/%f", lat, lon, lat, lon)
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
