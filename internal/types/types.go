package types

import "time"

// WeatherBucket is one of the six fixed condition buckets the activity
// catalog is keyed by. Values are the catalog's own (Russian) labels, so a
// bucket can be used directly when assembling a composite key.
type WeatherBucket string

const (
	BucketClear    WeatherBucket = "ясно"
	BucketCloudy   WeatherBucket = "облачно"
	BucketOvercast WeatherBucket = "пасмурно"
	BucketRain     WeatherBucket = "дождь"
	BucketSnow     WeatherBucket = "снег"
	BucketVaried   WeatherBucket = "разнообразно"
)

type Mood string

const (
	MoodActive  Mood = "активное"
	MoodRelaxed Mood = "расслабленное"
	MoodExtreme Mood = "экстремальное"
)

// Moods lists the valid choices in presentation order.
var Moods = []Mood{MoodActive, MoodRelaxed, MoodExtreme}

func (m Mood) Valid() bool {
	return m == MoodActive || m == MoodRelaxed || m == MoodExtreme
}

type Budget string

const (
	BudgetLow       Budget = "низкий"
	BudgetMedium    Budget = "средний"
	BudgetUnlimited Budget = "неограниченный"
)

var Budgets = []Budget{BudgetLow, BudgetMedium, BudgetUnlimited}

func (b Budget) Valid() bool {
	return b == BudgetLow || b == BudgetMedium || b == BudgetUnlimited
}

// Party is the group-size attribute of a recommendation query.
type Party string

const (
	PartySolo  Party = "один"
	PartyPair  Party = "пара"
	PartyGroup Party = "компания"
)

var Parties = []Party{PartySolo, PartyPair, PartyGroup}

func (p Party) Valid() bool {
	return p == PartySolo || p == PartyPair || p == PartyGroup
}

// Category is a venue search category offered to the user.
type Category string

const (
	CategoryCafe       Category = "Кафе"
	CategoryRestaurant Category = "Рестораны"
	CategoryCinema     Category = "Кинотеатры"
	CategoryPark       Category = "Парки"
	CategoryMuseum     Category = "Музеи"
	CategoryMall       Category = "Торговые центры"
)

var Categories = []Category{
	CategoryCafe,
	CategoryRestaurant,
	CategoryCinema,
	CategoryPark,
	CategoryMuseum,
	CategoryMall,
}

// WeatherSnapshot is the normalized result of a weather lookup for a city.
type WeatherSnapshot struct {
	Bucket      WeatherBucket `json:"bucket"`
	Temp        float64       `json:"temp"`
	Description string        `json:"description"`
	Humidity    int           `json:"humidity"`
	Wind        float64       `json:"wind"`
}

// VenueRecord is a single point of interest returned by the POI provider.
// Identity is the (ID, Type) pair: the provider's id space is only unique
// within a geometry type.
type VenueRecord struct {
	ID      int64    `json:"id"`
	Type    string   `json:"type"` // node | way | relation
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// FavoriteVenue is the shape persisted when a venue is pinned: the record
// plus the context it was found in.
type FavoriteVenue struct {
	VenueRecord
	Category Category `json:"category"`
	City     string   `json:"city"`
}

// FavoriteQuery is a pinned recommendation query.
type FavoriteQuery struct {
	City    string        `json:"city"`
	Weather WeatherBucket `json:"weather"`
	Mood    Mood          `json:"mood"`
}

// Favorites holds a user's three pinned lists in insertion order.
type Favorites struct {
	Venues     []FavoriteVenue `json:"venues"`
	Activities []string        `json:"activities"`
	Queries    []FavoriteQuery `json:"queries"`
}

func (f Favorites) Empty() bool {
	return len(f.Venues) == 0 && len(f.Activities) == 0 && len(f.Queries) == 0
}

// FavoriteKind selects one of the three favorites lists.
type FavoriteKind string

const (
	KindVenues     FavoriteKind = "venues"
	KindActivities FavoriteKind = "activities"
	KindQueries    FavoriteKind = "queries"
)

// HistoryEntry records one completed recommendation flow. Entries are
// immutable once written and are never deduplicated.
type HistoryEntry struct {
	UserID     int64         `json:"user_id"`
	Username   string        `json:"username"`
	Timestamp  time.Time     `json:"timestamp"`
	City       string        `json:"city"`
	Weather    WeatherBucket `json:"weather"`
	Temp       float64       `json:"temp"`
	Mood       Mood          `json:"mood"`
	Budget     Budget        `json:"budget"`
	People     Party         `json:"people"`
	Activities []string      `json:"activities"`
}
