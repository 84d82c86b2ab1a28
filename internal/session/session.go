package session

import "github.com/FACorreiaa/go-leisure-bot/internal/types"

// Step is the state-machine state a session is currently in. StepNone means
// no flow is awaiting input.
type Step string

const (
	StepNone             Step = ""
	StepAwaitingCity     Step = "awaiting_activity_city"
	StepAwaitingMood     Step = "awaiting_mood"
	StepAwaitingBudget   Step = "awaiting_budget"
	StepAwaitingPeople   Step = "awaiting_people"
	StepAwaitingPlaces   Step = "awaiting_places_city"
	StepBrowsingCategory Step = "browsing_places_category"
)

// Selections accumulates the attributes of an in-progress activity flow,
// one per step. Discarded wholesale on cancel so a cancelled flow can never
// resume with stale values.
type Selections struct {
	Weather types.WeatherBucket
	Temp    float64
	Mood    types.Mood
	Budget  types.Budget
	People  types.Party
}

// ActivityResult is the live recommendation set. QueryID is minted fresh
// each time a flow completes; older tokens become permanently unresolvable.
type ActivityResult struct {
	QueryID string
	Options []string
}

// VenueResult is the live venue search result, addressable by its token
// until the next search overwrites it.
type VenueResult struct {
	QueryID  string
	Category types.Category
	Places   []types.VenueRecord
}

// Session is one user's mutable conversation record. The two flows keep
// their data in separate typed sub-records; a field that is nil was never
// set for the flow currently running.
type Session struct {
	City           string
	Step           Step
	Selections     *Selections
	LiveActivities *ActivityResult
	LiveQuery      *VenueResult
}

// cleanup keeps the city and the live result sets and discards accumulated
// selections.
func (s *Session) cleanup() {
	s.Selections = nil
}

// WeatherPrompt is returned when an activity flow passes the weather
// lookup: the full snapshot for rendering plus the city it was taken in.
type WeatherPrompt struct {
	City     string
	Snapshot types.WeatherSnapshot
}

// Recommendation is the assembled result of a completed activity flow.
type Recommendation struct {
	QueryID string
	City    string
	Weather types.WeatherBucket
	Temp    float64
	Mood    types.Mood
	Budget  types.Budget
	People  types.Party
	Options []string
}

// VenueResults is the renderable view of a venue search.
type VenueResults struct {
	QueryID  string
	City     string
	Category types.Category
	Places   []types.VenueRecord
}

// VenueDetail is the renderable view of one venue from a live result set.
type VenueDetail struct {
	QueryID    string
	City       string
	Category   types.Category
	Venue      types.VenueRecord
	IsFavorite bool
}
