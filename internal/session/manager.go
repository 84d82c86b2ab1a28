package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-leisure-bot/app/observability/metrics"
	"github.com/FACorreiaa/go-leisure-bot/internal/api/catalog"
	"github.com/FACorreiaa/go-leisure-bot/internal/api/favorites"
	"github.com/FACorreiaa/go-leisure-bot/internal/api/history"
	"github.com/FACorreiaa/go-leisure-bot/internal/api/places"
	"github.com/FACorreiaa/go-leisure-bot/internal/api/weather"
	"github.com/FACorreiaa/go-leisure-bot/internal/types"
)

// Manager owns one session record per active user and drives both
// conversation flows. Sessions are created on first touch and never expire;
// a user's record is mutated only while that user's lock is held, so
// near-simultaneous events from one user serialize without blocking anyone
// else.
type Manager struct {
	logger    *slog.Logger
	weather   weather.Service
	places    places.Service
	catalog   catalog.Repository
	favorites favorites.Repository
	history   history.Repository

	mu       sync.Mutex
	sessions map[int64]*entry
}

type entry struct {
	mu      sync.Mutex
	session Session
}

func NewManager(
	weatherSvc weather.Service,
	placesSvc places.Service,
	catalogRepo catalog.Repository,
	favoritesRepo favorites.Repository,
	historyRepo history.Repository,
	logger *slog.Logger,
) *Manager {
	metrics.InitAppMetrics()
	return &Manager{
		logger:    logger,
		weather:   weatherSvc,
		places:    placesSvc,
		catalog:   catalogRepo,
		favorites: favoritesRepo,
		history:   historyRepo,
		sessions:  make(map[int64]*entry),
	}
}

// entryFor returns the user's session entry, creating it on first touch.
func (m *Manager) entryFor(ctx context.Context, userID int64) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[userID]
	if !ok {
		e = &entry{}
		m.sessions[userID] = e
		metrics.Get().ActiveSessions.Add(ctx, 1)
	}
	return e
}

// withSession runs fn holding the user's lock. fn must leave the session in
// a previously-valid state when it returns an error.
func (m *Manager) withSession(ctx context.Context, userID int64, fn func(*Session) error) error {
	e := m.entryFor(ctx, userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(&e.session)
}

// Snapshot returns a copy of the user's session for rendering.
func (m *Manager) Snapshot(ctx context.Context, userID int64) Session {
	e := m.entryFor(ctx, userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// --- activity flow -------------------------------------------------------

// StartActivities begins the recommendation flow: the next plain message is
// taken as the city name.
func (m *Manager) StartActivities(ctx context.Context, userID int64) {
	_ = m.withSession(ctx, userID, func(s *Session) error {
		s.Step = StepAwaitingCity
		s.Selections = nil
		return nil
	})
}

// SetCity resolves the city's weather and advances to the mood question.
// On lookup failure the flow stays at the city question so the user can
// retry with another city.
func (m *Manager) SetCity(ctx context.Context, userID int64, city string) (*WeatherPrompt, error) {
	ctx, span := otel.Tracer("SessionManager").Start(ctx, "SetCity", trace.WithAttributes(
		attribute.Int64("user_id", userID),
	))
	defer span.End()

	city = strings.TrimSpace(city)
	var prompt *WeatherPrompt
	err := m.withSession(ctx, userID, func(s *Session) error {
		snapshot, err := m.weather.Lookup(ctx, city)
		if err != nil {
			s.Step = StepAwaitingCity
			return err
		}
		s.City = city
		s.Selections = &Selections{Weather: snapshot.Bucket, Temp: snapshot.Temp}
		s.Step = StepAwaitingMood
		prompt = &WeatherPrompt{City: city, Snapshot: *snapshot}
		return nil
	})
	if err != nil {
		m.logger.WarnContext(ctx, "Weather lookup failed, re-prompting for city",
			slog.String("city", city), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Weather lookup failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "City accepted")
	return prompt, nil
}

// SetMood records the mood choice. Anything outside the fixed choice set,
// or a choice arriving in the wrong state, is rejected without state change.
func (m *Manager) SetMood(ctx context.Context, userID int64, value string) error {
	return m.withSession(ctx, userID, func(s *Session) error {
		if s.Step != StepAwaitingMood || s.Selections == nil {
			return types.NewInputError("mood choice out of context", types.ErrStaleQuery)
		}
		mood := types.Mood(value)
		if !mood.Valid() {
			return types.NewInputError("unknown mood", types.ErrBadReference)
		}
		s.Selections.Mood = mood
		s.Step = StepAwaitingBudget
		return nil
	})
}

// SetBudget records the budget choice.
func (m *Manager) SetBudget(ctx context.Context, userID int64, value string) error {
	return m.withSession(ctx, userID, func(s *Session) error {
		if s.Step != StepAwaitingBudget || s.Selections == nil {
			return types.NewInputError("budget choice out of context", types.ErrStaleQuery)
		}
		budget := types.Budget(value)
		if !budget.Valid() {
			return types.NewInputError("unknown budget", types.ErrBadReference)
		}
		s.Selections.Budget = budget
		s.Step = StepAwaitingPeople
		return nil
	})
}

// SetPeople records the final choice, assembles the recommendation from the
// catalog, mints a fresh query token, stores the live result and appends a
// history entry. The session is only mutated once the history write
// succeeded.
func (m *Manager) SetPeople(ctx context.Context, userID int64, value, username string) (*Recommendation, error) {
	ctx, span := otel.Tracer("SessionManager").Start(ctx, "SetPeople", trace.WithAttributes(
		attribute.Int64("user_id", userID),
	))
	defer span.End()

	var rec *Recommendation
	err := m.withSession(ctx, userID, func(s *Session) error {
		if s.Step != StepAwaitingPeople || s.Selections == nil {
			return types.NewInputError("people choice out of context", types.ErrStaleQuery)
		}
		people := types.Party(value)
		if !people.Valid() {
			return types.NewInputError("unknown group size", types.ErrBadReference)
		}

		sel := *s.Selections
		options := m.catalog.Lookup(sel.Weather, sel.Mood, sel.Budget, people)

		entry := types.HistoryEntry{
			UserID:     userID,
			Username:   username,
			Timestamp:  time.Now(),
			City:       s.City,
			Weather:    sel.Weather,
			Temp:       sel.Temp,
			Mood:       sel.Mood,
			Budget:     sel.Budget,
			People:     people,
			Activities: options,
		}
		if err := m.history.Append(ctx, entry); err != nil {
			return err
		}

		s.Selections.People = people
		s.LiveActivities = &ActivityResult{QueryID: uuid.NewString(), Options: options}
		s.Step = StepNone

		rec = &Recommendation{
			QueryID: s.LiveActivities.QueryID,
			City:    s.City,
			Weather: sel.Weather,
			Temp:    sel.Temp,
			Mood:    sel.Mood,
			Budget:  sel.Budget,
			People:  people,
			Options: options,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Flow completion failed")
		return nil, err
	}
	m.logger.InfoContext(ctx, "Recommendation flow completed",
		slog.Int64("user_id", userID), slog.String("query_id", rec.QueryID))
	span.SetStatus(codes.Ok, "Recommendation assembled")
	return rec, nil
}

// FavoriteActivity pins one option of the live recommendation set. The
// inbound token must equal the live token and the index must be in bounds;
// anything else is rejected without touching favorites.
func (m *Manager) FavoriteActivity(ctx context.Context, userID int64, queryID string, idx int) (bool, string, error) {
	var added bool
	var activity string
	err := m.withSession(ctx, userID, func(s *Session) error {
		if s.LiveActivities == nil || s.LiveActivities.QueryID != queryID {
			return types.NewInputError("recommendation set superseded", types.ErrStaleQuery)
		}
		if idx < 0 || idx >= len(s.LiveActivities.Options) {
			return types.NewInputError("option index not in live set", types.ErrOutOfRange)
		}
		activity = s.LiveActivities.Options[idx]
		var err error
		added, err = m.favorites.AddActivity(ctx, userID, activity)
		return err
	})
	return added, activity, err
}

// ShowVenuesForActivities pivots a live recommendation into the venue flow
// for the same city. Mirrors the restart semantics of the flow: everything
// except the city is dropped, so earlier tokens become unresolvable.
func (m *Manager) ShowVenuesForActivities(ctx context.Context, userID int64, queryID string) (string, error) {
	var city string
	err := m.withSession(ctx, userID, func(s *Session) error {
		if s.City == "" || s.LiveActivities == nil || s.LiveActivities.QueryID != queryID {
			return types.NewInputError("recommendation set superseded", types.ErrStaleQuery)
		}
		city = s.City
		*s = Session{City: city, Step: StepBrowsingCategory}
		return nil
	})
	return city, err
}

// --- venue flow ----------------------------------------------------------

// StartPlaces begins the venue flow: the next plain message is taken as the
// city name.
func (m *Manager) StartPlaces(ctx context.Context, userID int64) {
	_ = m.withSession(ctx, userID, func(s *Session) error {
		s.Step = StepAwaitingPlaces
		return nil
	})
}

// SetPlacesCity stores the city and advances to the category question.
func (m *Manager) SetPlacesCity(ctx context.Context, userID int64, city string) {
	_ = m.withSession(ctx, userID, func(s *Session) error {
		s.City = strings.TrimSpace(city)
		s.Step = StepBrowsingCategory
		return nil
	})
}

// SearchVenues runs the POI search for the session's city. A non-empty
// result becomes the live venue set under a fresh token; an empty result is
// a valid terminal outcome and replaces nothing.
func (m *Manager) SearchVenues(ctx context.Context, userID int64, category types.Category) (*VenueResults, error) {
	ctx, span := otel.Tracer("SessionManager").Start(ctx, "SearchVenues", trace.WithAttributes(
		attribute.Int64("user_id", userID),
		attribute.String("category", string(category)),
	))
	defer span.End()

	var results *VenueResults
	err := m.withSession(ctx, userID, func(s *Session) error {
		if s.City == "" {
			return types.NewInputError("no city for venue search", types.ErrNoSession)
		}
		found, err := m.places.Search(ctx, s.City, category)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			results = &VenueResults{City: s.City, Category: category}
			return nil
		}
		s.LiveQuery = &VenueResult{
			QueryID:  uuid.NewString(),
			Category: category,
			Places:   found,
		}
		s.Step = StepBrowsingCategory
		results = &VenueResults{
			QueryID:  s.LiveQuery.QueryID,
			City:     s.City,
			Category: category,
			Places:   found,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Venue search failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("results.count", len(results.Places)))
	span.SetStatus(codes.Ok, "Venue search completed")
	return results, nil
}

// VenueDetails resolves one venue of the live result set by its (id, type)
// identity, never by position, since order is only stable within one
// lookup's lifetime.
func (m *Manager) VenueDetails(ctx context.Context, userID int64, queryID, venueType string, venueID int64) (*VenueDetail, error) {
	var detail *VenueDetail
	err := m.withSession(ctx, userID, func(s *Session) error {
		venue, err := s.liveVenue(queryID, venueType, venueID)
		if err != nil {
			return err
		}
		detail = &VenueDetail{
			QueryID:  queryID,
			City:     s.City,
			Category: s.LiveQuery.Category,
			Venue:    *venue,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// A favorites read failure only degrades the detail view; the venue is
	// still shown as not pinned.
	if record, err := m.favorites.Get(ctx, userID); err == nil {
		for _, v := range record.Venues {
			if v.ID == venueID && v.Type == venueType {
				detail.IsFavorite = true
				break
			}
		}
	} else {
		m.logger.WarnContext(ctx, "Failed to check favorite state", slog.Any("error", err))
	}
	return detail, nil
}

// BackToPlaces re-renders the live venue set addressed by its token. No
// re-fetch happens; a mismatched token is rejected as stale.
func (m *Manager) BackToPlaces(ctx context.Context, userID int64, queryID string) (*VenueResults, error) {
	var results *VenueResults
	err := m.withSession(ctx, userID, func(s *Session) error {
		if s.LiveQuery == nil || s.LiveQuery.QueryID != queryID {
			return types.NewInputError("venue set superseded", types.ErrStaleQuery)
		}
		results = &VenueResults{
			QueryID:  s.LiveQuery.QueryID,
			City:     s.City,
			Category: s.LiveQuery.Category,
			Places:   s.LiveQuery.Places,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// FavoriteVenue pins a venue from the live result set. Re-pinning an
// already pinned venue is a no-op reported as added=false.
func (m *Manager) FavoriteVenue(ctx context.Context, userID int64, queryID, venueType string, venueID int64) (bool, *VenueDetail, error) {
	var added bool
	var detail *VenueDetail
	err := m.withSession(ctx, userID, func(s *Session) error {
		venue, err := s.liveVenue(queryID, venueType, venueID)
		if err != nil {
			return err
		}
		favorite := types.FavoriteVenue{
			VenueRecord: *venue,
			Category:    s.LiveQuery.Category,
			City:        s.City,
		}
		added, err = m.favorites.AddVenue(ctx, userID, favorite)
		if err != nil {
			return err
		}
		detail = &VenueDetail{
			QueryID:    queryID,
			City:       s.City,
			Category:   s.LiveQuery.Category,
			Venue:      *venue,
			IsFavorite: true,
		}
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	return added, detail, nil
}

// MapCoordinates resolves a venue's coordinates for a map link, first from
// the live result set, then from pinned favorites.
func (m *Manager) MapCoordinates(ctx context.Context, userID int64, venueType string, venueID int64) (lat, lon float64, err error) {
	var found *types.VenueRecord
	_ = m.withSession(ctx, userID, func(s *Session) error {
		if s.LiveQuery == nil {
			return nil
		}
		for i := range s.LiveQuery.Places {
			p := &s.LiveQuery.Places[i]
			if p.ID == venueID && p.Type == venueType {
				record := *p
				found = &record
				return nil
			}
		}
		return nil
	})
	if found == nil {
		favorite, ferr := m.favorites.FindVenue(ctx, userID, venueType, venueID)
		if ferr != nil {
			return 0, 0, types.NewInputError("venue coordinates unavailable", types.ErrNotFound)
		}
		found = &favorite.VenueRecord
	}
	if found.Lat == nil || found.Lon == nil {
		return 0, 0, types.NewInputError("venue coordinates unavailable", types.ErrNotFound)
	}
	return *found.Lat, *found.Lon, nil
}

// liveVenue validates the token against the live venue set and resolves a
// record by identity. Callers hold the session lock.
func (s *Session) liveVenue(queryID, venueType string, venueID int64) (*types.VenueRecord, error) {
	if s.LiveQuery == nil || s.LiveQuery.QueryID != queryID {
		return nil, types.NewInputError("venue set superseded", types.ErrStaleQuery)
	}
	for i := range s.LiveQuery.Places {
		p := &s.LiveQuery.Places[i]
		if p.ID == venueID && p.Type == venueType {
			return p, nil
		}
	}
	return nil, types.NewInputError("venue not in live set", types.ErrNotFound)
}

// --- shared --------------------------------------------------------------

// Cancel resets the in-progress flow, keeping the city and the live result
// sets.
func (m *Manager) Cancel(ctx context.Context, userID int64) {
	_ = m.withSession(ctx, userID, func(s *Session) error {
		s.cleanup()
		return nil
	})
	m.logger.DebugContext(ctx, "Session selections cleared", slog.Int64("user_id", userID))
}

// Favorites returns the user's pinned lists.
func (m *Manager) Favorites(ctx context.Context, userID int64) (*types.Favorites, error) {
	return m.favorites.Get(ctx, userID)
}

// History returns the user's completed flows, newest last.
func (m *Manager) History(ctx context.Context, userID int64) ([]types.HistoryEntry, error) {
	return m.history.List(ctx, userID)
}
