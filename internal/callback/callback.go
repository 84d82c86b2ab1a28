// Package callback encodes the references carried in chat choice payloads.
//
// A reference is built once when a keyboard is rendered and decoded once
// when the user presses the button. Decoding is strict: anything that does
// not match the grammar for its kind comes back as a types.InputError, so a
// retried or hand-crafted payload can never desynchronize a session.
//
// Payloads must stay within the transport's 64-byte callback-data limit,
// hence the short kind tags.
package callback

import (
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-leisure-bot/internal/types"
)

type Kind string

const (
	KindCategory       Kind = "cat"  // cat:<category>
	KindPlace          Kind = "pl"   // pl:<qid>:<venue type>:<venue id>
	KindFavPlace       Kind = "fvp"  // fvp:<qid>:<venue type>:<venue id>
	KindMap            Kind = "map"  // map:<venue type>:<venue id>
	KindBackCategories Kind = "bkc"  // bkc
	KindBackPlaces     Kind = "bkp"  // bkp:<qid>
	KindMood           Kind = "mood" // mood:<value>
	KindBudget         Kind = "bud"  // bud:<value>
	KindPeople         Kind = "ppl"  // ppl:<value>
	KindFavActivity    Kind = "fav"  // fav:<qid>:<option index>
	KindVenues         Kind = "ven"  // ven:<qid>
	KindRestart        Kind = "restart"
	KindHistory        Kind = "hist"
	KindCancel         Kind = "cancel"
	KindBack           Kind = "back"
)

const sep = ":"

// Ref is a decoded choice reference. Only the fields meaningful for Kind
// are set.
type Ref struct {
	Kind      Kind
	QueryID   string
	VenueType string
	VenueID   int64
	Option    int
	Category  types.Category
	Value     string
}

func Category(c types.Category) string { return string(KindCategory) + sep + string(c) }

func Place(queryID, venueType string, venueID int64) string {
	return join(string(KindPlace), queryID, venueType, strconv.FormatInt(venueID, 10))
}

func FavPlace(queryID, venueType string, venueID int64) string {
	return join(string(KindFavPlace), queryID, venueType, strconv.FormatInt(venueID, 10))
}

func Map(venueType string, venueID int64) string {
	return join(string(KindMap), venueType, strconv.FormatInt(venueID, 10))
}

func BackCategories() string { return string(KindBackCategories) }

func BackPlaces(queryID string) string { return join(string(KindBackPlaces), queryID) }

func Mood(m types.Mood) string     { return join(string(KindMood), string(m)) }
func Budget(b types.Budget) string { return join(string(KindBudget), string(b)) }
func People(p types.Party) string  { return join(string(KindPeople), string(p)) }

func FavActivity(queryID string, option int) string {
	return join(string(KindFavActivity), queryID, strconv.Itoa(option))
}

func Venues(queryID string) string { return join(string(KindVenues), queryID) }

func join(parts ...string) string { return strings.Join(parts, sep) }

func validVenueType(t string) bool {
	return t == "node" || t == "way" || t == "relation"
}

// Decode parses raw callback data into a Ref. Errors are types.InputError.
func Decode(data string) (Ref, error) {
	if data == "" {
		return Ref{}, types.NewInputError("empty payload", types.ErrBadReference)
	}
	parts := strings.Split(data, sep)
	ref := Ref{Kind: Kind(parts[0])}
	args := parts[1:]

	bad := func(reason string) (Ref, error) {
		return Ref{}, types.NewInputError(reason, types.ErrBadReference)
	}

	switch ref.Kind {
	case KindRestart, KindHistory, KindCancel, KindBack, KindBackCategories:
		if len(args) != 0 {
			return bad("unexpected arguments for " + string(ref.Kind))
		}
	case KindCategory:
		// Category labels contain no separator, so arity is exact.
		if len(args) != 1 {
			return bad("category payload")
		}
		ref.Category = types.Category(args[0])
	case KindMood, KindBudget, KindPeople:
		if len(args) != 1 || args[0] == "" {
			return bad("choice payload")
		}
		ref.Value = args[0]
	case KindBackPlaces, KindVenues:
		if len(args) != 1 || args[0] == "" {
			return bad("query reference")
		}
		ref.QueryID = args[0]
	case KindFavActivity:
		if len(args) != 2 || args[0] == "" {
			return bad("activity reference")
		}
		idx, err := strconv.Atoi(args[1])
		if err != nil || idx < 0 {
			return bad("option index")
		}
		ref.QueryID = args[0]
		ref.Option = idx
	case KindPlace, KindFavPlace:
		if len(args) != 3 || args[0] == "" {
			return bad("venue reference")
		}
		if !validVenueType(args[1]) {
			return bad("venue type")
		}
		id, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return bad("venue id")
		}
		ref.QueryID = args[0]
		ref.VenueType = args[1]
		ref.VenueID = id
	case KindMap:
		if len(args) != 2 {
			return bad("map reference")
		}
		if !validVenueType(args[0]) {
			return bad("venue type")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return bad("venue id")
		}
		ref.VenueType = args[0]
		ref.VenueID = id
	default:
		return bad("unknown payload kind")
	}
	return ref, nil
}
