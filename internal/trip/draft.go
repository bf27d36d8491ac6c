package trip

import (
	"github.com/google/uuid"
)

// Draft editing operations: the term list, itinerary days and departure
// options. Items carry stable IDs so removals and updates address an
// item rather than an array position; lookups fall back to index for
// payloads produced by older dashboard builds that never assigned IDs.

func newTermID() string      { return "trm_" + uuid.New().String()[:22] }
func newDayID() string       { return "day_" + uuid.New().String()[:22] }
func newDepartureID() string { return "dep_" + uuid.New().String()[:22] }
func newAddonID() string     { return "adn_" + uuid.New().String()[:22] }

// NewDefaultTerm builds the term appended by the dashboard's "add term"
// action, shaped by the trip type. Group terms start with capacity 50
// and a full bracket skeleton; individual terms start empty. Corporate
// trips have no terms, so nil is returned.
func NewDefaultTerm(tripType TripType) *Term {
	switch {
	case tripType.IsGroup():
		g := GroupTerm{
			ID:            newTermID(),
			Status:        TermAvailable,
			TotalCapacity: 50,
		}
		for _, min := range ParticipantBrackets {
			zero := 0
			b := Bracket{
				MinParticipants:     min,
				FreeSpotsPerBooking: &zero,
				Prices:              make([]PriceRow, len(Voivodeships)),
			}
			for j, v := range Voivodeships {
				b.Prices[j] = PriceRow{Voivodeship: v}
			}
			g.Brackets = append(g.Brackets, b)
		}
		return &Term{Group: &g}
	case tripType == TypeIndividual:
		return &Term{Individual: &IndividualTerm{
			ID:            newTermID(),
			Status:        TermAvailable,
			TotalCapacity: 0,
			Reserved:      0,
		}}
	default:
		return nil
	}
}

// AddTerm appends a default term for the trip's type. No-op for
// corporate trips.
func (t *Trip) AddTerm() {
	term := NewDefaultTerm(t.TripType)
	if term == nil {
		return
	}
	t.Terms = append(t.Terms, *term)
}

// RemoveTerm deletes the term with the given ID; when id is empty the
// index is used instead.
func (t *Trip) RemoveTerm(id string, idx int) bool {
	i := t.termIndex(id, idx)
	if i < 0 {
		return false
	}
	t.Terms = append(t.Terms[:i], t.Terms[i+1:]...)
	return true
}

// UpdateTerm replaces the term with the given ID (or at idx when id is
// empty) with the updated value.
func (t *Trip) UpdateTerm(id string, idx int, updated Term) bool {
	i := t.termIndex(id, idx)
	if i < 0 {
		return false
	}
	t.Terms[i] = updated
	return true
}

func (t *Trip) termIndex(id string, idx int) int {
	if id != "" {
		for i, term := range t.Terms {
			if termID(term) == id {
				return i
			}
		}
		return -1
	}
	if idx < 0 || idx >= len(t.Terms) {
		return -1
	}
	return idx
}

func termID(term Term) string {
	switch {
	case term.Individual != nil:
		return term.Individual.ID
	case term.Group != nil:
		return term.Group.ID
	}
	return ""
}

// AddItineraryDay appends a fresh day numbered after the current last.
func (t *Trip) AddItineraryDay() {
	t.ItineraryDays = append(t.ItineraryDays, ItineraryDay{
		ID:        newDayID(),
		DayNumber: len(t.ItineraryDays) + 1,
	})
}

// RemoveItineraryDay removes a day by ID, index fallback as above.
func (t *Trip) RemoveItineraryDay(id string, idx int) bool {
	i := -1
	if id != "" {
		for j := range t.ItineraryDays {
			if t.ItineraryDays[j].ID == id {
				i = j
				break
			}
		}
	} else if idx >= 0 && idx < len(t.ItineraryDays) {
		i = idx
	}
	if i < 0 {
		return false
	}
	t.ItineraryDays = append(t.ItineraryDays[:i], t.ItineraryDays[i+1:]...)
	return true
}

// AssignIDs gives stable IDs to every nested item that is missing one.
// Drafts arriving from the dashboard's add flow are ID-less; assigning
// here keeps later by-ID edits safe across reorders.
func (t *Trip) AssignIDs() {
	for i := range t.Terms {
		switch {
		case t.Terms[i].Individual != nil && t.Terms[i].Individual.ID == "":
			t.Terms[i].Individual.ID = newTermID()
		case t.Terms[i].Group != nil && t.Terms[i].Group.ID == "":
			t.Terms[i].Group.ID = newTermID()
		}
	}
	for i := range t.ItineraryDays {
		if t.ItineraryDays[i].ID == "" {
			t.ItineraryDays[i].ID = newDayID()
		}
	}
	for i := range t.DepartureOptions {
		if t.DepartureOptions[i].ID == "" {
			t.DepartureOptions[i].ID = newDepartureID()
		}
	}
	for i := range t.Addons {
		if t.Addons[i].ID == "" {
			t.Addons[i].ID = newAddonID()
		}
	}
}
