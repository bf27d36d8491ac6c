package trip_test

import (
	"strings"
	"testing"

	"github.com/tripdesk/tripdesk/internal/trip"
)

func TestNewDefaultTerm_Group(t *testing.T) {
	term := trip.NewDefaultTerm(trip.TypeSchool)
	if term == nil || term.Group == nil {
		t.Fatal("expected a group term")
	}

	g := term.Group
	if !strings.HasPrefix(g.ID, "trm_") {
		t.Errorf("expected term ID prefix 'trm_', got %q", g.ID)
	}
	if g.TotalCapacity != 50 {
		t.Errorf("expected default capacity 50, got %d", g.TotalCapacity)
	}
	if g.Status != trip.TermAvailable {
		t.Errorf("expected status AVAILABLE, got %q", g.Status)
	}
	if len(g.Brackets) != len(trip.ParticipantBrackets) {
		t.Fatalf("expected %d brackets, got %d", len(trip.ParticipantBrackets), len(g.Brackets))
	}
	for i, b := range g.Brackets {
		if b.MinParticipants != trip.ParticipantBrackets[i] {
			t.Errorf("bracket %d: expected minParticipants %q, got %q",
				i, trip.ParticipantBrackets[i], b.MinParticipants)
		}
		if b.FreeSpotsPerBooking == nil || *b.FreeSpotsPerBooking != 0 {
			t.Errorf("bracket %d: expected freeSpotsPerBooking 0", i)
		}
		if len(b.Prices) != len(trip.Voivodeships) {
			t.Fatalf("bracket %d: expected %d price rows, got %d",
				i, len(trip.Voivodeships), len(b.Prices))
		}
		for j, row := range b.Prices {
			if row.Voivodeship != trip.Voivodeships[j] {
				t.Errorf("bracket %d row %d: expected %q, got %q",
					i, j, trip.Voivodeships[j], row.Voivodeship)
			}
			if row.PricePerPerson != nil {
				t.Errorf("bracket %d row %d: expected nil price", i, j)
			}
		}
	}
}

func TestNewDefaultTerm_Individual(t *testing.T) {
	term := trip.NewDefaultTerm(trip.TypeIndividual)
	if term == nil || term.Individual == nil {
		t.Fatal("expected an individual term")
	}
	if term.Individual.Status != trip.TermAvailable {
		t.Errorf("expected status AVAILABLE, got %q", term.Individual.Status)
	}
	if term.Individual.TotalCapacity != 0 || term.Individual.Reserved != 0 {
		t.Error("expected an empty individual term")
	}
}

func TestNewDefaultTerm_Corporate(t *testing.T) {
	if term := trip.NewDefaultTerm(trip.TypeCorporate); term != nil {
		t.Errorf("expected no term for corporate trips, got %+v", term)
	}
}

func TestTrip_AddTerm(t *testing.T) {
	tr := trip.Trip{TripType: trip.TypePilgrimage}
	tr.AddTerm()
	tr.AddTerm()
	if len(tr.Terms) != 2 {
		t.Fatalf("expected 2 terms, got %d", len(tr.Terms))
	}
	if tr.Terms[0].Group.ID == tr.Terms[1].Group.ID {
		t.Error("expected distinct term IDs")
	}

	corp := trip.Trip{TripType: trip.TypeCorporate}
	corp.AddTerm()
	if len(corp.Terms) != 0 {
		t.Errorf("expected corporate AddTerm to be a no-op, got %d terms", len(corp.Terms))
	}
}

func TestTrip_RemoveTerm_ByID(t *testing.T) {
	tr := trip.Trip{TripType: trip.TypeIndividual}
	tr.AddTerm()
	tr.AddTerm()
	tr.AddTerm()

	target := tr.Terms[1].Individual.ID
	if !tr.RemoveTerm(target, -1) {
		t.Fatal("expected removal to succeed")
	}
	if len(tr.Terms) != 2 {
		t.Fatalf("expected 2 terms left, got %d", len(tr.Terms))
	}
	for _, term := range tr.Terms {
		if term.Individual.ID == target {
			t.Error("removed term still present")
		}
	}

	if tr.RemoveTerm("trm_missing", -1) {
		t.Error("expected removal of unknown ID to fail")
	}
}

func TestTrip_RemoveTerm_IndexFallback(t *testing.T) {
	tr := trip.Trip{TripType: trip.TypeIndividual}
	tr.AddTerm()
	tr.AddTerm()

	keep := tr.Terms[1].Individual.ID
	if !tr.RemoveTerm("", 0) {
		t.Fatal("expected removal by index to succeed")
	}
	if len(tr.Terms) != 1 || tr.Terms[0].Individual.ID != keep {
		t.Error("wrong term removed")
	}

	if tr.RemoveTerm("", 5) {
		t.Error("expected out-of-range index to fail")
	}
}

func TestTrip_UpdateTerm(t *testing.T) {
	tr := trip.Trip{TripType: trip.TypeIndividual}
	tr.AddTerm()

	id := tr.Terms[0].Individual.ID
	updated := *tr.Terms[0].Individual
	updated.TotalCapacity = 25
	if !tr.UpdateTerm(id, -1, trip.Term{Individual: &updated}) {
		t.Fatal("expected update to succeed")
	}
	if tr.Terms[0].Individual.TotalCapacity != 25 {
		t.Errorf("expected capacity 25, got %d", tr.Terms[0].Individual.TotalCapacity)
	}
}

func TestTrip_AddItineraryDay(t *testing.T) {
	var tr trip.Trip
	tr.AddItineraryDay()
	tr.AddItineraryDay()
	tr.AddItineraryDay()

	for i, d := range tr.ItineraryDays {
		if d.DayNumber != i+1 {
			t.Errorf("day %d: expected dayNumber %d, got %d", i, i+1, d.DayNumber)
		}
		if !strings.HasPrefix(d.ID, "day_") {
			t.Errorf("day %d: expected ID prefix 'day_', got %q", i, d.ID)
		}
	}
}

func TestTrip_AssignIDs(t *testing.T) {
	tr := trip.Trip{
		TripType: trip.TypeIndividual,
		Terms: []trip.Term{
			{Individual: &trip.IndividualTerm{ID: "trm_existing"}},
			{Individual: &trip.IndividualTerm{}},
		},
		ItineraryDays:    []trip.ItineraryDay{{DayNumber: 1}},
		DepartureOptions: []trip.DepartureOption{{LocationName: "Kraków"}},
		Addons:           []trip.Addon{{Name: "Ubezpieczenie"}},
	}
	tr.AssignIDs()

	if tr.Terms[0].Individual.ID != "trm_existing" {
		t.Error("expected existing term ID to be kept")
	}
	if tr.Terms[1].Individual.ID == "" {
		t.Error("expected missing term ID to be assigned")
	}
	if tr.ItineraryDays[0].ID == "" {
		t.Error("expected itinerary day ID to be assigned")
	}
	if tr.DepartureOptions[0].ID == "" {
		t.Error("expected departure option ID to be assigned")
	}
	if tr.Addons[0].ID == "" {
		t.Error("expected addon ID to be assigned")
	}
}
