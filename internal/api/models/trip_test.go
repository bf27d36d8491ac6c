package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/tripdesk/internal/api/models"
	"github.com/tripdesk/tripdesk/internal/trip"
)

func TestTrip_ToModel_SelectsVariantByTripType(t *testing.T) {
	// The same wire term must land in the variant the trip type
	// dictates, regardless of which fields are populated.
	raw := `{
		"name": "Zimowisko Zakopane",
		"tripType": "SCHOOL",
		"categoryId": "3",
		"terms": [{
			"startDate": "2026-02-01",
			"endDate": "2026-02-07",
			"status": "AVAILABLE",
			"totalCapacity": "50",
			"pricePerPerson": 999,
			"brackets": [{
				"minParticipants": "25",
				"freeSpotsPerBooking": "2",
				"prices": [{"voivodeship": "MALOPOLSKIE", "pricePerPerson": "1200"}]
			}]
		}]
	}`

	var dto models.Trip
	require.NoError(t, json.Unmarshal([]byte(raw), &dto))

	m := dto.ToModel()
	assert.Equal(t, trip.TypeSchool, m.TripType)
	assert.Equal(t, 3, m.CategoryID)
	require.Len(t, m.Terms, 1)
	require.NotNil(t, m.Terms[0].Group, "SCHOOL trip terms must be group terms")
	assert.Nil(t, m.Terms[0].Individual)

	g := m.Terms[0].Group
	assert.Equal(t, 50, g.TotalCapacity)
	require.Len(t, g.Brackets, 1)
	require.NotNil(t, g.Brackets[0].FreeSpotsPerBooking)
	assert.Equal(t, 2, *g.Brackets[0].FreeSpotsPerBooking)
	require.Len(t, g.Brackets[0].Prices, 1)
	require.NotNil(t, g.Brackets[0].Prices[0].PricePerPerson)
	assert.InDelta(t, 1200, *g.Brackets[0].Prices[0].PricePerPerson, 0.0001)
}

func TestTrip_ToModel_IndividualVariant(t *testing.T) {
	raw := `{
		"name": "Wycieczka do Rzymu",
		"tripType": "INDIVIDUAL",
		"categoryId": 1,
		"hasAvailableDates": true,
		"terms": [{
			"startDate": "2026-05-10",
			"endDate": "2026-05-17",
			"status": "AVAILABLE",
			"totalCapacity": 40,
			"reserved": "12",
			"pricePerPerson": "2499.99",
			"travelPayProductUrl": "https://travelpay.pl/p/rzym-2026"
		}]
	}`

	var dto models.Trip
	require.NoError(t, json.Unmarshal([]byte(raw), &dto))

	m := dto.ToModel()
	require.Len(t, m.Terms, 1)
	require.NotNil(t, m.Terms[0].Individual)
	assert.Nil(t, m.Terms[0].Group)

	ind := m.Terms[0].Individual
	assert.Equal(t, 12, ind.Reserved)
	assert.InDelta(t, 2499.99, ind.PricePerPerson, 0.0001)
	assert.Equal(t, "https://travelpay.pl/p/rzym-2026", ind.TravelPayProductURL)
}

func TestTripFromModel_RoundTrip(t *testing.T) {
	price := 1500.0
	free := 1
	m := &trip.Trip{
		ID:                "trp_abc",
		Name:              "Pielgrzymka do Czestochowy",
		Status:            trip.StatusPublished,
		TripType:          trip.TypePilgrimage,
		CategoryID:        7,
		HasAvailableDates: true,
		Terms: []trip.Term{{
			Group: &trip.GroupTerm{
				ID:            "trm_1",
				StartDate:     "2026-08-01",
				Status:        trip.TermAvailable,
				TotalCapacity: 50,
				Brackets: []trip.Bracket{{
					MinParticipants:     "25",
					FreeSpotsPerBooking: &free,
					Prices: []trip.PriceRow{
						{Voivodeship: "SLASKIE", PricePerPerson: &price},
						{Voivodeship: "OPOLSKIE", PricePerPerson: nil},
					},
				}},
				UnavailableVoivodeships: []string{"OPOLSKIE"},
			},
		}},
	}

	dto := models.TripFromModel(m)
	data, err := json.Marshal(dto)
	require.NoError(t, err)

	// Unpriced regions serialize as explicit nulls, not omitted rows.
	assert.Contains(t, string(data), `{"voivodeship":"OPOLSKIE","pricePerPerson":null}`)

	var decoded models.Trip
	require.NoError(t, json.Unmarshal(data, &decoded))

	back := decoded.ToModel()
	require.Len(t, back.Terms, 1)
	require.NotNil(t, back.Terms[0].Group)
	g := back.Terms[0].Group
	assert.Equal(t, "trm_1", g.ID)
	assert.Equal(t, []string{"OPOLSKIE"}, g.UnavailableVoivodeships)
	require.Len(t, g.Brackets, 1)
	require.NotNil(t, g.Brackets[0].Prices[0].PricePerPerson)
	assert.InDelta(t, 1500, *g.Brackets[0].Prices[0].PricePerPerson, 0.0001)
	assert.Nil(t, g.Brackets[0].Prices[1].PricePerPerson)
}
