package models

import (
	"encoding/json"

	"github.com/tripdesk/tripdesk/internal/trip"
)

// Trip is the API representation of a trip draft. Numeric fields use
// the coercion types so string-encoded numbers from older dashboard
// builds still decode.
type Trip struct {
	ID       string        `json:"id,omitempty"`
	Name     string        `json:"name"`
	Status   trip.Status   `json:"status"`
	TripType trip.TripType `json:"tripType"`
	Featured bool          `json:"featured"`

	ShortDescription      string `json:"shortDescription"`
	LongDescription       string `json:"longDescription"`
	Country               string `json:"country"`
	Region                string `json:"region"`
	PriceIncludes         string `json:"priceIncludes"`
	PriceExcludes         string `json:"priceExcludes"`
	AdditionalInformation string `json:"additionalInformation"`

	MainImageURL     string   `json:"mainImageUrl"`
	GalleryImageURLs []string `json:"galleryImageUrls"`

	CategoryID    Count              `json:"categoryId"`
	TransportType trip.TransportType `json:"transportType"`
	DurationDays  Count              `json:"durationDays"`
	RatePerKm     NullFloat          `json:"ratePerKm"`

	HasAvailableDates bool `json:"hasAvailableDates"`

	StartingPriceWithoutDate         NullFloat `json:"startingPriceWithoutDate"`
	StartGroupTripDateWithoutPricing string    `json:"startGroupTripDateWithoutPricing,omitempty"`
	EndGroupTripDateWithoutPricing   string    `json:"endGroupTripDateWithoutPricing,omitempty"`
	CorporatePricePerPerson          NullFloat `json:"corporatePricePerPerson"`

	TagNames         []string          `json:"tagNames"`
	ItineraryDays    []ItineraryDay    `json:"itineraryDays"`
	DepartureOptions []DepartureOption `json:"departureOptions"`
	Terms            []Term            `json:"terms"`
	Addons           []Addon           `json:"addons"`

	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`

	ExtraFields json.RawMessage `json:"extraFields,omitempty"`

	CreatedAt *Timestamp `json:"createdAt,omitempty"`
	UpdatedAt *Timestamp `json:"updatedAt,omitempty"`
}

// Term is the wire shape of a term. It carries the fields of both
// variants; which set is meaningful is decided by the owning trip's
// type during conversion, never by inspecting the populated fields.
type Term struct {
	ID            string          `json:"id,omitempty"`
	StartDate     string          `json:"startDate,omitempty"`
	EndDate       string          `json:"endDate,omitempty"`
	Status        trip.TermStatus `json:"status,omitempty"`
	TotalCapacity Count           `json:"totalCapacity"`
	InternalNotes string          `json:"internalNotes,omitempty"`

	// Individual-term fields.
	Reserved            *Count  `json:"reserved,omitempty"`
	PricePerPerson      *Amount `json:"pricePerPerson,omitempty"`
	TravelPayProductURL string  `json:"travelPayProductUrl,omitempty"`
	TravelPayProductID  string  `json:"travelPayProductId,omitempty"`

	// Group-term fields.
	IsPricingTemplate       *bool     `json:"isPricingTemplate,omitempty"`
	ReservedPaid            *Count    `json:"reservedPaid,omitempty"`
	ReservedFree            *Count    `json:"reservedFree,omitempty"`
	Brackets                []Bracket `json:"brackets,omitempty"`
	UnavailableVoivodeships []string  `json:"unavailableVoivodeships,omitempty"`
}

// Bracket is one participant tier of a group term.
type Bracket struct {
	MinParticipants     string     `json:"minParticipants"`
	FreeSpotsPerBooking NullInt    `json:"freeSpotsPerBooking"`
	Prices              []PriceRow `json:"prices"`
}

// PriceRow is the per-voivodeship price slot. A null price means the
// trip is not offered in that region for the bracket.
type PriceRow struct {
	Voivodeship    string    `json:"voivodeship"`
	PricePerPerson NullFloat `json:"pricePerPerson"`
}

// ItineraryDay is one day of the trip programme.
type ItineraryDay struct {
	ID                      string `json:"id,omitempty"`
	DayNumber               Count  `json:"dayNumber"`
	Title                   string `json:"title"`
	Subtitle                string `json:"subtitle,omitempty"`
	Description             string `json:"description"`
	LongDescriptionForOffer string `json:"longDescriptionForOffer,omitempty"`
	ImageURL                string `json:"imageUrl,omitempty"`
	SpecDateForOffer        string `json:"specDateForOffer,omitempty"`
}

// DepartureOption is a pickup location with an optional adjustment.
type DepartureOption struct {
	ID              string    `json:"id,omitempty"`
	LocationName    string    `json:"locationName"`
	PickupPoint     string    `json:"pickupPoint,omitempty"`
	PriceAdjustment NullFloat `json:"priceAdjustment"`
	DepartureTime   string    `json:"departureTime,omitempty"`
}

// Addon is an optional paid extra.
type Addon struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Price       Amount `json:"price"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
}

// TripListResponse is the paged trip list payload.
type TripListResponse struct {
	Items []*Trip           `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// ToModel converts the API trip to the domain draft.
func (t *Trip) ToModel() trip.Trip {
	d := trip.Trip{
		ID:       t.ID,
		Name:     t.Name,
		Status:   t.Status,
		TripType: t.TripType,
		Featured: t.Featured,

		ShortDescription:      t.ShortDescription,
		LongDescription:       t.LongDescription,
		Country:               t.Country,
		Region:                t.Region,
		PriceIncludes:         t.PriceIncludes,
		PriceExcludes:         t.PriceExcludes,
		AdditionalInformation: t.AdditionalInformation,

		MainImageURL:     t.MainImageURL,
		GalleryImageURLs: t.GalleryImageURLs,

		CategoryID:    int(t.CategoryID),
		TransportType: t.TransportType,
		DurationDays:  int(t.DurationDays),
		RatePerKm:     t.RatePerKm.Float,

		HasAvailableDates: t.HasAvailableDates,

		StartingPriceWithoutDate:         t.StartingPriceWithoutDate.Float,
		StartGroupTripDateWithoutPricing: t.StartGroupTripDateWithoutPricing,
		EndGroupTripDateWithoutPricing:   t.EndGroupTripDateWithoutPricing,
		CorporatePricePerPerson:          t.CorporatePricePerPerson.Float,

		TagNames: t.TagNames,

		MetaTitle:       t.MetaTitle,
		MetaDescription: t.MetaDescription,

		ExtraFields: t.ExtraFields,
	}

	for _, day := range t.ItineraryDays {
		d.ItineraryDays = append(d.ItineraryDays, trip.ItineraryDay{
			ID:                      day.ID,
			DayNumber:               int(day.DayNumber),
			Title:                   day.Title,
			Subtitle:                day.Subtitle,
			Description:             day.Description,
			LongDescriptionForOffer: day.LongDescriptionForOffer,
			ImageURL:                day.ImageURL,
			SpecDateForOffer:        day.SpecDateForOffer,
		})
	}

	for _, opt := range t.DepartureOptions {
		d.DepartureOptions = append(d.DepartureOptions, trip.DepartureOption{
			ID:              opt.ID,
			LocationName:    opt.LocationName,
			PickupPoint:     opt.PickupPoint,
			PriceAdjustment: opt.PriceAdjustment.Float,
			DepartureTime:   opt.DepartureTime,
		})
	}

	for _, a := range t.Addons {
		d.Addons = append(d.Addons, trip.Addon{
			ID:          a.ID,
			Name:        a.Name,
			Price:       float64(a.Price),
			Description: a.Description,
			Active:      a.Active,
		})
	}

	for _, term := range t.Terms {
		d.Terms = append(d.Terms, term.toModel(t.TripType))
	}

	return d
}

// toModel converts the wire term into the variant matching tripType.
func (t *Term) toModel(tripType trip.TripType) trip.Term {
	if tripType.IsGroup() {
		g := &trip.GroupTerm{
			ID:                      t.ID,
			StartDate:               t.StartDate,
			EndDate:                 t.EndDate,
			Status:                  t.Status,
			TotalCapacity:           int(t.TotalCapacity),
			InternalNotes:           t.InternalNotes,
			UnavailableVoivodeships: t.UnavailableVoivodeships,
		}
		if t.IsPricingTemplate != nil {
			g.IsPricingTemplate = *t.IsPricingTemplate
		}
		if t.ReservedPaid != nil {
			g.ReservedPaid = int(*t.ReservedPaid)
		}
		if t.ReservedFree != nil {
			g.ReservedFree = int(*t.ReservedFree)
		}
		for _, b := range t.Brackets {
			bracket := trip.Bracket{
				MinParticipants:     b.MinParticipants,
				FreeSpotsPerBooking: b.FreeSpotsPerBooking.Int,
			}
			for _, p := range b.Prices {
				bracket.Prices = append(bracket.Prices, trip.PriceRow{
					Voivodeship:    p.Voivodeship,
					PricePerPerson: p.PricePerPerson.Float,
				})
			}
			g.Brackets = append(g.Brackets, bracket)
		}
		return trip.Term{Group: g}
	}

	ind := &trip.IndividualTerm{
		ID:                  t.ID,
		StartDate:           t.StartDate,
		EndDate:             t.EndDate,
		Status:              t.Status,
		TotalCapacity:       int(t.TotalCapacity),
		InternalNotes:       t.InternalNotes,
		TravelPayProductURL: t.TravelPayProductURL,
		TravelPayProductID:  t.TravelPayProductID,
	}
	if t.Reserved != nil {
		ind.Reserved = int(*t.Reserved)
	}
	if t.PricePerPerson != nil {
		ind.PricePerPerson = float64(*t.PricePerPerson)
	}
	return trip.Term{Individual: ind}
}

// TripFromModel converts a domain trip to its API representation.
func TripFromModel(m *trip.Trip) *Trip {
	created := Timestamp(m.CreatedAt)
	updated := Timestamp(m.UpdatedAt)

	t := &Trip{
		ID:       m.ID,
		Name:     m.Name,
		Status:   m.Status,
		TripType: m.TripType,
		Featured: m.Featured,

		ShortDescription:      m.ShortDescription,
		LongDescription:       m.LongDescription,
		Country:               m.Country,
		Region:                m.Region,
		PriceIncludes:         m.PriceIncludes,
		PriceExcludes:         m.PriceExcludes,
		AdditionalInformation: m.AdditionalInformation,

		MainImageURL:     m.MainImageURL,
		GalleryImageURLs: m.GalleryImageURLs,

		CategoryID:    Count(m.CategoryID),
		TransportType: m.TransportType,
		DurationDays:  Count(m.DurationDays),
		RatePerKm:     NF(m.RatePerKm),

		HasAvailableDates: m.HasAvailableDates,

		StartingPriceWithoutDate:         NF(m.StartingPriceWithoutDate),
		StartGroupTripDateWithoutPricing: m.StartGroupTripDateWithoutPricing,
		EndGroupTripDateWithoutPricing:   m.EndGroupTripDateWithoutPricing,
		CorporatePricePerPerson:          NF(m.CorporatePricePerPerson),

		TagNames: m.TagNames,

		MetaTitle:       m.MetaTitle,
		MetaDescription: m.MetaDescription,

		ExtraFields: m.ExtraFields,

		CreatedAt: &created,
		UpdatedAt: &updated,
	}

	for _, day := range m.ItineraryDays {
		t.ItineraryDays = append(t.ItineraryDays, ItineraryDay{
			ID:                      day.ID,
			DayNumber:               Count(day.DayNumber),
			Title:                   day.Title,
			Subtitle:                day.Subtitle,
			Description:             day.Description,
			LongDescriptionForOffer: day.LongDescriptionForOffer,
			ImageURL:                day.ImageURL,
			SpecDateForOffer:        day.SpecDateForOffer,
		})
	}

	for _, opt := range m.DepartureOptions {
		t.DepartureOptions = append(t.DepartureOptions, DepartureOption{
			ID:              opt.ID,
			LocationName:    opt.LocationName,
			PickupPoint:     opt.PickupPoint,
			PriceAdjustment: NF(opt.PriceAdjustment),
			DepartureTime:   opt.DepartureTime,
		})
	}

	for _, a := range m.Addons {
		t.Addons = append(t.Addons, Addon{
			ID:          a.ID,
			Name:        a.Name,
			Price:       Amount(a.Price),
			Description: a.Description,
			Active:      a.Active,
		})
	}

	for _, term := range m.Terms {
		t.Terms = append(t.Terms, termFromModel(term))
	}

	return t
}

func termFromModel(m trip.Term) Term {
	if m.Group != nil {
		g := m.Group
		isTemplate := g.IsPricingTemplate
		paid := Count(g.ReservedPaid)
		free := Count(g.ReservedFree)
		t := Term{
			ID:                      g.ID,
			StartDate:               g.StartDate,
			EndDate:                 g.EndDate,
			Status:                  g.Status,
			TotalCapacity:           Count(g.TotalCapacity),
			InternalNotes:           g.InternalNotes,
			IsPricingTemplate:       &isTemplate,
			ReservedPaid:            &paid,
			ReservedFree:            &free,
			UnavailableVoivodeships: g.UnavailableVoivodeships,
		}
		for _, b := range g.Brackets {
			bracket := Bracket{
				MinParticipants:     b.MinParticipants,
				FreeSpotsPerBooking: NI(b.FreeSpotsPerBooking),
			}
			for _, p := range b.Prices {
				bracket.Prices = append(bracket.Prices, PriceRow{
					Voivodeship:    p.Voivodeship,
					PricePerPerson: NF(p.PricePerPerson),
				})
			}
			t.Brackets = append(t.Brackets, bracket)
		}
		return t
	}

	ind := m.Individual
	if ind == nil {
		return Term{}
	}
	reserved := Count(ind.Reserved)
	price := Amount(ind.PricePerPerson)
	return Term{
		ID:                  ind.ID,
		StartDate:           ind.StartDate,
		EndDate:             ind.EndDate,
		Status:              ind.Status,
		TotalCapacity:       Count(ind.TotalCapacity),
		InternalNotes:       ind.InternalNotes,
		Reserved:            &reserved,
		PricePerPerson:      &price,
		TravelPayProductURL: ind.TravelPayProductURL,
		TravelPayProductID:  ind.TravelPayProductID,
	}
}
