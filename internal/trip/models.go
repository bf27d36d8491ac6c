// Package trip provides the trip catalog domain: drafts, terms, group
// pricing matrices and the validation/normalization pipeline used when
// the admin dashboard saves a trip.
package trip

import (
	"encoding/json"
	"errors"
	"time"
)

// Repository and service errors.
var (
	ErrTripNotFound      = errors.New("trip not found")
	ErrTripTypeImmutable = errors.New("trip type cannot be changed after creation")
)

// TripType classifies a trip and fixes the shape of its terms.
// It is immutable once the trip exists.
type TripType string

// Trip types.
const (
	TypeIndividual TripType = "INDIVIDUAL"
	TypeSchool     TripType = "SCHOOL"
	TypeSenior     TripType = "SENIOR"
	TypePilgrimage TripType = "PILGRIMAGE"
	TypeCorporate  TripType = "CORPORATE"
)

// IsGroup reports whether the type uses bracket-matrix group pricing.
func (t TripType) IsGroup() bool {
	return t == TypeSchool || t == TypeSenior || t == TypePilgrimage
}

// Valid reports whether t is a known trip type.
func (t TripType) Valid() bool {
	switch t {
	case TypeIndividual, TypeSchool, TypeSenior, TypePilgrimage, TypeCorporate:
		return true
	}
	return false
}

// Status of a trip in the catalog.
type Status string

// Trip statuses.
const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusArchived  Status = "ARCHIVED"
)

// TermStatus describes the bookability of a single term.
type TermStatus string

// Term statuses.
const (
	TermAvailable   TermStatus = "AVAILABLE"
	TermUnavailable TermStatus = "UNAVAILABLE"
	TermSoldOut     TermStatus = "SOLD_OUT"
)

// TransportType options for a trip.
type TransportType string

// Transport types.
const (
	TransportCoach  TransportType = "COACH"
	TransportFlight TransportType = "FLIGHT"
	TransportOwn    TransportType = "OWN_TRANSPORT"
	TransportTrain  TransportType = "TRAIN"
	TransportShip   TransportType = "SHIP"
)

// Trip is the draft object the dashboard edits and the catalog persists.
// The form orchestrator owns exactly one of these per edit session.
type Trip struct {
	ID       string
	Name     string
	Status   Status
	TripType TripType
	Featured bool

	ShortDescription      string
	LongDescription       string
	Country               string
	Region                string
	PriceIncludes         string
	PriceExcludes         string
	AdditionalInformation string

	MainImageURL     string
	GalleryImageURLs []string

	CategoryID    int
	TransportType TransportType
	DurationDays  int
	RatePerKm     *float64

	// HasAvailableDates gates the term editors; individual trips must
	// always carry concrete terms.
	HasAvailableDates bool

	// Price and date range shown for group trips sold without
	// predefined terms.
	StartingPriceWithoutDate         *float64
	StartGroupTripDateWithoutPricing string
	EndGroupTripDateWithoutPricing   string

	// CorporatePricePerPerson is the single flat price used when
	// TripType is CORPORATE; such trips have no terms at all.
	CorporatePricePerPerson *float64

	TagNames         []string
	ItineraryDays    []ItineraryDay
	DepartureOptions []DepartureOption
	Terms            []Term
	Addons           []Addon

	MetaTitle       string
	MetaDescription string

	// ExtraFields holds the sanitized user-defined field tree as raw
	// JSON; its structure belongs to the extrafields package.
	ExtraFields json.RawMessage

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Term is a tagged union over the two term shapes. Exactly one variant
// is set; which one is decided by the owning trip's type, never by
// inspecting the populated fields.
type Term struct {
	Individual *IndividualTerm
	Group      *GroupTerm
}

// IndividualTerm is a bookable date range with one flat price.
type IndividualTerm struct {
	ID             string
	StartDate      string
	EndDate        string
	Status         TermStatus
	TotalCapacity  int
	Reserved       int
	PricePerPerson float64
	InternalNotes  string
	// TravelPayProductURL links the term to the external payment
	// provider's product page. Optional; must be absolute http(s).
	TravelPayProductURL string
	TravelPayProductID  string
}

// GroupTerm is a date range (or a reusable pricing template) priced per
// participant bracket and per voivodeship.
type GroupTerm struct {
	ID                string
	StartDate         string
	EndDate           string
	IsPricingTemplate bool
	Status            TermStatus
	TotalCapacity     int
	ReservedPaid      int
	ReservedFree      int
	InternalNotes     string

	// Brackets is sparse until touched by the editor; use
	// ensureBracket before indexing into it.
	Brackets []Bracket

	// UnavailableVoivodeships caches the regions whose price is nil in
	// every bracket. Derived from Brackets; see SyncUnavailableRegions.
	UnavailableVoivodeships []string
}

// Bracket is one participant-count tier with its per-region price row.
type Bracket struct {
	// MinParticipants is "25", "45" or "60" (string enum contract).
	MinParticipants     string
	FreeSpotsPerBooking *int
	Prices              []PriceRow
}

// PriceRow holds the per-person price for one region. A nil price means
// the trip is not offered in that region for this bracket.
type PriceRow struct {
	Voivodeship    string
	PricePerPerson *float64
}

// ItineraryDay is one day of the trip programme.
type ItineraryDay struct {
	ID                      string
	DayNumber               int
	Title                   string
	Subtitle                string
	Description             string // required, backend NOT NULL
	LongDescriptionForOffer string
	ImageURL                string
	SpecDateForOffer        string
}

// DepartureOption is a pickup location with an optional price
// adjustment, which may be negative.
type DepartureOption struct {
	ID              string
	LocationName    string // required
	PickupPoint     string
	PriceAdjustment *float64
	DepartureTime   string
}

// Addon is an optional paid extra offered with the trip.
type Addon struct {
	ID          string
	Name        string
	Price       float64
	Description string
	Active      bool
}
