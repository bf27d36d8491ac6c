package trip

import "strings"

// NormalizeDraft rewrites a draft into the exact shape the catalog
// persists: trimmed strings, defaulted statuses, addons without a name
// dropped, and the term list rebuilt for the trip's type. Individual
// trips end up with flat-price terms only, group trips with full
// bracket matrices and a synced unavailable-region set, corporate trips
// with no terms at all.
func NormalizeDraft(t Trip) Trip {
	out := t

	out.Name = strings.TrimSpace(out.Name)
	if out.Status == "" {
		out.Status = StatusDraft
	}
	if out.TransportType == "" {
		out.TransportType = TransportCoach
	}

	out.Addons = normalizeAddons(t.Addons)
	out.ItineraryDays = normalizeItinerary(t.ItineraryDays)
	out.DepartureOptions = normalizeDepartures(t.DepartureOptions)

	out.TagNames = append([]string(nil), t.TagNames...)
	out.GalleryImageURLs = append([]string(nil), t.GalleryImageURLs...)

	switch {
	case t.TripType == TypeIndividual:
		out.Terms = normalizeIndividualTerms(t.Terms)
	case t.TripType.IsGroup():
		out.Terms = normalizeGroupTerms(t.Terms)
	case t.TripType == TypeCorporate:
		// Corporate pricing is the flat CorporatePricePerPerson field.
		out.Terms = nil
	}

	return out
}

func normalizeAddons(addons []Addon) []Addon {
	out := make([]Addon, 0, len(addons))
	for _, a := range addons {
		a.Name = strings.TrimSpace(a.Name)
		if a.Name == "" {
			continue
		}
		a.Description = strings.TrimSpace(a.Description)
		out = append(out, a)
	}
	return out
}

func normalizeItinerary(days []ItineraryDay) []ItineraryDay {
	out := make([]ItineraryDay, len(days))
	for i, d := range days {
		d.Title = strings.TrimSpace(d.Title)
		d.Subtitle = strings.TrimSpace(d.Subtitle)
		d.LongDescriptionForOffer = strings.TrimSpace(d.LongDescriptionForOffer)
		d.ImageURL = strings.TrimSpace(d.ImageURL)
		out[i] = d
	}
	return out
}

func normalizeDepartures(opts []DepartureOption) []DepartureOption {
	out := make([]DepartureOption, len(opts))
	for i, o := range opts {
		o.LocationName = strings.TrimSpace(o.LocationName)
		out[i] = o
	}
	return out
}

// normalizeIndividualTerms keeps only the flat-price variant. A term
// that somehow arrived in group shape is dropped rather than guessed
// at; the variant is always chosen by trip type.
func normalizeIndividualTerms(terms []Term) []Term {
	out := make([]Term, 0, len(terms))
	for _, term := range terms {
		if term.Individual == nil {
			continue
		}
		it := *term.Individual
		if it.Status == "" {
			it.Status = TermAvailable
		}
		if it.Reserved < 0 {
			it.Reserved = 0
		}
		it.InternalNotes = strings.TrimSpace(it.InternalNotes)
		it.TravelPayProductURL = strings.TrimSpace(it.TravelPayProductURL)
		out = append(out, Term{Individual: &it})
	}
	return out
}

// normalizeGroupTerms pads every term to the full bracket skeleton
// (exactly one bracket per participant tier, one price row per region)
// and recomputes the unavailable-region cache.
func normalizeGroupTerms(terms []Term) []Term {
	out := make([]Term, 0, len(terms))
	for _, term := range terms {
		if term.Group == nil {
			continue
		}
		gt := term.Group.Clone()
		if gt.Status == "" {
			gt.Status = TermAvailable
		}
		if gt.ReservedPaid < 0 {
			gt.ReservedPaid = 0
		}
		if gt.ReservedFree < 0 {
			gt.ReservedFree = 0
		}
		gt.InternalNotes = strings.TrimSpace(gt.InternalNotes)

		for i := range ParticipantBrackets {
			b := ensureBracket(&gt, i)
			if b.MinParticipants == "" {
				b.MinParticipants = ParticipantBrackets[i]
			}
			// Row order follows the fixed region list.
			ordered := make([]PriceRow, len(Voivodeships))
			for j, v := range Voivodeships {
				ordered[j] = PriceRow{Voivodeship: v}
				for _, p := range b.Prices {
					if p.Voivodeship == v {
						ordered[j].PricePerPerson = p.PricePerPerson
						break
					}
				}
			}
			b.Prices = ordered
		}
		gt.Brackets = gt.Brackets[:len(ParticipantBrackets)]

		gt, _ = gt.SyncUnavailableRegions()
		out = append(out, Term{Group: &gt})
	}
	return out
}
