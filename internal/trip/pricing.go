package trip

import (
	"sort"
	"strconv"
	"strings"
)

// Group pricing matrix operations.
//
// Every mutation returns a new GroupTerm value and leaves the receiver
// untouched; the caller splices the result back into the term list.
// This mirrors the dashboard's contract where editors hand an updated
// term up to the form orchestrator instead of mutating shared state.

// Clone returns a deep copy of the term.
func (t GroupTerm) Clone() GroupTerm {
	out := t
	out.Brackets = make([]Bracket, len(t.Brackets))
	for i, b := range t.Brackets {
		nb := b
		if b.FreeSpotsPerBooking != nil {
			v := *b.FreeSpotsPerBooking
			nb.FreeSpotsPerBooking = &v
		}
		nb.Prices = make([]PriceRow, len(b.Prices))
		for j, p := range b.Prices {
			np := p
			if p.PricePerPerson != nil {
				v := *p.PricePerPerson
				np.PricePerPerson = &v
			}
			nb.Prices[j] = np
		}
		out.Brackets[i] = nb
	}
	out.UnavailableVoivodeships = append([]string(nil), t.UnavailableVoivodeships...)
	return out
}

// ensureBracket grows the bracket slice up to idx and gives the bracket
// a full price row set. The editor may touch any cell of a term whose
// brackets were never initialized, so partially-built state is normal.
func ensureBracket(t *GroupTerm, idx int) *Bracket {
	for len(t.Brackets) <= idx {
		n := len(t.Brackets)
		min := ""
		if n < len(ParticipantBrackets) {
			min = ParticipantBrackets[n]
		}
		t.Brackets = append(t.Brackets, Bracket{MinParticipants: min})
	}
	b := &t.Brackets[idx]
	if len(b.Prices) == 0 {
		b.Prices = make([]PriceRow, len(Voivodeships))
		for i, v := range Voivodeships {
			b.Prices[i] = PriceRow{Voivodeship: v}
		}
	}
	return b
}

// priceRow finds the row for a region, appending one if the bracket was
// built before the region list grew.
func priceRow(b *Bracket, region string) *PriceRow {
	for i := range b.Prices {
		if b.Prices[i].Voivodeship == region {
			return &b.Prices[i]
		}
	}
	b.Prices = append(b.Prices, PriceRow{Voivodeship: region})
	return &b.Prices[len(b.Prices)-1]
}

// WithBracketPrice sets one cell of the pricing matrix from raw form
// input. An empty string clears the price (nil = not offered).
func (t GroupTerm) WithBracketPrice(bracketIdx int, region, raw string) GroupTerm {
	out := t.Clone()
	b := ensureBracket(&out, bracketIdx)
	row := priceRow(b, region)
	if raw == "" {
		row.PricePerPerson = nil
		return out
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		row.PricePerPerson = &v
	}
	return out
}

// BracketField names a non-price bracket attribute.
type BracketField string

// Bracket fields editable per tier.
const (
	FieldMinParticipants     BracketField = "minParticipants"
	FieldFreeSpotsPerBooking BracketField = "freeSpotsPerBooking"
)

// WithBracketField sets a bracket-level field from raw form input.
// minParticipants stays a string (the backend enum is string-typed);
// freeSpotsPerBooking parses to int, empty input clears it.
func (t GroupTerm) WithBracketField(bracketIdx int, field BracketField, raw string) GroupTerm {
	out := t.Clone()
	b := ensureBracket(&out, bracketIdx)
	switch field {
	case FieldMinParticipants:
		if raw == "" {
			b.MinParticipants = ""
		} else if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			b.MinParticipants = strconv.Itoa(n)
		}
	case FieldFreeSpotsPerBooking:
		if raw == "" {
			b.FreeSpotsPerBooking = nil
		} else if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			b.FreeSpotsPerBooking = &n
		}
	}
	return out
}

// WithRegionAvailability toggles a region on or off for the whole term.
//
// Disabling nils the region's price in every bracket and records it in
// the unavailable set. Enabling removes it from the set and seeds
// bracket 0's price with 0: without the seed the derivation would see
// all-nil prices and immediately flag the region unavailable again.
func (t GroupTerm) WithRegionAvailability(region string, makeUnavailable bool) GroupTerm {
	out := t.Clone()
	if makeUnavailable {
		if !containsRegion(out.UnavailableVoivodeships, region) {
			out.UnavailableVoivodeships = append(out.UnavailableVoivodeships, region)
			sort.Strings(out.UnavailableVoivodeships)
		}
		for i := range out.Brackets {
			for j := range out.Brackets[i].Prices {
				if out.Brackets[i].Prices[j].Voivodeship == region {
					out.Brackets[i].Prices[j].PricePerPerson = nil
				}
			}
		}
		return out
	}

	filtered := out.UnavailableVoivodeships[:0]
	for _, v := range out.UnavailableVoivodeships {
		if v != region {
			filtered = append(filtered, v)
		}
	}
	out.UnavailableVoivodeships = filtered

	// Fixed-point breaker: seed bracket 0 so the region derives as
	// available until the user types a real price.
	b := ensureBracket(&out, 0)
	zero := 0.0
	priceRow(b, region).PricePerPerson = &zero
	return out
}

// WithBulkPrice copies one literal price into every bracket of every
// available region. Regions in the unavailable set keep their nil
// prices; this is a convenience bulk edit, not a computed default.
func (t GroupTerm) WithBulkPrice(raw string) GroupTerm {
	out := t.Clone()
	var price *float64
	if raw != "" {
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			price = &v
		}
	}
	for i := range out.Brackets {
		b := ensureBracket(&out, i)
		for j := range b.Prices {
			if containsRegion(out.UnavailableVoivodeships, b.Prices[j].Voivodeship) {
				continue
			}
			if price == nil {
				b.Prices[j].PricePerPerson = nil
				continue
			}
			v := *price
			b.Prices[j].PricePerPerson = &v
		}
	}
	return out
}

// DeriveUnavailableRegions computes the regions whose price is nil in
// every bracket. A term whose brackets hold no price at all (never
// priced) derives to an empty list: "unconfigured" must stay distinct
// from "configured but fully unavailable".
func (t GroupTerm) DeriveUnavailableRegions() []string {
	if !t.hasAnyPrice() {
		return nil
	}
	var out []string
	for _, region := range Voivodeships {
		if t.regionPriced(region) {
			continue
		}
		out = append(out, region)
	}
	sort.Strings(out)
	return out
}

// SyncUnavailableRegions recomputes the derived unavailable set and
// writes it back only when it actually changed, so callers re-running
// the derivation after every bracket edit do not loop.
func (t GroupTerm) SyncUnavailableRegions() (GroupTerm, bool) {
	derived := t.DeriveUnavailableRegions()
	if regionsEqual(derived, t.UnavailableVoivodeships) {
		return t, false
	}
	out := t.Clone()
	out.UnavailableVoivodeships = derived
	return out, true
}

// regionPriced reports whether any bracket carries a price for region.
func (t GroupTerm) regionPriced(region string) bool {
	for _, b := range t.Brackets {
		for _, p := range b.Prices {
			if p.Voivodeship == region && p.PricePerPerson != nil {
				return true
			}
		}
	}
	return false
}

func (t GroupTerm) hasAnyPrice() bool {
	for _, b := range t.Brackets {
		for _, p := range b.Prices {
			if p.PricePerPerson != nil {
				return true
			}
		}
	}
	return false
}

func containsRegion(list []string, region string) bool {
	for _, v := range list {
		if v == region {
			return true
		}
	}
	return false
}

func regionsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
