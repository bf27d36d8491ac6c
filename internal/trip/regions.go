package trip

// Voivodeship codes, in the fixed order the pricing matrix is rendered
// and persisted in. Group pricing is differentiated per region; the
// order matters because the dashboard pairs matrix rows positionally.
var Voivodeships = []string{
	"DOLNOSLASKIE",
	"KUJAWSKO_POMORSKIE",
	"LUBELSKIE",
	"LUBUSKIE",
	"LODZKIE",
	"MALOPOLSKIE",
	"MAZOWIECKIE",
	"OPOLSKIE",
	"PODKARPACKIE",
	"PODLASKIE",
	"POMORSKIE",
	"SLASKIE",
	"SWIETOKRZYSKIE",
	"WARMINSKO_MAZURSKIE",
	"WIELKOPOLSKIE",
	"ZACHODNIOPOMORSKIE",
}

// VoivodeshipLabels maps region codes to their display names.
var VoivodeshipLabels = map[string]string{
	"DOLNOSLASKIE":        "Dolnośląskie",
	"KUJAWSKO_POMORSKIE":  "Kujawsko-pomorskie",
	"LUBELSKIE":           "Lubelskie",
	"LUBUSKIE":            "Lubuskie",
	"LODZKIE":             "Łódzkie",
	"MALOPOLSKIE":         "Małopolskie",
	"MAZOWIECKIE":         "Mazowieckie",
	"OPOLSKIE":            "Opolskie",
	"PODKARPACKIE":        "Podkarpackie",
	"PODLASKIE":           "Podlaskie",
	"POMORSKIE":           "Pomorskie",
	"SLASKIE":             "Śląskie",
	"SWIETOKRZYSKIE":      "Świętokrzyskie",
	"WARMINSKO_MAZURSKIE": "Warmińsko-mazurskie",
	"WIELKOPOLSKIE":       "Wielkopolskie",
	"ZACHODNIOPOMORSKIE":  "Zachodniopomorskie",
}

// ParticipantBrackets are the minimum-participant tiers of a group term.
// Values are strings because the reservation backend's enum contract is
// string-typed ("25" | "45" | "60").
var ParticipantBrackets = []string{"25", "45", "60"}

// IsVoivodeship reports whether code is one of the known regions.
func IsVoivodeship(code string) bool {
	_, ok := VoivodeshipLabels[code]
	return ok
}
