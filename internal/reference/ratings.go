package reference

import (
	"regexp"
	"strconv"
	"strings"
)

// Age-group buckets derived from certification symbols.
const (
	AgeAllAges = "all_ages"
	AgeKids    = "kids"
	AgeTeen    = "teen"
	AgeAdult   = "adult"
	AgeUnknown = "unknown"
)

// letterToAge maps digit-free certification symbols to a minimum age.
// Symbols containing digits are handled by extraction and never reach
// this table.
var letterToAge = map[string]int{
	"G": 0, "U": 0, "L": 0, "A": 0, "AA": 0, "ATP": 0, "TE": 0, "TP": 0,
	"PG": 8, "P": 8, "PG-13": 13, "PG12": 12, "PG15": 15,
	"M": 15, "B-15": 15, "R": 17, "C": 18, "D": 18, "X": 18,
	"NC-17": 17, "R15+": 15, "R18+": 18,
	"MA 15+": 15, "MA": 15, "16": 16, "18": 18, "20": 20, "21+": 21,
}

// ratingScheme describes one country's certification system.
type ratingScheme struct {
	body        string
	levels      []string
	adultCutoff string
}

var ratingSchemes = map[string]ratingScheme{
	"US": {"MPA", []string{"G", "PG", "PG-13", "R", "NC-17"}, "NC-17"},
	"CA": {"Consumer Protection BC / Régie", []string{"G", "PG", "14A", "18A", "R"}, "R"},
	"GB": {"BBFC", []string{"U", "PG", "12A", "15", "18"}, "18"},
	"IE": {"IFCO", []string{"G", "PG", "12A", "15A", "16", "18"}, "18"},
	"SE": {"Statens Medieråd", []string{"A", "7", "11", "15"}, "15"},
	"NO": {"Medietilsynet", []string{"A", "6", "9", "12", "15", "18"}, "18"},
	"DK": {"Medierådet", []string{"A", "7", "11", "15"}, "15"},
	"FI": {"KAVI", []string{"S", "7", "12", "16", "18"}, "18"},
	"DE": {"FSK", []string{"0", "6", "12", "16", "18"}, "18"},
	"FR": {"CNC Visa", []string{"U", "10", "12", "16", "18"}, "18"},
	"IT": {"DGCA", []string{"T", "12", "14", "18"}, "18"},
	"ES": {"ICAA", []string{"APT", "7", "12", "16", "18"}, "18"},
	"PL": {"PISF", []string{"G", "12", "15", "18"}, "18"},
	"RU": {"Min. Culture", []string{"0+", "6+", "12+", "16+", "18+"}, "18+"},
	"SA": {"GCAM", []string{"G", "PG", "PG12", "PG15", "18"}, "18"},
	"AE": {"UAE Media Office", []string{"G", "PG13", "PG15", "15+", "18", "21"}, "18"},
	"EG": {"Censorship Authority", []string{"General", "12+", "16+", "18+"}, "18+"},
	"TR": {"MoC Kültür", []string{"Genel", "6+", "10+", "13+", "16+", "18+"}, "18+"},
	"JP": {"EIRIN", []string{"G", "PG12", "R15+", "R18+"}, "R18+"},
	"KR": {"KMRB", []string{"ALL", "12", "15", "18", "Restricted"}, "18"},
	"CN": {"SAPPRFT (Cut)", []string{"Not Rated"}, "Not Rated"},
	"IN": {"CBFC", []string{"U", "UA", "A", "S"}, "A"},
	"TH": {"NBTC", []string{"G", "P", "13", "15", "18", "20"}, "18"},
	"PH": {"MTRCB", []string{"G", "PG", "R-13", "R-16", "R-18", "X"}, "R-18"},
	"ID": {"LSF", []string{"SU", "13+", "17+", "21+"}, "21+"},
	"VN": {"DPRA", []string{"P", "C13", "T16", "T18"}, "T18"},
	"TW": {"Govie Rating", []string{"G", "P", "PG12", "PG15", "R"}, "R"},
	"BR": {"DJCTQ", []string{"L", "10", "12", "14", "16", "18"}, "18"},
	"MX": {"RTC", []string{"AA", "A", "B", "B-15", "C", "D"}, "C"},
	"AR": {"INCAA", []string{"ATP", "13", "16", "18"}, "18"},
	"CO": {"MinTIC", []string{"TP", "12", "15", "18"}, "18"},
	"CL": {"Consejo Cine", []string{"TE", "7", "14", "18"}, "18"},
	"NG": {"NFVCB", []string{"G", "PG", "12", "15", "18"}, "18"},
	"ZA": {"FPB", []string{"A", "PG", "7-9PG", "10-12PG", "13", "16", "18", "X18"}, "18"},
}

var digitGroupPattern = regexp.MustCompile(`\d+`)

// RatingMinAge returns the minimum recommended age implied by a
// certification symbol. The first digit group in the symbol wins; digit-free
// symbols fall back to a letter table. The second return is false when the
// symbol is unrecognized.
func RatingMinAge(country, symbol string) (int, bool) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if digits := digitGroupPattern.FindString(s); digits != "" {
		if age, err := strconv.Atoi(digits); err == nil {
			return age, true
		}
	}
	age, ok := letterToAge[s]
	return age, ok
}

// AgeGroup maps a certification symbol to one of the broad age buckets.
// Unrecognized symbols resolve to AgeAdult when they equal the country
// scheme's adult cutoff, otherwise AgeUnknown.
func AgeGroup(country, symbol string) string {
	age, ok := RatingMinAge(country, symbol)
	if !ok {
		scheme, found := ratingSchemes[strings.ToUpper(strings.TrimSpace(country))]
		if found && symbol == scheme.adultCutoff {
			return AgeAdult
		}
		return AgeUnknown
	}
	switch {
	case age < 7:
		return AgeAllAges
	case age < 13:
		return AgeKids
	case age < 17:
		return AgeTeen
	default:
		return AgeAdult
	}
}

// CertificationBody returns the name of the rating body for a country, or
// empty string when the country has no registered scheme.
func CertificationBody(country string) string {
	scheme, ok := ratingSchemes[strings.ToUpper(strings.TrimSpace(country))]
	if !ok {
		return ""
	}
	return scheme.body
}
