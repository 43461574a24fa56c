package reference

// CountryBaseline carries the demographic reference figures for one country:
// its share of global internet users and the fraction of its population that
// is online. Shares are in [0,1] and sum to less than 1 across the covered
// set.
type CountryBaseline struct {
	PopulationShare     float64
	InternetPenetration float64
}

var countryBaselines = map[string]CountryBaseline{
	"US": {0.0570, 0.93},
	"CA": {0.0068, 0.94},
	"GB": {0.0120, 0.97},
	"IE": {0.0009, 0.96},
	"DE": {0.0140, 0.93},
	"FR": {0.0110, 0.93},
	"IT": {0.0094, 0.87},
	"ES": {0.0083, 0.96},
	"PL": {0.0066, 0.87},
	"RU": {0.0240, 0.90},
	"TR": {0.0140, 0.87},
	"BR": {0.0330, 0.84},
	"MX": {0.0200, 0.83},
	"AR": {0.0074, 0.88},
	"CO": {0.0072, 0.75},
	"CL": {0.0033, 0.90},
	"CN": {0.2020, 0.77},
	"JP": {0.0220, 0.94},
	"KR": {0.0093, 0.97},
	"IN": {0.1600, 0.52},
	"TH": {0.0120, 0.88},
	"PH": {0.0160, 0.75},
	"ID": {0.0400, 0.77},
	"VN": {0.0140, 0.79},
	"NG": {0.0190, 0.45},
	"ZA": {0.0083, 0.74},
	"SA": {0.0066, 0.99},
	"AE": {0.0018, 0.99},
	"EG": {0.0150, 0.72},
	"SE": {0.0019, 0.96},
	"NO": {0.0010, 0.99},
	"DK": {0.0011, 0.98},
	"FI": {0.0010, 0.97},
	"TW": {0.0040, 0.90},
	"AU": {0.0046, 0.96},
	"NZ": {0.0009, 0.96},
}

// CountryBaselines returns a copy of the embedded baseline table keyed by
// ISO 3166-1 alpha-2 code. Callers may mutate the returned map freely.
func CountryBaselines() map[string]CountryBaseline {
	out := make(map[string]CountryBaseline, len(countryBaselines))
	for code, b := range countryBaselines {
		out[code] = b
	}
	return out
}
