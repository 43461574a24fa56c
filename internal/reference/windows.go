package reference

import (
	"strings"
	"time"
)

// window is an inclusive (month, day) range within a calendar year.
type window struct {
	startMonth, startDay int
	endMonth, endDay     int
	name                 string
}

// countryWindows maps ISO 3166-1 alpha-2 codes to named theatrical release
// windows. Ranges are compared as (month, day) tuples, so a window whose end
// falls in an earlier month than its start never matches.
var countryWindows = map[string][]window{
	"US": {
		{1, 1, 2, 14, "winter_dump"},
		{2, 15, 3, 15, "presidents_window"},
		{5, 1, 5, 31, "memorial_lead"},
		{5, 25, 8, 15, "summer_blockbuster"},
		{8, 25, 9, 10, "labor_day"},
		{11, 20, 11, 30, "thanksgiving"},
		{12, 15, 12, 31, "christmas_awards"},
	},
	"CA": {
		{6, 15, 8, 31, "summer"},
		{10, 5, 10, 15, "thanksgiving_ca"},
		{12, 15, 12, 31, "christmas"},
	},
	"GB": {
		{2, 10, 2, 28, "half_term_feb"},
		{3, 25, 4, 25, "easter"},
		{5, 20, 6, 10, "half_term_may"},
		{7, 10, 8, 31, "school_summer"},
		{10, 15, 10, 31, "half_term_oct"},
		{12, 15, 12, 31, "christmas"},
	},
	"DE": {
		{3, 20, 4, 20, "osterferien"},
		{6, 20, 9, 10, "sommerferien_de"},
		{10, 1, 10, 15, "herbstferien"},
		{12, 20, 12, 31, "weihnachten"},
	},
	"FR": {
		{2, 5, 3, 10, "vacances_hiver"},
		{4, 5, 5, 5, "vacances_printemps"},
		{7, 1, 8, 31, "vacances_ete"},
		{10, 15, 11, 5, "vacances_toussaint"},
		{12, 15, 12, 31, "vacances_noel"},
	},
	"IT": {
		{4, 10, 4, 30, "pasqua"},
		{8, 1, 8, 31, "ferragosto"},
		{12, 20, 12, 31, "natale"},
	},
	"ES": {
		{4, 1, 4, 15, "semana_santa"},
		{6, 20, 8, 31, "verano"},
		{12, 20, 1, 6, "navidad_reyes"},
	},
	"RU": {
		{1, 1, 1, 10, "new_year_rus"},
		{3, 5, 3, 15, "womens_day"},
		{5, 1, 5, 10, "may_holidays"},
		{12, 25, 1, 8, "winter_fest"},
	},
	"TR": {
		{4, 1, 4, 30, "ramadan_bayram"},
		{7, 1, 8, 10, "sacrifice_bayram"},
		{10, 25, 11, 10, "republic_day"},
	},
	"BR": {
		{2, 5, 3, 5, "carnaval"},
		{6, 10, 7, 31, "winter_break_br"},
		{12, 20, 12, 31, "natal"},
	},
	"MX": {
		{9, 10, 9, 20, "independencia"},
		{10, 25, 11, 5, "dia_de_muertos"},
		{12, 12, 12, 31, "navidad"},
	},
	"AR": {
		{7, 10, 7, 31, "winter_vac_ar"},
		{12, 20, 1, 10, "summer_ar"},
	},
	"CO": {
		{6, 15, 7, 15, "mitad_de_ano"},
		{12, 15, 1, 15, "navidad"},
	},
	"CL": {
		{7, 1, 7, 28, "vacaciones_invierno"},
		{9, 10, 9, 25, "fiestas_patrias"},
		{12, 15, 1, 15, "verano_cl"},
	},
	"CN": {
		{1, 15, 2, 20, "spring_festival"},
		{4, 3, 4, 10, "qingming"},
		{6, 1, 6, 30, "dragon_boat"},
		{9, 1, 10, 10, "golden_week_autumn"},
	},
	"JP": {
		{4, 29, 5, 6, "golden_week"},
		{8, 10, 8, 20, "obon"},
		{12, 23, 1, 7, "year_end"},
	},
	"KR": {
		{1, 20, 2, 10, "seollal"},
		{5, 1, 5, 10, "children_day"},
		{7, 20, 8, 20, "summer_peak"},
		{9, 5, 10, 10, "chuseok"},
	},
	"IN": {
		{8, 10, 8, 25, "independence_window"},
		{10, 15, 11, 15, "diwali"},
		{12, 20, 1, 5, "christmas_newyear"},
	},
	"TH": {
		{4, 10, 4, 20, "songkran"},
		{12, 20, 1, 5, "new_year_th"},
	},
	"PH": {
		{4, 5, 4, 25, "holy_week"},
		{12, 15, 12, 31, "christmas_ph"},
	},
	"ID": {
		{4, 1, 4, 30, "eid_al_fitr"},
		{12, 20, 1, 10, "year_end_id"},
	},
	"NG": {
		{3, 25, 4, 25, "easter_ng"},
		{6, 1, 6, 30, "eid_al_adha"},
		{12, 20, 1, 10, "christmas_ng"},
	},
	"ZA": {
		{4, 1, 4, 25, "easter_za"},
		{12, 1, 1, 10, "summer_holidays_za"},
	},
	"SA": {
		{3, 25, 4, 30, "eid_fitr_sa"},
		{6, 10, 7, 10, "eid_adha_sa"},
		{9, 20, 9, 30, "national_day_sa"},
	},
	"AE": {
		{3, 25, 4, 30, "eid_fitr_ae"},
		{6, 10, 7, 10, "eid_adha_ae"},
		{11, 20, 12, 5, "national_day_ae"},
	},
	"EG": {
		{3, 25, 4, 25, "sham_el_nessim"},
		{6, 20, 7, 20, "eid_adha_eg"},
		{1, 1, 1, 10, "christmas_copt"},
	},
	"SE": {
		{2, 15, 3, 10, "sportlov"},
		{6, 15, 8, 15, "sommar"},
		{12, 20, 1, 5, "jul"},
	},
	"NO": {
		{2, 15, 3, 5, "winter_break_no"},
		{6, 20, 8, 15, "summer_no"},
		{12, 15, 12, 31, "jul_no"},
	},
	"DK": {
		{2, 5, 2, 20, "winter_break_dk"},
		{6, 25, 8, 10, "summer_dk"},
		{10, 15, 10, 25, "autumn_break_dk"},
		{12, 15, 12, 31, "jul_dk"},
	},
	"FI": {
		{2, 20, 3, 10, "ski_break_fi"},
		{6, 5, 8, 10, "kesaloma"},
		{12, 20, 1, 5, "joulu_fi"},
	},
	"PL": {
		{1, 15, 2, 28, "ferie_zimowe"},
		{4, 1, 4, 15, "wielkanoc"},
		{5, 1, 5, 5, "majowka"},
		{6, 25, 8, 31, "wakacje"},
		{12, 20, 12, 31, "boze_narodzenie"},
	},
	"VN": {
		{1, 15, 2, 15, "tet"},
		{4, 28, 5, 3, "reunification"},
		{9, 1, 9, 5, "national_day_vn"},
	},
	"TW": {
		{1, 20, 2, 10, "lunar_new_year_tw"},
		{6, 1, 6, 10, "dragon_boat_tw"},
		{9, 15, 10, 10, "mid_autumn_tw"},
		{7, 1, 8, 31, "summer_tw"},
	},
}

var (
	seasonsNorth = [4]string{"winter", "spring", "summer", "fall"}
	seasonsSouth = [4]string{"summer", "fall", "winter", "spring"}
)

// southernHemisphere lists countries whose seasonal fallback is shifted by
// half a year.
var southernHemisphere = map[string]bool{
	"AU": true,
	"NZ": true,
	"ZA": true,
	"AR": true,
	"CL": true,
	"UY": true,
}

// ClassifyReleaseWindow maps a YYYY-MM-DD release date to a named holiday
// window for the given country, or to a hemisphere-adjusted season when no
// window matches. Returns empty string for an empty or unparseable date.
func ClassifyReleaseWindow(releaseDate, country string) string {
	releaseDate = strings.TrimSpace(releaseDate)
	if releaseDate == "" {
		return ""
	}
	parsed, err := time.Parse("2006-01-02", releaseDate)
	if err != nil {
		return ""
	}
	month := int(parsed.Month())
	day := parsed.Day()
	code := strings.ToUpper(strings.TrimSpace(country))

	for _, w := range countryWindows[code] {
		afterStart := month > w.startMonth || (month == w.startMonth && day >= w.startDay)
		beforeEnd := month < w.endMonth || (month == w.endMonth && day <= w.endDay)
		if afterStart && beforeEnd {
			return w.name
		}
	}

	seasons := seasonsNorth
	if southernHemisphere[code] {
		seasons = seasonsSouth
	}
	return seasons[(month%12)/3]
}
