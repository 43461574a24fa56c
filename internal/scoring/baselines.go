package scoring

import (
	"math"
	"strings"
)

// Canonical rating source names as stored in the catalogue.
const (
	SourceIMDB       = "IMDB"
	SourceTMDB       = "TMDB"
	SourceMetacritic = "METACRITIC"
	SourceRTCritic   = "RT_CRITIC"
	SourceRTAudience = "RT_AUDIENCE"
)

const fairnessK = 5.0

// Baselines snapshots the per-country shares the fairness helpers read.
// Nil maps are valid and behave as all-zero.
type Baselines struct {
	// PopulationShare is each country's share of the world's internet
	// users, summing to roughly 1.
	PopulationShare map[string]float64
	// CatalogueShare is each country's share of the movies already in
	// the catalogue.
	CatalogueShare map[string]float64
	// InternetPenetration is the online fraction of each country's
	// population, in (0, 1].
	InternetPenetration map[string]float64
}

// OriginGap measures how under-represented a country is in the catalogue:
// max(population share minus catalogue share, 0).
func (b Baselines) OriginGap(origin string) float64 {
	origin = strings.ToUpper(strings.TrimSpace(origin))
	gap := b.PopulationShare[origin] - b.CatalogueShare[origin]
	if gap < 0 {
		return 0
	}
	return gap
}

// FairnessBonus awards up to fairnessK extra points to films from
// under-represented origins.
func FairnessBonus(origin string, b Baselines) float64 {
	return round2(fairnessK * b.OriginGap(origin))
}

// DemographicWeight scales a source's influence on a movie: sources with
// a known demographic skew are penalized, and the weight grows with the
// origin gap so thin catalogue regions are not drowned out.
func DemographicWeight(source, origin string, b Baselines) float64 {
	bonus := 1 + 3*b.OriginGap(origin)
	return bonus / sourcePenalty(source)
}

// sourcePenalty dampens sources with a known demographic skew. Names are
// folded to bare alphanumerics so storage and provider spellings agree.
func sourcePenalty(source string) float64 {
	switch foldSource(source) {
	case "IMDB":
		return 1.5
	case "METACRITIC", "RTCRITIC":
		return 1.2
	default:
		return 1.0
	}
}

func foldSource(source string) string {
	var b strings.Builder
	b.Grow(len(source))
	for _, r := range strings.ToUpper(source) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
