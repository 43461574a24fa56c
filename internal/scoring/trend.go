package scoring

import (
	"math"
	"strings"
)

const (
	defaultPenetration = 0.35
	minPenetration     = 0.05
)

// GTrendFair normalizes a raw Google Trends value by the origin country's
// internet penetration, so interest from poorly connected regions is not
// undercounted. Rounded to 2 places, capped at 100.
func GTrendFair(raw float64, origin string, b Baselines) float64 {
	origin = strings.ToUpper(strings.TrimSpace(origin))
	pen, ok := b.InternetPenetration[origin]
	if !ok {
		pen = defaultPenetration
	}
	if pen < minPenetration {
		pen = minPenetration
	}
	return math.Min(round2(raw/pen), 100)
}

// ActorTrendFair blends cast popularity (30%) with search interest (70%)
// and adds half the fairness bonus, capped at 100.
func ActorTrendFair(popularity, trend float64, origin string, b Baselines) float64 {
	raw := 0.3*popularity + 0.7*trend
	bonus := FairnessBonus(origin, b) / 2
	return round2(math.Min(raw+bonus, 100))
}

// PopularityFromRank maps a popularity rank (1 = hottest title on the
// site) onto a 0-100 scale spanning five orders of magnitude: rank 1
// scores 100, rank 10 scores 80, rank 100,000 and beyond score 0. A rank
// of zero means unranked.
func PopularityFromRank(rank int) float64 {
	if rank <= 0 {
		return 0
	}
	value := 100 - 20*math.Log10(float64(rank))
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
