package scoring_test

import (
	"math"
	"testing"

	"movienight/internal/scoring"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestPosteriorEmptyHistogram(t *testing.T) {
	mean, variance := scoring.Posterior(nil)
	if mean != 0 || variance != 1 {
		t.Fatalf("Posterior(nil) = (%v, %v), want (0, 1)", mean, variance)
	}
	mean, variance = scoring.Posterior(map[int]int{5: 0})
	if mean != 0 || variance != 1 {
		t.Fatalf("Posterior(zero votes) = (%v, %v), want (0, 1)", mean, variance)
	}
}

func TestPosteriorSingleBucket(t *testing.T) {
	// Ten 10-star votes: alpha = 101, beta = 11.
	mean, variance := scoring.Posterior(map[int]int{10: 10})
	approx(t, "mean", mean, 101.0/112.0*10)
	approx(t, "variance", variance, 101.0*11.0/(112.0*112.0*113.0)*100)
}

func TestPosteriorUniformHistogram(t *testing.T) {
	histogram := make(map[int]int, 10)
	for star := 1; star <= 10; star++ {
		histogram[star] = 1
	}
	mean, variance := scoring.Posterior(histogram)
	approx(t, "mean", mean, 5.0)
	approx(t, "variance", variance, 56.0*56.0/(112.0*112.0*113.0)*100)
}

func TestFairnessBonus(t *testing.T) {
	base := scoring.Baselines{
		PopulationShare: map[string]float64{"KR": 0.02, "US": 0.06},
		CatalogueShare:  map[string]float64{"KR": 0.004, "US": 0.50},
	}
	approx(t, "under-represented", scoring.FairnessBonus("KR", base), 0.08)
	approx(t, "over-represented", scoring.FairnessBonus("US", base), 0)
	approx(t, "unknown origin", scoring.FairnessBonus("ZZ", base), 0)
	approx(t, "case folded", scoring.FairnessBonus("kr", base), 0.08)
}

func TestDemographicWeight(t *testing.T) {
	neutral := scoring.Baselines{}
	approx(t, "imdb", scoring.DemographicWeight(scoring.SourceIMDB, "US", neutral), 1/1.5)
	approx(t, "imdb lowercase", scoring.DemographicWeight("imdb", "US", neutral), 1/1.5)
	approx(t, "imdb mixed case", scoring.DemographicWeight("IMDb", "US", neutral), 1/1.5)
	approx(t, "rt critic", scoring.DemographicWeight(scoring.SourceRTCritic, "US", neutral), 1/1.2)
	approx(t, "metacritic", scoring.DemographicWeight(scoring.SourceMetacritic, "US", neutral), 1/1.2)
	approx(t, "tmdb", scoring.DemographicWeight(scoring.SourceTMDB, "US", neutral), 1.0)

	gappy := scoring.Baselines{PopulationShare: map[string]float64{"NG": 0.1}}
	approx(t, "origin bonus", scoring.DemographicWeight(scoring.SourceTMDB, "NG", gappy), 1.3)
	approx(t, "bonus over penalty", scoring.DemographicWeight(scoring.SourceIMDB, "NG", gappy), 1.3/1.5)
}

func TestCombinedScoreScalarsOnly(t *testing.T) {
	critics := map[string]scoring.CriticAggregate{
		scoring.SourceIMDB:     {Score: 80, N: 100},
		scoring.SourceRTCritic: {Score: 90, N: 50},
	}
	got := scoring.CombinedScore("US", nil, critics, scoring.Baselines{})
	// Weights 100/1.5 and 50/1.2; weighted mean 8.3846, scaled to 83.85.
	approx(t, "combined", got, 83.85)
}

func TestCombinedScoreSingleHistogram(t *testing.T) {
	histograms := map[string]map[int]int{
		scoring.SourceIMDB: {10: 10},
	}
	got := scoring.CombinedScore("US", histograms, nil, scoring.Baselines{})
	// Single source: the weight cancels, leaving the posterior mean x10.
	approx(t, "combined", got, 90.18)
}

func TestCombinedScoreIgnoresEmptySources(t *testing.T) {
	histograms := map[string]map[int]int{
		scoring.SourceIMDB: {},
	}
	critics := map[string]scoring.CriticAggregate{
		scoring.SourceRTCritic: {Score: 80, N: 0},
	}
	if got := scoring.CombinedScore("US", histograms, critics, scoring.Baselines{}); got != 0 {
		t.Fatalf("CombinedScore = %v, want 0 with no usable sources", got)
	}
	if got := scoring.CombinedScore("US", nil, nil, scoring.Baselines{}); got != 0 {
		t.Fatalf("CombinedScore = %v, want 0 with no sources at all", got)
	}
}

func TestCombinedScoreAddsFairnessBonus(t *testing.T) {
	base := scoring.Baselines{PopulationShare: map[string]float64{"NG": 0.05}}
	critics := map[string]scoring.CriticAggregate{
		scoring.SourceTMDB: {Score: 80, N: 10},
	}
	approx(t, "combined", scoring.CombinedScore("NG", nil, critics, base), 80.25)
}

func TestCombinedScoreCappedAt100(t *testing.T) {
	base := scoring.Baselines{PopulationShare: map[string]float64{"XX": 1.0}}
	critics := map[string]scoring.CriticAggregate{
		scoring.SourceTMDB: {Score: 100, N: 10},
	}
	approx(t, "combined", scoring.CombinedScore("XX", nil, critics, base), 100)
}

func TestGTrendFair(t *testing.T) {
	base := scoring.Baselines{
		InternetPenetration: map[string]float64{"KR": 0.6, "YY": 0.01},
	}
	approx(t, "normalized", scoring.GTrendFair(30, "KR", base), 50)
	approx(t, "default penetration", scoring.GTrendFair(30, "ZZ", base), 85.71)
	approx(t, "floored penetration capped", scoring.GTrendFair(30, "YY", base), 100)
	approx(t, "zero raw", scoring.GTrendFair(0, "KR", base), 0)
}

func TestActorTrendFair(t *testing.T) {
	neutral := scoring.Baselines{}
	approx(t, "blend", scoring.ActorTrendFair(50, 70, "US", neutral), 64)

	base := scoring.Baselines{
		PopulationShare: map[string]float64{"KR": 0.02},
		CatalogueShare:  map[string]float64{"KR": 0.004},
	}
	approx(t, "with half bonus", scoring.ActorTrendFair(50, 70, "KR", base), 64.04)
	approx(t, "capped", scoring.ActorTrendFair(100, 100, "US", neutral), 100)
}

func TestPopularityFromRank(t *testing.T) {
	cases := []struct {
		rank int
		want float64
	}{
		{0, 0},
		{-3, 0},
		{1, 100},
		{10, 80},
		{100, 60},
		{1000, 40},
		{100000, 0},
		{10000000, 0},
	}
	for _, tc := range cases {
		got := scoring.PopularityFromRank(tc.rank)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("PopularityFromRank(%d) = %v, want %v", tc.rank, got, tc.want)
		}
	}
}
