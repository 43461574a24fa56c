package scoring

import "math"

// Posterior returns the Beta-Binomial posterior mean (0-10 scale) and
// variance for a 10-bucket star histogram. The unit prior keeps both
// defined for an empty histogram: (0, 1).
func Posterior(histogram map[int]int) (mean, variance float64) {
	total := 0
	for _, votes := range histogram {
		total += votes
	}
	if total == 0 {
		return 0, 1
	}
	alpha, beta := 1.0, 1.0
	for star, votes := range histogram {
		alpha += float64(star * votes)
		beta += float64((11 - star) * votes)
	}
	sum := alpha + beta
	mean = alpha / sum * 10
	variance = alpha * beta / (sum * sum * (sum + 1)) * 100
	return mean, variance
}

// CriticAggregate is one source's scalar verdict: a 0-100 score backed by
// N individual reviews.
type CriticAggregate struct {
	Score float64
	N     int
}

// CombinedScore fuses star histograms and critic aggregates into one
// 0-100 score. Histogram sources weigh in at 1/variance, critic sources
// at their review count, both scaled by the demographic weight; the
// fairness bonus is added after averaging and the result capped at 100.
// No usable sources yields 0.
func CombinedScore(origin string, histograms map[string]map[int]int, critics map[string]CriticAggregate, b Baselines) float64 {
	var sumWeights, sumWeighted float64

	for source, histogram := range histograms {
		mean, variance := Posterior(histogram)
		if variance == 1 && mean == 0 {
			// Empty histogram carries no information.
			continue
		}
		weight := 1 / variance * DemographicWeight(source, origin, b)
		sumWeights += weight
		sumWeighted += weight * mean
	}

	for source, aggregate := range critics {
		if aggregate.N <= 0 {
			continue
		}
		weight := float64(aggregate.N) * DemographicWeight(source, origin, b)
		sumWeights += weight
		sumWeighted += weight * (aggregate.Score / 10)
	}

	if sumWeights == 0 {
		return 0
	}
	raw := sumWeighted / sumWeights * 10
	return round2(math.Min(raw+FairnessBonus(origin, b), 100))
}
