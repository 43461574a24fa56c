package identity

import "movienight/internal/textutil"

// Signal weights for the blended match score. Weights are renormalized
// over the signals present on both sides, so a pair with titles only is
// judged on titles alone.
const (
	titleWeight   = 0.60
	runtimeWeight = 0.20
	yearWeight    = 0.20
)

// Default matcher settings. Empirically chosen; override via config.
const (
	DefaultThreshold        = 0.80
	DefaultRuntimeTolerance = 10
	DefaultYearTolerance    = 1
)

// Matcher decides whether two fingerprints describe the same film.
type Matcher struct {
	threshold        float64
	runtimeTolerance int
	yearTolerance    int
}

// NewMatcher returns a matcher with the given acceptance threshold and
// agreement tolerances. Zero or negative settings fall back to the
// defaults.
func NewMatcher(threshold float64, runtimeToleranceMinutes, yearTolerance int) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if runtimeToleranceMinutes <= 0 {
		runtimeToleranceMinutes = DefaultRuntimeTolerance
	}
	if yearTolerance <= 0 {
		yearTolerance = DefaultYearTolerance
	}
	return &Matcher{
		threshold:        threshold,
		runtimeTolerance: runtimeToleranceMinutes,
		yearTolerance:    yearTolerance,
	}
}

// SameMovie reports whether a and b describe the same film, with a
// confidence in [0,1].
//
// Matching external ids are decisive in both directions and short-circuit
// every other signal. Otherwise the verdict is a weighted blend of title
// cosine similarity, runtime agreement, and year agreement over whichever
// signals both fingerprints carry. No shared signals yields (false, 0).
func (m *Matcher) SameMovie(a, b Fingerprint) (bool, float64) {
	if a.IMDBID != "" && b.IMDBID != "" {
		if a.IMDBID == b.IMDBID {
			return true, 1.0
		}
		return false, 0.0
	}

	var score, weight float64

	if len(a.TitleVec) > 0 && len(b.TitleVec) > 0 {
		score += titleWeight * textutil.Cosine(a.TitleVec, b.TitleVec)
		weight += titleWeight
	}

	if a.RuntimeMinutes > 0 && b.RuntimeMinutes > 0 {
		if abs(a.RuntimeMinutes-b.RuntimeMinutes) <= m.runtimeTolerance {
			score += runtimeWeight
		}
		weight += runtimeWeight
	}

	if a.Year > 0 && b.Year > 0 {
		if abs(a.Year-b.Year) <= m.yearTolerance {
			score += yearWeight
		}
		weight += yearWeight
	}

	if weight == 0 {
		return false, 0.0
	}

	confidence := score / weight
	return confidence >= m.threshold, confidence
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
