package catalog

import "time"

// Movie is the canonical persisted record for one film. String and integer
// zero values mean the field has not been filled yet; the three trend and
// combined scores keep a nil/value distinction because NULL ("not yet
// computed") and a genuine 0.0 score must not collapse into each other.
type Movie struct {
	ID                int64
	Title             string
	TMDBID            int64
	PlotDesc          string
	Year              int
	ReleaseWindow     string
	RatingCert        string
	DurationSeconds   int
	YouTubeLink       string
	BoxOfficeExpected float64
	BoxOfficeActual   float64
	GoogleTrendScore  *float64
	ActorTrendScore   *float64
	CombinedScore     *float64
	Franchise         string
	Origin            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RuntimeMinutes converts the stored duration to whole minutes, the unit
// identity matching works in. Returns 0 when the duration is unknown.
func (m *Movie) RuntimeMinutes() int {
	if m == nil || m.DurationSeconds <= 0 {
		return 0
	}
	return m.DurationSeconds / 60
}

// RatingSample is one external source's verdict on a movie: a 0-100 score
// plus how many votes or reviews back it. (movie, source) is unique;
// refreshes overwrite in place.
type RatingSample struct {
	MovieID     int64
	Source      string
	Score       float64
	SampleCount int
	UpdatedAt   time.Time
}

// GradeSummary aggregates the night attendees' 0-100 grades for one movie.
type GradeSummary struct {
	Average float64
	Count   int
}

// Summary is the headline catalogue state shown by the stats command.
type Summary struct {
	TotalMovies    int
	WithTrailer    int
	WithoutTrailer int
	Scored         int
	RatingSamples  int
	Lists          int
	Users          int
}
