package similarity

import (
	"context"
	"fmt"
	"math"

	"movienight/internal/catalog"
	"movienight/internal/reference"
	"movienight/internal/textutil"
)

const (
	numericWeight     = 0.60
	categoricalWeight = 0.40
)

// Pair is the similarity verdict for one unordered movie pair.
type Pair struct {
	AID   int64
	BID   int64
	Score float64
}

// TagSource loads the genre and theme sets pairs are compared on.
// *catalog.Store satisfies it.
type TagSource interface {
	GenresFor(ctx context.Context, movieID int64) ([]string, error)
	ThemesFor(ctx context.Context, movieID int64) ([]string, error)
}

type tagSets struct {
	genres []string
	themes []string
}

// Pairs scores every unordered pair in the given set. Duplicate ids are
// collapsed first, keeping the first occurrence; order of the result
// follows the input order.
func Pairs(ctx context.Context, movies []*catalog.Movie, tags TagSource) ([]Pair, error) {
	seen := make(map[int64]struct{}, len(movies))
	unique := make([]*catalog.Movie, 0, len(movies))
	for _, movie := range movies {
		if movie == nil {
			continue
		}
		if _, dup := seen[movie.ID]; dup {
			continue
		}
		seen[movie.ID] = struct{}{}
		unique = append(unique, movie)
	}

	sets := make(map[int64]tagSets, len(unique))
	for _, movie := range unique {
		loaded, err := loadTags(ctx, tags, movie.ID)
		if err != nil {
			return nil, err
		}
		sets[movie.ID] = loaded
	}

	pairs := make([]Pair, 0, len(unique)*(len(unique)-1)/2)
	for i := 0; i < len(unique); i++ {
		for j := i + 1; j < len(unique); j++ {
			a, b := unique[i], unique[j]
			pairs = append(pairs, Pair{
				AID:   a.ID,
				BID:   b.ID,
				Score: pairScore(a, b, sets[a.ID], sets[b.ID]),
			})
		}
	}
	return pairs, nil
}

func loadTags(ctx context.Context, tags TagSource, movieID int64) (tagSets, error) {
	if tags == nil {
		return tagSets{}, nil
	}
	genres, err := tags.GenresFor(ctx, movieID)
	if err != nil {
		return tagSets{}, fmt.Errorf("load genres for movie %d: %w", movieID, err)
	}
	themes, err := tags.ThemesFor(ctx, movieID)
	if err != nil {
		return tagSets{}, fmt.Errorf("load themes for movie %d: %w", movieID, err)
	}
	return tagSets{genres: genres, themes: themes}, nil
}

func pairScore(a, b *catalog.Movie, aTags, bTags tagSets) float64 {
	numeric := textutil.Cosine(featureVector(a), featureVector(b))
	categorical := categoricalScore(a, b, aTags, bTags)
	return round3(numericWeight*numeric + categoricalWeight*categorical)
}

// featureVector scales the six numeric dimensions into comparable ranges.
// An unknown year sits at the 2000 pivot; other unknowns contribute zero.
func featureVector(m *catalog.Movie) []float64 {
	year := m.Year
	if year == 0 {
		year = 2000
	}
	box := 0.0
	if m.BoxOfficeActual > 0 {
		box = math.Log10(math.Max(m.BoxOfficeActual, 1))
	}
	return []float64{
		float64(year-2000) / 50,
		float64(m.DurationSeconds) / 3600,
		box,
		scoreOrZero(m.GoogleTrendScore) / 100,
		scoreOrZero(m.CombinedScore) / 100,
		scoreOrZero(m.ActorTrendScore) / 100,
	}
}

func categoricalScore(a, b *catalog.Movie, aTags, bTags tagSets) float64 {
	exact := 0
	if a.ReleaseWindow == b.ReleaseWindow {
		exact++
	}
	if reference.AgeGroup(a.Origin, a.RatingCert) == reference.AgeGroup(b.Origin, b.RatingCert) {
		exact++
	}
	if a.Origin == b.Origin {
		exact++
	}
	exactScore := float64(exact) / 3

	genreScore := textutil.Jaccard(aTags.genres, bTags.genres)
	themeScore := textutil.Jaccard(aTags.themes, bTags.themes)

	return (exactScore + genreScore + themeScore) / 3
}

func scoreOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
