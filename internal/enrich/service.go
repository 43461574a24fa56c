package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"movienight/internal/catalog"
	"movienight/internal/identity"
	"movienight/internal/logging"
	"movienight/internal/metadata/omdb"
	"movienight/internal/metadata/tmdb"
	"movienight/internal/scoring"
	"movienight/internal/scrape"
	"movienight/internal/services"
	"movienight/internal/trailer"
)

// Store is the catalogue surface the orchestrator reads and writes.
// *catalog.Store satisfies it.
type Store interface {
	GetByID(ctx context.Context, id int64) (*catalog.Movie, error)
	FindByTMDBID(ctx context.Context, tmdbID int64) (*catalog.Movie, error)
	CreateMovie(ctx context.Context, title string) (*catalog.Movie, error)
	UpdateField(ctx context.Context, id int64, column string, value any) error
	IsFieldMissing(ctx context.Context, id int64, column string) (bool, error)
	Movies(ctx context.Context, afterID int64) ([]*catalog.Movie, error)
	MoviesMissingField(ctx context.Context, column string, afterID int64) ([]*catalog.Movie, error)
	LinkGenre(ctx context.Context, movieID int64, name string) error
	UpsertRating(ctx context.Context, movieID int64, source string, score float64, sampleCount int) error
	RatingsFor(ctx context.Context, movieID int64) ([]catalog.RatingSample, error)
	Checkpoint(ctx context.Context, job string) (int64, error)
	SetCheckpoint(ctx context.Context, job string, lastID int64) error
	ClearCheckpoint(ctx context.Context, job string) error
	PopulationShares(ctx context.Context) (map[string]float64, error)
	CatalogueShares(ctx context.Context) (map[string]float64, error)
	InternetPenetration(ctx context.Context) (map[string]float64, error)
}

// MetadataProvider is the primary metadata face of the orchestrator,
// implemented by the TMDb client.
type MetadataProvider interface {
	FetchMetadata(ctx context.Context, title string) (*tmdb.Metadata, error)
	FetchUserRating(ctx context.Context, title string) (average float64, votes int, ok bool, err error)
	DiscoverByRegion(ctx context.Context, region string, page int) ([]tmdb.Result, error)
	Countries(ctx context.Context) ([]tmdb.Country, error)
}

// SecondaryProvider is the OMDb face: whole payloads for fingerprint
// confirmation plus the title-keyed lookups.
type SecondaryProvider interface {
	PayloadByID(ctx context.Context, imdbID string) (*omdb.Payload, error)
	PayloadByTitle(ctx context.Context, title string) (*omdb.Payload, error)
	IMDbID(ctx context.Context, title string) (string, error)
	Ratings(ctx context.Context, title string) (map[string]float64, error)
}

// DetailScraper fetches the ratings-page details for one imdb id.
type DetailScraper interface {
	FetchAll(ctx context.Context, imdbID string) (*scrape.TitleDetails, error)
}

// TrendProvider resolves the 7-day search interest for a term.
type TrendProvider interface {
	Fetch7DayAverage(ctx context.Context, term string) (int, bool, error)
}

// TrailerResolver runs the trailer location cascade for a title.
type TrailerResolver interface {
	Resolve(ctx context.Context, title string) (url string, source trailer.Source, confidence float64, err error)
}

// Service wires the providers to the catalogue. The scraper, trend and
// trailer dependencies are optional; a nil dependency skips its step.
type Service struct {
	store     Store
	metadata  MetadataProvider
	secondary SecondaryProvider
	scraper   DetailScraper
	trends    TrendProvider
	trailers  TrailerResolver
	matcher   *identity.Matcher
	logger    *slog.Logger

	mu   sync.Mutex
	base *scoring.Baselines
}

// Option configures a Service.
type Option func(*Service)

// WithScraper enables the IMDb detail scraper step.
func WithScraper(scraper DetailScraper) Option {
	return func(s *Service) {
		s.scraper = scraper
	}
}

// WithTrendProvider enables the Google-trend step.
func WithTrendProvider(trends TrendProvider) Option {
	return func(s *Service) {
		s.trends = trends
	}
}

// WithTrailerResolver enables the trailer step and the trailer sweep.
func WithTrailerResolver(resolver TrailerResolver) Option {
	return func(s *Service) {
		s.trailers = resolver
	}
}

// WithMatcher replaces the identity matcher used to confirm OMDb payloads.
func WithMatcher(matcher *identity.Matcher) Option {
	return func(s *Service) {
		if matcher != nil {
			s.matcher = matcher
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService builds an orchestrator over the given store and providers.
func NewService(store Store, metadata MetadataProvider, secondary SecondaryProvider, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("store must not be nil")
	}
	if metadata == nil {
		return nil, errors.New("metadata provider must not be nil")
	}
	if secondary == nil {
		return nil, errors.New("secondary provider must not be nil")
	}
	service := &Service{
		store:     store,
		metadata:  metadata,
		secondary: secondary,
		matcher:   identity.NewMatcher(0, 0, 0),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// tmdbColumns are the movie columns the primary metadata step can fill.
// The fetch is skipped when none of them is missing, so a complete movie
// costs no provider call.
var tmdbColumns = []string{
	"tmdb_id",
	"year",
	"release_window",
	"rating_cert",
	"duration_seconds",
	"youtube_link",
	"origin",
	"box_office_actual",
	"franchise",
}

// EnrichMovie fills the missing fields of one movie in provider priority
// order and recomputes its combined score. Provider failures downgrade to
// log lines and the next step runs; only rate limiting, cancellation and
// store errors abort.
func (s *Service) EnrichMovie(ctx context.Context, movieID int64) error {
	movie, err := s.loadMovie(ctx, movieID)
	if err != nil {
		return err
	}

	meta, err := s.applyPrimaryMetadata(ctx, movie)
	if err != nil {
		return err
	}
	if err := s.applySecondaryFields(ctx, movie, meta); err != nil {
		return err
	}

	// Reload so the later steps see the fields the first two just filled.
	// Origin in particular drives every fairness term.
	movie, err = s.loadMovie(ctx, movieID)
	if err != nil {
		return err
	}

	details, err := s.applyRatingDetails(ctx, movie, meta)
	if err != nil {
		return err
	}
	if err := s.applyTrailer(ctx, movie); err != nil {
		return err
	}
	if err := s.applyTrendScores(ctx, movie, details); err != nil {
		return err
	}
	return s.recomputeCombined(ctx, movie)
}

// UpdateScoresAndTrends refreshes the external rating samples for one
// movie, fills missing trend scores and recomputes the combined score.
// Unlike EnrichMovie it always re-fetches the TMDb and OMDb ratings.
func (s *Service) UpdateScoresAndTrends(ctx context.Context, movieID int64) error {
	movie, err := s.loadMovie(ctx, movieID)
	if err != nil {
		return err
	}

	average, votes, ok, err := s.metadata.FetchUserRating(ctx, movie.Title)
	if err != nil {
		if services.HaltsSweep(err) {
			return err
		}
		s.logger.Warn("tmdb user rating fetch failed",
			logging.Int64("movie_id", movie.ID),
			logging.String("title", movie.Title),
			logging.Error(err))
	} else if ok {
		if err := s.store.UpsertRating(ctx, movie.ID, scoring.SourceTMDB, average*10, votes); err != nil {
			return err
		}
	}

	scores, err := s.secondary.Ratings(ctx, movie.Title)
	if err != nil {
		if services.HaltsSweep(err) {
			return err
		}
		s.logger.Warn("omdb ratings fetch failed",
			logging.Int64("movie_id", movie.ID),
			logging.String("title", movie.Title),
			logging.Error(err))
	} else if len(scores) > 0 {
		stored, err := s.storedRatings(ctx, movie.ID)
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(scores))
		for key := range scores {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			source := strings.ToUpper(key)
			// OMDb never reports sample sizes; keep whatever count an
			// earlier scrape recorded for the source.
			count := stored[source].SampleCount
			if err := s.store.UpsertRating(ctx, movie.ID, source, scores[key], count); err != nil {
				return err
			}
		}
	}

	if err := s.applyTrendScores(ctx, movie, nil); err != nil {
		return err
	}
	return s.recomputeCombined(ctx, movie)
}

func (s *Service) loadMovie(ctx context.Context, movieID int64) (*catalog.Movie, error) {
	movie, err := s.store.GetByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, fmt.Errorf("%w: movie %d", services.ErrNotFound, movieID)
	}
	return movie, nil
}

// applyPrimaryMetadata fills the TMDb-backed columns and links genres. The
// returned metadata feeds the OMDb confirmation and the scraper step; it
// is nil when the fetch was skipped, failed softly or found no match.
func (s *Service) applyPrimaryMetadata(ctx context.Context, movie *catalog.Movie) (*tmdb.Metadata, error) {
	needed, err := s.anyFieldMissing(ctx, movie.ID, tmdbColumns)
	if err != nil {
		return nil, err
	}
	if !needed {
		return nil, nil
	}

	meta, err := s.metadata.FetchMetadata(ctx, movie.Title)
	if err != nil {
		if services.HaltsSweep(err) {
			return nil, err
		}
		s.logger.Warn("tmdb metadata fetch failed",
			logging.Int64("movie_id", movie.ID),
			logging.String("title", movie.Title),
			logging.Error(err))
		return nil, nil
	}
	if meta == nil {
		s.logger.Info("tmdb has no match",
			logging.Int64("movie_id", movie.ID),
			logging.String("title", movie.Title))
		return nil, nil
	}

	for _, field := range metadataFields(meta) {
		if err := s.fillMissing(ctx, movie.ID, field.column, field.value); err != nil {
			return nil, err
		}
	}
	for _, genre := range meta.Genres {
		if err := s.store.LinkGenre(ctx, movie.ID, genre); err != nil {
			return nil, err
		}
	}
	return meta, nil
}

type fieldValue struct {
	column string
	value  any
}

// metadataFields lists the column writes a TMDb payload offers, in a fixed
// order, skipping values the provider had nothing for.
func metadataFields(meta *tmdb.Metadata) []fieldValue {
	fields := make([]fieldValue, 0, len(tmdbColumns))
	if meta.TMDBID != 0 {
		fields = append(fields, fieldValue{"tmdb_id", meta.TMDBID})
	}
	if meta.Year != 0 {
		fields = append(fields, fieldValue{"year", meta.Year})
	}
	if meta.ReleaseWindow != "" {
		fields = append(fields, fieldValue{"release_window", meta.ReleaseWindow})
	}
	if meta.RatingCert != "" {
		fields = append(fields, fieldValue{"rating_cert", meta.RatingCert})
	}
	if meta.DurationSeconds != 0 {
		fields = append(fields, fieldValue{"duration_seconds", meta.DurationSeconds})
	}
	if meta.TrailerURL != "" {
		fields = append(fields, fieldValue{"youtube_link", meta.TrailerURL})
	}
	if meta.Origin != "" {
		fields = append(fields, fieldValue{"origin", meta.Origin})
	}
	if meta.BoxOfficeActual != 0 {
		fields = append(fields, fieldValue{"box_office_actual", meta.BoxOfficeActual})
	}
	if meta.Franchise != "" {
		fields = append(fields, fieldValue{"franchise", meta.Franchise})
	}
	return fields
}

// applySecondaryFields fills duration, box office and plot from a
// confirmed OMDb payload.
func (s *Service) applySecondaryFields(ctx context.Context, movie *catalog.Movie, meta *tmdb.Metadata) error {
	needed, err := s.anyFieldMissing(ctx, movie.ID, []string{"duration_seconds", "box_office_actual", "plot_desc"})
	if err != nil {
		return err
	}
	if !needed {
		return nil
	}

	payload, err := s.confirmedSecondaryPayload(ctx, movie, meta)
	if err != nil {
		if services.HaltsSweep(err) {
			return err
		}
		s.logger.Warn("omdb lookup failed",
			logging.Int64("movie_id", movie.ID),
			logging.String("title", movie.Title),
			logging.Error(err))
		return nil
	}
	if payload == nil {
		return nil
	}

	if seconds := payload.RuntimeSeconds(); seconds > 0 {
		if err := s.fillMissing(ctx, movie.ID, "duration_seconds", seconds); err != nil {
			return err
		}
	}
	if amount := payload.BoxOfficeAmount(); amount > 0 {
		if err := s.fillMissing(ctx, movie.ID, "box_office_actual", float64(amount)); err != nil {
			return err
		}
	}
	if plot := payload.PlotText(); plot != "" {
		if err := s.fillMissing(ctx, movie.ID, "plot_desc", plot); err != nil {
			return err
		}
	}
	return nil
}

// confirmedSecondaryPayload resolves the OMDb payload for a movie. An
// imdb-id lookup is trusted as-is; a title fallback must fingerprint-match
// the TMDb metadata, or failing that the catalogue record, before any of
// its fields are used.
func (s *Service) confirmedSecondaryPayload(ctx context.Context, movie *catalog.Movie, meta *tmdb.Metadata) (*omdb.Payload, error) {
	if meta != nil && meta.IMDBID != "" {
		payload, err := s.secondary.PayloadByID(ctx, meta.IMDBID)
		if err != nil {
			if services.HaltsSweep(err) {
				return nil, err
			}
			s.logger.Warn("omdb id lookup failed",
				logging.Int64("movie_id", movie.ID),
				logging.String("imdb_id", meta.IMDBID),
				logging.Error(err))
		} else if payload != nil {
			return payload, nil
		}
	}

	payload, err := s.secondary.PayloadByTitle(ctx, movie.Title)
	if err != nil || payload == nil {
		return nil, err
	}

	var reference identity.Fingerprint
	if meta != nil {
		reference = identity.FromTMDB(meta.IMDBID, meta.Title, meta.RuntimeMinutes, meta.ReleaseDate)
	} else {
		reference = identity.FromRecord("", movie.Title, movie.RuntimeMinutes(), movie.Year)
	}
	same, score := s.matcher.SameMovie(reference, payload.Fingerprint())
	if !same {
		s.logger.Info("omdb payload rejected",
			logging.Int64("movie_id", movie.ID),
			logging.String("title", movie.Title),
			logging.Float64("match_score", score))
		return nil, nil
	}
	return payload, nil
}

// applyRatingDetails scrapes the IMDb ratings page and stores the primary
// rating sample. The details also feed the actor-trend blend, so the
// scrape runs when either the sample or the actor trend is still missing.
func (s *Service) applyRatingDetails(ctx context.Context, movie *catalog.Movie, meta *tmdb.Metadata) (*scrape.TitleDetails, error) {
	if s.scraper == nil {
		return nil, nil
	}
	stored, err := s.storedRatings(ctx, movie.ID)
	if err != nil {
		return nil, err
	}
	_, hasSample := stored[scoring.SourceIMDB]
	actorMissing, err := s.store.IsFieldMissing(ctx, movie.ID, "actor_trend_score")
	if err != nil {
		return nil, err
	}
	if hasSample && !actorMissing {
		return nil, nil
	}

	imdbID := ""
	if meta != nil {
		imdbID = meta.IMDBID
	}
	if imdbID == "" {
		imdbID, err = s.secondary.IMDbID(ctx, movie.Title)
		if err != nil {
			if services.HaltsSweep(err) {
				return nil, err
			}
			s.logger.Warn("imdb id lookup failed",
				logging.Int64("movie_id", movie.ID),
				logging.String("title", movie.Title),
				logging.Error(err))
			return nil, nil
		}
	}
	if imdbID == "" {
		return nil, nil
	}

	details, err := s.scraper.FetchAll(ctx, imdbID)
	if err != nil {
		if services.HaltsSweep(err) {
			return nil, err
		}
		s.logger.Warn("imdb scrape failed",
			logging.Int64("movie_id", movie.ID),
			logging.String("imdb_id", imdbID),
			logging.Error(err))
		return nil, nil
	}
	if details == nil {
		return nil, nil
	}

	if mean := details.MeanRating(); mean > 0 {
		if err := s.store.UpsertRating(ctx, movie.ID, scoring.SourceIMDB, mean*10, details.SampleCount()); err != nil {
			return nil, err
		}
	}
	return details, nil
}

// applyTrailer runs the trailer cascade when the movie has no stored link.
func (s *Service) applyTrailer(ctx context.Context, movie *catalog.Movie) error {
	if s.trailers == nil {
		return nil
	}
	missing, err := s.store.IsFieldMissing(ctx, movie.ID, "youtube_link")
	if err != nil {
		return err
	}
	if !missing {
		return nil
	}

	url, source, confidence, err := s.trailers.Resolve(ctx, movie.Title)
	if err != nil {
		return err
	}
	if url == "" {
		s.logger.Info("no trailer located",
			logging.Int64("movie_id", movie.ID),
			logging.String("title", movie.Title))
		return nil
	}
	if err := s.store.UpdateField(ctx, movie.ID, "youtube_link", url); err != nil {
		return err
	}
	s.logger.Info("trailer stored",
		logging.Int64("movie_id", movie.ID),
		logging.String("source", string(source)),
		logging.Float64("confidence", confidence))
	return nil
}

// applyTrendScores fills the missing fairness-normalized trend scores. The
// actor blend uses the google trend stored on the movie (or just written)
// and the popularity rank from the scrape details when available; with no
// signal at all the field stays empty for a later run.
func (s *Service) applyTrendScores(ctx context.Context, movie *catalog.Movie, details *scrape.TitleDetails) error {
	trendMissing, err := s.store.IsFieldMissing(ctx, movie.ID, "google_trend_score")
	if err != nil {
		return err
	}
	if trendMissing && s.trends != nil {
		raw, ok, err := s.trends.Fetch7DayAverage(ctx, movie.Title)
		if err != nil {
			if services.HaltsSweep(err) {
				return err
			}
			s.logger.Warn("trend fetch failed",
				logging.Int64("movie_id", movie.ID),
				logging.String("title", movie.Title),
				logging.Error(err))
		} else if ok {
			base, err := s.loadBaselines(ctx)
			if err != nil {
				return err
			}
			fair := scoring.GTrendFair(float64(raw), movie.Origin, base)
			if err := s.store.UpdateField(ctx, movie.ID, "google_trend_score", fair); err != nil {
				return err
			}
			movie.GoogleTrendScore = &fair
			s.logger.Info("google trend stored",
				logging.Int64("movie_id", movie.ID),
				logging.Int("raw", raw),
				logging.Float64("fair", fair))
		}
	}

	actorMissing, err := s.store.IsFieldMissing(ctx, movie.ID, "actor_trend_score")
	if err != nil {
		return err
	}
	if !actorMissing {
		return nil
	}
	trend := 0.0
	if movie.GoogleTrendScore != nil {
		trend = *movie.GoogleTrendScore
	}
	popularity := 0.0
	if details != nil {
		popularity = scoring.PopularityFromRank(details.Moviemeter)
	}
	if trend == 0 && popularity == 0 {
		return nil
	}
	base, err := s.loadBaselines(ctx)
	if err != nil {
		return err
	}
	fair := scoring.ActorTrendFair(popularity, trend, movie.Origin, base)
	if err := s.store.UpdateField(ctx, movie.ID, "actor_trend_score", fair); err != nil {
		return err
	}
	movie.ActorTrendScore = &fair
	return nil
}

// recomputeCombined rebuilds the combined score from the stored rating
// samples. Runs on every enrichment, even when nothing else changed.
func (s *Service) recomputeCombined(ctx context.Context, movie *catalog.Movie) error {
	samples, err := s.store.RatingsFor(ctx, movie.ID)
	if err != nil {
		return err
	}
	critics := make(map[string]scoring.CriticAggregate, len(samples))
	for _, sample := range samples {
		critics[sample.Source] = scoring.CriticAggregate{Score: sample.Score, N: sample.SampleCount}
	}
	base, err := s.loadBaselines(ctx)
	if err != nil {
		return err
	}
	score := scoring.CombinedScore(movie.Origin, nil, critics, base)
	return s.store.UpdateField(ctx, movie.ID, "combined_score", score)
}

func (s *Service) fillMissing(ctx context.Context, movieID int64, column string, value any) error {
	missing, err := s.store.IsFieldMissing(ctx, movieID, column)
	if err != nil {
		return err
	}
	if !missing {
		return nil
	}
	return s.store.UpdateField(ctx, movieID, column, value)
}

func (s *Service) anyFieldMissing(ctx context.Context, movieID int64, columns []string) (bool, error) {
	for _, column := range columns {
		missing, err := s.store.IsFieldMissing(ctx, movieID, column)
		if err != nil {
			return false, err
		}
		if missing {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) storedRatings(ctx context.Context, movieID int64) (map[string]catalog.RatingSample, error) {
	samples, err := s.store.RatingsFor(ctx, movieID)
	if err != nil {
		return nil, err
	}
	bySource := make(map[string]catalog.RatingSample, len(samples))
	for _, sample := range samples {
		bySource[sample.Source] = sample
	}
	return bySource, nil
}

// loadBaselines reads the fairness baselines once per service instance;
// catalogue shares are a snapshot from first use, not live counts.
func (s *Service) loadBaselines(ctx context.Context) (scoring.Baselines, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.base != nil {
		return *s.base, nil
	}
	population, err := s.store.PopulationShares(ctx)
	if err != nil {
		return scoring.Baselines{}, fmt.Errorf("load population shares: %w", err)
	}
	catalogue, err := s.store.CatalogueShares(ctx)
	if err != nil {
		return scoring.Baselines{}, fmt.Errorf("load catalogue shares: %w", err)
	}
	penetration, err := s.store.InternetPenetration(ctx)
	if err != nil {
		return scoring.Baselines{}, fmt.Errorf("load internet penetration: %w", err)
	}
	base := scoring.Baselines{
		PopulationShare:     population,
		CatalogueShare:      catalogue,
		InternetPenetration: penetration,
	}
	s.base = &base
	return base, nil
}
