package enrich

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"movienight/internal/catalog"
	"movienight/internal/identity"
	"movienight/internal/logging"
	"movienight/internal/metadata/tmdb"
	"movienight/internal/services"
)

// Sweep job names, keyed into the checkpoints table.
const (
	JobMetadata = "meta"
	JobTrailer  = "trailer"
	JobTrend    = "trend"
	JobDiscover = "discover"
)

// TMDb refuses discover pages past 500, so a country feed that never
// yields an empty page still terminates.
const maxDiscoverPages = 500

// Progress summarizes one sweep run. Processed counts every visited item,
// Failed the subset that errored without stopping the sweep.
type Progress struct {
	Job       string
	Processed int
	Failed    int
	LastID    int64
}

type listFunc func(ctx context.Context, afterID int64) ([]*catalog.Movie, error)

type visitFunc func(ctx context.Context, movie *catalog.Movie) error

// MetadataSweep runs EnrichMovie over the whole catalogue in id order.
func (s *Service) MetadataSweep(ctx context.Context, full bool) (Progress, error) {
	return s.sweep(ctx, JobMetadata, full, s.store.Movies, func(ctx context.Context, movie *catalog.Movie) error {
		return s.EnrichMovie(ctx, movie.ID)
	})
}

// TrailerSweep resolves and stores trailer links for every movie that has
// none.
func (s *Service) TrailerSweep(ctx context.Context, full bool) (Progress, error) {
	if s.trailers == nil {
		return Progress{Job: JobTrailer}, fmt.Errorf("%w: no trailer resolver configured", services.ErrConfiguration)
	}
	list := func(ctx context.Context, afterID int64) ([]*catalog.Movie, error) {
		return s.store.MoviesMissingField(ctx, "youtube_link", afterID)
	}
	return s.sweep(ctx, JobTrailer, full, list, func(ctx context.Context, movie *catalog.Movie) error {
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
	})
}

// TrendSweep refreshes ratings, trend scores and the combined score for
// every movie still missing a google trend.
func (s *Service) TrendSweep(ctx context.Context, full bool) (Progress, error) {
	list := func(ctx context.Context, afterID int64) ([]*catalog.Movie, error) {
		return s.store.MoviesMissingField(ctx, "google_trend_score", afterID)
	}
	return s.sweep(ctx, JobTrend, full, list, func(ctx context.Context, movie *catalog.Movie) error {
		return s.UpdateScoresAndTrends(ctx, movie.ID)
	})
}

// DiscoverySweep walks the TMDb discover feed, upserts every kept entry by
// tmdb id, then enriches the affected movies in id order. An empty country
// restricts nothing and every TMDb-supported country is walked.
func (s *Service) DiscoverySweep(ctx context.Context, country string, full bool) (Progress, error) {
	list := func(ctx context.Context, afterID int64) ([]*catalog.Movie, error) {
		collected, err := s.collectDiscoveries(ctx, country)
		if err != nil {
			return nil, err
		}
		kept := collected[:0]
		for _, movie := range collected {
			if movie.ID > afterID {
				kept = append(kept, movie)
			}
		}
		return kept, nil
	}
	return s.sweep(ctx, JobDiscover, full, list, func(ctx context.Context, movie *catalog.Movie) error {
		return s.EnrichMovie(ctx, movie.ID)
	})
}

// sweep is the shared batch loop: resume after the stored checkpoint,
// visit each movie in id order, move the checkpoint after every completed
// item and clear it when the list is exhausted. A halting error leaves the
// checkpoint at the last completed id so a rerun resumes there.
func (s *Service) sweep(ctx context.Context, job string, full bool, list listFunc, visit visitFunc) (Progress, error) {
	progress := Progress{Job: job}
	ctx = services.WithJob(ctx, job)
	logger := logging.WithContext(ctx, s.logger)

	var afterID int64
	if !full {
		stored, err := s.store.Checkpoint(ctx, job)
		if err != nil {
			return progress, err
		}
		afterID = stored
		if afterID > 0 {
			logger.Info("resuming sweep", logging.Int64("after_id", afterID))
		}
	}

	movies, err := list(ctx, afterID)
	if err != nil {
		return progress, err
	}

	for _, movie := range movies {
		itemCtx := services.WithMovieID(ctx, movie.ID)
		if err := visit(itemCtx, movie); err != nil {
			if services.HaltsSweep(err) {
				logger.Warn("sweep paused",
					logging.Int64(logging.FieldMovieID, movie.ID),
					logging.Int("processed", progress.Processed),
					logging.Error(err))
				return progress, err
			}
			progress.Failed++
			logger.Warn("sweep item failed",
				logging.Int64(logging.FieldMovieID, movie.ID),
				logging.String(logging.FieldTitle, movie.Title),
				logging.Error(err))
		} else {
			logger.Info("sweep item done",
				logging.Int64(logging.FieldMovieID, movie.ID),
				logging.String(logging.FieldTitle, movie.Title))
		}
		progress.Processed++
		progress.LastID = movie.ID
		if err := s.store.SetCheckpoint(ctx, job, movie.ID); err != nil {
			return progress, err
		}
	}

	if err := s.store.ClearCheckpoint(ctx, job); err != nil {
		return progress, err
	}
	logger.Info("sweep complete",
		logging.Int("processed", progress.Processed),
		logging.Int("failed", progress.Failed))
	return progress, nil
}

// collectDiscoveries pages through the discover feed for one country (or
// all of them), upserts every kept result by tmdb id and returns the
// affected catalogue rows sorted by id.
func (s *Service) collectDiscoveries(ctx context.Context, country string) ([]*catalog.Movie, error) {
	var codes []string
	if country = strings.TrimSpace(country); country != "" {
		codes = []string{strings.ToUpper(country)}
	} else {
		countries, err := s.metadata.Countries(ctx)
		if err != nil {
			return nil, err
		}
		for _, entry := range countries {
			codes = append(codes, entry.Code)
		}
	}

	seen := make(map[int64]struct{})
	var collected []*catalog.Movie
	for _, code := range codes {
		for page := 1; page <= maxDiscoverPages; page++ {
			results, err := s.metadata.DiscoverByRegion(ctx, code, page)
			if err != nil {
				return nil, err
			}
			if len(results) == 0 {
				break
			}
			for _, result := range results {
				if result.ID == 0 {
					continue
				}
				if _, dup := seen[result.ID]; dup {
					continue
				}
				seen[result.ID] = struct{}{}
				movie, err := s.ensureDiscovered(ctx, result)
				if err != nil {
					return nil, err
				}
				if movie == nil {
					continue
				}
				collected = append(collected, movie)
			}
		}
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].ID < collected[j].ID })
	return collected, nil
}

// ensureDiscovered resolves a discover entry to a catalogue row, creating
// one with the title, tmdb id and release year when the entry is new.
// Untitled entries are skipped.
func (s *Service) ensureDiscovered(ctx context.Context, result tmdb.Result) (*catalog.Movie, error) {
	movie, err := s.store.FindByTMDBID(ctx, result.ID)
	if err != nil {
		return nil, err
	}
	if movie != nil {
		return movie, nil
	}

	title := strings.TrimSpace(result.Title)
	if title == "" {
		s.logger.Debug("skipping untitled discover entry", logging.Int64("tmdb_id", result.ID))
		return nil, nil
	}
	movie, err = s.store.CreateMovie(ctx, title)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateField(ctx, movie.ID, "tmdb_id", result.ID); err != nil {
		return nil, err
	}
	movie.TMDBID = result.ID
	if year := identity.ParseYear(result.ReleaseDate); year > 0 {
		if err := s.store.UpdateField(ctx, movie.ID, "year", year); err != nil {
			return nil, err
		}
		movie.Year = year
	}
	s.logger.Info("discovered movie",
		logging.Int64("movie_id", movie.ID),
		logging.Int64("tmdb_id", result.ID),
		logging.String("title", title))
	return movie, nil
}
