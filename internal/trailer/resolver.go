package trailer

import (
	"context"
	"errors"
	"log/slog"

	"movienight/internal/catalog"
	"movienight/internal/logging"
	"movienight/internal/metadata/tmdb"
	"movienight/internal/metadata/videos"
	"movienight/internal/services"
	"movienight/internal/textutil"
)

// Source identifies which cascade tier produced a trailer link.
type Source string

const (
	SourceDB             Source = "db"
	SourceTMDB           Source = "tmdb"
	SourceSecondaryExact Source = "secondary_exact"
	SourceSecondaryFuzzy Source = "secondary_fuzzy"
	SourceNone           Source = "none"
)

// Confidence returns how much a link from this source is trusted.
func (s Source) Confidence() float64 {
	switch s {
	case SourceDB:
		return 1.0
	case SourceTMDB:
		return 0.95
	case SourceSecondaryExact:
		return 0.80
	case SourceSecondaryFuzzy:
		return 0.60
	default:
		return 0
	}
}

// Catalog is the store view the resolver reads links from.
type Catalog interface {
	FindByTitle(ctx context.Context, title string) (*catalog.Movie, error)
}

// MetadataSource matches a title against the primary metadata provider.
type MetadataSource interface {
	FetchMetadata(ctx context.Context, title string) (*tmdb.Metadata, error)
}

// VideoSearcher runs trailer searches against a video platform.
type VideoSearcher interface {
	SearchExact(ctx context.Context, query string) (string, error)
	SearchFirstMatch(ctx context.Context, query string, exact bool, maxRetries int) (string, error)
}

const defaultSearchRetries = 3

// Resolver walks the trailer cascade.
type Resolver struct {
	catalog  Catalog
	metadata MetadataSource
	videos   VideoSearcher
	logger   *slog.Logger
	retries  int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger attaches a logger for tier diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSearchRetries sets the fuzzy-search retry budget.
func WithSearchRetries(retries int) Option {
	return func(r *Resolver) {
		if retries > 0 {
			r.retries = retries
		}
	}
}

// NewResolver creates a Resolver. Any of the three sources may be nil,
// which skips its tiers.
func NewResolver(cat Catalog, metadata MetadataSource, searcher VideoSearcher, opts ...Option) *Resolver {
	resolver := &Resolver{
		catalog:  cat,
		metadata: metadata,
		videos:   searcher,
		logger:   logging.NewNop(),
		retries:  defaultSearchRetries,
	}
	for _, opt := range opts {
		opt(resolver)
	}
	return resolver
}

// Resolve returns the canonical trailer URL for a title together with the
// tier that produced it. Tiers short-circuit top down; a tier failing for
// network reasons is logged and skipped. Only rate limiting and context
// cancellation abort the cascade.
func (r *Resolver) Resolve(ctx context.Context, title string) (string, Source, float64, error) {
	if url, ok := r.fromCatalog(ctx, title); ok {
		return url, SourceDB, SourceDB.Confidence(), nil
	}

	url, canonical, err := r.fromTMDB(ctx, title)
	if err != nil {
		return "", SourceNone, 0, err
	}
	if url != "" {
		return url, SourceTMDB, SourceTMDB.Confidence(), nil
	}

	if canonical != "" {
		url, err = r.fromSearch(ctx, canonical, true)
		if err != nil {
			return "", SourceNone, 0, err
		}
		if url != "" {
			return url, SourceSecondaryExact, SourceSecondaryExact.Confidence(), nil
		}
	}

	url, err = r.fromSearch(ctx, title, false)
	if err != nil {
		return "", SourceNone, 0, err
	}
	if url != "" {
		return url, SourceSecondaryFuzzy, SourceSecondaryFuzzy.Confidence(), nil
	}

	return "", SourceNone, 0, nil
}

// fromCatalog checks for an already stored link. Only links that parse to
// a video id count; a malformed stored link is treated as absent.
func (r *Resolver) fromCatalog(ctx context.Context, title string) (string, bool) {
	if r.catalog == nil {
		return "", false
	}
	movie, err := r.catalog.FindByTitle(ctx, title)
	if err != nil {
		r.logger.Debug("catalogue trailer lookup failed", logging.String("title", title), logging.Error(err))
		return "", false
	}
	if movie == nil || movie.YouTubeLink == "" {
		return "", false
	}
	videoID := videos.ExtractVideoID(movie.YouTubeLink)
	if videoID == "" {
		r.logger.Debug("stored trailer link malformed",
			logging.String("title", title),
			logging.String("link", movie.YouTubeLink))
		return "", false
	}
	return videos.WatchURL(videoID), true
}

// fromTMDB asks the metadata provider for an exact match. It returns the
// trailer URL when the match carries one, plus the provider's canonical
// title for the exact-search tier either way.
func (r *Resolver) fromTMDB(ctx context.Context, title string) (url, canonical string, err error) {
	if r.metadata == nil {
		return "", "", nil
	}
	meta, err := r.metadata.FetchMetadata(ctx, title)
	if err != nil {
		if haltsCascade(err) {
			return "", "", err
		}
		r.logger.Debug("tmdb trailer lookup failed", logging.String("title", title), logging.Error(err))
		return "", "", nil
	}
	if meta == nil {
		return "", "", nil
	}
	if videoID := videos.ExtractVideoID(meta.TrailerURL); videoID != "" {
		return videos.WatchURL(videoID), meta.Title, nil
	}
	return "", meta.Title, nil
}

func (r *Resolver) fromSearch(ctx context.Context, title string, exact bool) (string, error) {
	if r.videos == nil {
		return "", nil
	}
	query := textutil.NormalizeTitle(title) + " trailer"
	var (
		videoID string
		err     error
	)
	if exact {
		videoID, err = r.videos.SearchExact(ctx, query)
	} else {
		videoID, err = r.videos.SearchFirstMatch(ctx, query, false, r.retries)
	}
	if err != nil {
		if haltsCascade(err) {
			return "", err
		}
		r.logger.Debug("video search failed",
			logging.String("query", query),
			logging.Bool("exact", exact),
			logging.Error(err))
		return "", nil
	}
	if videoID == "" {
		return "", nil
	}
	return videos.WatchURL(videoID), nil
}

func haltsCascade(err error) bool {
	return errors.Is(err, services.ErrRateLimited) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
