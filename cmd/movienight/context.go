package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"movienight/internal/catalog"
	"movienight/internal/config"
	"movienight/internal/enrich"
	"movienight/internal/identity"
	"movienight/internal/logging"
	"movienight/internal/metadata/omdb"
	"movienight/internal/metadata/tmdb"
	"movienight/internal/metadata/trends"
	"movienight/internal/metadata/videos"
	"movienight/internal/ratelimit"
	"movienight/internal/reference"
	"movienight/internal/scrape"
	"movienight/internal/services"
	"movienight/internal/trailer"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// withStore opens the catalogue for the duration of one command. The store
// holds the flock next to the database file, so a second movienight
// process gets a clear refusal instead of a napping sqlite handle.
func (c *commandContext) withStore(fn func(*catalog.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		if errors.Is(err, catalog.ErrLocked) {
			return fmt.Errorf("another movienight process is using %s; wait for it to finish", cfg.Paths.DatabasePath)
		}
		return err
	}
	defer store.Close()
	return fn(store)
}

// appServices bundles everything a command may need. The enrichment
// service is nil when no OMDb key is configured; sweep commands surface
// that through enrichService.
type appServices struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *catalog.Store
	enrich   *enrich.Service
	resolver *trailer.Resolver
	videos   *videos.Client
}

func (c *commandContext) withServices(fn func(*appServices) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	return c.withStore(func(store *catalog.Store) error {
		svcs, err := buildServices(cfg, store, logger)
		if err != nil {
			return err
		}
		return fn(svcs)
	})
}

func (a *appServices) enrichService() (*enrich.Service, error) {
	if a.enrich == nil {
		return nil, fmt.Errorf("%w: omdb.api_key is required for enrichment; set OMDB_API_KEY or edit the config", services.ErrConfiguration)
	}
	return a.enrich, nil
}

func buildServices(cfg *config.Config, store *catalog.Store, logger *slog.Logger) (*appServices, error) {
	tmdbClient, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		tmdb.WithLimiter(ratelimit.PerIntervalMS(cfg.TMDB.MinIntervalMS)),
		tmdb.WithWindowClassifier(reference.ClassifyReleaseWindow))
	if err != nil {
		return nil, fmt.Errorf("tmdb client: %w", err)
	}

	var searcher trailer.VideoSearcher
	var videoClient *videos.Client
	if strings.TrimSpace(cfg.YouTube.APIKey) != "" {
		videoClient, err = videos.New(cfg.YouTube.APIKey, cfg.YouTube.BaseURL, cfg.YouTube.MaxResults,
			videos.WithLimiter(ratelimit.PerIntervalMS(cfg.YouTube.MinIntervalMS)))
		if err != nil {
			return nil, fmt.Errorf("youtube client: %w", err)
		}
		searcher = videoClient
	}

	resolver := trailer.NewResolver(store, tmdbClient, searcher,
		trailer.WithLogger(logging.NewComponentLogger(logger, "trailer")),
		trailer.WithSearchRetries(cfg.Trailer.SearchRetries))

	svcs := &appServices{cfg: cfg, logger: logger, store: store, resolver: resolver, videos: videoClient}

	if strings.TrimSpace(cfg.OMDB.APIKey) == "" {
		return svcs, nil
	}
	omdbClient, err := omdb.New(cfg.OMDB.APIKey, cfg.OMDB.BaseURL,
		omdb.WithLimiter(ratelimit.PerIntervalMS(cfg.OMDB.MinIntervalMS)))
	if err != nil {
		return nil, fmt.Errorf("omdb client: %w", err)
	}

	opts := []enrich.Option{
		enrich.WithTrailerResolver(resolver),
		enrich.WithMatcher(identity.NewMatcher(cfg.Matcher.Threshold, cfg.Matcher.RuntimeToleranceMinutes, cfg.Matcher.YearTolerance)),
		enrich.WithLogger(logging.NewComponentLogger(logger, "enrich")),
	}
	if cfg.Scraper.Enabled {
		scraper, err := scrape.New(cfg.Scraper.BaseURL,
			scrape.WithLimiter(ratelimit.PerIntervalMS(cfg.Scraper.MinIntervalMS)),
			scrape.WithLogger(logging.NewComponentLogger(logger, "scrape")))
		if err != nil {
			return nil, fmt.Errorf("imdb scraper: %w", err)
		}
		opts = append(opts, enrich.WithScraper(scraper))
	}
	trendClient, err := trends.New(cfg.Trends.BaseURL,
		time.Duration(cfg.Trends.CacheTTLMinutes)*time.Minute, store,
		trends.WithLimiter(ratelimit.PerIntervalMS(cfg.Trends.MinIntervalMS)))
	if err != nil {
		return nil, fmt.Errorf("trends client: %w", err)
	}
	opts = append(opts, enrich.WithTrendProvider(trendClient))

	service, err := enrich.NewService(store, tmdbClient, omdbClient, opts...)
	if err != nil {
		return nil, fmt.Errorf("enrich service: %w", err)
	}
	svcs.enrich = service
	return svcs, nil
}

// runContext tags the command context with a correlation id so every log
// line of one invocation can be grepped together.
func runContext(cmd *cobra.Command) context.Context {
	return services.WithRunID(cmd.Context(), uuid.NewString()[:8])
}
