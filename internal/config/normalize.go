package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTMDB()
	c.normalizeOMDB()
	c.normalizeYouTube()
	c.normalizeTrends()
	c.normalizeScraper()
	c.normalizeMatcher()
	c.normalizeTrailer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DatabasePath) == "" {
		c.Paths.DatabasePath = defaultDatabasePath
	}
	if c.Paths.DatabasePath, err = expandPath(c.Paths.DatabasePath); err != nil {
		return fmt.Errorf("paths.db_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	if value, ok := os.LookupEnv("TMDB_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.TMDB.APIKey = strings.TrimSpace(value)
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
	if c.TMDB.MinIntervalMS < 0 {
		c.TMDB.MinIntervalMS = 0
	}
}

func (c *Config) normalizeOMDB() {
	if value, ok := os.LookupEnv("OMDB_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.OMDB.APIKey = strings.TrimSpace(value)
	}
	c.OMDB.APIKey = strings.TrimSpace(c.OMDB.APIKey)
	c.OMDB.BaseURL = strings.TrimSpace(c.OMDB.BaseURL)
	if c.OMDB.BaseURL == "" {
		c.OMDB.BaseURL = defaultOMDBBaseURL
	}
	if c.OMDB.MinIntervalMS < 0 {
		c.OMDB.MinIntervalMS = 0
	}
}

func (c *Config) normalizeYouTube() {
	if value, ok := os.LookupEnv("YOUTUBE_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.YouTube.APIKey = strings.TrimSpace(value)
	}
	c.YouTube.APIKey = strings.TrimSpace(c.YouTube.APIKey)
	c.YouTube.BaseURL = strings.TrimSpace(c.YouTube.BaseURL)
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = defaultYouTubeBaseURL
	}
	if c.YouTube.MaxResults <= 0 {
		c.YouTube.MaxResults = defaultYouTubeResults
	}
	if c.YouTube.MinIntervalMS < 0 {
		c.YouTube.MinIntervalMS = 0
	}
}

func (c *Config) normalizeTrends() {
	c.Trends.BaseURL = strings.TrimSpace(c.Trends.BaseURL)
	if c.Trends.BaseURL == "" {
		c.Trends.BaseURL = defaultTrendsBaseURL
	}
	if c.Trends.MinIntervalMS < 0 {
		c.Trends.MinIntervalMS = 0
	}
	if c.Trends.CacheTTLMinutes <= 0 {
		c.Trends.CacheTTLMinutes = defaultTrendTTLMinutes
	}
}

func (c *Config) normalizeScraper() {
	c.Scraper.BaseURL = strings.TrimSpace(c.Scraper.BaseURL)
	if c.Scraper.BaseURL == "" {
		c.Scraper.BaseURL = defaultScraperBaseURL
	}
	if c.Scraper.MinIntervalMS < 0 {
		c.Scraper.MinIntervalMS = 0
	}
}

func (c *Config) normalizeMatcher() {
	if c.Matcher.Threshold == 0 {
		c.Matcher.Threshold = defaultMatchThreshold
	}
	if c.Matcher.RuntimeToleranceMinutes == 0 {
		c.Matcher.RuntimeToleranceMinutes = defaultRuntimeTolerance
	}
	if c.Matcher.YearTolerance == 0 {
		c.Matcher.YearTolerance = defaultYearTolerance
	}
}

func (c *Config) normalizeTrailer() {
	if c.Trailer.SearchRetries <= 0 {
		c.Trailer.SearchRetries = defaultSearchRetries
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
