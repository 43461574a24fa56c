package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateMatcher(); err != nil {
		return err
	}
	if err := c.validateTrailer(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/movienight/config.toml"
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'movienight config init')", defaultPath)
	}
	if strings.TrimSpace(c.TMDB.BaseURL) == "" {
		return errors.New("tmdb.base_url must be set")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if c.YouTube.MaxResults < 1 || c.YouTube.MaxResults > 50 {
		return errors.New("youtube.max_results must be between 1 and 50")
	}
	return nil
}

func (c *Config) validateMatcher() error {
	if c.Matcher.Threshold <= 0 || c.Matcher.Threshold > 1 {
		return errors.New("matcher.threshold must be between 0 and 1")
	}
	if c.Matcher.RuntimeToleranceMinutes < 0 {
		return errors.New("matcher.runtime_tolerance_minutes must be >= 0")
	}
	if c.Matcher.YearTolerance < 0 {
		return errors.New("matcher.year_tolerance must be >= 0")
	}
	return nil
}

func (c *Config) validateTrailer() error {
	if c.Trailer.SearchRetries < 1 {
		return errors.New("trailer.search_retries must be >= 1")
	}
	return nil
}
