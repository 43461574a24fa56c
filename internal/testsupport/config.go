package testsupport

import (
	"path/filepath"
	"testing"

	"movienight/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp paths per test. It
// defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.TMDB.APIKey = "test"
	cfg.Paths.DatabasePath = filepath.Join(base, "movienight.db")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithTMDBKey sets the TMDb API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.TMDB.APIKey = key
	}
}

// WithOMDBKey sets the OMDb API key on the test config.
func WithOMDBKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.OMDB.APIKey = key
	}
}

// WithScraperEnabled toggles the IMDb detail scraper for the test.
func WithScraperEnabled(enabled bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scraper.Enabled = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DatabasePath)
}
