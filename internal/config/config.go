package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory configuration.
type Paths struct {
	DatabasePath string `toml:"db_path"`
	LogDir       string `toml:"log_dir"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey        string `toml:"api_key"`
	BaseURL       string `toml:"base_url"`
	Language      string `toml:"language"`
	MinIntervalMS int    `toml:"min_interval_ms"`
}

// OMDB contains configuration for the OMDb API.
type OMDB struct {
	APIKey        string `toml:"api_key"`
	BaseURL       string `toml:"base_url"`
	MinIntervalMS int    `toml:"min_interval_ms"`
}

// YouTube contains configuration for the YouTube Data API video search.
type YouTube struct {
	APIKey        string `toml:"api_key"`
	BaseURL       string `toml:"base_url"`
	MaxResults    int    `toml:"max_results"`
	MinIntervalMS int    `toml:"min_interval_ms"`
}

// Trends contains configuration for the Google Trends lookups.
type Trends struct {
	BaseURL         string `toml:"base_url"`
	MinIntervalMS   int    `toml:"min_interval_ms"`
	CacheTTLMinutes int    `toml:"cache_ttl_minutes"`
}

// Scraper contains configuration for the IMDb detail scraper.
type Scraper struct {
	Enabled       bool   `toml:"enabled"`
	BaseURL       string `toml:"base_url"`
	MinIntervalMS int    `toml:"min_interval_ms"`
}

// Matcher contains the identity matcher tunables.
type Matcher struct {
	Threshold               float64 `toml:"threshold"`
	RuntimeToleranceMinutes int     `toml:"runtime_tolerance_minutes"`
	YearTolerance           int     `toml:"year_tolerance"`
}

// Trailer contains configuration for the trailer resolution cascade.
type Trailer struct {
	SearchRetries int `toml:"search_retries"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for movienight.
//
// Configuration sections by subsystem:
//   - Paths: database file and log directory
//   - TMDB: primary metadata provider
//   - OMDB: secondary metadata provider
//   - YouTube: trailer video search
//   - Trends: Google Trends popularity lookups
//   - Scraper: IMDb ratings page scraping
//   - Matcher: identity matching threshold and tolerances
//   - Trailer: cascade retry budget
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	TMDB    TMDB    `toml:"tmdb"`
	OMDB    OMDB    `toml:"omdb"`
	YouTube YouTube `toml:"youtube"`
	Trends  Trends  `toml:"trends"`
	Scraper Scraper `toml:"scraper"`
	Matcher Matcher `toml:"matcher"`
	Trailer Trailer `toml:"trailer"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/movienight/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/movienight/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("movienight.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the tool writes into: the database
// parent directory and the log directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Paths.DatabasePath), c.Paths.LogDir}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
