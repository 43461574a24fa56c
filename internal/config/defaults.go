package config

const (
	defaultDatabasePath     = "~/.local/share/movienight/movienight.db"
	defaultLogDir           = "~/.local/share/movienight/logs"
	defaultTMDBBaseURL      = "https://api.themoviedb.org/3"
	defaultTMDBLanguage     = "en-US"
	defaultOMDBBaseURL      = "https://www.omdbapi.com"
	defaultYouTubeBaseURL   = "https://www.googleapis.com/youtube/v3"
	defaultYouTubeResults   = 5
	defaultTrendsBaseURL    = "https://trends.google.com/trends/api"
	defaultScraperBaseURL   = "https://www.imdb.com"
	defaultAPIIntervalMS    = 250
	defaultScrapeIntervalMS = 1500
	defaultTrendTTLMinutes  = 240
	defaultMatchThreshold   = 0.8
	defaultRuntimeTolerance = 10
	defaultYearTolerance    = 1
	defaultSearchRetries    = 3
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DatabasePath: defaultDatabasePath,
			LogDir:       defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:       defaultTMDBBaseURL,
			Language:      defaultTMDBLanguage,
			MinIntervalMS: defaultAPIIntervalMS,
		},
		OMDB: OMDB{
			BaseURL:       defaultOMDBBaseURL,
			MinIntervalMS: defaultAPIIntervalMS,
		},
		YouTube: YouTube{
			BaseURL:       defaultYouTubeBaseURL,
			MaxResults:    defaultYouTubeResults,
			MinIntervalMS: defaultAPIIntervalMS,
		},
		Trends: Trends{
			BaseURL:         defaultTrendsBaseURL,
			MinIntervalMS:   defaultScrapeIntervalMS,
			CacheTTLMinutes: defaultTrendTTLMinutes,
		},
		Scraper: Scraper{
			Enabled:       true,
			BaseURL:       defaultScraperBaseURL,
			MinIntervalMS: defaultScrapeIntervalMS,
		},
		Matcher: Matcher{
			Threshold:               defaultMatchThreshold,
			RuntimeToleranceMinutes: defaultRuntimeTolerance,
			YearTolerance:           defaultYearTolerance,
		},
		Trailer: Trailer{
			SearchRetries: defaultSearchRetries,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
