package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"movienight/internal/logging"
	"movienight/internal/ratelimit"
	"movienight/internal/services"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0 Safari/537.36"

var (
	histogramPattern   = regexp.MustCompile(`(?s)"rating_histogram":\s*(\[[^\]]+\])`)
	demographicPattern = regexp.MustCompile(`(?s)"demographic_data":\s*(\{.+?\})\s*,\s*"ratings_bar"`)
	top250Pattern      = regexp.MustCompile(`"topRank":\s*(\d+)`)
	moviemeterPattern  = regexp.MustCompile(`"moviemeter":\s*(\d+)`)
)

// DemographicCell is one demographic split of the vote table.
type DemographicCell struct {
	Rating float64 `json:"rating"`
	Votes  int     `json:"votes"`
}

// TitleDetails carries everything the ratings page yields for one title.
// Histogram maps star bucket (1..10) to vote count. Demographics keys are
// flattened as first-letter-of-group plus age band ("m18-29", "f45+"),
// the bare group letter for the group-wide row, and "all" for the
// sitewide aggregate. Ranks are zero when the title is unranked.
type TitleDetails struct {
	Histogram    map[int]int
	Demographics map[string]DemographicCell
	Top250Rank   int
	Moviemeter   int
}

// MeanRating returns the title rating on the 0-10 scale: the sitewide
// demographic cell when present, otherwise the vote-weighted histogram
// mean.
func (d *TitleDetails) MeanRating() float64 {
	if cell, ok := d.Demographics["all"]; ok && cell.Rating > 0 {
		return cell.Rating
	}
	var votes, weighted int
	for star, count := range d.Histogram {
		votes += count
		weighted += star * count
	}
	if votes == 0 {
		return 0
	}
	return float64(weighted) / float64(votes)
}

// SampleCount returns the total votes across histogram buckets.
func (d *TitleDetails) SampleCount() int {
	total := 0
	for _, count := range d.Histogram {
		total += count
	}
	return total
}

// Scraper fetches and parses IMDb ratings pages.
type Scraper struct {
	baseURL    string
	httpClient *http.Client
	limiter    ratelimit.Limiter
	logger     *slog.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithLimiter throttles page fetches through the provided limiter.
func WithLimiter(limiter ratelimit.Limiter) Option {
	return func(s *Scraper) {
		if limiter != nil {
			s.limiter = limiter
		}
	}
}

// WithLogger attaches a logger for fetch and parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Scraper rooted at baseURL (normally https://www.imdb.com).
func New(baseURL string, opts ...Option) (*Scraper, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("scraper base url required")
	}
	scraper := &Scraper{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 8 * time.Second},
		limiter:    ratelimit.NewNop(),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(scraper)
	}
	return scraper, nil
}

// FetchAll returns the full rating detail for one IMDb title id, or nil
// when the page cannot be fetched or the histogram does not parse. Only
// rate limiting and context cancellation surface as errors.
func (s *Scraper) FetchAll(ctx context.Context, imdbID string) (*TitleDetails, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, errors.New("imdb id must not be empty")
	}
	scripts, err := s.fetchScripts(ctx, imdbID)
	if err != nil {
		return nil, err
	}
	if scripts == "" {
		return nil, nil
	}

	histogram := parseHistogram(scripts)
	if histogram == nil {
		s.logger.Debug("imdb histogram missing or malformed", logging.String("imdb_id", imdbID))
		return nil, nil
	}

	return &TitleDetails{
		Histogram:    histogram,
		Demographics: parseDemographics(scripts),
		Top250Rank:   extractInt(top250Pattern, scripts),
		Moviemeter:   extractInt(moviemeterPattern, scripts),
	}, nil
}

// fetchScripts downloads the ratings page and concatenates every script
// element's text. Network and HTTP failures are logged and reported as an
// empty document.
func (s *Scraper) fetchScripts(ctx context.Context, imdbID string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	pageURL := fmt.Sprintf("%s/title/%s/ratings", s.baseURL, imdbID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Debug("imdb fetch failed", logging.String("imdb_id", imdbID), logging.Error(err))
		return "", nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("imdb ratings %s: %w", imdbID, services.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		s.logger.Debug("imdb returned non-200",
			logging.String("imdb_id", imdbID),
			logging.Int("status", resp.StatusCode))
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		s.logger.Debug("imdb page parse failed", logging.String("imdb_id", imdbID), logging.Error(err))
		return "", nil
	}

	var scripts strings.Builder
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		scripts.WriteString(sel.Text())
		scripts.WriteByte('\n')
	})
	return scripts.String(), nil
}

func parseHistogram(scripts string) map[int]int {
	match := histogramPattern.FindStringSubmatch(scripts)
	if match == nil {
		return nil
	}
	var bins []struct {
		Rating int `json:"rating"`
		Votes  int `json:"votes"`
	}
	if err := json.Unmarshal([]byte(match[1]), &bins); err != nil {
		return nil
	}
	histogram := make(map[int]int, len(bins))
	for _, bin := range bins {
		histogram[bin.Rating] = bin.Votes
	}
	return histogram
}

func parseDemographics(scripts string) map[string]DemographicCell {
	flat := map[string]DemographicCell{}
	match := demographicPattern.FindStringSubmatch(scripts)
	if match == nil {
		return flat
	}
	var table map[string]map[string]DemographicCell
	if err := json.Unmarshal([]byte(match[1]), &table); err != nil {
		return flat
	}
	for group, ages := range table {
		initial := firstRune(group)
		for age, cell := range ages {
			key := initial + age
			if age == "all" {
				key = initial
			}
			flat[key] = cell
		}
	}
	// The sitewide aggregate also keeps its full name.
	if ages, ok := table["all"]; ok {
		if cell, ok := ages["all"]; ok {
			flat["all"] = cell
		}
	}
	return flat
}

func extractInt(pattern *regexp.Regexp, scripts string) int {
	match := pattern.FindStringSubmatch(scripts)
	if match == nil {
		return 0
	}
	value, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return value
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
