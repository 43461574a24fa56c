package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"movienight/internal/ratelimit"
	"movienight/internal/services"
	"movienight/internal/textutil"
)

// Result represents a single TMDb search or discover entry.
type Result struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int64   `json:"vote_count"`
}

// Response models the TMDb paginated search response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// Country is one entry of the TMDb supported-country configuration.
type Country struct {
	Code        string `json:"iso_3166_1"`
	EnglishName string `json:"english_name"`
}

// Metadata is the enrichment payload assembled from a detail fetch. Zero
// values mean TMDb had nothing for the field.
type Metadata struct {
	TMDBID          int64
	IMDBID          string
	Title           string
	Year            int
	ReleaseDate     string
	ReleaseWindow   string
	RatingCert      string
	RuntimeMinutes  int
	DurationSeconds int
	TrailerURL      string
	Origin          string
	BoxOfficeActual float64
	Franchise       string
	VoteAverage     float64
	VoteCount       int64
	Genres          []string
}

// detail models the movie detail payload with the appended release_dates
// and videos blocks.
type detail struct {
	ID                  int64   `json:"id"`
	IMDBID              string  `json:"imdb_id"`
	Title               string  `json:"title"`
	Overview            string  `json:"overview"`
	ReleaseDate         string  `json:"release_date"`
	Runtime             int     `json:"runtime"`
	Revenue             float64 `json:"revenue"`
	VoteAverage         float64 `json:"vote_average"`
	VoteCount           int64   `json:"vote_count"`
	Genres              []struct {
		Name string `json:"name"`
	} `json:"genres"`
	ProductionCountries []struct {
		Code string `json:"iso_3166_1"`
	} `json:"production_countries"`
	BelongsToCollection *struct {
		Name string `json:"name"`
	} `json:"belongs_to_collection"`
	ReleaseDates struct {
		Results []releaseBlock `json:"results"`
	} `json:"release_dates"`
	Videos struct {
		Results []video `json:"results"`
	} `json:"videos"`
}

type releaseBlock struct {
	Code     string `json:"iso_3166_1"`
	Releases []struct {
		Type          int    `json:"type"`
		Certification string `json:"certification"`
	} `json:"release_dates"`
}

type video struct {
	Site string `json:"site"`
	Type string `json:"type"`
	Key  string `json:"key"`
}

// WindowClassifier maps a release date and origin country to a release
// window label.
type WindowClassifier func(releaseDate, country string) string

// Client provides access to the TMDb API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	limiter    ratelimit.Limiter
	classify   WindowClassifier
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLimiter throttles requests through the provided limiter.
func WithLimiter(limiter ratelimit.Limiter) Option {
	return func(c *Client) {
		if limiter != nil {
			c.limiter = limiter
		}
	}
}

// WithWindowClassifier overrides the release-window classifier applied to
// detail fetches.
func WithWindowClassifier(classify WindowClassifier) Option {
	return func(c *Client) {
		if classify != nil {
			c.classify = classify
		}
	}
}

// New creates a TMDb client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    ratelimit.NewNop(),
		classify:   func(string, string) string { return "" },
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// getJSON performs one throttled GET against the API and decodes the body
// into dest. HTTP 429 surfaces as services.ErrRateLimited so sweeps halt
// instead of hammering the API.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("tmdb %s: %w", path, services.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb %s returned %d (latency=%v)", path, resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}

// SearchExact scans search pages 1-2 for the title and returns the single
// result whose normalized title equals the normalized query. Zero or
// multiple matches yield nil.
func (c *Client) SearchExact(ctx context.Context, title string) (*Result, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("query must not be empty")
	}
	normQuery := textutil.Normalize(title)

	var all []Result
	for page := 1; page <= 2; page++ {
		params := url.Values{}
		params.Set("query", title)
		params.Set("page", strconv.Itoa(page))

		var payload Response
		if err := c.getJSON(ctx, "/search/movie", params, &payload); err != nil {
			return nil, fmt.Errorf("tmdb search: %w", err)
		}
		all = append(all, payload.Results...)
		if page >= payload.TotalPages {
			break
		}
	}

	var matches []Result
	for _, result := range all {
		if textutil.Normalize(result.Title) == normQuery {
			matches = append(matches, result)
		}
	}
	if len(matches) != 1 {
		return nil, nil
	}
	match := matches[0]
	return &match, nil
}

// MovieDetails fetches the full enrichment payload for a TMDb movie id.
func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*Metadata, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	params := url.Values{}
	params.Set("append_to_response", "release_dates,videos")

	var payload detail
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d", movieID), params, &payload); err != nil {
		return nil, fmt.Errorf("tmdb movie details: %w", err)
	}
	return c.buildMetadata(&payload), nil
}

// FetchMetadata resolves a title to its enrichment payload. Returns
// (nil, nil) when no unique exact match exists.
func (c *Client) FetchMetadata(ctx context.Context, title string) (*Metadata, error) {
	match, err := c.SearchExact(ctx, title)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, nil
	}
	return c.MovieDetails(ctx, match.ID)
}

// FetchUserRating returns the TMDb community vote average (0-10) and vote
// count for a title. ok is false when no unique exact match exists.
func (c *Client) FetchUserRating(ctx context.Context, title string) (average float64, votes int, ok bool, err error) {
	match, err := c.SearchExact(ctx, title)
	if err != nil {
		return 0, 0, false, err
	}
	if match == nil {
		return 0, 0, false, nil
	}

	var payload detail
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d", match.ID), nil, &payload); err != nil {
		return 0, 0, false, fmt.Errorf("tmdb user rating: %w", err)
	}
	return payload.VoteAverage, int(payload.VoteCount), true, nil
}

// DiscoverByRegion returns one page of the region's discover feed, keeping
// entries with a vote average of at least 5 or no votes at all. An empty
// slice means the feed is exhausted.
func (c *Client) DiscoverByRegion(ctx context.Context, region string, page int) ([]Result, error) {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return nil, errors.New("region must not be empty")
	}
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("region", region)
	params.Set("sort_by", "popularity.desc")
	params.Set("page", strconv.Itoa(page))

	var payload Response
	if err := c.getJSON(ctx, "/discover/movie", params, &payload); err != nil {
		return nil, fmt.Errorf("tmdb discover: %w", err)
	}

	var kept []Result
	for _, result := range payload.Results {
		if result.VoteAverage >= 5 || result.VoteCount == 0 {
			kept = append(kept, result)
		}
	}
	return kept, nil
}

// Countries lists the origin countries TMDb supports.
func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	var payload []Country
	if err := c.getJSON(ctx, "/configuration/countries", nil, &payload); err != nil {
		return nil, fmt.Errorf("tmdb countries: %w", err)
	}
	return payload, nil
}

func (c *Client) buildMetadata(det *detail) *Metadata {
	origin := "US"
	if len(det.ProductionCountries) > 0 && strings.TrimSpace(det.ProductionCountries[0].Code) != "" {
		origin = strings.ToUpper(strings.TrimSpace(det.ProductionCountries[0].Code))
	}

	meta := &Metadata{
		TMDBID:      det.ID,
		IMDBID:      strings.TrimSpace(det.IMDBID),
		Title:       det.Title,
		ReleaseDate: det.ReleaseDate,
		Origin:      origin,
		VoteAverage: det.VoteAverage,
		VoteCount:   det.VoteCount,
	}
	if len(det.ReleaseDate) >= 4 {
		if year, err := strconv.Atoi(det.ReleaseDate[:4]); err == nil {
			meta.Year = year
		}
	}
	meta.ReleaseWindow = c.classify(det.ReleaseDate, origin)
	meta.RatingCert = extractCertification(det, origin)
	if det.Runtime > 0 {
		meta.RuntimeMinutes = det.Runtime
		meta.DurationSeconds = det.Runtime * 60
	}
	meta.TrailerURL = firstTrailer(det.Videos.Results)
	if det.Revenue > 0 {
		meta.BoxOfficeActual = det.Revenue
	}
	if det.BelongsToCollection != nil {
		meta.Franchise = strings.TrimSpace(det.BelongsToCollection.Name)
	}
	for _, genre := range det.Genres {
		if name := strings.TrimSpace(genre.Name); name != "" {
			meta.Genres = append(meta.Genres, name)
		}
	}
	return meta
}

// extractCertification returns the first theatrical (type 3) certification
// recorded for the origin country.
func extractCertification(det *detail, country string) string {
	for _, block := range det.ReleaseDates.Results {
		if block.Code != country {
			continue
		}
		for _, release := range block.Releases {
			if release.Type == 3 && strings.TrimSpace(release.Certification) != "" {
				return strings.TrimSpace(release.Certification)
			}
		}
	}
	return ""
}

// firstTrailer returns the canonical watch URL of the first YouTube trailer
// in the videos block.
func firstTrailer(videos []video) string {
	for _, v := range videos {
		if v.Site == "YouTube" && v.Type == "Trailer" && strings.TrimSpace(v.Key) != "" {
			return "https://www.youtube.com/watch?v=" + v.Key
		}
	}
	return ""
}
