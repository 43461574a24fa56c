package videos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	gocache "github.com/patrickmn/go-cache"

	"movienight/internal/ratelimit"
	"movienight/internal/services"
	"movienight/internal/textutil"
)

const defaultMaxResults = 5

var (
	videoIDPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	videoURLPattern = regexp.MustCompile(`(?:v=|/videos/|embed/|youtu\.be/)([A-Za-z0-9_-]{11})`)
	yearTokenPattern = regexp.MustCompile(`^(?:19|20)\d{2}$`)
)

// trailerBoilerplate lists title tokens that carry no identity signal.
var trailerBoilerplate = map[string]struct{}{
	"official":   {},
	"trailer":    {},
	"teaser":     {},
	"hd":         {},
	"4k":         {},
	"uhd":        {},
	"remastered": {},
	"new":        {},
	"final":      {},
}

var errNoMatch = errors.New("no matching video")

// Result is one search hit.
type Result struct {
	VideoID string
	Title   string
}

// Client talks to the YouTube Data API v3.
type Client struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
	limiter    ratelimit.Limiter
	cache      *gocache.Cache
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

// New creates a YouTube search client.
func New(apiKey, baseURL string, maxResults int, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("youtube api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("youtube base url required")
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    ratelimit.NewNop(),
		cache:      gocache.New(15*time.Minute, 30*time.Minute),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchExact returns the first result whose title names precisely the
// film in the query. The empty string means no result qualified.
func (c *Client) SearchExact(ctx context.Context, query string) (string, error) {
	results, err := c.search(ctx, query)
	if err != nil {
		return "", err
	}
	return pickExact(results, queryStem(query)), nil
}

// SearchFirstMatch searches with a retry budget for empty responses. In
// exact mode results must pass the same title check as SearchExact; in
// fuzzy mode the first hit wins. The empty string means the budget ran
// out without a usable result.
func (c *Client) SearchFirstMatch(ctx context.Context, query string, exact bool, maxRetries int) (string, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var videoID string
	err := retry.Do(
		func() error {
			results, err := c.search(ctx, query)
			if err != nil {
				return err
			}
			if exact {
				videoID = pickExact(results, queryStem(query))
			} else if len(results) > 0 {
				videoID = results[0].VideoID
			}
			if videoID == "" {
				return errNoMatch
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(maxRetries)),
		retry.Delay(300*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, services.ErrRateLimited)
		}),
	)
	if errors.Is(err, errNoMatch) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return videoID, nil
}

// VideoViews returns the public view count for a video URL or bare id.
// A video the API does not know yields zero without error.
func (c *Client) VideoViews(ctx context.Context, urlOrID string) (int64, error) {
	videoID := ExtractVideoID(urlOrID)
	if videoID == "" {
		return 0, fmt.Errorf("no video id in %q", urlOrID)
	}
	cacheKey := "views:" + videoID
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.(int64), nil
	}

	params := url.Values{}
	params.Set("part", "statistics")
	params.Set("id", videoID)
	params.Set("key", c.apiKey)

	var payload videosResponse
	if err := c.getJSON(ctx, "/videos", params, &payload); err != nil {
		return 0, err
	}
	if len(payload.Items) == 0 {
		return 0, nil
	}
	views, err := strconv.ParseInt(payload.Items[0].Statistics.ViewCount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse view count: %w", err)
	}
	c.cache.SetDefault(cacheKey, views)
	return views, nil
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// search queries the search endpoint. Empty result sets are not cached so
// the retry budget can probe again.
func (c *Client) search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	cacheKey := "search:" + strings.ToLower(query)
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]Result), nil
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("key", c.apiKey)
	params.Set("type", "video")
	params.Set("videoDuration", "short")
	params.Set("maxResults", strconv.Itoa(c.maxResults))

	var payload searchResponse
	if err := c.getJSON(ctx, "/search", params, &payload); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID.VideoID == "" {
			continue
		}
		results = append(results, Result{VideoID: item.ID.VideoID, Title: item.Snippet.Title})
	}
	if len(results) > 0 {
		c.cache.SetDefault(cacheKey, results)
	}
	return results, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse youtube url: %w", err)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return fmt.Errorf("youtube %s: %w", path, services.ErrRateLimited)
	case http.StatusForbidden:
		// Quota exhaustion comes back as 403 with a quota reason.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if strings.Contains(strings.ToLower(string(body)), "quota") {
			return fmt.Errorf("youtube %s: %w", path, services.ErrRateLimited)
		}
		return fmt.Errorf("youtube %s returned 403", path)
	default:
		return fmt.Errorf("youtube %s returned %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode youtube response: %w", err)
	}
	return nil
}

// ExtractVideoID returns the 11-character video id from a YouTube URL, or
// the input itself when it already is one. Empty string when no id parses.
func ExtractVideoID(urlOrID string) string {
	trimmed := strings.TrimSpace(urlOrID)
	if videoIDPattern.MatchString(trimmed) {
		return trimmed
	}
	if match := videoURLPattern.FindStringSubmatch(trimmed); match != nil {
		return match[1]
	}
	return ""
}

// WatchURL renders the canonical watch URL for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// queryStem strips trailing search boilerplate ("official trailer" and
// friends) from a query, leaving the film title the caller asked about.
func queryStem(query string) string {
	words := strings.Fields(strings.ToLower(query))
	for len(words) > 0 {
		if _, drop := trailerBoilerplate[words[len(words)-1]]; !drop {
			break
		}
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func pickExact(results []Result, stem string) string {
	for _, result := range results {
		if titleMatchesStem(result.Title, stem) {
			return result.VideoID
		}
	}
	return ""
}

// titleMatchesStem reports whether a video title, with boilerplate tokens
// and year tags removed, normalizes to exactly the queried film title.
func titleMatchesStem(title, stem string) bool {
	target := textutil.Normalize(stem)
	if target == "" {
		return false
	}
	var b strings.Builder
	for _, word := range strings.Fields(textutil.NormalizeTitle(title)) {
		if _, drop := trailerBoilerplate[word]; drop {
			continue
		}
		if yearTokenPattern.MatchString(word) {
			continue
		}
		b.WriteString(word)
	}
	return b.String() == target
}
