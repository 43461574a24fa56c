package trends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"movienight/internal/ratelimit"
	"movienight/internal/services"
)

const timeframe = "now 7-d"

// DayCache is the store-backed per-day cache for trend scores.
type DayCache interface {
	CachedTrend(ctx context.Context, term, day string) (float64, bool, error)
	StoreTrend(ctx context.Context, term, day string, value float64) error
}

// Client fetches 7-day interest averages from Google Trends.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    ratelimit.Limiter
	store      DayCache
	memory     *gocache.Cache
	now        func() time.Time
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

// WithClock overrides the day-bucket clock.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a trends client. store may be nil, in which case only the
// in-process TTL cache applies.
func New(baseURL string, ttl time.Duration, store DayCache, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("trends base url required")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    ratelimit.NewNop(),
		store:      store,
		memory:     gocache.New(ttl, 2*ttl),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type exploreResponse struct {
	Widgets []struct {
		ID      string          `json:"id"`
		Token   string          `json:"token"`
		Request json.RawMessage `json:"request"`
	} `json:"widgets"`
}

type multilineResponse struct {
	Default struct {
		TimelineData []struct {
			Value []float64 `json:"value"`
		} `json:"timelineData"`
	} `json:"default"`
}

// Fetch7DayAverage returns the mean interest over the last seven days for
// a search term, rounded to an integer. ok is false when the series is
// empty or the term draws no data.
func (c *Client) Fetch7DayAverage(ctx context.Context, term string) (int, bool, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return 0, false, errors.New("term must not be empty")
	}
	day := c.now().UTC().Format("2006-01-02")

	if cached, found := c.memory.Get(term); found {
		return cached.(int), true, nil
	}
	if c.store != nil {
		if value, ok, err := c.store.CachedTrend(ctx, term, day); err != nil {
			return 0, false, fmt.Errorf("read trend cache: %w", err)
		} else if ok {
			score := int(math.Round(value))
			c.memory.SetDefault(term, score)
			return score, true, nil
		}
	}

	score, ok, err := c.fetchSeries(ctx, term)
	if err != nil || !ok {
		return 0, false, err
	}

	c.memory.SetDefault(term, score)
	if c.store != nil {
		if err := c.store.StoreTrend(ctx, term, day, float64(score)); err != nil {
			return 0, false, fmt.Errorf("write trend cache: %w", err)
		}
	}
	return score, true, nil
}

// fetchSeries walks explore for the timeseries widget token and then
// averages the widget's interest-over-time values.
func (c *Client) fetchSeries(ctx context.Context, term string) (int, bool, error) {
	exploreReq, err := json.Marshal(map[string]any{
		"comparisonItem": []map[string]string{{
			"keyword": term,
			"geo":     "",
			"time":    timeframe,
		}},
		"category": 0,
		"property": "",
	})
	if err != nil {
		return 0, false, fmt.Errorf("marshal explore request: %w", err)
	}

	params := url.Values{}
	params.Set("hl", "en-US")
	params.Set("tz", "360")
	params.Set("req", string(exploreReq))

	var explore exploreResponse
	if err := c.getJSON(ctx, "/api/explore", params, &explore); err != nil {
		return 0, false, fmt.Errorf("trends explore: %w", err)
	}

	var (
		token   string
		request json.RawMessage
	)
	for _, widget := range explore.Widgets {
		if widget.ID == "TIMESERIES" {
			token = widget.Token
			request = widget.Request
			break
		}
	}
	if token == "" {
		return 0, false, nil
	}

	params = url.Values{}
	params.Set("hl", "en-US")
	params.Set("tz", "360")
	params.Set("req", string(request))
	params.Set("token", token)

	var series multilineResponse
	if err := c.getJSON(ctx, "/api/widgetdata/multiline", params, &series); err != nil {
		return 0, false, fmt.Errorf("trends series: %w", err)
	}

	points := series.Default.TimelineData
	if len(points) == 0 {
		return 0, false, nil
	}
	var sum float64
	count := 0
	for _, point := range points {
		if len(point.Value) == 0 {
			continue
		}
		sum += point.Value[0]
		count++
	}
	if count == 0 {
		return 0, false, nil
	}
	return int(math.Round(sum / float64(count))), true, nil
}

// getJSON performs one throttled GET and decodes the response after
// stripping the ")]}'" anti-hijack prefix Google prepends.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse trends url: %w", err)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("trends %s: %w", path, services.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("trends %s returned %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(stripPrefix(body), dest); err != nil {
		return fmt.Errorf("decode trends response: %w", err)
	}
	return nil
}

// stripPrefix drops everything before the first JSON brace.
func stripPrefix(body []byte) []byte {
	if idx := strings.IndexByte(string(body), '{'); idx > 0 {
		return body[idx:]
	}
	return body
}
