package omdb

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

	lru "github.com/hashicorp/golang-lru/v2"

	"movienight/internal/identity"
	"movienight/internal/ratelimit"
	"movienight/internal/services"
)

const cacheSize = 512

// RatingEntry is one source entry of the OMDb Ratings block.
type RatingEntry struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// Payload is the raw OMDb response for one film. Fields keep OMDb's "N/A"
// convention; the accessor methods translate that to Go zero values.
type Payload struct {
	Title      string        `json:"Title"`
	Year       string        `json:"Year"`
	Released   string        `json:"Released"`
	Runtime    string        `json:"Runtime"`
	Genre      string        `json:"Genre"`
	Director   string        `json:"Director"`
	Actors     string        `json:"Actors"`
	Plot       string        `json:"Plot"`
	Country    string        `json:"Country"`
	Metascore  string        `json:"Metascore"`
	IMDBRating string        `json:"imdbRating"`
	IMDBVotes  string        `json:"imdbVotes"`
	IMDBID     string        `json:"imdbID"`
	BoxOffice  string        `json:"BoxOffice"`
	Ratings    []RatingEntry `json:"Ratings"`
	Response   string        `json:"Response"`
	Error      string        `json:"Error"`
}

// RuntimeSeconds parses the free-text Runtime ("142 min") into seconds.
// Returns 0 when absent or unparseable.
func (p *Payload) RuntimeSeconds() int {
	if p == nil {
		return 0
	}
	return identity.ParseMinutes(p.Runtime) * 60
}

// YearValue parses the Year field. Returns 0 when absent.
func (p *Payload) YearValue() int {
	if p == nil {
		return 0
	}
	return identity.ParseYear(p.Year)
}

// PlotText returns the short plot, or "" when OMDb had none.
func (p *Payload) PlotText() string {
	if p == nil || p.Plot == "N/A" {
		return ""
	}
	return p.Plot
}

// BoxOfficeAmount parses the "$1,234,567" BoxOffice field into an integer
// dollar amount. Returns 0 when absent or unparseable.
func (p *Payload) BoxOfficeAmount() int {
	if p == nil || !strings.HasPrefix(p.BoxOffice, "$") {
		return 0
	}
	amount, err := strconv.Atoi(strings.ReplaceAll(p.BoxOffice[1:], ",", ""))
	if err != nil {
		return 0
	}
	return amount
}

// VoteCount parses the comma-grouped imdbVotes field. Returns 0 when
// absent.
func (p *Payload) VoteCount() int {
	if p == nil {
		return 0
	}
	votes, err := strconv.Atoi(strings.ReplaceAll(p.IMDBVotes, ",", ""))
	if err != nil {
		return 0
	}
	return votes
}

// FirstActor returns the lead name from the comma-separated Actors field.
func (p *Payload) FirstActor() string {
	if p == nil || p.Actors == "N/A" {
		return ""
	}
	for _, name := range strings.Split(p.Actors, ",") {
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	return ""
}

// RatingsMap assembles the 0-100 scores OMDb carries: imdb (imdbRating
// x10), rt_critic (Rotten Tomatoes "NN%" from the Ratings block), and
// metacritic ("NN/100" or plain Metascore). Absent sources are omitted.
func (p *Payload) RatingsMap() map[string]float64 {
	scores := make(map[string]float64)
	if p == nil {
		return scores
	}
	if rating, err := strconv.ParseFloat(p.IMDBRating, 64); err == nil {
		scores["imdb"] = round1(rating * 10)
	}
	if meta := strings.SplitN(p.Metascore, "/", 2)[0]; meta != "" {
		if score, err := strconv.ParseFloat(meta, 64); err == nil {
			scores["metacritic"] = score
		}
	}
	for _, entry := range p.Ratings {
		if entry.Source != "Rotten Tomatoes" || !strings.HasSuffix(entry.Value, "%") {
			continue
		}
		if score, err := strconv.ParseFloat(strings.TrimSuffix(entry.Value, "%"), 64); err == nil {
			scores["rt_critic"] = score
		}
	}
	return scores
}

// Fingerprint builds the identity fingerprint for this payload.
func (p *Payload) Fingerprint() identity.Fingerprint {
	if p == nil {
		return identity.Fingerprint{}
	}
	return identity.FromOMDB(p.IMDBID, p.Title, p.Runtime, p.Released, p.Year)
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// Client provides granular access to OMDb with one memoized payload per
// film.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    ratelimit.Limiter
	cache      *lru.Cache[string, *Payload]
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

// New creates an OMDb client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("omdb base url required")
	}
	cache, err := lru.New[string, *Payload](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create payload cache: %w", err)
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 8 * time.Second},
		limiter:    ratelimit.NewNop(),
		cache:      cache,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// PayloadByID fetches (or recalls) the payload for an imdb id. Returns
// (nil, nil) when OMDb has no record.
func (c *Client) PayloadByID(ctx context.Context, imdbID string) (*Payload, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, errors.New("imdb id must not be empty")
	}
	return c.fetch(ctx, "i:"+imdbID, "i", imdbID)
}

// PayloadByTitle fetches (or recalls) the payload for a title lookup.
// Returns (nil, nil) when OMDb has no record.
func (c *Client) PayloadByTitle(ctx context.Context, title string) (*Payload, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title must not be empty")
	}
	return c.fetch(ctx, "t:"+strings.ToLower(title), "t", title)
}

// fetch resolves one payload through the cache. Misses (Response "False")
// are cached too so a film OMDb does not know costs one request, not one
// per accessor.
func (c *Client) fetch(ctx context.Context, cacheKey, param, value string) (*Payload, error) {
	if payload, ok := c.cache.Get(cacheKey); ok {
		return payload, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("plot", "short")
	params.Set(param, value)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("omdb: %w", services.ErrRateLimited)
	}

	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode omdb response: %w", err)
	}
	if payload.Response != "True" {
		if strings.Contains(strings.ToLower(payload.Error), "limit") {
			return nil, fmt.Errorf("omdb: %s: %w", payload.Error, services.ErrRateLimited)
		}
		c.cache.Add(cacheKey, nil)
		return nil, nil
	}

	c.cache.Add(cacheKey, &payload)
	return &payload, nil
}

// RuntimeSeconds returns the runtime for a title, 0 when unknown.
func (c *Client) RuntimeSeconds(ctx context.Context, title string) (int, error) {
	payload, err := c.PayloadByTitle(ctx, title)
	if err != nil {
		return 0, err
	}
	return payload.RuntimeSeconds(), nil
}

// BoxOffice returns the domestic box office for a title in whole dollars,
// 0 when unknown.
func (c *Client) BoxOffice(ctx context.Context, title string) (int, error) {
	payload, err := c.PayloadByTitle(ctx, title)
	if err != nil {
		return 0, err
	}
	return payload.BoxOfficeAmount(), nil
}

// Plot returns the short plot for a title, "" when unknown.
func (c *Client) Plot(ctx context.Context, title string) (string, error) {
	payload, err := c.PayloadByTitle(ctx, title)
	if err != nil {
		return "", err
	}
	return payload.PlotText(), nil
}

// IMDbID returns the imdb id for a title, "" when unknown.
func (c *Client) IMDbID(ctx context.Context, title string) (string, error) {
	payload, err := c.PayloadByTitle(ctx, title)
	if err != nil {
		return "", err
	}
	if payload == nil || payload.IMDBID == "N/A" {
		return "", nil
	}
	return payload.IMDBID, nil
}

// Ratings returns the 0-100 scores OMDb carries for a title, keyed imdb /
// rt_critic / metacritic. Empty map when the title is unknown.
func (c *Client) Ratings(ctx context.Context, title string) (map[string]float64, error) {
	payload, err := c.PayloadByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	return payload.RatingsMap(), nil
}
