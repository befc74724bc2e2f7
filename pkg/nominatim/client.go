// Package nominatim provides a client for the Nominatim address search API.
package nominatim

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultURL is the public Nominatim search endpoint.
const DefaultURL = "https://nominatim.openstreetmap.org/search"

// ErrNoResults indicates the search returned zero candidates for the query.
var ErrNoResults = eris.New("nominatim: no results")

// Place is the first search result for a query.
type Place struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// Client defines the Nominatim operations.
type Client interface {
	// Search resolves a free-text query to its best-ranked place.
	Search(ctx context.Context, query string) (*Place, error)

	// Geocode resolves an address to a coordinate pair.
	Geocode(ctx context.Context, address string) (lat, lon float64, err error)
}

// Option configures the Nominatim client.
type Option func(*httpClient)

// WithBaseURL sets a custom search URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithUserAgent sets the User-Agent header. Nominatim's usage policy requires
// an identifying agent.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

// WithRateLimit sets the requests-per-second limit for search calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithLocalityBias appends suffix to queries that do not already mention the
// locality substring (case-insensitive). Biases ambiguous addresses toward a
// target region; an empty locality disables the bias.
func WithLocalityBias(locality, suffix string) Option {
	return func(c *httpClient) {
		c.biasLocality = strings.ToLower(locality)
		c.biasSuffix = suffix
	}
}

type httpClient struct {
	baseURL      string
	userAgent    string
	biasLocality string
	biasSuffix   string
	limiter      *rate.Limiter
	http         *http.Client
}

// NewClient creates a Nominatim client. The default rate limit follows the
// public instance's one-request-per-second policy.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   DefaultURL,
		userAgent: "Proximity/0.1",
		limiter:   rate.NewLimiter(1, 1),
		http:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchResult is one entry of the Nominatim JSON response. Coordinates are
// strings in the wire format.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (c *httpClient) Search(ctx context.Context, query string) (*Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, eris.New("nominatim: empty query")
	}

	if c.biasLocality != "" && !strings.Contains(strings.ToLower(query), c.biasLocality) {
		query += c.biasSuffix
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "nominatim: rate limit")
	}

	params := url.Values{
		"format": {"json"},
		"limit":  {"1"},
		"q":      {query},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("nominatim: status %d: %s", resp.StatusCode, string(body))
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, eris.Wrap(err, "nominatim: unmarshal response")
	}
	if len(results) == 0 {
		return nil, eris.Wrap(ErrNoResults, query)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "nominatim: parse lat %q", first.Lat)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "nominatim: parse lon %q", first.Lon)
	}

	return &Place{Lat: lat, Lon: lon, DisplayName: first.DisplayName}, nil
}

// Geocode resolves an address via Search, returning only the coordinate.
func (c *httpClient) Geocode(ctx context.Context, address string) (float64, float64, error) {
	place, err := c.Search(ctx, address)
	if err != nil {
		return 0, 0, err
	}
	return place.Lat, place.Lon, nil
}
