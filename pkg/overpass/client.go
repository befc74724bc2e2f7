// Package overpass provides a client for the Overpass spatial feature API.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultURL is the public Overpass interpreter endpoint.
const DefaultURL = "https://overpass-api.de/api/interpreter"

// tagKeys are the tag filters requested for every element type.
var tagKeys = []string{"amenity", "shop", "leisure", "public_transport", "railway"}

// LatLon is a coordinate pair as returned in way/relation centers.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Element is one raw feature from an Overpass response. Nodes carry Lat/Lon
// directly; ways and relations carry a computed Center.
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Tags   map[string]string `json:"tags"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *LatLon           `json:"center"`
}

// Position resolves the element's coordinate, preferring direct lat/lon over
// the center point. Returns false when neither is present.
func (e Element) Position() (lat, lon float64, ok bool) {
	if e.Lat != nil && e.Lon != nil {
		return *e.Lat, *e.Lon, true
	}
	if e.Center != nil {
		return e.Center.Lat, e.Center.Lon, true
	}
	return 0, 0, false
}

// Client defines the Overpass operations.
type Client interface {
	// Nearby returns all features tagged with any of the standard tag keys
	// within radiusM meters of the coordinate.
	Nearby(ctx context.Context, lat, lon float64, radiusM int) ([]Element, error)
}

// Option configures the Overpass client.
type Option func(*httpClient)

// WithBaseURL sets a custom interpreter URL (for testing).
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

// WithUserAgent sets the User-Agent header sent with every query.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

// WithRetries sets the total number of attempts per query.
func WithRetries(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.retries = n
		}
	}
}

// WithRetryDelay sets the fixed delay between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *httpClient) {
		c.retryDelay = d
	}
}

type httpClient struct {
	baseURL    string
	userAgent  string
	retries    int
	retryDelay time.Duration
	http       *http.Client
}

// NewClient creates an Overpass client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:    DefaultURL,
		userAgent:  "Proximity/0.1",
		retries:    3,
		retryDelay: 500 * time.Millisecond,
		http:       &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// buildQuery produces one Overpass QL query covering every element type and
// tag key combination, with center points for non-point geometries.
func buildQuery(lat, lon float64, radiusM int) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, key := range tagKeys {
		for _, elType := range []string{"node", "way", "relation"} {
			fmt.Fprintf(&b, "  %s(around:%d,%f,%f)[%s];\n", elType, radiusM, lat, lon, key)
		}
	}
	b.WriteString(");\nout center;\n")
	return b.String()
}

// Nearby posts the combined query, retrying transport errors and non-2xx
// responses up to the configured attempt count with a fixed delay. An empty
// elements array is a valid result, not an error.
func (c *httpClient) Nearby(ctx context.Context, lat, lon float64, radiusM int) ([]Element, error) {
	query := buildQuery(lat, lon, radiusM)

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		elements, err := c.query(ctx, query)
		if err == nil {
			return elements, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, eris.Wrapf(lastErr, "overpass: query failed after %d attempts", c.retries)
}

func (c *httpClient) query(ctx context.Context, query string) ([]Element, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(query))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: create request")
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.Errorf("overpass: status %d: %s", resp.StatusCode, truncate(string(body), 512))
	}

	var payload struct {
		Elements []Element `json:"elements"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, eris.Wrap(err, "overpass: unmarshal response")
	}
	if payload.Elements == nil {
		return []Element{}, nil
	}
	return payload.Elements, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
