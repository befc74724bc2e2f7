package main

import (
	"io"
	"net/http"
	"time"

	"github.com/proxima-gis/proximity/internal/config"
	"github.com/proxima-gis/proximity/internal/geocache"
	"github.com/proxima-gis/proximity/internal/proximity"
	"github.com/proxima-gis/proximity/pkg/nominatim"
	"github.com/proxima-gis/proximity/pkg/overpass"
)

// newService wires the scoring pipeline from configuration. The returned
// closer is non-nil when the geocode cache is enabled.
func newService(cfg *config.Config) (*proximity.Service, io.Closer, error) {
	var geocoder proximity.Geocoder = nominatim.NewClient(
		nominatim.WithBaseURL(cfg.Nominatim.BaseURL),
		nominatim.WithUserAgent(cfg.Nominatim.UserAgent),
		nominatim.WithRateLimit(cfg.Nominatim.RatePerSec),
		nominatim.WithLocalityBias(cfg.Nominatim.LocalityBias, cfg.Nominatim.LocalitySuffix),
	)

	var closer io.Closer
	if cfg.Cache.Enabled {
		cache, err := geocache.Open(
			cfg.Cache.Path,
			time.Duration(cfg.Cache.TTLDays)*24*time.Hour,
			geocoder,
		)
		if err != nil {
			return nil, nil, err
		}
		geocoder = cache
		closer = cache
	}

	features := overpass.NewClient(
		overpass.WithBaseURL(cfg.Overpass.BaseURL),
		overpass.WithUserAgent(cfg.Nominatim.UserAgent),
		overpass.WithRetries(cfg.Overpass.Retries),
		overpass.WithRetryDelay(time.Duration(cfg.Overpass.RetryDelayMs)*time.Millisecond),
		overpass.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Overpass.TimeoutSecs) * time.Second}),
	)

	svc := proximity.NewService(geocoder, features, proximity.WithMaxPOIs(cfg.Scoring.MaxPOIs))
	return svc, closer, nil
}
