package proximity

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/proxima-gis/proximity/pkg/nominatim"
	"github.com/proxima-gis/proximity/pkg/overpass"
)

const (
	// MinRadiusM and MaxRadiusM bound the search radius accepted by Evaluate.
	MinRadiusM = 100
	MaxRadiusM = 5000

	// DefaultRadiusM applies when the caller supplies no radius.
	DefaultRadiusM = 1000

	minAddressLen = 3

	defaultMaxPOIs = 300
)

// Geocoder resolves a free-text address to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lon float64, err error)
}

// FeatureSource retrieves tagged features within a radius of a coordinate.
type FeatureSource interface {
	Nearby(ctx context.Context, lat, lon float64, radiusM int) ([]overpass.Element, error)
}

// Location is a resolved coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// POI is one displayed point of interest.
type POI struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Kind      string  `json:"kind,omitempty"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	DistanceM float64 `json:"distance_m"`
}

// Report is the full scoring result for one address.
type Report struct {
	Status    string                    `json:"status"`
	Address   string                    `json:"address"`
	Location  Location                  `json:"location"`
	RadiusM   int                       `json:"radius_m"`
	Score     float64                   `json:"score"`
	POIs      []POI                     `json:"pois"`
	Breakdown map[string]*CategoryScore `json:"breakdown"`
	Penalties Penalties                 `json:"penalties"`
}

// Service runs the scoring pipeline: geocode, fetch, classify, score.
// Both collaborators are injected so the pipeline is testable against canned
// feature sets. A Service is stateless and safe for concurrent use.
type Service struct {
	geocoder Geocoder
	features FeatureSource
	maxPOIs  int
}

// Option configures a Service.
type Option func(*Service)

// WithMaxPOIs caps the number of POIs included in the report. The cap
// truncates the display list only; scoring always covers every feature.
func WithMaxPOIs(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPOIs = n
		}
	}
}

// NewService creates a scoring Service with the given collaborators.
func NewService(geocoder Geocoder, features FeatureSource, opts ...Option) *Service {
	s := &Service{
		geocoder: geocoder,
		features: features,
		maxPOIs:  defaultMaxPOIs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate scores the surroundings of an address within the given radius.
// Input is validated before any network call; geocoding and the feature fetch
// run strictly in sequence since the fetch needs the resolved coordinate.
func (s *Service) Evaluate(ctx context.Context, address string, radiusM int) (*Report, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, eris.Wrap(ErrInvalidInput, "address is required")
	}
	if len(address) < minAddressLen {
		return nil, eris.Wrapf(ErrInvalidInput, "address must be at least %d characters", minAddressLen)
	}
	if radiusM < MinRadiusM || radiusM > MaxRadiusM {
		return nil, eris.Wrapf(ErrInvalidInput, "radius_m must be between %d and %d", MinRadiusM, MaxRadiusM)
	}

	lat, lon, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		if eris.Is(err, ErrAddressNotFound) {
			return nil, err
		}
		if eris.Is(err, nominatim.ErrNoResults) {
			return nil, eris.Wrap(ErrAddressNotFound, address)
		}
		return nil, &UpstreamError{Provider: "geocode", Err: err}
	}

	elements, err := s.features.Nearby(ctx, lat, lon, radiusM)
	if err != nil {
		return nil, &UpstreamError{Provider: "overpass", Err: err}
	}

	report := s.assemble(address, lat, lon, radiusM, elements)

	zap.L().Info("proximity evaluated",
		zap.String("address", address),
		zap.Int("radius_m", radiusM),
		zap.Int("elements", len(elements)),
		zap.Int("pois", len(report.POIs)),
		zap.Float64("score", report.Score),
	)
	return report, nil
}

// assemble classifies features, accumulates per-category totals and produces
// the final report. Pure computation, no I/O.
func (s *Service) assemble(address string, lat, lon float64, radiusM int, elements []overpass.Element) *Report {
	breakdown := make(map[string]*CategoryScore, len(categories))
	for _, c := range categories {
		breakdown[c.Name] = &CategoryScore{}
	}

	pois := make([]POI, 0, min(len(elements), s.maxPOIs))
	for _, el := range elements {
		category, ok := Classify(el.Tags)
		if !ok {
			continue
		}

		elLat, elLon, ok := el.Position()
		if !ok {
			continue
		}

		dist := Haversine(lat, lon, elLat, elLon)
		if dist >= float64(radiusM) {
			continue
		}

		entry := breakdown[category]
		entry.Count++
		entry.Raw += DecayContribution(dist, radiusM)

		if len(pois) < s.maxPOIs {
			pois = append(pois, POI{
				ID:        fmt.Sprintf("%s/%d", el.Type, el.ID),
				Name:      displayName(el.Tags),
				Category:  category,
				Kind:      displayKind(el.Tags),
				Lat:       elLat,
				Lon:       elLon,
				DistanceM: round1(dist),
			})
		}
	}

	weighted := scoreCategories(breakdown)
	penalties := computePenalties(breakdown)

	return &Report{
		Status:    "ok",
		Address:   address,
		Location:  Location{Lat: lat, Lon: lon},
		RadiusM:   radiusM,
		Score:     finalScore(weighted, TotalWeight(), penalties.Total),
		POIs:      pois,
		Breakdown: breakdown,
		Penalties: penalties,
	}
}

// displayName picks a POI label: name, brand, the primary tag's value, or a
// generic placeholder.
func displayName(tags map[string]string) string {
	if name := tags["name"]; name != "" {
		return name
	}
	if brand := tags["brand"]; brand != "" {
		return brand
	}
	if _, v, ok := PrimaryTag(tags); ok {
		return v
	}
	return "POI"
}

func displayKind(tags map[string]string) string {
	_, v, _ := PrimaryTag(tags)
	return v
}
