// Package proximity scores the livability of a location by weighting nearby
// OpenStreetMap features per category, with distance decay, diminishing
// returns, and structural penalties.
package proximity

// CategoryUndesirable is the penalty-only category. It contributes its weight
// to the normalization total but is excluded from the missing, unbalanced and
// diversity penalties.
const CategoryUndesirable = "undesirable"

// Matcher matches a tag key against a fixed set of accepted values.
type Matcher struct {
	Key    string
	Values map[string]struct{}
}

// Category is one entry of the taxonomy: a name, a scoring weight and the tag
// matchers that assign features to it.
type Category struct {
	Name     string
	Weight   float64
	Matchers []Matcher
}

// categories is the process-wide taxonomy. Order is significant: Classify
// assigns a feature to the first category with a matching tag, so reordering
// entries changes scores.
var categories = []Category{
	{
		Name:   "food",
		Weight: 1.0,
		Matchers: []Matcher{
			{Key: "amenity", Values: set("restaurant", "cafe", "bar", "fast_food", "pub", "biergarten")},
		},
	},
	{
		Name:   "grocery",
		Weight: 1.2,
		Matchers: []Matcher{
			{Key: "shop", Values: set("supermarket", "convenience", "bakery", "greengrocer")},
		},
	},
	{
		Name:   "health",
		Weight: 1.1,
		Matchers: []Matcher{
			{Key: "amenity", Values: set("hospital", "clinic", "doctors", "pharmacy", "dentist")},
		},
	},
	{
		Name:   "education",
		Weight: 0.9,
		Matchers: []Matcher{
			{Key: "amenity", Values: set("school", "university", "college", "kindergarten")},
		},
	},
	{
		Name:   "transport",
		Weight: 0.40,
		Matchers: []Matcher{
			{Key: "public_transport", Values: set("station", "stop_position", "platform")},
			{Key: "railway", Values: set("station", "tram_stop", "subway_entrance")},
			{Key: "amenity", Values: set("bus_station")},
		},
	},
	{
		Name:   "parks",
		Weight: 0.7,
		Matchers: []Matcher{
			{Key: "leisure", Values: set("park", "playground", "fitness_centre", "sports_centre", "pitch")},
		},
	},
	{
		Name:   "services",
		Weight: 0.6,
		Matchers: []Matcher{
			{Key: "amenity", Values: set("bank", "atm", "post_office", "police", "fire_station")},
			{Key: "shop", Values: set("mall", "department_store", "clothes", "shoes", "chemist")},
		},
	},
	{
		Name:   CategoryUndesirable,
		Weight: 1.0,
		Matchers: []Matcher{
			{Key: "landuse", Values: set("landfill", "industrial")},
			{Key: "amenity", Values: set("prison", "waste_transfer_station", "waste_disposal")},
			{Key: "man_made", Values: set("works", "wastewater_plant")},
		},
	},
}

// primaryTagKeys is the display-label priority order. It mirrors the tag keys
// the feature query requests; it has no effect on classification.
var primaryTagKeys = []string{"amenity", "shop", "leisure", "public_transport", "railway"}

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

// Categories returns the taxonomy in declaration order.
func Categories() []Category { return categories }

// TotalWeight returns the sum of all category weights, undesirable included.
func TotalWeight() float64 {
	var total float64
	for _, c := range categories {
		total += c.Weight
	}
	return total
}

// Classify maps a feature's tags to the first matching category, in taxonomy
// order. Returns false when no category matches.
func Classify(tags map[string]string) (string, bool) {
	for _, c := range categories {
		for _, m := range c.Matchers {
			if v, ok := tags[m.Key]; ok {
				if _, hit := m.Values[v]; hit {
					return c.Name, true
				}
			}
		}
	}
	return "", false
}

// PrimaryTag returns the first present tag in display priority order. Used for
// labeling POIs only, never for scoring.
func PrimaryTag(tags map[string]string) (key, value string, ok bool) {
	for _, k := range primaryTagKeys {
		if v := tags[k]; v != "" {
			return k, v, true
		}
	}
	return "", "", false
}
