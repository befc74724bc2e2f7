package proximity

import "math"

const (
	// Diminishing returns: the first fullValueCount features of a category
	// count at full average contribution, every one beyond at marginalFactor.
	fullValueCount = 10
	marginalFactor = 0.2

	scoreScaling = 0.35

	penaltyPerMissingCategory = 1.0
	penaltyPerDominantShare   = 1.5
	penaltyPerUndesirable     = 1.0
	penaltyLowDiversity       = 2.0

	// dominantShare is the fraction of all non-undesirable features above
	// which a single category triggers the unbalanced penalty.
	dominantShare = 0.6

	// minDiverseCategories is the number of distinct non-undesirable
	// categories required to avoid the flat diversity penalty.
	minDiverseCategories = 6

	finalScoreMin = 1.0
	finalScoreMax = 10.0
)

// CategoryScore is the per-category scoring result.
type CategoryScore struct {
	Count int     `json:"count"`
	Raw   float64 `json:"raw"`
	Score float64 `json:"score"`
}

// Penalties is the structural penalty report.
type Penalties struct {
	MissingCategories float64 `json:"missing_categories"`
	Unbalanced        float64 `json:"unbalanced"`
	Undesirable       float64 `json:"undesirable"`
	Diversity         float64 `json:"diversity"`
	Total             float64 `json:"total"`
}

// effectiveRaw applies diminishing returns to a category's contribution sum.
// Up to fullValueCount features the sum counts as-is; beyond that the first
// fullValueCount units of average contribution count fully and the remainder
// at marginalFactor of the average.
func effectiveRaw(count int, raw float64) float64 {
	if count <= fullValueCount {
		return raw
	}
	avg := 0.0
	if count > 0 {
		avg = raw / float64(count)
	}
	return avg*fullValueCount + avg*marginalFactor*float64(count-fullValueCount)
}

// scoreCategories fills the Score field of each breakdown entry and returns
// the weighted sum of effective category contributions.
func scoreCategories(breakdown map[string]*CategoryScore) float64 {
	var weighted float64
	for _, c := range categories {
		entry := breakdown[c.Name]
		categoryScore := effectiveRaw(entry.Count, entry.Raw) * c.Weight
		entry.Score = round2(categoryScore * 10)
		weighted += categoryScore
	}
	return weighted
}

// computePenalties derives the four structural penalties from category counts.
// All but the undesirable penalty ignore the undesirable category.
func computePenalties(breakdown map[string]*CategoryScore) Penalties {
	var p Penalties

	totalPOIs := 0
	present := 0
	for _, c := range categories {
		if c.Name == CategoryUndesirable {
			continue
		}
		count := breakdown[c.Name].Count
		totalPOIs += count
		if count == 0 {
			p.MissingCategories += penaltyPerMissingCategory
		} else {
			present++
		}
	}

	if totalPOIs > 0 {
		for _, c := range categories {
			if c.Name == CategoryUndesirable {
				continue
			}
			share := float64(breakdown[c.Name].Count) / float64(totalPOIs)
			if share > dominantShare {
				p.Unbalanced += penaltyPerDominantShare
			}
		}
	}

	p.Undesirable = float64(breakdown[CategoryUndesirable].Count) * penaltyPerUndesirable

	if present < minDiverseCategories {
		p.Diversity = penaltyLowDiversity
	}

	p.Total = p.MissingCategories + p.Unbalanced + p.Undesirable + p.Diversity
	return p
}

// finalScore combines the weighted score and penalties into the bounded
// result. A weighted score of zero means no feature matched any category and
// yields the distinct 0.0 "no data" floor.
func finalScore(weighted, totalWeight, totalPenalty float64) float64 {
	if weighted <= 0 {
		return 0.0
	}
	raw := 0.0
	if totalWeight > 0 {
		raw = (weighted / totalWeight) * 10 * scoreScaling
	}
	penalized := raw - totalPenalty
	return round2(math.Max(finalScoreMin, math.Min(finalScoreMax, penalized)))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
