package proximity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// emptyBreakdown returns a breakdown entry for every taxonomy category.
func emptyBreakdown() map[string]*CategoryScore {
	b := make(map[string]*CategoryScore, len(categories))
	for _, c := range categories {
		b[c.Name] = &CategoryScore{}
	}
	return b
}

func TestEffectiveRaw_NoSaturationBelowThreshold(t *testing.T) {
	assert.Equal(t, 0.0, effectiveRaw(0, 0))
	assert.InDelta(t, 3.7, effectiveRaw(5, 3.7), 1e-9)
	assert.InDelta(t, 10.0, effectiveRaw(10, 10.0), 1e-9)
}

func TestEffectiveRaw_DiminishingReturns(t *testing.T) {
	// Uniform contribution c: 10 features are worth 10c, 20 are worth 12c.
	const c = 0.8
	assert.InDelta(t, 10*c, effectiveRaw(10, 10*c), 1e-9)
	assert.InDelta(t, 12*c, effectiveRaw(20, 20*c), 1e-9)

	// 50 cafés don't make a neighborhood 5x better than 10.
	assert.InDelta(t, 10*c+0.2*40*c, effectiveRaw(50, 50*c), 1e-9)
}

func TestScoreCategories_WeightsAndDisplayScore(t *testing.T) {
	b := emptyBreakdown()
	b["grocery"].Count = 4
	b["grocery"].Raw = 2.5

	weighted := scoreCategories(b)

	assert.InDelta(t, 2.5*1.2, weighted, 1e-9)
	assert.InDelta(t, 30.0, b["grocery"].Score, 1e-9) // 2.5 * 1.2 * 10
	assert.Equal(t, 0.0, b["food"].Score)
}

func TestComputePenalties_AllMissing(t *testing.T) {
	p := computePenalties(emptyBreakdown())

	assert.Equal(t, 7.0, p.MissingCategories)
	assert.Equal(t, 0.0, p.Unbalanced) // no features, no share to dominate
	assert.Equal(t, 0.0, p.Undesirable)
	assert.Equal(t, 2.0, p.Diversity)
	assert.Equal(t, 9.0, p.Total)
}

func TestComputePenalties_Unbalanced(t *testing.T) {
	b := emptyBreakdown()
	b["food"].Count = 7
	b["grocery"].Count = 3

	p := computePenalties(b)

	assert.Equal(t, 1.5, p.Unbalanced) // food holds 70% of all features
	assert.Equal(t, 5.0, p.MissingCategories)
	assert.Equal(t, 2.0, p.Diversity)
}

func TestComputePenalties_UndesirableScalesLinearly(t *testing.T) {
	b := emptyBreakdown()
	b[CategoryUndesirable].Count = 4

	p := computePenalties(b)

	assert.Equal(t, 4.0, p.Undesirable)
	// Undesirable features count toward no other penalty input.
	assert.Equal(t, 7.0, p.MissingCategories)
	assert.Equal(t, 0.0, p.Unbalanced)
}

func TestComputePenalties_DiversityIsBinary(t *testing.T) {
	b := emptyBreakdown()
	for _, name := range []string{"food", "grocery", "health", "education", "transport"} {
		b[name].Count = 1
	}
	assert.Equal(t, 2.0, computePenalties(b).Diversity)

	b["parks"].Count = 1 // sixth present category
	assert.Equal(t, 0.0, computePenalties(b).Diversity)
}

func TestFinalScore_Bounds(t *testing.T) {
	total := TotalWeight()

	// Heavy penalties clamp to the floor, not below.
	assert.Equal(t, 1.0, finalScore(0.5, total, 50))

	// Large weighted score clamps to the ceiling.
	assert.Equal(t, 10.0, finalScore(1000, total, 0))

	// No matched features at all is the distinct no-data zero.
	assert.Equal(t, 0.0, finalScore(0, total, 0))
	assert.Equal(t, 0.0, finalScore(0, total, 9))
}

func TestFinalScore_Midrange(t *testing.T) {
	// weighted 3.45 over total 6.9 → (0.5 * 10 * 0.35) = 1.75, minus 0.5.
	got := finalScore(3.45, 6.9, 0.5)
	assert.InDelta(t, 1.25, got, 1e-9)
}

func TestRoundHelpers(t *testing.T) {
	assert.Equal(t, 1.25, round2(1.2549))
	assert.Equal(t, 1.3, round1(1.25))
}
