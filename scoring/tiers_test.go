package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruxfantasy/cruxapi/models"
)

func intp(v int) *int { return &v }

func testTiers() []models.Tier {
	return []models.Tier{
		{Name: "S", MaxRank: intp(10), MaxPerTeam: intp(2)},
		{Name: "A", MaxRank: intp(30), MaxPerTeam: intp(3)},
		{Name: "B", MaxRank: nil, MaxPerTeam: nil},
	}
}

func TestTierOf(t *testing.T) {
	tiers := testTiers()
	rankings := map[int]int{1: 1, 2: 10, 3: 11, 4: 30, 5: 31}

	assert.Equal(t, "S", TierOf(1, rankings, tiers))
	assert.Equal(t, "S", TierOf(2, rankings, tiers), "cutoff is inclusive")
	assert.Equal(t, "A", TierOf(3, rankings, tiers))
	assert.Equal(t, "A", TierOf(4, rankings, tiers))
	assert.Equal(t, "B", TierOf(5, rankings, tiers))
}

func TestTierOfUnranked(t *testing.T) {
	// An unranked climber always falls to the unbounded tier, no matter how
	// generous the other cutoffs are.
	tiers := []models.Tier{
		{Name: "S", MaxRank: intp(100000), MaxPerTeam: intp(1)},
		{Name: "B", MaxRank: nil},
	}
	assert.Equal(t, "B", TierOf(42, map[int]int{}, tiers))
	assert.Equal(t, "B", TierOf(42, nil, tiers))
}

func TestCountsByTier(t *testing.T) {
	tiers := testTiers()
	rankings := map[int]int{1: 2, 2: 7, 3: 25}

	counts := CountsByTier([]int{1, 2, 3, 99}, rankings, tiers)
	assert.Equal(t, map[string]int{"S": 2, "A": 1, "B": 1}, counts)
}

func TestValidateTierLimits(t *testing.T) {
	tiers := testTiers()
	rankings := map[int]int{1: 1, 2: 5, 3: 9, 4: 50}

	// Two S-tier climbers is at the cap.
	assert.NoError(t, ValidateTierLimits([]int{1, 2, 4}, rankings, tiers))

	// A third climber ranked inside the S cutoff breaks the cap.
	err := ValidateTierLimits([]int{1, 2, 3, 4}, rankings, tiers)
	require.Error(t, err)

	var tle *TierLimitError
	require.ErrorAs(t, err, &tle)
	assert.Equal(t, "S", tle.Tier)
	assert.Equal(t, 2, tle.Cap)
	assert.Equal(t, 3, tle.Count)
}

func TestValidateTierLimitsNoConfig(t *testing.T) {
	assert.NoError(t, ValidateTierLimits([]int{1, 2, 3}, nil, nil))
}
