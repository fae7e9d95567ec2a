package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIFSCWorldCupTable(t *testing.T) {
	table := IFSCWorldCup()

	assert.Equal(t, 1000, table.ForRank(1))
	assert.Equal(t, 805, table.ForRank(2))
	assert.Equal(t, 690, table.ForRank(3))
	assert.Equal(t, 1, table.ForRank(80))
	assert.Equal(t, 80, table.MaxRank())

	// Any placement beyond the table scores the 1-point minimum.
	assert.Equal(t, 1, table.ForRank(81))
	assert.Equal(t, 1, table.ForRank(500))
}

// The full official distribution, pinned rank by rank. Spot checks miss
// single-entry typos in the flatter buckets (2s vs 1s around rank 70).
func TestIFSCWorldCupFullDistribution(t *testing.T) {
	want := []int{
		1000, 805, 690, 610, 545, 495, 455, 415, 380, 350,
		325, 300, 280, 260, 240, 220, 205, 185, 170, 155,
		145, 130, 120, 105, 95, 84, 73, 63, 56, 48,
		42, 37, 33, 30, 27, 24, 21, 19, 17, 15,
		14, 13, 12, 11, 11, 10, 9, 9, 8, 8,
		7, 7, 7, 6, 6, 6, 5, 5, 5, 4,
		4, 4, 4, 3, 3, 3, 3, 3, 2, 2,
		2, 2, 2, 2, 1, 1, 1, 1, 1, 1,
	}

	table := IFSCWorldCup()
	require.Len(t, want, table.MaxRank())
	for i, points := range want {
		assert.Equal(t, points, table.ForRank(i+1), "rank %d", i+1)
	}

	// The 2-point bucket runs through rank 74; 1s start at 75.
	assert.Equal(t, 2, table.ForRank(74))
	assert.Equal(t, 1, table.ForRank(75))
}

func TestForRankMonotonicNonIncreasing(t *testing.T) {
	table := IFSCWorldCup()
	for rank := 2; rank <= 100; rank++ {
		require.LessOrEqual(t, table.ForRank(rank), table.ForRank(rank-1),
			"rank %d must not out-score rank %d", rank, rank-1)
	}
}

func TestForRankDidNotPlace(t *testing.T) {
	table := IFSCWorldCup()
	assert.Zero(t, table.ForRank(0))
	assert.Zero(t, table.ForRank(-3))
}

func TestBeyondZeroPolicy(t *testing.T) {
	table, err := NewPointsTable([]int{100, 50, 25}, BeyondZero)
	require.NoError(t, err)

	assert.Equal(t, 25, table.ForRank(3))
	assert.Zero(t, table.ForRank(4))
}

func TestNewPointsTableValidation(t *testing.T) {
	_, err := NewPointsTable(nil, BeyondZero)
	assert.Error(t, err)

	_, err = NewPointsTable([]int{100, 120}, BeyondZero)
	assert.Error(t, err, "increasing table must be rejected")

	_, err = NewPointsTable([]int{100, -1}, BeyondZero)
	assert.Error(t, err)

	// Plateaus are fine: non-increasing, not strictly decreasing.
	_, err = NewPointsTable([]int{10, 10, 5}, BeyondZero)
	assert.NoError(t, err)
}

func TestNewPointsTableCopiesInput(t *testing.T) {
	points := []int{100, 50}
	table, err := NewPointsTable(points, BeyondZero)
	require.NoError(t, err)

	points[0] = 1
	assert.Equal(t, 100, table.ForRank(1))
}
