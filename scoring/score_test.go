package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruxfantasy/cruxapi/models"
)

func snapshotOf(captainID int, climberIDs ...int) Snapshot {
	snap := Snapshot{CaptainID: captainID}
	for _, id := range climberIDs {
		snap.Slots = append(snap.Slots, RosterSlot{ClimberID: id, IsCaptain: id == captainID})
	}
	return snap
}

func TestScoreTeamForEventCaptainMultiplier(t *testing.T) {
	// Captain X wins (1000 pts), Y takes third (690 pts), multiplier 1.2:
	// X contributes floor(1000*1.2)=1200, team total 1890.
	table := IFSCWorldCup()
	snap := snapshotOf(10, 10, 20)
	results := map[int]int{10: 1, 20: 3}

	score := ScoreTeamForEvent(snap, results, table, 1.2)
	assert.Equal(t, 1890, score.TeamTotal)

	require.Len(t, score.Athletes, 2)
	assert.Equal(t, 10, score.Athletes[0].ClimberID)
	assert.Equal(t, 1000, score.Athletes[0].BasePoints)
	assert.Equal(t, 1200, score.Athletes[0].TotalPoints)
	assert.True(t, score.Athletes[0].IsCaptain)
	assert.Equal(t, 690, score.Athletes[1].TotalPoints)
}

func TestScoreTeamForEventFloorsCaptainPoints(t *testing.T) {
	// 73 * 1.2 = 87.6 truncates to 87, never rounds to 88.
	table := IFSCWorldCup()
	snap := snapshotOf(1, 1)

	score := ScoreTeamForEvent(snap, map[int]int{1: 27}, table, 1.2)
	assert.Equal(t, 87, score.TeamTotal)
}

func TestScoreTeamForEventDNPStillListed(t *testing.T) {
	table := IFSCWorldCup()
	snap := snapshotOf(0, 1, 2, 3)

	score := ScoreTeamForEvent(snap, map[int]int{1: 5}, table, 1.2)
	require.Len(t, score.Athletes, 3, "zero-scoring athletes stay in the list")

	var dnp int
	for _, a := range score.Athletes {
		if a.Rank == nil {
			dnp++
			assert.Zero(t, a.BasePoints)
			assert.Zero(t, a.TotalPoints)
		}
	}
	assert.Equal(t, 2, dnp)
	assert.Equal(t, 545, score.TeamTotal)
}

func TestScoreTeamForEventEmptyRoster(t *testing.T) {
	score := ScoreTeamForEvent(Snapshot{}, map[int]int{1: 1}, IFSCWorldCup(), 2.0)
	assert.Zero(t, score.TeamTotal)
	assert.Empty(t, score.Athletes)
}

func TestScoreTeamForEventNilResults(t *testing.T) {
	score := ScoreTeamForEvent(snapshotOf(1, 1, 2), nil, IFSCWorldCup(), 1.5)
	assert.Zero(t, score.TeamTotal)
	assert.Len(t, score.Athletes, 2)
}

func TestScoreTeamForEventTotalMatchesSum(t *testing.T) {
	table := IFSCWorldCup()
	snap := snapshotOf(3, 1, 2, 3, 4)
	results := map[int]int{1: 2, 2: 14, 3: 27, 4: 81}

	score := ScoreTeamForEvent(snap, results, table, 1.7)
	sum := 0
	for _, a := range score.Athletes {
		sum += a.TotalPoints
	}
	assert.Equal(t, sum, score.TeamTotal)
}

func TestScoreTeamForEventOnlySnapshotAthletes(t *testing.T) {
	// A result for a climber outside the snapshot contributes nothing.
	score := ScoreTeamForEvent(snapshotOf(0, 1), map[int]int{1: 10, 99: 1}, IFSCWorldCup(), 1.2)
	assert.Equal(t, 350, score.TeamTotal)
	assert.Len(t, score.Athletes, 1)
}

func TestScoreTeamForEventScoresViaTimeline(t *testing.T) {
	// End to end through RosterAsOf: the scored set is exactly the as-of
	// roster, honoring a mid-season swap.
	swap := day(5)
	roster := []models.RosterEntry{
		rosterEntry(1, day(0), &swap), // X, out at the swap
		rosterEntry(2, day(0), nil),   // Y
		rosterEntry(3, swap, nil),     // Z, in at the swap
	}

	table := IFSCWorldCup()
	results := map[int]int{1: 1, 2: 2, 3: 3}

	before := ScoreTeamForEvent(RosterAsOf(roster, nil, day(2)), results, table, 1.2)
	assert.Equal(t, 1805, before.TeamTotal, "X and Y count before the swap")

	after := ScoreTeamForEvent(RosterAsOf(roster, nil, day(8)), results, table, 1.2)
	assert.Equal(t, 1495, after.TeamTotal, "Y and Z count after the swap")
}
