package scoring

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruxfantasy/cruxapi/models"
)

var (
	testTeamID = uuid.MustParse("3f0b9a40-67b4-4a2f-93a4-000000000001")
	season     = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
)

func day(n int) time.Time { return season.AddDate(0, 0, n) }

func rosterEntry(climberID int, added time.Time, removed *time.Time) models.RosterEntry {
	return models.RosterEntry{TeamID: testTeamID, ClimberID: climberID, AddedAt: added, RemovedAt: removed}
}

func captainEntry(climberID int, set time.Time, replaced *time.Time) models.CaptainEntry {
	return models.CaptainEntry{TeamID: testTeamID, ClimberID: climberID, SetAt: set, ReplacedAt: replaced}
}

func timep(t time.Time) *time.Time { return &t }

func TestRosterAsOfIntervalBounds(t *testing.T) {
	removed := day(10)
	roster := []models.RosterEntry{rosterEntry(1, day(0), &removed)}

	// Strictly inside the interval.
	assert.True(t, RosterAsOf(roster, nil, day(5)).Contains(1))

	// Lower bound inclusive: added exactly at the instant counts.
	assert.True(t, RosterAsOf(roster, nil, day(0)).Contains(1))

	// Upper bound exclusive: removed exactly at the instant does not count.
	assert.False(t, RosterAsOf(roster, nil, day(10)).Contains(1))
	assert.False(t, RosterAsOf(roster, nil, day(11)).Contains(1))

	// Before the entry existed.
	assert.False(t, RosterAsOf(roster, nil, day(-1)).Contains(1))
}

func TestRosterAsOfOpenEntry(t *testing.T) {
	roster := []models.RosterEntry{rosterEntry(1, day(0), nil)}
	assert.True(t, RosterAsOf(roster, nil, day(1000)).Contains(1))
}

func TestRosterAsOfCaptainFromHistory(t *testing.T) {
	swap := day(5)
	roster := []models.RosterEntry{
		rosterEntry(1, day(0), nil),
		rosterEntry(2, day(0), nil),
	}
	captains := []models.CaptainEntry{
		captainEntry(1, day(0), &swap),
		captainEntry(2, swap, nil),
	}

	before := RosterAsOf(roster, captains, day(3))
	assert.Equal(t, 1, before.CaptainID)

	after := RosterAsOf(roster, captains, day(7))
	assert.Equal(t, 2, after.CaptainID)

	var captains7 []int
	for _, slot := range after.Slots {
		if slot.IsCaptain {
			captains7 = append(captains7, slot.ClimberID)
		}
	}
	assert.Equal(t, []int{2}, captains7, "exactly one slot flagged captain")
}

func TestRosterAsOfLegacyCaptainFallback(t *testing.T) {
	// Teams created before captaincy history existed carry is_captain on the
	// roster entry itself.
	roster := []models.RosterEntry{
		rosterEntry(1, day(0), nil),
		{TeamID: testTeamID, ClimberID: 2, IsCaptain: true, AddedAt: day(0)},
	}

	snap := RosterAsOf(roster, nil, day(1))
	assert.Equal(t, 2, snap.CaptainID)
	assert.False(t, snap.CaptainConflict)
}

func TestRosterAsOfHistoryBeatsLegacyFlag(t *testing.T) {
	roster := []models.RosterEntry{
		{TeamID: testTeamID, ClimberID: 1, IsCaptain: true, AddedAt: day(0)},
		rosterEntry(2, day(0), nil),
	}
	captains := []models.CaptainEntry{captainEntry(2, day(0), nil)}

	snap := RosterAsOf(roster, captains, day(1))
	assert.Equal(t, 2, snap.CaptainID, "captaincy history wins over the stale roster flag")
}

func TestRosterAsOfDuplicateOpenCaptaincy(t *testing.T) {
	// Two open captaincy entries is a writer bug; the reader must not crash
	// and the latest set_at wins.
	roster := []models.RosterEntry{
		rosterEntry(1, day(0), nil),
		rosterEntry(2, day(0), nil),
	}
	captains := []models.CaptainEntry{
		captainEntry(1, day(0), nil),
		captainEntry(2, day(2), nil),
	}

	snap := RosterAsOf(roster, captains, day(5))
	assert.Equal(t, 2, snap.CaptainID)
	assert.True(t, snap.CaptainConflict)

	// Order of the log must not matter.
	reversed := []models.CaptainEntry{captains[1], captains[0]}
	snap = RosterAsOf(roster, reversed, day(5))
	assert.Equal(t, 2, snap.CaptainID)
}

func TestRosterAsOfEmptyLogs(t *testing.T) {
	snap := RosterAsOf(nil, nil, day(0))
	assert.Empty(t, snap.Slots)
	assert.Zero(t, snap.CaptainID)
}

func TestRosterAsOfPure(t *testing.T) {
	removed := day(4)
	roster := []models.RosterEntry{
		rosterEntry(1, day(0), &removed),
		rosterEntry(2, day(4), nil),
	}
	captains := []models.CaptainEntry{captainEntry(2, day(4), nil)}

	first := RosterAsOf(roster, captains, day(6))
	second := RosterAsOf(roster, captains, day(6))
	require.Equal(t, first, second)
}
