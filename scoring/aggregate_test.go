package scoring

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruxfantasy/cruxapi/models"
)

func event(id int, date time.Time, status string) models.Event {
	return models.Event{ID: id, Name: "Test Cup", Date: date, Discipline: "boulder", Gender: "men", Status: status}
}

func teamData(id string, name string, roster []models.RosterEntry, captains []models.CaptainEntry) TeamData {
	return TeamData{ID: uuid.MustParse(id), Name: name, Roster: roster, Captains: captains}
}

const (
	teamA = "00000000-0000-0000-0000-00000000000a"
	teamB = "00000000-0000-0000-0000-00000000000b"
)

func TestLeaderboardNoCompletedEvents(t *testing.T) {
	teams := []TeamData{
		teamData(teamA, "Alpha", []models.RosterEntry{rosterEntry(1, day(0), nil)}, nil),
		teamData(teamB, "Beta", nil, nil),
	}
	events := []models.Event{
		event(1, day(10), models.EventUpcoming),
		event(2, day(20), models.EventInProgress),
	}

	entries := Leaderboard(teams, events, nil, IFSCWorldCup(), 1.2)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Zero(t, e.TotalScore)
		assert.Empty(t, e.EventScores)
		assert.NotNil(t, e.EventScores)
	}
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestLeaderboardSumsCompletedOnly(t *testing.T) {
	teams := []TeamData{
		teamData(teamA, "Alpha", []models.RosterEntry{rosterEntry(1, day(0), nil)}, nil),
	}
	events := []models.Event{
		event(1, day(1), models.EventCompleted),
		event(2, day(2), models.EventCompleted),
		event(3, day(3), models.EventUpcoming),
	}
	results := map[int]map[int]int{
		1: {1: 1}, // 1000
		2: {1: 3}, // 690
		3: {1: 1}, // must not count
	}

	entries := Leaderboard(teams, events, results, IFSCWorldCup(), 1.2)
	require.Len(t, entries, 1)
	assert.Equal(t, 1690, entries[0].TotalScore)
	assert.Equal(t, map[int]int{1: 1000, 2: 690}, entries[0].EventScores)
}

func TestLeaderboardOrderAndTieBreak(t *testing.T) {
	// Beta outscores Alpha; Gamma ties Beta and loses the tie on team id.
	teamG := "00000000-0000-0000-0000-00000000000c"
	teams := []TeamData{
		teamData(teamG, "Gamma", []models.RosterEntry{rosterEntry(3, day(0), nil)}, nil),
		teamData(teamA, "Alpha", []models.RosterEntry{rosterEntry(1, day(0), nil)}, nil),
		teamData(teamB, "Beta", []models.RosterEntry{rosterEntry(2, day(0), nil)}, nil),
	}
	events := []models.Event{event(1, day(1), models.EventCompleted)}
	results := map[int]map[int]int{1: {1: 5, 2: 1, 3: 1}}

	entries := Leaderboard(teams, events, results, IFSCWorldCup(), 1.2)
	require.Len(t, entries, 3)

	assert.Equal(t, "Beta", entries[0].TeamName, "tie broken by team id")
	assert.Equal(t, "Gamma", entries[1].TeamName)
	assert.Equal(t, "Alpha", entries[2].TeamName)
	assert.Equal(t, []int{1, 2, 3}, []int{entries[0].Rank, entries[1].Rank, entries[2].Rank})
}

func TestLeaderboardRetroactiveTransfer(t *testing.T) {
	// X is swapped for Z after event 1. Event 1 scores X, event 2 scores Z,
	// and neither roster state bleeds into the other event.
	swap := day(5)
	roster := []models.RosterEntry{
		rosterEntry(1, day(0), &swap),
		rosterEntry(3, swap, nil),
	}
	teams := []TeamData{teamData(teamA, "Alpha", roster, nil)}
	events := []models.Event{
		event(1, day(2), models.EventCompleted),
		event(2, day(9), models.EventCompleted),
	}
	results := map[int]map[int]int{
		1: {1: 1, 3: 2}, // Z's rank here must not count: not rostered yet
		2: {1: 1, 3: 2}, // X's rank here must not count: transferred out
	}

	entries := Leaderboard(teams, events, results, IFSCWorldCup(), 1.2)
	require.Len(t, entries, 1)
	assert.Equal(t, map[int]int{1: 1000, 2: 805}, entries[0].EventScores)
	assert.Equal(t, 1805, entries[0].TotalScore)
}

func TestTeamBreakdownIncludesUpcoming(t *testing.T) {
	team := teamData(teamA, "Alpha", []models.RosterEntry{rosterEntry(1, day(0), nil)}, nil)
	events := []models.Event{
		event(1, day(1), models.EventCompleted),
		event(2, day(30), models.EventUpcoming),
	}
	results := map[int]map[int]int{1: {1: 1}}

	breakdown := TeamBreakdown(team, events, results, IFSCWorldCup(), 1.2)
	require.Len(t, breakdown, 2)

	assert.Equal(t, 1000, breakdown[0].TeamTotal)
	assert.Equal(t, models.EventUpcoming, breakdown[1].EventStatus)
	assert.Zero(t, breakdown[1].TeamTotal)
	require.Len(t, breakdown[1].Athletes, 1, "upcoming events still list the roster")
	assert.Nil(t, breakdown[1].Athletes[0].Rank)
}

func TestLeagueBreakdownOrdersTeamsPerEvent(t *testing.T) {
	teams := []TeamData{
		teamData(teamA, "Alpha", []models.RosterEntry{rosterEntry(1, day(0), nil)}, nil),
		teamData(teamB, "Beta", []models.RosterEntry{rosterEntry(2, day(0), nil)}, nil),
	}
	events := []models.Event{
		event(1, day(1), models.EventCompleted),
		event(2, day(8), models.EventCompleted),
	}
	results := map[int]map[int]int{
		1: {1: 1, 2: 2},
		2: {1: 4, 2: 3},
	}

	breakdown := LeagueBreakdown(teams, events, results, IFSCWorldCup(), 1.2)
	require.Len(t, breakdown, 2)

	assert.Equal(t, "Alpha", breakdown[0].Teams[0].TeamName)
	assert.Equal(t, "Beta", breakdown[1].Teams[0].TeamName)
}
