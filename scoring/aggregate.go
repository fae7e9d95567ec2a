package scoring

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cruxfantasy/cruxapi/models"
)

// TeamData is everything the aggregator needs for one team: identity plus
// its full change logs. Callers batch-fetch the logs for all teams up front
// rather than querying per (team, event).
type TeamData struct {
	ID       uuid.UUID
	Name     string
	Username string
	Roster   []models.RosterEntry
	Captains []models.CaptainEntry
}

// LeaderboardEntry is one team's standing in a league.
type LeaderboardEntry struct {
	Rank        int         `json:"rank"`
	TeamID      uuid.UUID   `json:"teamID"`
	TeamName    string      `json:"teamName"`
	Username    string      `json:"username,omitempty"`
	TotalScore  int         `json:"totalScore"`
	EventScores map[int]int `json:"eventScores"`
}

// Leaderboard computes league standings. Only completed events count; a
// league with no completed events still yields every team at zero with an
// empty per-event map. Teams are ordered by total descending, ties broken by
// team id so the order is reproducible, and ranked 1..N.
//
// Scoring different teams shares no state, so teams are scored in parallel.
func Leaderboard(teams []TeamData, events []models.Event, resultsByEvent map[int]map[int]int, table PointsTable, captainMultiplier float64) []LeaderboardEntry {
	completed := make([]models.Event, 0, len(events))
	for _, e := range events {
		if e.Status == models.EventCompleted {
			completed = append(completed, e)
		}
	}

	entries := make([]LeaderboardEntry, len(teams))
	var g errgroup.Group
	for i, team := range teams {
		g.Go(func() error {
			entry := LeaderboardEntry{
				TeamID:      team.ID,
				TeamName:    team.Name,
				Username:    team.Username,
				EventScores: map[int]int{},
			}
			for _, event := range completed {
				snap := RosterAsOf(team.Roster, team.Captains, event.Date)
				es := ScoreTeamForEvent(snap, resultsByEvent[event.ID], table, captainMultiplier)
				entry.EventScores[event.ID] = es.TeamTotal
				entry.TotalScore += es.TeamTotal
			}
			entries[i] = entry
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].TeamID.String() < entries[j].TeamID.String()
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// EventBreakdown is one event's scoring detail for a single team.
type EventBreakdown struct {
	EventID     int       `json:"eventID"`
	EventName   string    `json:"eventName"`
	EventDate   time.Time `json:"eventDate"`
	EventStatus string    `json:"eventStatus"`
	EventScore
}

// TeamBreakdown scores one team against every league event, upcoming ones
// included (those come back with zero totals and all-DNP athletes).
func TeamBreakdown(team TeamData, events []models.Event, resultsByEvent map[int]map[int]int, table PointsTable, captainMultiplier float64) []EventBreakdown {
	breakdown := make([]EventBreakdown, 0, len(events))
	for _, event := range events {
		snap := RosterAsOf(team.Roster, team.Captains, event.Date)
		breakdown = append(breakdown, EventBreakdown{
			EventID:     event.ID,
			EventName:   event.Name,
			EventDate:   event.Date,
			EventStatus: event.Status,
			EventScore:  ScoreTeamForEvent(snap, resultsByEvent[event.ID], table, captainMultiplier),
		})
	}
	return breakdown
}

// TeamEventScore is one team's line inside a league-wide event breakdown.
type TeamEventScore struct {
	TeamID   uuid.UUID `json:"teamID"`
	TeamName string    `json:"teamName"`
	Username string    `json:"username,omitempty"`
	EventScore
}

// LeagueEventBreakdown is one event's scoring detail across every team.
type LeagueEventBreakdown struct {
	EventID     int              `json:"eventID"`
	EventName   string           `json:"eventName"`
	EventDate   time.Time        `json:"eventDate"`
	EventStatus string           `json:"eventStatus"`
	Teams       []TeamEventScore `json:"teams"`
}

// LeagueBreakdown scores every team against every league event. Within an
// event, teams are ordered by that event's total descending with the same
// team-id tie-break as the leaderboard.
func LeagueBreakdown(teams []TeamData, events []models.Event, resultsByEvent map[int]map[int]int, table PointsTable, captainMultiplier float64) []LeagueEventBreakdown {
	breakdown := make([]LeagueEventBreakdown, len(events))
	var g errgroup.Group
	for i, event := range events {
		g.Go(func() error {
			eb := LeagueEventBreakdown{
				EventID:     event.ID,
				EventName:   event.Name,
				EventDate:   event.Date,
				EventStatus: event.Status,
				Teams:       make([]TeamEventScore, 0, len(teams)),
			}
			for _, team := range teams {
				snap := RosterAsOf(team.Roster, team.Captains, event.Date)
				eb.Teams = append(eb.Teams, TeamEventScore{
					TeamID:     team.ID,
					TeamName:   team.Name,
					Username:   team.Username,
					EventScore: ScoreTeamForEvent(snap, resultsByEvent[event.ID], table, captainMultiplier),
				})
			}
			sort.SliceStable(eb.Teams, func(a, b int) bool {
				if eb.Teams[a].TeamTotal != eb.Teams[b].TeamTotal {
					return eb.Teams[a].TeamTotal > eb.Teams[b].TeamTotal
				}
				return eb.Teams[a].TeamID.String() < eb.Teams[b].TeamID.String()
			})
			breakdown[i] = eb
			return nil
		})
	}
	_ = g.Wait()
	return breakdown
}
