package scoring

import (
	"math"
	"sort"
)

// AthleteScore is one roster climber's contribution to an event. A climber
// with no result still appears with zero points and a nil Rank so the UI can
// render a DNP row.
type AthleteScore struct {
	ClimberID   int  `json:"climberID"`
	IsCaptain   bool `json:"isCaptain"`
	Rank        *int `json:"rank"`
	BasePoints  int  `json:"basePoints"`
	TotalPoints int  `json:"totalPoints"`
}

// EventScore is one team's score for one event. CaptainConflict carries the
// snapshot's data-integrity signal through for callers to log.
type EventScore struct {
	TeamTotal       int            `json:"teamTotal"`
	Athletes        []AthleteScore `json:"athletes"`
	CaptainConflict bool           `json:"-"`
}

// ScoreTeamForEvent scores a roster snapshot against one event's results
// (climber id → finishing rank). The captain's points are multiplied and
// truncated toward zero, never rounded up. Athletes are returned
// points-descending.
func ScoreTeamForEvent(snap Snapshot, results map[int]int, table PointsTable, captainMultiplier float64) EventScore {
	score := EventScore{
		Athletes:        make([]AthleteScore, 0, len(snap.Slots)),
		CaptainConflict: snap.CaptainConflict,
	}
	for _, slot := range snap.Slots {
		as := AthleteScore{ClimberID: slot.ClimberID, IsCaptain: slot.IsCaptain}
		if rank, ok := results[slot.ClimberID]; ok {
			r := rank
			as.Rank = &r
			as.BasePoints = table.ForRank(rank)
			multiplier := 1.0
			if slot.IsCaptain {
				multiplier = captainMultiplier
			}
			as.TotalPoints = int(math.Floor(float64(as.BasePoints) * multiplier))
		}
		score.TeamTotal += as.TotalPoints
		score.Athletes = append(score.Athletes, as)
	}
	sort.SliceStable(score.Athletes, func(i, j int) bool {
		return score.Athletes[i].TotalPoints > score.Athletes[j].TotalPoints
	})
	return score
}
