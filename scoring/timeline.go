package scoring

import (
	"time"

	"github.com/cruxfantasy/cruxapi/models"
)

// RosterSlot is one climber in a point-in-time roster snapshot.
type RosterSlot struct {
	ClimberID int
	IsCaptain bool
}

// Snapshot is a team's roster as of one instant. CaptainConflict is set when
// more than one captaincy entry was open at that instant, a writer bug the
// reader resolves latest-set-wins. Callers should log it and carry on.
type Snapshot struct {
	Slots           []RosterSlot
	CaptainID       int
	CaptainConflict bool
}

// activeAt reports whether an open/closed interval covers the instant.
// The lower bound is inclusive and the upper bound exclusive: a climber
// removed exactly at the event instant no longer counts for that event, one
// added exactly at it does.
func activeAt(from time.Time, to *time.Time, at time.Time) bool {
	return !from.After(at) && (to == nil || to.After(at))
}

// RosterAsOf reconstructs a team's roster and captain at the given instant
// from its two append-only change logs.
//
// The captain comes from the captaincy log entry covering the instant. Teams
// created before captaincy history existed have no such entry; for those the
// legacy is_captain flag on the active roster entries decides.
func RosterAsOf(roster []models.RosterEntry, captains []models.CaptainEntry, at time.Time) Snapshot {
	var snap Snapshot
	legacyCaptainID := 0
	for _, r := range roster {
		if !activeAt(r.AddedAt, r.RemovedAt, at) {
			continue
		}
		snap.Slots = append(snap.Slots, RosterSlot{ClimberID: r.ClimberID})
		if r.IsCaptain {
			legacyCaptainID = r.ClimberID
		}
	}

	matched := 0
	var setAt time.Time
	for _, ch := range captains {
		if !activeAt(ch.SetAt, ch.ReplacedAt, at) {
			continue
		}
		matched++
		if matched == 1 || ch.SetAt.After(setAt) {
			snap.CaptainID = ch.ClimberID
			setAt = ch.SetAt
		}
	}
	snap.CaptainConflict = matched > 1
	if matched == 0 {
		snap.CaptainID = legacyCaptainID
	}

	for i := range snap.Slots {
		snap.Slots[i].IsCaptain = snap.CaptainID != 0 && snap.Slots[i].ClimberID == snap.CaptainID
	}
	return snap
}

// ClimberIDs returns the snapshot's climber ids in slot order.
func (s Snapshot) ClimberIDs() []int {
	ids := make([]int, len(s.Slots))
	for i, slot := range s.Slots {
		ids[i] = slot.ClimberID
	}
	return ids
}

// Contains reports whether the climber is in the snapshot.
func (s Snapshot) Contains(climberID int) bool {
	for _, slot := range s.Slots {
		if slot.ClimberID == climberID {
			return true
		}
	}
	return false
}
