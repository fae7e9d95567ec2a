package scoring

import (
	"fmt"

	"github.com/cruxfantasy/cruxapi/models"
)

// ValidateTierConfig checks a league's tier list at creation time: cutoffs
// strictly increase down the list, and exactly one tier, the last, is
// unbounded so every climber classifies somewhere.
func ValidateTierConfig(tiers []models.Tier) error {
	if len(tiers) == 0 {
		return nil
	}
	prev := 0
	for i, t := range tiers {
		if t.Name == "" {
			return fmt.Errorf("tier %d has no name", i+1)
		}
		if t.MaxRank == nil {
			if i != len(tiers)-1 {
				return fmt.Errorf("tier %q: only the last tier may be unbounded", t.Name)
			}
			continue
		}
		if *t.MaxRank <= prev {
			return fmt.Errorf("tier %q: cutoff %d does not increase", t.Name, *t.MaxRank)
		}
		prev = *t.MaxRank
	}
	if last := tiers[len(tiers)-1]; last.MaxRank != nil {
		return fmt.Errorf("last tier %q must be unbounded", last.Name)
	}
	return nil
}

// TierOf returns the tier a climber falls into: the first tier in order
// whose cutoff is unbounded or at least the climber's world rank. A climber
// with no ranking entry always lands in the last tier, which by league
// invariant is the unbounded one.
func TierOf(climberID int, rankings map[int]int, tiers []models.Tier) string {
	if len(tiers) == 0 {
		return ""
	}
	rank, ok := rankings[climberID]
	if !ok {
		return tiers[len(tiers)-1].Name
	}
	for _, t := range tiers {
		if t.MaxRank == nil || rank <= *t.MaxRank {
			return t.Name
		}
	}
	return tiers[len(tiers)-1].Name
}

// CountsByTier tallies a prospective roster per tier.
func CountsByTier(climberIDs []int, rankings map[int]int, tiers []models.Tier) map[string]int {
	counts := make(map[string]int, len(tiers))
	for _, t := range tiers {
		counts[t.Name] = 0
	}
	for _, id := range climberIDs {
		counts[TierOf(id, rankings, tiers)]++
	}
	return counts
}

// ValidateTierLimits checks a prospective roster against every capped tier.
// The first violated tier is reported as a *TierLimitError; the roster is
// never silently truncated.
func ValidateTierLimits(climberIDs []int, rankings map[int]int, tiers []models.Tier) error {
	if len(tiers) == 0 {
		return nil
	}
	counts := CountsByTier(climberIDs, rankings, tiers)
	for _, t := range tiers {
		if t.MaxPerTeam == nil {
			continue
		}
		if counts[t.Name] > *t.MaxPerTeam {
			return &TierLimitError{Tier: t.Name, Cap: *t.MaxPerTeam, Count: counts[t.Name]}
		}
	}
	return nil
}
