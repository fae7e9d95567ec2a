package scoring

import "github.com/cruxfantasy/cruxapi/models"

// TransferProposal is a requested climber swap after an event. NewCaptainID
// must be set when the outgoing climber is the captain, and may name either
// an existing roster climber or the incoming one.
type TransferProposal struct {
	AfterEventID int  `json:"afterEventID"`
	ClimberOutID int  `json:"climberOutID"`
	ClimberInID  int  `json:"climberInID"`
	NewCaptainID *int `json:"newCaptainID,omitempty"`
}

// TransferContext is the state a proposal is validated against: the team's
// current snapshot, rankings and tier config for the cap check, and how much
// of the per-event allowance is already spent. Free marks a transfer exempt
// from the allowance under the league's free-transfer policy.
type TransferContext struct {
	Current           Snapshot
	Rankings          map[int]int
	Tiers             []models.Tier
	TransfersUsed     int
	TransfersPerEvent int
	Free              bool
}

// ValidateTransfer runs the precondition checks in order and returns the
// first violation. It mutates nothing; applying the swap is the caller's
// transaction.
func ValidateTransfer(tc TransferContext, p TransferProposal) error {
	if !tc.Current.Contains(p.ClimberOutID) {
		return ErrNotInRoster
	}
	if tc.Current.Contains(p.ClimberInID) {
		return ErrAlreadyRostered
	}

	prospective := make([]int, 0, len(tc.Current.Slots))
	for _, slot := range tc.Current.Slots {
		if slot.ClimberID != p.ClimberOutID {
			prospective = append(prospective, slot.ClimberID)
		}
	}
	prospective = append(prospective, p.ClimberInID)
	if err := ValidateTierLimits(prospective, tc.Rankings, tc.Tiers); err != nil {
		return err
	}

	captainLeaving := tc.Current.CaptainID != 0 && tc.Current.CaptainID == p.ClimberOutID
	if captainLeaving && p.NewCaptainID == nil {
		return ErrCaptainReassignmentRequired
	}

	if !tc.Free && tc.TransfersUsed >= tc.TransfersPerEvent {
		return &TransferLimitError{Allowed: tc.TransfersPerEvent}
	}
	return nil
}

// CaptainChanges reports whether applying the proposal must write to the
// captaincy log: either the captain is leaving, or a different captain was
// explicitly requested.
func CaptainChanges(current Snapshot, p TransferProposal) bool {
	if current.CaptainID != 0 && current.CaptainID == p.ClimberOutID {
		return true
	}
	return p.NewCaptainID != nil && *p.NewCaptainID != current.CaptainID
}
