package scoring

import (
	"errors"
	"fmt"
)

// Transfer precondition failures. Handlers surface these to the user
// verbatim; read paths never produce them.
var (
	ErrNotInRoster                 = errors.New("climber to remove is not in the roster")
	ErrAlreadyRostered             = errors.New("incoming climber is already in the roster")
	ErrCaptainReassignmentRequired = errors.New("a new captain must be named when the captain is transferred out")
)

// TierLimitError reports a roster that would exceed a tier's cap.
type TierLimitError struct {
	Tier  string
	Cap   int
	Count int
}

func (e *TierLimitError) Error() string {
	return fmt.Sprintf("too many %s-tier athletes (max %d, got %d)", e.Tier, e.Cap, e.Count)
}

// TransferLimitError reports that the per-event transfer allowance is spent.
type TransferLimitError struct {
	Allowed int
}

func (e *TransferLimitError) Error() string {
	return fmt.Sprintf("maximum %d transfer(s) allowed per event", e.Allowed)
}
