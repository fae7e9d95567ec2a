package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruxfantasy/cruxapi/models"
)

func transferContext(snap Snapshot) TransferContext {
	return TransferContext{
		Current:           snap,
		Rankings:          map[int]int{},
		Tiers:             nil,
		TransfersUsed:     0,
		TransfersPerEvent: 1,
	}
}

func TestValidateTransferNotInRoster(t *testing.T) {
	tc := transferContext(snapshotOf(1, 1, 2))
	err := ValidateTransfer(tc, TransferProposal{ClimberOutID: 99, ClimberInID: 3})
	assert.ErrorIs(t, err, ErrNotInRoster)
}

func TestValidateTransferAlreadyRostered(t *testing.T) {
	tc := transferContext(snapshotOf(1, 1, 2))
	err := ValidateTransfer(tc, TransferProposal{ClimberOutID: 1, ClimberInID: 2})
	assert.ErrorIs(t, err, ErrAlreadyRostered)
}

func TestValidateTransferTierLimit(t *testing.T) {
	// Two rostered climbers already fill the S tier; swapping the unranked
	// climber for a third top-10 one must fail and name the tier.
	tc := transferContext(snapshotOf(0, 1, 2, 3))
	tc.Rankings = map[int]int{1: 2, 2: 8, 4: 5}
	tc.Tiers = []models.Tier{
		{Name: "S", MaxRank: intp(10), MaxPerTeam: intp(2)},
		{Name: "B", MaxRank: nil},
	}

	err := ValidateTransfer(tc, TransferProposal{ClimberOutID: 3, ClimberInID: 4})
	var tle *TierLimitError
	require.ErrorAs(t, err, &tle)
	assert.Equal(t, "S", tle.Tier)
	assert.Equal(t, 2, tle.Cap)

	// Swapping out one of the S climbers instead is fine.
	assert.NoError(t, ValidateTransfer(tc, TransferProposal{ClimberOutID: 1, ClimberInID: 4}))
}

func TestValidateTransferCaptainReassignment(t *testing.T) {
	tc := transferContext(snapshotOf(1, 1, 2))

	err := ValidateTransfer(tc, TransferProposal{ClimberOutID: 1, ClimberInID: 3})
	assert.ErrorIs(t, err, ErrCaptainReassignmentRequired)

	// Naming a replacement clears the check.
	assert.NoError(t, ValidateTransfer(tc, TransferProposal{ClimberOutID: 1, ClimberInID: 3, NewCaptainID: intp(2)}))

	// The incoming climber may be the new captain.
	assert.NoError(t, ValidateTransfer(tc, TransferProposal{ClimberOutID: 1, ClimberInID: 3, NewCaptainID: intp(3)}))
}

func TestValidateTransferLimit(t *testing.T) {
	tc := transferContext(snapshotOf(1, 1, 2))
	tc.TransfersUsed = 1

	err := ValidateTransfer(tc, TransferProposal{ClimberOutID: 2, ClimberInID: 3})
	var tlerr *TransferLimitError
	require.ErrorAs(t, err, &tlerr)
	assert.Equal(t, 1, tlerr.Allowed)
}

func TestValidateTransferFreeBypassesLimit(t *testing.T) {
	tc := transferContext(snapshotOf(1, 1, 2))
	tc.TransfersUsed = 1
	tc.Free = true

	assert.NoError(t, ValidateTransfer(tc, TransferProposal{ClimberOutID: 2, ClimberInID: 3}))
}

func TestValidateTransferZeroAllowance(t *testing.T) {
	// A league with no per-event allowance still admits free transfers.
	tc := transferContext(snapshotOf(1, 1, 2))
	tc.TransfersPerEvent = 0

	err := ValidateTransfer(tc, TransferProposal{ClimberOutID: 2, ClimberInID: 3})
	var tlerr *TransferLimitError
	require.ErrorAs(t, err, &tlerr)
	assert.Equal(t, 0, tlerr.Allowed)

	tc.Free = true
	assert.NoError(t, ValidateTransfer(tc, TransferProposal{ClimberOutID: 2, ClimberInID: 3}))
}

func TestValidateTransferCheckOrder(t *testing.T) {
	// A proposal violating several preconditions reports the first one:
	// roster membership before the spent allowance.
	tc := transferContext(snapshotOf(1, 1, 2))
	tc.TransfersUsed = 5

	err := ValidateTransfer(tc, TransferProposal{ClimberOutID: 99, ClimberInID: 3})
	assert.ErrorIs(t, err, ErrNotInRoster)
}

func TestCaptainChanges(t *testing.T) {
	snap := snapshotOf(1, 1, 2)

	assert.True(t, CaptainChanges(snap, TransferProposal{ClimberOutID: 1, ClimberInID: 3, NewCaptainID: intp(2)}),
		"captain leaving forces a captaincy write")
	assert.True(t, CaptainChanges(snap, TransferProposal{ClimberOutID: 2, ClimberInID: 3, NewCaptainID: intp(3)}),
		"explicit new captain forces a captaincy write")
	assert.False(t, CaptainChanges(snap, TransferProposal{ClimberOutID: 2, ClimberInID: 3}),
		"plain swap leaves captaincy alone")
	assert.False(t, CaptainChanges(snap, TransferProposal{ClimberOutID: 2, ClimberInID: 3, NewCaptainID: intp(1)}),
		"renaming the current captain is a no-op")
}
