package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Transfer records one climber swap made after a completed event. Creating a
// transfer is the only mutator of team_roster and captain_history. IsFree
// marks a transfer that did not count against the per-event allowance.
type Transfer struct {
	bun.BaseModel `bun:"table:team_transfers,alias:tt"`

	ID           uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	TeamID       uuid.UUID  `bun:"team_id,notnull,type:uuid" json:"teamID"`
	AfterEventID int        `bun:"after_event_id,notnull" json:"afterEventID"`
	ClimberOutID int        `bun:"climber_out_id,notnull" json:"climberOutID"`
	ClimberInID  int        `bun:"climber_in_id,notnull" json:"climberInID"`
	IsFree       bool       `bun:"is_free,notnull,default:false" json:"isFree"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	RevertedAt   *time.Time `bun:"reverted_at" json:"revertedAt,omitempty"`
}
