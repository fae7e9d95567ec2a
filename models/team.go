package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Team is one user's fantasy team in a league.
type Team struct {
	bun.BaseModel `bun:"table:fantasy_teams,alias:ft"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	LeagueID  uuid.UUID `bun:"league_id,notnull,type:uuid" json:"leagueID"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid" json:"userID"`
	Name      string    `bun:"name,notnull" json:"name"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// RosterEntry is one open/closed interval in a team's roster history.
// Removal sets RemovedAt on the open entry; rows are never deleted outside
// of transfer reverts. At most one open entry exists per (team, climber),
// enforced by a partial unique index.
//
// IsCaptain is the legacy captaincy flag kept in sync with the current
// captain_history row. Roster snapshots only fall back to it for teams whose
// data predates captaincy history.
type RosterEntry struct {
	bun.BaseModel `bun:"table:team_roster,alias:tr"`

	ID        int        `bun:"id,pk,autoincrement" json:"id"`
	TeamID    uuid.UUID  `bun:"team_id,notnull,type:uuid" json:"teamID"`
	ClimberID int        `bun:"climber_id,notnull" json:"climberID"`
	IsCaptain bool       `bun:"is_captain,notnull,default:false" json:"isCaptain"`
	AddedAt   time.Time  `bun:"added_at,notnull,default:current_timestamp" json:"addedAt"`
	RemovedAt *time.Time `bun:"removed_at" json:"removedAt,omitempty"`
}

// CaptainEntry is one interval in a team's captaincy history, independent of
// roster changes so a pure captain swap needs no roster write. At most one
// open entry exists per team.
type CaptainEntry struct {
	bun.BaseModel `bun:"table:captain_history,alias:ch"`

	ID         int        `bun:"id,pk,autoincrement" json:"id"`
	TeamID     uuid.UUID  `bun:"team_id,notnull,type:uuid" json:"teamID"`
	ClimberID  int        `bun:"climber_id,notnull" json:"climberID"`
	SetAt      time.Time  `bun:"set_at,notnull" json:"setAt"`
	ReplacedAt *time.Time `bun:"replaced_at" json:"replacedAt,omitempty"`
}
