package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tier buckets athletes by world-ranking range. MaxRank is the inclusive
// cutoff; nil means unbounded and must only appear on the last tier.
// MaxPerTeam is the roster cap for the tier; nil means uncapped.
type Tier struct {
	Name       string `json:"name"`
	MaxRank    *int   `json:"maxRank"`
	MaxPerTeam *int   `json:"maxPerTeam"`
}

// TierConfig is the ordered tier list stored as JSONB on the league.
type TierConfig struct {
	Tiers []Tier `json:"tiers"`
}

// League configuration is fixed at creation.
//
// FreeTransfers and RevertibleTransfers are the two transfer-limit policy
// variants: with FreeTransfers, transferring out a climber who is not
// registered for the next event does not count against TransfersPerEvent;
// with RevertibleTransfers, a transfer can be undone while its window is
// still open.
type League struct {
	bun.BaseModel `bun:"table:leagues,alias:l"`

	ID                  uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Name                string     `bun:"name,notnull" json:"name"`
	Discipline          string     `bun:"discipline,notnull" json:"discipline"`
	Gender              string     `bun:"gender,notnull" json:"gender"`
	AdminID             uuid.UUID  `bun:"admin_id,notnull,type:uuid" json:"adminID"`
	InviteCode          string     `bun:"invite_code,notnull,unique" json:"inviteCode,omitempty"`
	TeamSize            int        `bun:"team_size,notnull,default:6" json:"teamSize"`
	TransfersPerEvent   int        `bun:"transfers_per_event,notnull,default:1" json:"transfersPerEvent"`
	CaptainMultiplier   float64    `bun:"captain_multiplier,notnull,default:1.2" json:"captainMultiplier"`
	TierConfig          TierConfig `bun:"tier_config,type:jsonb" json:"tierConfig"`
	FreeTransfers       bool       `bun:"free_transfers,notnull,default:false" json:"freeTransfers"`
	RevertibleTransfers bool       `bun:"revertible_transfers,notnull,default:true" json:"revertibleTransfers"`
	CreatedAt           time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// LeagueEvent links an event into a league's calendar.
type LeagueEvent struct {
	bun.BaseModel `bun:"table:league_events,alias:le"`

	ID       int       `bun:"id,pk,autoincrement" json:"id"`
	LeagueID uuid.UUID `bun:"league_id,notnull,type:uuid" json:"leagueID"`
	EventID  int       `bun:"event_id,notnull" json:"eventID"`
}

// LeagueMember is a user's membership in a league.
type LeagueMember struct {
	bun.BaseModel `bun:"table:league_members,alias:lm"`

	ID       int       `bun:"id,pk,autoincrement" json:"id"`
	LeagueID uuid.UUID `bun:"league_id,notnull,type:uuid" json:"leagueID"`
	UserID   uuid.UUID `bun:"user_id,notnull,type:uuid" json:"userID"`
	Role     string    `bun:"role,notnull,default:'member'" json:"role"`
}
