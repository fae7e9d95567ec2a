package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Event lifecycle statuses, set by the ingestion pipeline.
const (
	EventUpcoming   = "upcoming"
	EventInProgress = "in_progress"
	EventCompleted  = "completed"
)

// Event is a competition. ID is the IFSC event ID. Status and date are
// read-only facts here; ingestion owns them.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID         int       `bun:"id,pk" json:"id"`
	Name       string    `bun:"name,notnull" json:"name"`
	Date       time.Time `bun:"date,notnull,type:timestamptz" json:"date"`
	Discipline string    `bun:"discipline,notnull" json:"discipline"`
	Gender     string    `bun:"gender,notnull" json:"gender"`
	Status     string    `bun:"status,notnull,default:'upcoming'" json:"status"`
}

// EventResult is one climber's finishing rank in one event. Rank is unique
// within an event. Score is the base points at the time of ingestion.
type EventResult struct {
	bun.BaseModel `bun:"table:event_results,alias:er"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	EventID   int       `bun:"event_id,notnull" json:"eventID"`
	ClimberID int       `bun:"climber_id,notnull" json:"climberID"`
	Rank      int       `bun:"rank,notnull" json:"rank"`
	Score     int       `bun:"score,notnull" json:"score"`
}

// EventRegistration records that a climber is on the start list for an event.
// Used by the free-transfer policy: transferring out a climber who is not
// registered for the next event does not use up a transfer.
type EventRegistration struct {
	bun.BaseModel `bun:"table:event_registrations,alias:erg"`

	ID        int `bun:"id,pk,autoincrement" json:"id"`
	EventID   int `bun:"event_id,notnull" json:"eventID"`
	ClimberID int `bun:"climber_id,notnull" json:"climberID"`
}
