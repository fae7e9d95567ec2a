package models

import "github.com/uptrace/bun"

// Climber is an IFSC athlete. The ID is the IFSC athlete ID, assigned by the
// external ingestion pipeline, never by us.
type Climber struct {
	bun.BaseModel `bun:"table:climbers,alias:cl"`

	ID      int     `bun:"id,pk" json:"id"`
	Name    string  `bun:"name,notnull" json:"name"`
	Country *string `bun:"country" json:"country,omitempty"`
	Gender  string  `bun:"gender,notnull" json:"gender"`
}
