package models

import "github.com/uptrace/bun"

// AthleteRanking is a climber's world-ranking position for one
// discipline/gender/season, synced from the IFSC ranking feed.
type AthleteRanking struct {
	bun.BaseModel `bun:"table:athlete_rankings,alias:ar"`

	ID         int    `bun:"id,pk,autoincrement" json:"id"`
	ClimberID  int    `bun:"climber_id,notnull" json:"climberID"`
	Discipline string `bun:"discipline,notnull" json:"discipline"`
	Gender     string `bun:"gender,notnull" json:"gender"`
	Season     int    `bun:"season,notnull" json:"season"`
	Rank       int    `bun:"rank,notnull" json:"rank"`
}
