package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/cruxfantasy/cruxapi/config"
	"github.com/cruxfantasy/cruxapi/models"
)

// Setup opens a PostgreSQL connection using the provided config.
func Setup(cfg *config.Config) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN())))
	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(context.Background()); err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	return db
}

// CreateTables creates all tables in dependency order plus the constraints
// and indexes backing the change-log invariants.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.User)(nil),
		(*models.Climber)(nil),
		(*models.Event)(nil),
		(*models.EventResult)(nil),
		(*models.EventRegistration)(nil),
		(*models.AthleteRanking)(nil),
		(*models.League)(nil),
		(*models.LeagueEvent)(nil),
		(*models.LeagueMember)(nil),
		(*models.Team)(nil),
		(*models.RosterEntry)(nil),
		(*models.CaptainEntry)(nil),
		(*models.Transfer)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	constraints := []string{
		// Results are unique per (event, climber) and no two climbers share a
		// rank within one event.
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'event_results_no_dupes') THEN ALTER TABLE event_results ADD CONSTRAINT event_results_no_dupes UNIQUE (event_id, climber_id); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'event_results_rank_unique') THEN ALTER TABLE event_results ADD CONSTRAINT event_results_rank_unique UNIQUE (event_id, rank); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'event_registrations_no_dupes') THEN ALTER TABLE event_registrations ADD CONSTRAINT event_registrations_no_dupes UNIQUE (event_id, climber_id); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'athlete_rankings_no_dupes') THEN ALTER TABLE athlete_rankings ADD CONSTRAINT athlete_rankings_no_dupes UNIQUE (climber_id, discipline, gender, season); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'league_events_no_dupes') THEN ALTER TABLE league_events ADD CONSTRAINT league_events_no_dupes UNIQUE (league_id, event_id); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'league_members_no_dupes') THEN ALTER TABLE league_members ADD CONSTRAINT league_members_no_dupes UNIQUE (league_id, user_id); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fantasy_teams_one_per_user') THEN ALTER TABLE fantasy_teams ADD CONSTRAINT fantasy_teams_one_per_user UNIQUE (league_id, user_id); END IF; END $$`,
	}
	for _, stmt := range constraints {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Printf("constraint: %v", err)
		}
	}

	// At most one open roster entry per (team, climber), one open captaincy
	// entry per team, one active transfer per (team, event, climber out).
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS team_roster_one_open ON team_roster (team_id, climber_id) WHERE removed_at IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS captain_history_one_open ON captain_history (team_id) WHERE replaced_at IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS team_transfers_one_active ON team_transfers (team_id, after_event_id, climber_out_id) WHERE reverted_at IS NULL`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Printf("index: %v", err)
		}
	}

	return nil
}
