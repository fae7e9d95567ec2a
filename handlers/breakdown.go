package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/cruxfantasy/cruxapi/models"
	"github.com/cruxfantasy/cruxapi/scoring"
)

// Leaderboard returns league standings over completed events.
func (h *Handler) Leaderboard(c echo.Context) error {
	league, err := h.fetchLeague(c, c.Param("id"))
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	teams, events, results, err := h.leagueScoringData(ctx, league)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	entries := scoring.Leaderboard(teams, events, results, h.points, league.CaptainMultiplier)
	return c.JSON(http.StatusOK, map[string]any{
		"leagueID":    league.ID,
		"leaderboard": entries,
	})
}

// LeagueBreakdown returns per-event, per-team scoring detail for a league,
// upcoming events included.
func (h *Handler) LeagueBreakdown(c echo.Context) error {
	league, err := h.fetchLeague(c, c.Param("id"))
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	teams, events, results, err := h.leagueScoringData(ctx, league)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	breakdown := scoring.LeagueBreakdown(teams, events, results, h.points, league.CaptainMultiplier)
	h.logCaptainConflicts(breakdown)
	return c.JSON(http.StatusOK, map[string]any{
		"leagueID": league.ID,
		"events":   breakdown,
	})
}

// TeamBreakdown returns one team's per-event scoring detail with climber
// names resolved.
func (h *Handler) TeamBreakdown(c echo.Context) error {
	team, err := h.fetchTeam(c, c.Param("id"))
	if err != nil {
		return err
	}
	league, err := h.fetchLeague(c, team.LeagueID.String())
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	events, err := h.leagueEvents(ctx, league)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	results, err := h.resultsByEvent(ctx, eventIDs(events))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	roster, captains, err := h.teamLogs(ctx, team.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	td := scoring.TeamData{ID: team.ID, Name: team.Name, Roster: roster, Captains: captains}
	breakdown := scoring.TeamBreakdown(td, events, results, h.points, league.CaptainMultiplier)
	for _, eb := range breakdown {
		if eb.CaptainConflict {
			h.log.Warn("duplicate open captaincy entries",
				zap.String("team_id", team.ID.String()),
				zap.Int("event_id", eb.EventID))
		}
	}

	names, err := h.climberNames(ctx, roster)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"teamID":   team.ID,
		"teamName": team.Name,
		"leagueID": team.LeagueID,
		"climbers": names,
		"events":   breakdown,
	})
}

// leagueScoringData batch-fetches everything the aggregator needs: all
// teams with their full change logs, the league calendar and every event's
// results. One query per table, regardless of team or event count.
func (h *Handler) leagueScoringData(ctx context.Context, league *models.League) ([]scoring.TeamData, []models.Event, map[int]map[int]int, error) {
	events, err := h.leagueEvents(ctx, league)
	if err != nil {
		return nil, nil, nil, err
	}
	results, err := h.resultsByEvent(ctx, eventIDs(events))
	if err != nil {
		return nil, nil, nil, err
	}
	teams, err := h.leagueTeamData(ctx, league.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return teams, events, results, nil
}

// leagueEvents returns the league's calendar ordered by date. Leagues with
// no explicitly linked events fall back to every event matching their
// discipline and gender.
func (h *Handler) leagueEvents(ctx context.Context, league *models.League) ([]models.Event, error) {
	var events []models.Event
	err := h.db.NewSelect().Model(&events).
		Join("INNER JOIN league_events le ON le.event_id = e.id").
		Where("le.league_id = ?", league.ID).
		OrderExpr("e.date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if len(events) > 0 {
		return events, nil
	}

	err = h.db.NewSelect().Model(&events).
		Where("e.discipline = ? AND e.gender = ?", league.Discipline, league.Gender).
		OrderExpr("e.date ASC").
		Scan(ctx)
	return events, err
}

// resultsByEvent fetches all results for the given events in one query and
// returns event id → (climber id → rank).
func (h *Handler) resultsByEvent(ctx context.Context, ids []int) (map[int]map[int]int, error) {
	results := make(map[int]map[int]int, len(ids))
	if len(ids) == 0 {
		return results, nil
	}

	var rows []models.EventResult
	err := h.db.NewSelect().Model(&rows).
		Where("er.event_id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if results[r.EventID] == nil {
			results[r.EventID] = map[int]int{}
		}
		results[r.EventID][r.ClimberID] = r.Rank
	}
	return results, nil
}

// teamLogs fetches one team's full roster and captaincy histories.
func (h *Handler) teamLogs(ctx context.Context, teamID uuid.UUID) ([]models.RosterEntry, []models.CaptainEntry, error) {
	var roster []models.RosterEntry
	err := h.db.NewSelect().Model(&roster).
		Where("tr.team_id = ?", teamID).
		OrderExpr("tr.added_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, nil, err
	}

	var captains []models.CaptainEntry
	err = h.db.NewSelect().Model(&captains).
		Where("ch.team_id = ?", teamID).
		OrderExpr("ch.set_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, nil, err
	}
	return roster, captains, nil
}

// leagueTeamData fetches every team in a league and groups the two change
// logs per team in Go.
func (h *Handler) leagueTeamData(ctx context.Context, leagueID uuid.UUID) ([]scoring.TeamData, error) {
	type teamRow struct {
		ID       uuid.UUID `bun:"id"`
		Name     string    `bun:"name"`
		Username string    `bun:"username"`
	}
	var teamRows []teamRow
	err := h.db.NewRaw(`
		SELECT ft.id, ft.name, u.username
		FROM fantasy_teams ft
		INNER JOIN users u ON u.id = ft.user_id
		WHERE ft.league_id = ?
		ORDER BY ft.created_at`,
		leagueID,
	).Scan(ctx, &teamRows)
	if err != nil {
		return nil, err
	}
	if len(teamRows) == 0 {
		return []scoring.TeamData{}, nil
	}

	ids := make([]uuid.UUID, len(teamRows))
	for i, t := range teamRows {
		ids[i] = t.ID
	}

	var roster []models.RosterEntry
	err = h.db.NewSelect().Model(&roster).
		Where("tr.team_id IN (?)", bun.In(ids)).
		OrderExpr("tr.added_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	var captains []models.CaptainEntry
	err = h.db.NewSelect().Model(&captains).
		Where("ch.team_id IN (?)", bun.In(ids)).
		OrderExpr("ch.set_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	rosterByTeam := make(map[uuid.UUID][]models.RosterEntry, len(ids))
	for _, r := range roster {
		rosterByTeam[r.TeamID] = append(rosterByTeam[r.TeamID], r)
	}
	captainsByTeam := make(map[uuid.UUID][]models.CaptainEntry, len(ids))
	for _, ch := range captains {
		captainsByTeam[ch.TeamID] = append(captainsByTeam[ch.TeamID], ch)
	}

	teams := make([]scoring.TeamData, len(teamRows))
	for i, t := range teamRows {
		teams[i] = scoring.TeamData{
			ID:       t.ID,
			Name:     t.Name,
			Username: t.Username,
			Roster:   rosterByTeam[t.ID],
			Captains: captainsByTeam[t.ID],
		}
	}
	return teams, nil
}

// climberNames resolves names for every climber that ever appeared in a
// roster log, so breakdowns can label DNP rows for long-departed climbers.
func (h *Handler) climberNames(ctx context.Context, roster []models.RosterEntry) (map[int]string, error) {
	names := map[int]string{}
	seen := map[int]bool{}
	ids := make([]int, 0, len(roster))
	for _, r := range roster {
		if !seen[r.ClimberID] {
			seen[r.ClimberID] = true
			ids = append(ids, r.ClimberID)
		}
	}
	if len(ids) == 0 {
		return names, nil
	}

	var climbers []models.Climber
	err := h.db.NewSelect().Model(&climbers).Where("cl.id IN (?)", bun.In(ids)).Scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, cl := range climbers {
		names[cl.ID] = cl.Name
	}
	return names, nil
}

func (h *Handler) logCaptainConflicts(breakdown []scoring.LeagueEventBreakdown) {
	for _, eb := range breakdown {
		for _, ts := range eb.Teams {
			if ts.CaptainConflict {
				h.log.Warn("duplicate open captaincy entries",
					zap.String("team_id", ts.TeamID.String()),
					zap.Int("event_id", eb.EventID))
			}
		}
	}
}

func eventIDs(events []models.Event) []int {
	ids := make([]int, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}
