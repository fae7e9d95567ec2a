package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	mw "github.com/cruxfantasy/cruxapi/middleware"
	"github.com/cruxfantasy/cruxapi/models"
	"github.com/cruxfantasy/cruxapi/scoring"
)

type createTeamRequest struct {
	Name     string    `json:"name"`
	LeagueID uuid.UUID `json:"leagueID"`
}

// CreateTeam creates the caller's fantasy team in a league. One team per
// user per league, enforced by constraint and checked for a friendly error.
func (h *Handler) CreateTeam(c echo.Context) error {
	userID, ok := mw.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req createTeamRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "team name is required")
	}

	ctx := c.Request().Context()
	isMember, err := h.db.NewSelect().Model((*models.LeagueMember)(nil)).
		Where("league_id = ? AND user_id = ?", req.LeagueID, userID).
		Exists(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !isMember {
		return echo.NewHTTPError(http.StatusForbidden, "you are not a member of this league")
	}

	team := &models.Team{Name: req.Name, LeagueID: req.LeagueID, UserID: userID}
	if _, err := h.db.NewInsert().Model(team).Exec(ctx); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
			return echo.NewHTTPError(http.StatusConflict, "you already have a team in this league")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, team)
}

type rosterClimber struct {
	ClimberID int     `bun:"climber_id" json:"climberID"`
	Name      string  `bun:"name" json:"name"`
	Country   *string `bun:"country" json:"country,omitempty"`
	IsCaptain bool    `bun:"-" json:"isCaptain"`
}

type teamWithRoster struct {
	*models.Team
	Roster    []rosterClimber `json:"roster"`
	CaptainID int             `json:"captainID,omitempty"`
}

// Team returns a team with its current roster and captain.
func (h *Handler) Team(c echo.Context) error {
	team, err := h.fetchTeam(c, c.Param("id"))
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	roster, captains, err := h.teamLogs(ctx, team.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	snap := scoring.RosterAsOf(roster, captains, time.Now().UTC())
	if snap.CaptainConflict {
		h.log.Warn("duplicate open captaincy entries", zap.String("team_id", team.ID.String()))
	}

	out := teamWithRoster{Team: team, Roster: []rosterClimber{}, CaptainID: snap.CaptainID}
	if len(snap.Slots) > 0 {
		ids := snap.ClimberIDs()
		var climbers []models.Climber
		if err := h.db.NewSelect().Model(&climbers).Where("cl.id IN (?)", bun.In(ids)).Scan(ctx); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		byID := make(map[int]models.Climber, len(climbers))
		for _, cl := range climbers {
			byID[cl.ID] = cl
		}
		for _, slot := range snap.Slots {
			cl := byID[slot.ClimberID]
			out.Roster = append(out.Roster, rosterClimber{
				ClimberID: slot.ClimberID,
				Name:      cl.Name,
				Country:   cl.Country,
				IsCaptain: slot.IsCaptain,
			})
		}
	}

	return c.JSON(http.StatusOK, out)
}

type rosterUpdateEntry struct {
	ClimberID int  `json:"climberID"`
	IsCaptain bool `json:"isCaptain"`
}

type rosterUpdateRequest struct {
	Roster []rosterUpdateEntry `json:"roster"`
}

// UpdateRoster replaces the team's roster wholesale. Draft-phase only: once
// the league's first event starts, the roster is locked and changes go
// through transfers.
func (h *Handler) UpdateRoster(c echo.Context) error {
	userID, ok := mw.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	team, err := h.fetchTeam(c, c.Param("id"))
	if err != nil {
		return err
	}
	if team.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "you don't own this team")
	}

	var req rosterUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	league, err := h.fetchLeague(c, team.LeagueID.String())
	if err != nil {
		return err
	}

	locked, reason, err := h.rosterLocked(ctx, league)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if locked {
		return echo.NewHTTPError(http.StatusForbidden,
			fmt.Sprintf("roster is locked: %s. Use transfers to change your team", reason))
	}

	if len(req.Roster) > league.TeamSize {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("maximum %d climbers allowed in this league", league.TeamSize))
	}

	captainID := 0
	captainCount := 0
	ids := make([]int, 0, len(req.Roster))
	for _, entry := range req.Roster {
		ids = append(ids, entry.ClimberID)
		if entry.IsCaptain {
			captainID = entry.ClimberID
			captainCount++
		}
	}
	if captainCount != 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "exactly one captain required")
	}

	rankings, err := h.rankingsMap(c, league.Discipline, league.Gender)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := scoring.ValidateTierLimits(ids, rankings, league.TierConfig.Tiers); err != nil {
		return domainHTTPError(err)
	}

	h.locks.Lock(team.ID)
	defer h.locks.Unlock(team.ID)

	now := time.Now().UTC()
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer tx.Rollback()

	// Close every open roster entry, then open the new ones at one shared
	// instant so the draft reads as a single change.
	_, err = tx.NewUpdate().Model((*models.RosterEntry)(nil)).
		Set("removed_at = ?", now).
		Where("team_id = ? AND removed_at IS NULL", team.ID).
		Exec(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	entries := make([]models.RosterEntry, 0, len(req.Roster))
	for _, e := range req.Roster {
		entries = append(entries, models.RosterEntry{
			TeamID:    team.ID,
			ClimberID: e.ClimberID,
			IsCaptain: e.IsCaptain,
			AddedAt:   now,
		})
	}
	if len(entries) > 0 {
		if _, err := tx.NewInsert().Model(&entries).Exec(ctx); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	if err := setCaptainTx(ctx, tx, team.ID, captainID, now); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := tx.Commit(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return h.Team(c)
}

// SetCaptain performs a pure captain swap: a captaincy-log write with no
// roster change. Draft-phase only, like UpdateRoster.
func (h *Handler) SetCaptain(c echo.Context) error {
	userID, ok := mw.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	team, err := h.fetchTeam(c, c.Param("id"))
	if err != nil {
		return err
	}
	if team.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "you don't own this team")
	}

	climberID, err := strconv.Atoi(c.Param("climberID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid climber id")
	}

	ctx := c.Request().Context()
	league, err := h.fetchLeague(c, team.LeagueID.String())
	if err != nil {
		return err
	}
	locked, reason, err := h.rosterLocked(ctx, league)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if locked {
		return echo.NewHTTPError(http.StatusForbidden,
			fmt.Sprintf("roster is locked: %s. Use transfers to change captains mid-season", reason))
	}

	h.locks.Lock(team.ID)
	defer h.locks.Unlock(team.ID)

	inRoster, err := h.db.NewSelect().Model((*models.RosterEntry)(nil)).
		Where("team_id = ? AND climber_id = ? AND removed_at IS NULL", team.ID, climberID).
		Exists(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !inRoster {
		return echo.NewHTTPError(http.StatusNotFound, "climber not found in roster")
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer tx.Rollback()

	if err := setCaptainTx(ctx, tx, team.ID, climberID, time.Now().UTC()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := tx.Commit(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "captain updated"})
}

// setCaptainTx closes the open captaincy entry, opens one for the new
// captain and keeps the legacy is_captain roster flag in sync, all at one
// shared instant inside the caller's transaction.
func setCaptainTx(ctx context.Context, tx bun.Tx, teamID uuid.UUID, climberID int, at time.Time) error {
	_, err := tx.NewUpdate().Model((*models.CaptainEntry)(nil)).
		Set("replaced_at = ?", at).
		Where("team_id = ? AND replaced_at IS NULL", teamID).
		Exec(ctx)
	if err != nil {
		return err
	}

	entry := &models.CaptainEntry{TeamID: teamID, ClimberID: climberID, SetAt: at}
	if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
		return err
	}

	_, err = tx.NewUpdate().Model((*models.RosterEntry)(nil)).
		Set("is_captain = (climber_id = ?)", climberID).
		Where("team_id = ? AND removed_at IS NULL", teamID).
		Exec(ctx)
	return err
}

// RosterStatus reports whether the team's roster is still draft-editable.
func (h *Handler) RosterStatus(c echo.Context) error {
	team, err := h.fetchTeam(c, c.Param("id"))
	if err != nil {
		return err
	}
	league, err := h.fetchLeague(c, team.LeagueID.String())
	if err != nil {
		return err
	}

	locked, reason, err := h.rosterLocked(c.Request().Context(), league)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := map[string]any{"locked": locked}
	if locked {
		resp["reason"] = reason
	}
	return c.JSON(http.StatusOK, resp)
}

// rosterLocked reports whether any league event has started: by status, or
// by its date having passed even if ingestion hasn't flipped the status yet.
func (h *Handler) rosterLocked(ctx context.Context, league *models.League) (bool, string, error) {
	events, err := h.leagueEvents(ctx, league)
	if err != nil {
		return false, "", err
	}

	now := time.Now().UTC()
	for _, e := range events {
		if e.Status == models.EventCompleted || e.Status == models.EventInProgress {
			return true, fmt.Sprintf("event %q has started (status: %s)", e.Name, e.Status), nil
		}
		if !e.Date.After(now) {
			return true, fmt.Sprintf("event %q has started (date: %s)", e.Name, e.Date.Format("2006-01-02 15:04")), nil
		}
	}
	return false, "", nil
}

// fetchTeam loads a team by path id, mapping absence to 404.
func (h *Handler) fetchTeam(c echo.Context, id string) (*models.Team, error) {
	teamID, err := uuid.Parse(id)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid team id")
	}

	team := &models.Team{}
	err = h.db.NewSelect().Model(team).Where("ft.id = ?", teamID).Scan(c.Request().Context())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "team not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return team, nil
}
