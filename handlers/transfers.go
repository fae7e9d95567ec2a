package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	mw "github.com/cruxfantasy/cruxapi/middleware"
	"github.com/cruxfantasy/cruxapi/models"
	"github.com/cruxfantasy/cruxapi/scoring"
)

// CreateTransfer swaps one climber for another after a completed event.
// Precondition checks and the log writes run under the team's lock and a
// single transaction, so a failed transfer leaves both logs untouched.
func (h *Handler) CreateTransfer(c echo.Context) error {
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

	league, err := h.fetchLeague(c, team.LeagueID.String())
	if err != nil {
		return err
	}
	// A zero allowance still admits free transfers when the league runs the
	// free-transfer policy; only without it are transfers off entirely.
	if league.TransfersPerEvent == 0 && !league.FreeTransfers {
		return echo.NewHTTPError(http.StatusBadRequest, "transfers are disabled for this league")
	}

	var proposal scoring.TransferProposal
	if err := c.Bind(&proposal); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	event, nextEvent, err := h.transferWindow(ctx, league, proposal.AfterEventID)
	if err != nil {
		return err
	}

	h.locks.Lock(team.ID)
	defer h.locks.Unlock(team.ID)

	roster, captains, err := h.teamLogs(ctx, team.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	snap := scoring.RosterAsOf(roster, captains, time.Now().UTC())
	if snap.CaptainConflict {
		h.log.Warn("duplicate open captaincy entries", zap.String("team_id", team.ID.String()))
	}

	rankings, err := h.rankingsMap(c, league.Discipline, league.Gender)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	used, err := h.db.NewSelect().Model((*models.Transfer)(nil)).
		Where("team_id = ? AND after_event_id = ? AND reverted_at IS NULL AND NOT is_free",
			team.ID, proposal.AfterEventID).
		Count(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	free := false
	if league.FreeTransfers && nextEvent != nil {
		registered, err := h.db.NewSelect().Model((*models.EventRegistration)(nil)).
			Where("event_id = ? AND climber_id = ?", nextEvent.ID, proposal.ClimberOutID).
			Exists(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		free = !registered
	}

	tc := scoring.TransferContext{
		Current:           snap,
		Rankings:          rankings,
		Tiers:             league.TierConfig.Tiers,
		TransfersUsed:     used,
		TransfersPerEvent: league.TransfersPerEvent,
		Free:              free,
	}
	if err := scoring.ValidateTransfer(tc, proposal); err != nil {
		return domainHTTPError(err)
	}

	captainChanges := scoring.CaptainChanges(snap, proposal)
	if captainChanges && *proposal.NewCaptainID != proposal.ClimberInID && !snap.Contains(*proposal.NewCaptainID) {
		return echo.NewHTTPError(http.StatusBadRequest, "new captain must be in the roster")
	}

	// All log writes share one instant, one second past the event, so the
	// change is strictly after the event even if system clocks drift.
	ts := event.Date.Add(time.Second)

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer tx.Rollback()

	_, err = tx.NewUpdate().Model((*models.RosterEntry)(nil)).
		Set("removed_at = ?", ts).
		Where("team_id = ? AND climber_id = ? AND removed_at IS NULL", team.ID, proposal.ClimberOutID).
		Exec(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	incoming := &models.RosterEntry{
		TeamID:    team.ID,
		ClimberID: proposal.ClimberInID,
		IsCaptain: captainChanges && *proposal.NewCaptainID == proposal.ClimberInID,
		AddedAt:   ts,
	}
	if _, err := tx.NewInsert().Model(incoming).Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if captainChanges {
		if err := setCaptainTx(ctx, tx, team.ID, *proposal.NewCaptainID, ts); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	transfer := &models.Transfer{
		TeamID:       team.ID,
		AfterEventID: proposal.AfterEventID,
		ClimberOutID: proposal.ClimberOutID,
		ClimberInID:  proposal.ClimberInID,
		IsFree:       free,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := tx.NewInsert().Model(transfer).Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := tx.Commit(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.log.Info("transfer applied",
		zap.String("team_id", team.ID.String()),
		zap.Int("after_event_id", proposal.AfterEventID),
		zap.Int("climber_out", proposal.ClimberOutID),
		zap.Int("climber_in", proposal.ClimberInID),
		zap.Bool("free", free))

	return c.JSON(http.StatusCreated, transfer)
}

// RevertTransfer undoes the transfers made after an event, restoring both
// change logs, while the window is still open. Only available in leagues
// with revertible transfers.
func (h *Handler) RevertTransfer(c echo.Context) error {
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

	league, err := h.fetchLeague(c, team.LeagueID.String())
	if err != nil {
		return err
	}
	if !league.RevertibleTransfers {
		return echo.NewHTTPError(http.StatusBadRequest, "transfers cannot be reverted in this league")
	}

	afterEventID, err := strconv.Atoi(c.Param("afterEventID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	ctx := c.Request().Context()
	event, _, err := h.transferWindow(ctx, league, afterEventID)
	if err != nil {
		return err
	}

	h.locks.Lock(team.ID)
	defer h.locks.Unlock(team.ID)

	var transfers []models.Transfer
	err = h.db.NewSelect().Model(&transfers).
		Where("tt.team_id = ? AND tt.after_event_id = ? AND tt.reverted_at IS NULL", team.ID, afterEventID).
		Scan(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(transfers) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no active transfer found for this event")
	}

	ts, err := h.transferTimestamp(ctx, team, transfers[0], event)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	now := time.Now().UTC()
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer tx.Rollback()

	// Undo the window's roster writes: drop the entries it opened, reopen
	// the ones it closed. Same for captaincy.
	if _, err := tx.NewDelete().Model((*models.RosterEntry)(nil)).
		Where("team_id = ? AND added_at = ?", team.ID, ts).
		Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if _, err := tx.NewUpdate().Model((*models.RosterEntry)(nil)).
		Set("removed_at = NULL").
		Where("team_id = ? AND removed_at = ?", team.ID, ts).
		Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if _, err := tx.NewDelete().Model((*models.CaptainEntry)(nil)).
		Where("team_id = ? AND set_at = ?", team.ID, ts).
		Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if _, err := tx.NewUpdate().Model((*models.CaptainEntry)(nil)).
		Set("replaced_at = NULL").
		Where("team_id = ? AND replaced_at = ?", team.ID, ts).
		Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if _, err := tx.NewUpdate().Model((*models.Transfer)(nil)).
		Set("reverted_at = ?", now).
		Where("team_id = ? AND after_event_id = ? AND reverted_at IS NULL", team.ID, afterEventID).
		Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Resync the legacy is_captain flag with the restored captaincy entry.
	restored := &models.CaptainEntry{}
	err = tx.NewSelect().Model(restored).
		Where("team_id = ? AND replaced_at IS NULL", team.ID).
		OrderExpr("set_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err == nil {
		if _, err := tx.NewUpdate().Model((*models.RosterEntry)(nil)).
			Set("is_captain = (climber_id = ?)", restored.ClimberID).
			Where("team_id = ? AND removed_at IS NULL", team.ID).
			Exec(ctx); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	if err := tx.Commit(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.log.Info("transfer reverted",
		zap.String("team_id", team.ID.String()),
		zap.Int("after_event_id", afterEventID),
		zap.Int("count", len(transfers)))

	return c.JSON(http.StatusOK, map[string]string{"message": "transfer(s) reverted"})
}

type transferRow struct {
	models.Transfer
	ClimberOutName string `bun:"climber_out_name" json:"climberOutName"`
	ClimberInName  string `bun:"climber_in_name" json:"climberInName"`
}

// TeamTransfers lists a team's transfers, newest first, with climber names.
func (h *Handler) TeamTransfers(c echo.Context) error {
	team, err := h.fetchTeam(c, c.Param("id"))
	if err != nil {
		return err
	}

	var rows []transferRow
	err = h.db.NewRaw(`
		SELECT tt.*, co.name AS climber_out_name, ci.name AS climber_in_name
		FROM team_transfers tt
		INNER JOIN climbers co ON co.id = tt.climber_out_id
		INNER JOIN climbers ci ON ci.id = tt.climber_in_id
		WHERE tt.team_id = ?
		ORDER BY tt.created_at DESC`,
		team.ID,
	).Scan(c.Request().Context(), &rows)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if rows == nil {
		rows = []transferRow{}
	}
	return c.JSON(http.StatusOK, rows)
}

// transferWindow loads the event a transfer follows and checks the window
// is open: the event is completed and the next event in the league's
// discipline/gender hasn't started. Returns the next event if there is one.
func (h *Handler) transferWindow(ctx context.Context, league *models.League, afterEventID int) (*models.Event, *models.Event, error) {
	event := &models.Event{}
	err := h.db.NewSelect().Model(event).Where("e.id = ?", afterEventID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, echo.NewHTTPError(http.StatusNotFound, "event not found")
		}
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if event.Status != models.EventCompleted {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "event is not completed yet")
	}

	next := &models.Event{}
	err = h.db.NewSelect().Model(next).
		Where("e.discipline = ? AND e.gender = ? AND e.date > ?", league.Discipline, league.Gender, event.Date).
		OrderExpr("e.date ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return event, nil, nil
		}
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if next.Status == models.EventCompleted || next.Status == models.EventInProgress {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "transfer window has closed (next event has started)")
	}
	return event, next, nil
}

// transferTimestamp recovers the exact instant this window's log writes
// used. The incoming climber's open entry is authoritative; fall back to the
// outgoing climber's close, then to recomputing from the event date.
func (h *Handler) transferTimestamp(ctx context.Context, team *models.Team, transfer models.Transfer, event *models.Event) (time.Time, error) {
	var added []time.Time
	err := h.db.NewSelect().Model((*models.RosterEntry)(nil)).
		Column("added_at").
		Where("team_id = ? AND climber_id = ? AND removed_at IS NULL", team.ID, transfer.ClimberInID).
		OrderExpr("added_at DESC").
		Limit(1).
		Scan(ctx, &added)
	if err != nil {
		return time.Time{}, err
	}
	if len(added) > 0 {
		return added[0], nil
	}

	var removed []time.Time
	err = h.db.NewSelect().Model((*models.RosterEntry)(nil)).
		Column("removed_at").
		Where("team_id = ? AND climber_id = ? AND removed_at IS NOT NULL", team.ID, transfer.ClimberOutID).
		OrderExpr("removed_at DESC").
		Limit(1).
		Scan(ctx, &removed)
	if err != nil {
		return time.Time{}, err
	}
	if len(removed) > 0 {
		return removed[0], nil
	}

	return event.Date.Add(time.Second), nil
}
