package handlers

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	mw "github.com/cruxfantasy/cruxapi/middleware"
	"github.com/cruxfantasy/cruxapi/models"
	"github.com/cruxfantasy/cruxapi/scoring"
)

type createLeagueRequest struct {
	Name                string        `json:"name"`
	Discipline          string        `json:"discipline"`
	Gender              string        `json:"gender"`
	TeamSize            int           `json:"teamSize"`
	TransfersPerEvent   int           `json:"transfersPerEvent"`
	CaptainMultiplier   float64       `json:"captainMultiplier"`
	Tiers               []models.Tier `json:"tiers"`
	FreeTransfers       bool          `json:"freeTransfers"`
	RevertibleTransfers bool          `json:"revertibleTransfers"`
	EventIDs            []int         `json:"eventIDs"`
}

func inviteCode() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// CreateLeague creates a league with the caller as admin, links the chosen
// events and registers the admin as a member.
func (h *Handler) CreateLeague(c echo.Context) error {
	userID, ok := mw.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req createLeagueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 3 {
		return echo.NewHTTPError(http.StatusBadRequest, "league name must be at least 3 characters")
	}
	if req.Discipline != "boulder" && req.Discipline != "lead" {
		return echo.NewHTTPError(http.StatusBadRequest, "discipline must be boulder or lead")
	}
	if req.Gender != "men" && req.Gender != "women" {
		return echo.NewHTTPError(http.StatusBadRequest, "gender must be men or women")
	}
	if req.TeamSize <= 0 {
		req.TeamSize = 6
	}
	if req.TransfersPerEvent < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "transfersPerEvent cannot be negative")
	}
	if req.CaptainMultiplier == 0 {
		req.CaptainMultiplier = 1.2
	}
	if req.CaptainMultiplier < 1.0 || req.CaptainMultiplier > 3.0 {
		return echo.NewHTTPError(http.StatusBadRequest, "captainMultiplier must be between 1.0 and 3.0")
	}
	if err := scoring.ValidateTierConfig(req.Tiers); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	league := &models.League{
		Name:                req.Name,
		Discipline:          req.Discipline,
		Gender:              req.Gender,
		AdminID:             userID,
		InviteCode:          inviteCode(),
		TeamSize:            req.TeamSize,
		TransfersPerEvent:   req.TransfersPerEvent,
		CaptainMultiplier:   req.CaptainMultiplier,
		TierConfig:          models.TierConfig{Tiers: req.Tiers},
		FreeTransfers:       req.FreeTransfers,
		RevertibleTransfers: req.RevertibleTransfers,
	}

	ctx := c.Request().Context()
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer tx.Rollback()

	if _, err := tx.NewInsert().Model(league).Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	member := &models.LeagueMember{LeagueID: league.ID, UserID: userID, Role: "admin"}
	if _, err := tx.NewInsert().Model(member).Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if len(req.EventIDs) > 0 {
		links := make([]models.LeagueEvent, 0, len(req.EventIDs))
		for _, eventID := range req.EventIDs {
			links = append(links, models.LeagueEvent{LeagueID: league.ID, EventID: eventID})
		}
		if _, err := tx.NewInsert().Model(&links).Exec(ctx); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	if err := tx.Commit(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, league)
}

// Leagues returns every league the caller is a member of.
func (h *Handler) Leagues(c echo.Context) error {
	userID, ok := mw.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var leagues []models.League
	err := h.db.NewSelect().Model(&leagues).
		Join("INNER JOIN league_members lm ON lm.league_id = l.id").
		Where("lm.user_id = ?", userID).
		OrderExpr("l.created_at DESC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if leagues == nil {
		leagues = []models.League{}
	}
	return c.JSON(http.StatusOK, leagues)
}

// League returns a single league by ID.
func (h *Handler) League(c echo.Context) error {
	league, err := h.fetchLeague(c, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, league)
}

type joinLeagueRequest struct {
	InviteCode string `json:"inviteCode"`
}

// JoinLeague adds the caller to the league matching the invite code.
func (h *Handler) JoinLeague(c echo.Context) error {
	userID, ok := mw.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req joinLeagueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.InviteCode = strings.TrimSpace(req.InviteCode)
	if req.InviteCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "inviteCode is required")
	}

	ctx := c.Request().Context()
	league := &models.League{}
	err := h.db.NewSelect().Model(league).
		Where("invite_code = ?", req.InviteCode).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "invalid invite code")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	member := &models.LeagueMember{LeagueID: league.ID, UserID: userID, Role: "member"}
	_, err = h.db.NewInsert().Model(member).
		On("CONFLICT (league_id, user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, league)
}

// LeagueTeams returns all teams in a league.
func (h *Handler) LeagueTeams(c echo.Context) error {
	leagueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid league id")
	}

	var teams []models.Team
	err = h.db.NewSelect().Model(&teams).
		Where("ft.league_id = ?", leagueID).
		OrderExpr("ft.created_at ASC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if teams == nil {
		teams = []models.Team{}
	}
	return c.JSON(http.StatusOK, teams)
}

// fetchLeague loads a league by path id, mapping absence to 404.
func (h *Handler) fetchLeague(c echo.Context, id string) (*models.League, error) {
	leagueID, err := uuid.Parse(id)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid league id")
	}

	league := &models.League{}
	err = h.db.NewSelect().Model(league).Where("l.id = ?", leagueID).Scan(c.Request().Context())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "league not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return league, nil
}
