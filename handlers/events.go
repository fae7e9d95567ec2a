package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cruxfantasy/cruxapi/models"
)

// Events returns all events, optionally filtered by discipline, gender and
// status. Ordered by date ascending.
func (h *Handler) Events(c echo.Context) error {
	var events []models.Event
	q := h.db.NewSelect().Model(&events).OrderExpr("e.date ASC")

	if d := c.QueryParam("discipline"); d != "" {
		q = q.Where("e.discipline = ?", d)
	}
	if g := c.QueryParam("gender"); g != "" {
		q = q.Where("e.gender = ?", g)
	}
	if s := c.QueryParam("status"); s != "" {
		q = q.Where("e.status = ?", s)
	}

	if err := q.Scan(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if events == nil {
		events = []models.Event{}
	}
	return c.JSON(http.StatusOK, events)
}

// Event returns a single event by ID.
func (h *Handler) Event(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	event := &models.Event{}
	err = h.db.NewSelect().Model(event).Where("e.id = ?", id).Scan(c.Request().Context())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "event not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, event)
}

type eventResultRow struct {
	ClimberID int     `bun:"climber_id" json:"climberID"`
	Name      string  `bun:"name" json:"name"`
	Country   *string `bun:"country" json:"country,omitempty"`
	Rank      int     `bun:"rank" json:"rank"`
	Score     int     `bun:"score" json:"score"`
}

// EventResults returns an event's finishing order with climber details.
func (h *Handler) EventResults(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	var rows []eventResultRow
	err = h.db.NewRaw(`
		SELECT er.climber_id, cl.name, cl.country, er.rank, er.score
		FROM event_results er
		INNER JOIN climbers cl ON cl.id = er.climber_id
		WHERE er.event_id = ?
		ORDER BY er.rank`,
		id,
	).Scan(c.Request().Context(), &rows)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if rows == nil {
		rows = []eventResultRow{}
	}
	return c.JSON(http.StatusOK, rows)
}

// Climbers lists athletes, optionally filtered by gender or a name search.
func (h *Handler) Climbers(c echo.Context) error {
	var climbers []models.Climber
	q := h.db.NewSelect().Model(&climbers).OrderExpr("cl.name ASC")

	if g := c.QueryParam("gender"); g != "" {
		q = q.Where("cl.gender = ?", g)
	}
	if name := c.QueryParam("name"); name != "" {
		q = q.Where("cl.name ILIKE ?", "%"+name+"%")
	}

	if err := q.Scan(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if climbers == nil {
		climbers = []models.Climber{}
	}
	return c.JSON(http.StatusOK, climbers)
}

// Rankings returns the world ranking for a discipline/gender/season. Season
// defaults to the current year.
func (h *Handler) Rankings(c echo.Context) error {
	discipline := c.QueryParam("discipline")
	gender := c.QueryParam("gender")
	if discipline == "" || gender == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing discipline or gender param")
	}

	season := time.Now().UTC().Year()
	if s := c.QueryParam("season"); s != "" {
		var err error
		if season, err = strconv.Atoi(s); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid season param")
		}
	}

	var rankings []models.AthleteRanking
	err := h.db.NewSelect().Model(&rankings).
		Where("ar.discipline = ?", discipline).
		Where("ar.gender = ?", gender).
		Where("ar.season = ?", season).
		OrderExpr("ar.rank ASC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if rankings == nil {
		rankings = []models.AthleteRanking{}
	}
	return c.JSON(http.StatusOK, rankings)
}

// rankingsMap fetches the climber→world-rank map used for tier checks. An
// unsynced season yields an empty map and every climber falls to the lowest
// tier; that is a documented degradation, not an error.
func (h *Handler) rankingsMap(c echo.Context, discipline, gender string) (map[int]int, error) {
	var rows []models.AthleteRanking
	err := h.db.NewSelect().Model(&rows).
		Where("ar.discipline = ?", discipline).
		Where("ar.gender = ?", gender).
		Where("ar.season = ?", time.Now().UTC().Year()).
		Scan(c.Request().Context())
	if err != nil {
		return nil, err
	}
	rankings := make(map[int]int, len(rows))
	for _, r := range rows {
		rankings[r.ClimberID] = r.Rank
	}
	return rankings, nil
}
