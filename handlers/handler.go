package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/cruxfantasy/cruxapi/scoring"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	db     *bun.DB
	JWTKey []byte
	log    *zap.Logger
	points scoring.PointsTable
	locks  *teamLocks
}

// New creates a Handler scoring with the default IFSC World Cup table.
func New(db *bun.DB, jwtKey []byte, log *zap.Logger) *Handler {
	return NewWithPointsTable(db, jwtKey, log, scoring.IFSCWorldCup())
}

// NewWithPointsTable creates a Handler with a custom rank→points table, for
// deployments running a different distribution.
func NewWithPointsTable(db *bun.DB, jwtKey []byte, log *zap.Logger, points scoring.PointsTable) *Handler {
	return &Handler{
		db:     db,
		JWTKey: jwtKey,
		log:    log,
		points: points,
		locks:  newTeamLocks(),
	}
}

// domainHTTPError maps transfer/roster precondition failures to 400s the UI
// shows verbatim; anything else is an infrastructure failure.
func domainHTTPError(err error) error {
	var tierErr *scoring.TierLimitError
	var limitErr *scoring.TransferLimitError
	switch {
	case errors.Is(err, scoring.ErrNotInRoster),
		errors.Is(err, scoring.ErrAlreadyRostered),
		errors.Is(err, scoring.ErrCaptainReassignmentRequired),
		errors.As(err, &tierErr),
		errors.As(err, &limitErr):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
