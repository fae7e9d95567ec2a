package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/cruxfantasy/cruxapi/config"
	"github.com/cruxfantasy/cruxapi/db"
	"github.com/cruxfantasy/cruxapi/handlers"
	applog "github.com/cruxfantasy/cruxapi/logger"
	mw "github.com/cruxfantasy/cruxapi/middleware"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	bdb := db.Setup(cfg)
	defer bdb.Close()

	if err := db.CreateTables(context.Background(), bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	h := handlers.New(bdb, cfg.JWTKey(), logger)

	e := echo.New()
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*", "Authorization"},
		AllowCredentials: true,
	}))

	// Public
	e.POST("/api/signin", h.Signin)

	// Protected – require valid JWT in Authorization header
	api := e.Group("/api", mw.JWT(cfg.JWTKey()))

	api.GET("/events", h.Events)
	api.GET("/events/:id", h.Event)
	api.GET("/events/:id/results", h.EventResults)
	api.GET("/climbers", h.Climbers)
	api.GET("/rankings", h.Rankings)

	api.POST("/leagues", h.CreateLeague)
	api.GET("/leagues", h.Leagues)
	api.GET("/leagues/:id", h.League)
	api.POST("/leagues/join", h.JoinLeague)
	api.GET("/leagues/:id/teams", h.LeagueTeams)
	api.GET("/leagues/:id/leaderboard", h.Leaderboard)
	api.GET("/leagues/:id/breakdown", h.LeagueBreakdown)

	api.POST("/teams", h.CreateTeam)
	api.GET("/teams/:id", h.Team)
	api.PUT("/teams/:id/roster", h.UpdateRoster)
	api.PUT("/teams/:id/captain/:climberID", h.SetCaptain)
	api.GET("/teams/:id/roster-status", h.RosterStatus)
	api.GET("/teams/:id/breakdown", h.TeamBreakdown)
	api.POST("/teams/:id/transfers", h.CreateTransfer)
	api.GET("/teams/:id/transfers", h.TeamTransfers)
	api.DELETE("/teams/:id/transfers/:afterEventID", h.RevertTransfer)

	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
