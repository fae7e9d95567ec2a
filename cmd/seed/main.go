// cmd/seed/main.go
// Populates a development database with fake climbers, a season of events,
// results, rankings and a demo league with two teams.
//
// Usage:
//
//	go run ./cmd/seed -season 2026
package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cruxfantasy/cruxapi/config"
	bundb "github.com/cruxfantasy/cruxapi/db"
	applog "github.com/cruxfantasy/cruxapi/logger"
	"github.com/cruxfantasy/cruxapi/models"
)

const (
	nClimbers  = 40
	nCompleted = 3
	nUpcoming  = 2
)

func main() {
	season := flag.Int("season", time.Now().UTC().Year(), "season to seed")
	flag.Parse()

	log := applog.Must(true)
	defer func() { _ = log.Sync() }()

	faker := gofakeit.New(0)

	cfg := config.Load()
	db := bundb.Setup(cfg)
	defer db.Close()

	ctx := context.Background()
	if err := bundb.CreateTables(ctx, db); err != nil {
		log.Fatal("create tables failed", zap.Error(err))
	}

	climbers := make([]models.Climber, nClimbers)
	for i := range climbers {
		country := faker.CountryAbr()
		climbers[i] = models.Climber{
			ID:      1000 + i,
			Name:    faker.Name(),
			Country: &country,
			Gender:  "women",
		}
	}
	if _, err := db.NewInsert().Model(&climbers).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx); err != nil {
		log.Fatal("insert climbers failed", zap.Error(err))
	}

	// World ranking: a shuffled 1..N so tiers have someone in each band.
	perm := make([]int, nClimbers)
	for i := range perm {
		perm[i] = i + 1
	}
	faker.ShuffleInts(perm)
	rankings := make([]models.AthleteRanking, nClimbers)
	for i, cl := range climbers {
		rankings[i] = models.AthleteRanking{
			ClimberID:  cl.ID,
			Discipline: "boulder",
			Gender:     "women",
			Season:     *season,
			Rank:       perm[i],
		}
	}
	if _, err := db.NewInsert().Model(&rankings).
		On("CONFLICT (climber_id, discipline, gender, season) DO UPDATE SET rank = EXCLUDED.rank").
		Exec(ctx); err != nil {
		log.Fatal("insert rankings failed", zap.Error(err))
	}

	now := time.Now().UTC()
	events := make([]models.Event, 0, nCompleted+nUpcoming)
	for i := 0; i < nCompleted+nUpcoming; i++ {
		status := models.EventCompleted
		date := now.AddDate(0, 0, -28*(nCompleted-i))
		if i >= nCompleted {
			status = models.EventUpcoming
			date = now.AddDate(0, 0, 28*(i-nCompleted+1))
		}
		events = append(events, models.Event{
			ID:         *season*100 + i + 1,
			Name:       fmt.Sprintf("%s Boulder World Cup", faker.City()),
			Date:       date,
			Discipline: "boulder",
			Gender:     "women",
			Status:     status,
		})
	}
	if _, err := db.NewInsert().Model(&events).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx); err != nil {
		log.Fatal("insert events failed", zap.Error(err))
	}

	for _, event := range events {
		// Everyone is on every start list; completed events also get a
		// finishing order loosely correlated with world rank.
		regs := make([]models.EventRegistration, nClimbers)
		for i, cl := range climbers {
			regs[i] = models.EventRegistration{EventID: event.ID, ClimberID: cl.ID}
		}
		if _, err := db.NewInsert().Model(&regs).
			On("CONFLICT (event_id, climber_id) DO NOTHING").
			Exec(ctx); err != nil {
			log.Fatal("insert registrations failed", zap.Error(err))
		}

		if event.Status != models.EventCompleted {
			continue
		}
		order := make([]int, nClimbers)
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			return perm[order[a]]+faker.IntRange(-5, 5) < perm[order[b]]+faker.IntRange(-5, 5)
		})
		results := make([]models.EventResult, nClimbers)
		for rank, idx := range order {
			results[rank] = models.EventResult{
				EventID:   event.ID,
				ClimberID: climbers[idx].ID,
				Rank:      rank + 1,
			}
		}
		if _, err := db.NewInsert().Model(&results).
			On("CONFLICT (event_id, climber_id) DO NOTHING").
			Exec(ctx); err != nil {
			log.Fatal("insert results failed", zap.Error(err))
		}
	}

	users := make([]models.User, 2)
	for i, name := range []string{"alice", "bob"} {
		hash, err := bcrypt.GenerateFromPassword([]byte("testing"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal("bcrypt failed", zap.Error(err))
		}
		users[i] = models.User{Username: name, Password: string(hash)}
	}
	if _, err := db.NewInsert().Model(&users).
		On("CONFLICT (username) DO UPDATE SET password = EXCLUDED.password").
		Exec(ctx); err != nil {
		log.Fatal("insert users failed", zap.Error(err))
	}

	one, three := 10, 30
	two, threeCap := 2, 3
	league := &models.League{
		Name:              "Demo Boulder League",
		Discipline:        "boulder",
		Gender:            "women",
		AdminID:           users[0].ID,
		InviteCode:        "DEMO42",
		TeamSize:          6,
		TransfersPerEvent: 1,
		CaptainMultiplier: 1.2,
		TierConfig: models.TierConfig{Tiers: []models.Tier{
			{Name: "elite", MaxRank: &one, MaxPerTeam: &two},
			{Name: "pro", MaxRank: &three, MaxPerTeam: &threeCap},
			{Name: "open"},
		}},
		FreeTransfers:       false,
		RevertibleTransfers: true,
	}
	if _, err := db.NewInsert().Model(league).Exec(ctx); err != nil {
		log.Fatal("insert league failed", zap.Error(err))
	}

	members := make([]models.LeagueMember, len(users))
	for i, u := range users {
		role := "member"
		if i == 0 {
			role = "admin"
		}
		members[i] = models.LeagueMember{LeagueID: league.ID, UserID: u.ID, Role: role}
	}
	if _, err := db.NewInsert().Model(&members).Exec(ctx); err != nil {
		log.Fatal("insert members failed", zap.Error(err))
	}

	links := make([]models.LeagueEvent, len(events))
	for i, e := range events {
		links[i] = models.LeagueEvent{LeagueID: league.ID, EventID: e.ID}
	}
	if _, err := db.NewInsert().Model(&links).Exec(ctx); err != nil {
		log.Fatal("insert league events failed", zap.Error(err))
	}

	// One roster per user, drawn tier-legally: two elite picks, three from
	// the pro band, one open-tier pick. Captain is the first pick.
	byRank := make([]models.Climber, len(climbers))
	copy(byRank, climbers)
	sort.Slice(byRank, func(a, b int) bool { return perm[byRank[a].ID-1000] < perm[byRank[b].ID-1000] })

	seasonStart := events[0].Date.AddDate(0, 0, -7)
	for u, user := range users {
		team := &models.Team{LeagueID: league.ID, UserID: user.ID, Name: faker.PetName() + " Crushers"}
		if _, err := db.NewInsert().Model(team).Exec(ctx); err != nil {
			log.Fatal("insert team failed", zap.Error(err))
		}

		picks := []models.Climber{byRank[u], byRank[2+u]}
		picks = append(picks, byRank[10+u*3:13+u*3]...)
		picks = append(picks, byRank[30+u])

		roster := make([]models.RosterEntry, len(picks))
		for i, cl := range picks {
			roster[i] = models.RosterEntry{
				TeamID:    team.ID,
				ClimberID: cl.ID,
				IsCaptain: i == 0,
				AddedAt:   seasonStart,
			}
		}
		if _, err := db.NewInsert().Model(&roster).Exec(ctx); err != nil {
			log.Fatal("insert roster failed", zap.Error(err))
		}
		captain := &models.CaptainEntry{TeamID: team.ID, ClimberID: picks[0].ID, SetAt: seasonStart}
		if _, err := db.NewInsert().Model(captain).Exec(ctx); err != nil {
			log.Fatal("insert captain failed", zap.Error(err))
		}
		log.Info("seeded team", zap.String("team", team.Name), zap.String("user", user.Username))
	}

	log.Info("seed complete",
		zap.String("league", league.Name),
		zap.String("invite_code", league.InviteCode),
		zap.Int("climbers", nClimbers),
		zap.Int("events", len(events)))
}
