package cmd

import (
	"context"

	"github.com/example/psychly/internal/ai"
	"github.com/example/psychly/internal/badge"
	"github.com/example/psychly/internal/content"
	"github.com/example/psychly/internal/database"
	"github.com/example/psychly/internal/datekey"
	"github.com/example/psychly/internal/excel"
	"github.com/example/psychly/internal/ledger"
	"github.com/example/psychly/internal/quiz"
	"github.com/example/psychly/internal/votes"
	"github.com/jmoiron/sqlx"
)

// app holds the services shared by the commands
type app struct {
	db    *sqlx.DB
	clock datekey.Clock
	pools badge.Pools
	gen   ai.Generator

	contentRepo *database.ContentRepository
	statsRepo   *database.StatsRepository
	userRepo    *database.UserRepository

	resolver *content.Resolver
	ledger   *ledger.Ledger
	votes    *votes.Service
	quiz     *quiz.Service
	importer *excel.Importer
}

func newApp(ctx context.Context) (*app, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pools := badge.DefaultPools()
	if cfg.BadgePoolFile != "" {
		pools, err = badge.LoadPools(cfg.BadgePoolFile)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	gen, err := ai.New(ctx, cfg, pools.Categories(), log)
	if err != nil {
		db.Close()
		return nil, err
	}

	clock := datekey.SystemClock{}
	a := &app{
		db:          db,
		clock:       clock,
		pools:       pools,
		gen:         gen,
		contentRepo: database.NewContentRepository(db),
		statsRepo:   database.NewStatsRepository(db),
		userRepo:    database.NewUserRepository(db),
	}
	a.resolver = content.NewResolver(a.contentRepo, gen, pools, clock, log)
	a.ledger = ledger.New(a.statsRepo, clock, log)
	a.votes = votes.NewService(database.NewVoteRepository(db), log)
	a.quiz = quiz.NewService(a.resolver, gen, a.ledger, a.contentRepo, a.statsRepo, log)
	a.importer = excel.NewImporter(a.contentRepo, pools)
	return a, nil
}

func (a *app) Close() {
	a.db.Close()
}
