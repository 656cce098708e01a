// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package app is the composition root shared by the API server and the
maintenance CLI.

It builds every domain service from the infrastructure clients and resolves
the cross-domain collaborators: the goal service invalidates cached progress
for the library, the library re-derives entries when a book changes, and the
profile service provisions registrations.
*/
package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/readtrack/internal/api"
	"github.com/taibuivan/readtrack/internal/catalog/author"
	"github.com/taibuivan/readtrack/internal/catalog/book"
	"github.com/taibuivan/readtrack/internal/platform/config"
	"github.com/taibuivan/readtrack/internal/platform/postgres"
	"github.com/taibuivan/readtrack/internal/tracking/goal"
	"github.com/taibuivan/readtrack/internal/tracking/library"
	"github.com/taibuivan/readtrack/internal/tracking/readinglist"
	"github.com/taibuivan/readtrack/internal/users/auth"
	"github.com/taibuivan/readtrack/internal/users/profile"
)

// Services holds one instance of every domain service.
type Services struct {
	Auth        *auth.Service
	Profile     *profile.Service
	Author      *author.Service
	Book        *book.Service
	Library     *library.Service
	Goal        *goal.Service
	ReadingList *readinglist.Service
}

/*
NewServices wires the domain services.

Parameters:
  - cfg: *config.Config
  - pool: *pgxpool.Pool
  - redisClient: *redis.Client (nil disables the progress cache)
  - tokens: auth.TokenProvider (nil when no tokens are issued, as in the CLI)
  - logger: *slog.Logger

Returns:
  - *Services
*/
func NewServices(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, tokens auth.TokenProvider, logger *slog.Logger) *Services {
	var cache goal.ProgressCache
	if redisClient != nil {
		cache = goal.NewRedisProgressCache(redisClient, cfg.GoalCacheTTL)
	}

	goalService := goal.NewService(goal.NewPostgresRepository(pool), cache, goal.Basis(cfg.GoalWindowBasis), logger)
	libraryService := library.NewService(library.NewPostgresRepository(pool), goalService, logger)
	profileService := profile.NewService(profile.NewPostgresRepository(pool), logger)

	return &Services{
		Auth: auth.NewService(
			auth.NewUserRepository(pool),
			auth.NewSessionRepository(pool),
			profileService,
			postgres.NewTransactor(pool),
			tokens,
			logger,
		),
		Profile:     profileService,
		Author:      author.NewService(author.NewPostgresRepository(pool), logger),
		Book:        book.NewService(book.NewPostgresRepository(pool), libraryService, logger),
		Library:     libraryService,
		Goal:        goalService,
		ReadingList: readinglist.NewService(readinglist.NewPostgresRepository(pool), logger),
	}
}

// Handlers builds the HTTP handler set; health checks are filled in by the caller.
func (services *Services) Handlers() api.Handlers {
	return api.Handlers{
		Auth:        auth.NewHandler(services.Auth),
		Profile:     profile.NewHandler(services.Profile),
		Author:      author.NewHandler(services.Author),
		Book:        book.NewHandler(services.Book),
		Library:     library.NewHandler(services.Library),
		Goal:        goal.NewHandler(services.Goal),
		ReadingList: readinglist.NewHandler(services.ReadingList),
	}
}
