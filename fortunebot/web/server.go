// Package web serves the read-only status API: health, the leaderboard and
// the active quests.
package web

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redlantern/fortunebot/internal/domain/ledger"
	"github.com/redlantern/fortunebot/internal/domain/quests"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100

	apiRequestsPerMinute = 120
)

type Leaderboard interface {
	Top(ctx context.Context, limit, offset int) ([]ledger.Standing, error)
	Count(ctx context.Context) (int, error)
}

type QuestLister interface {
	ListActive(ctx context.Context, limit int) ([]*quests.Quest, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	app         *fiber.App
	addr        string
	leaderboard Leaderboard
	quests      QuestLister
	db          Pinger
	limiter     *RateLimiter
	version     string
	started     time.Time
}

type Options struct {
	Addr    string
	Version string
	Limiter *RateLimiter
}

func New(leaderboard Leaderboard, quests QuestLister, db Pinger, opts Options) *Server {
	limiter := opts.Limiter
	if limiter == nil {
		limiter = NewRateLimiter(apiRequestsPerMinute, time.Minute, nil)
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "Fortune of the Red Dragon",
			ErrorHandler:          ErrorHandler,
			DisableStartupMessage: true,
		}),
		addr:        opts.Addr,
		leaderboard: leaderboard,
		quests:      quests,
		db:          db,
		limiter:     limiter,
		version:     opts.Version,
		started:     time.Now(),
	}

	s.app.Use(recover.New())
	s.app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	s.app.Use(LoggingMiddleware())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Get("/healthz", s.handleHealth)

	api := s.app.Group("/api", RateLimit(s.limiter))
	api.Get("/leaderboard", s.handleLeaderboard)
	api.Get("/quests", s.handleQuests)
}

// Limiter exposes the API rate limiter so the scheduler can sweep it.
func (s *Server) Limiter() *RateLimiter {
	return s.limiter
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Status API listening",
			slog.String("type", "http"),
			slog.String("addr", s.addr),
		)
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(shutdownCtx)
}
