package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/jonboulle/clockwork"
	"github.com/redlantern/fortunebot/fortunebot"
	"github.com/redlantern/fortunebot/fortunebot/archive"
	"github.com/redlantern/fortunebot/fortunebot/commands"
	"github.com/redlantern/fortunebot/fortunebot/components"
	"github.com/redlantern/fortunebot/fortunebot/handlers"
	"github.com/redlantern/fortunebot/fortunebot/logger"
	"github.com/redlantern/fortunebot/fortunebot/presenter"
	"github.com/redlantern/fortunebot/fortunebot/scheduler"
	"github.com/redlantern/fortunebot/fortunebot/web"
	"github.com/redlantern/fortunebot/internal/domain/audit"
	"github.com/redlantern/fortunebot/internal/domain/cooldown"
	"github.com/redlantern/fortunebot/internal/domain/draw"
	"github.com/redlantern/fortunebot/internal/domain/ledger"
	"github.com/redlantern/fortunebot/internal/domain/quests"
	"github.com/redlantern/fortunebot/internal/domain/submissions"
	"github.com/redlantern/fortunebot/internal/gateways/database/repositories"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	rehydrateInterval    = 10 * time.Minute
	apiRequestsPerMinute = 120
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot, the status API and the scheduled jobs",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// newRouter maps every command path and button prefix to its handler.
func newRouter(b *fortunebot.Bot) *handler.Mux {
	h := handler.New()

	h.Route("/event", func(r handler.Router) {
		r.Command("/submit", handlers.WrapWithLogging("event submit", commands.SubmitHandler(b)))
		r.Autocomplete("/submit", handlers.WrapAutocompleteWithLogging("event submit", commands.QuestAutocomplete(b)))
		r.Command("/open", handlers.WrapWithLogging("event open", commands.OpenHandler(b)))
		r.Command("/daily", handlers.WrapWithLogging("event daily", commands.DailyHandler(b)))
		r.Command("/balance", handlers.WrapWithLogging("event balance", commands.BalanceHandler(b)))
		r.Command("/leaderboard", handlers.WrapWithLogging("event leaderboard", commands.LeaderboardHandler(b)))
		r.Command("/quests", handlers.WrapWithLogging("event quests", commands.QuestsHandler(b)))
	})

	h.Route("/staff", func(r handler.Router) {
		r.Command("/post-quest", handlers.WrapWithLogging("staff post-quest", commands.PostQuestHandler(b)))
		r.Command("/close-quest", handlers.WrapWithLogging("staff close-quest", commands.CloseQuestHandler(b)))
		r.Autocomplete("/close-quest", handlers.WrapAutocompleteWithLogging("staff close-quest", commands.CloseQuestAutocomplete(b)))
		r.Command("/revoke", handlers.WrapWithLogging("staff revoke", commands.RevokeHandler(b)))
		r.Command("/adjust", handlers.WrapWithLogging("staff adjust", commands.AdjustHandler(b)))
		r.Command("/pending", handlers.WrapWithLogging("staff pending", commands.PendingHandler(b)))
	})

	h.Component(components.ReviewPrefix, handlers.WrapComponentWithLogging("review", components.ReviewHandler(b)))
	return h
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	slog.Info("Starting Fortune bot",
		slog.String("type", "sys"),
		slog.String("version", version),
		slog.String("commit", commit),
	)

	db, err := openDB(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	b := fortunebot.New(*cfg, version, commit)
	b.DB = db

	if err := b.SetupBot(newRouter(b), bot.NewListenerFunc(b.OnReady)); err != nil {
		return fmt.Errorf("failed to setup bot: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(closeCtx)
	}()

	clock := clockwork.NewRealClock()
	bunDB := db.BunDB()
	tx := repositories.NewTransactor(bunDB)

	pres := presenter.New(b.Client.Rest(), nil, presenter.Channels{
		Quests: cfg.Channels.Quests,
		Review: cfg.Channels.Review,
		Ledger: cfg.Channels.Ledger,
	})
	recorder := audit.Multi{audit.LogRecorder{}, pres}

	ledgerService := ledger.NewService(repositories.NewEventUserRepository(bunDB), tx, recorder)
	questService := quests.NewService(repositories.NewQuestRepository(bunDB), cfg.Rewards.Bounds(), recorder)
	pres.SetQuests(questService)

	var opts []submissions.Option
	if cfg.Spaces.Enabled() {
		archiver, err := archive.NewSpaces(ctx, archive.Config{
			Key:      cfg.Spaces.Key,
			Secret:   cfg.Spaces.Secret,
			Region:   cfg.Spaces.Region,
			Bucket:   cfg.Spaces.Bucket,
			Root:     cfg.Spaces.Root,
			Endpoint: cfg.Spaces.Endpoint,
		})
		if err != nil {
			return fmt.Errorf("failed to set up proof archive: %w", err)
		}
		opts = append(opts, submissions.WithArchiver(archiver))
		slog.Info("Proof archive enabled",
			slog.String("type", "sys"),
			slog.String("bucket", cfg.Spaces.Bucket),
		)
	}
	submissionService := submissions.NewService(
		repositories.NewSubmissionRepository(bunDB), tx, questService, ledgerService, pres, recorder, opts...)

	drawCooldown := cooldown.NewLimiter(cfg.Cooldowns.Draw.Duration, clock)
	drawService, err := draw.NewService(ledgerService, tx, drawCooldown, cfg.Rewards.Tiers, nil, recorder)
	if err != nil {
		return fmt.Errorf("invalid reward table: %w", err)
	}

	b.Ledger = ledgerService
	b.Quests = questService
	b.Submissions = submissionService
	b.Draw = drawService
	b.DrawCooldown = drawCooldown
	b.QuestBoard = pres
	b.Daily = cooldown.NewDailyClaims(repositories.NewDailyClaimRepository(bunDB), ledgerService, tx, recorder,
		cooldown.DailyConfig{Window: cfg.Cooldowns.Daily.Duration, Grant: cfg.Rewards.DailyEnvelopes}, clock)

	if cfg.Bot.SyncCommands {
		if err := syncCommands(b.Client, cfg.Bot.DevGuilds); err != nil {
			logger.LogError("Failed to sync commands", err)
		}
	}

	sched, err := scheduler.New(clock)
	if err != nil {
		return err
	}
	if _, err := sched.AddSweep(scheduler.JobDrawCooldownSweep, cfg.Cooldowns.Sweep.Duration, drawCooldown); err != nil {
		return fmt.Errorf("failed to schedule cooldown sweep: %w", err)
	}
	if _, err := sched.AddRehydrate(rehydrateInterval, submissionService); err != nil {
		return fmt.Errorf("failed to schedule review rehydration: %w", err)
	}

	var srv *web.Server
	if cfg.HTTP.Enabled {
		srv = web.New(ledgerService, questService, db, web.Options{
			Addr:    cfg.HTTP.Addr,
			Version: version,
			Limiter: web.NewRateLimiter(apiRequestsPerMinute, time.Minute, clock),
		})
		if _, err := sched.AddSweep(scheduler.JobAPILimiterSweep, cfg.Cooldowns.Sweep.Duration, srv.Limiter()); err != nil {
			return fmt.Errorf("failed to schedule api limiter sweep: %w", err)
		}
	}

	gatewayCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := b.Client.OpenGateway(gatewayCtx); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}

	rehydrateCtx, cancelRehydrate := context.WithTimeout(ctx, 30*time.Second)
	pending, err := submissionService.Rehydrate(rehydrateCtx)
	cancelRehydrate()
	if err != nil {
		logger.LogError("Failed to rehydrate pending reviews", err)
	} else {
		slog.Info("Pending reviews restored",
			slog.String("type", "sys"),
			slog.Int("pending", len(pending)),
		)
	}

	slog.Info("Bot is running. Press CTRL-C to exit.", slog.String("type", "sys"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(gctx)
	})
	if srv != nil {
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	err = g.Wait()
	slog.Info("Shutting down bot...", slog.String("type", "sys"))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
