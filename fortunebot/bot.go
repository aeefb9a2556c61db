package fortunebot

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"
	"github.com/redlantern/fortunebot/internal/domain/cooldown"
	"github.com/redlantern/fortunebot/internal/domain/draw"
	"github.com/redlantern/fortunebot/internal/domain/errs"
	"github.com/redlantern/fortunebot/internal/domain/ledger"
	"github.com/redlantern/fortunebot/internal/domain/quests"
	"github.com/redlantern/fortunebot/internal/domain/submissions"
	"github.com/redlantern/fortunebot/internal/gateways/database"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

// QuestBoard publishes quest announcements and marks them closed.
type QuestBoard interface {
	PostQuest(ctx context.Context, quest *quests.Quest) (channelID, messageID string, err error)
	CloseQuest(ctx context.Context, quest *quests.Quest) error
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string
	DB        *database.DB

	Ledger       ledger.Service
	Quests       quests.Service
	Submissions  submissions.Service
	Draw         draw.Service
	Daily        *cooldown.DailyClaims
	DrawCooldown *cooldown.Limiter
	QuestBoard   QuestBoard
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(gateway.IntentGuilds, gateway.IntentGuildMessages)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("Fortune bot is now ready",
		slog.String("type", "sys"),
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithListeningActivity("the Red Dragon's drums 🧧"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}

// IsStaff reports whether the member holds the configured staff role. With
// no role configured nobody is staff.
func (b *Bot) IsStaff(member *discord.ResolvedMember) bool {
	if member == nil || b.Cfg.Staff.RoleID == 0 {
		return false
	}
	return slices.Contains(member.RoleIDs, b.Cfg.Staff.RoleID)
}

var ErrNotStaff = errs.New(errs.Unauthorized, errs.CodeNotStaff, "this is for event staff only")

// RequireStaff is IsStaff as an error for handlers.
func (b *Bot) RequireStaff(member *discord.ResolvedMember) error {
	if !b.IsStaff(member) {
		return ErrNotStaff
	}
	return nil
}
