package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
	"github.com/redlantern/fortunebot/fortunebot"
	"github.com/redlantern/fortunebot/fortunebot/commands"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync-commands",
	Short: "Register the slash commands with Discord and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		b := fortunebot.New(*cfg, version, commit)
		if err := b.SetupBot(); err != nil {
			return fmt.Errorf("failed to setup bot: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			b.Client.Close(ctx)
		}()

		return syncCommands(b.Client, cfg.Bot.DevGuilds)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

// syncCommands registers the commands globally, or only in guildIDs when
// any are given.
func syncCommands(client bot.Client, guildIDs []snowflake.ID) error {
	slog.Info("Syncing commands",
		slog.String("type", "sys"),
		slog.Int("commands", len(commands.Commands)),
		slog.Any("guild_ids", guildIDs),
	)
	if err := handler.SyncCommands(client, commands.Commands, guildIDs); err != nil {
		return fmt.Errorf("failed to sync commands: %w", err)
	}
	return nil
}
