package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/redlantern/fortunebot/fortunebot"
	"github.com/redlantern/fortunebot/fortunebot/utils"
	"github.com/redlantern/fortunebot/internal/domain/quests"
	"github.com/redlantern/fortunebot/internal/domain/submissions"
)

var Event = discord.SlashCommandCreate{
	Name:        "event",
	Description: "Fortune of the Red Dragon",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "submit",
			Description: "Submit proof that you completed a quest",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:         "quest",
					Description:  "The quest you completed",
					Required:     true,
					Autocomplete: true,
					MinValue:     &[]int{1}[0],
				},
				discord.ApplicationCommandOptionAttachment{
					Name:        "proof",
					Description: "A screenshot proving completion",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "note",
					Description: "Anything the reviewers should know",
					Required:    false,
					MaxLength:   &[]int{500}[0],
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "open",
			Description: "Open one of your red envelopes",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "daily",
			Description: "Claim your free daily envelope",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "balance",
			Description: "Show your envelopes, points and dragon marks",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "leaderboard",
			Description: "Show the fortune leaderboard",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "quests",
			Description: "List the quests that are open",
		},
	},
}

// SubmitHandler takes a quest id and an image attachment and files a PENDING
// submission for review.
func SubmitHandler(b *fortunebot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if err := requireChannel(b.Cfg.Channels.Submissions, e.ChannelID()); err != nil {
			return utils.EH.RespondError(e, err)
		}

		data := e.SlashCommandInteractionData()
		proof := data.Attachment("proof")
		note, _ := data.OptString("note")

		if err := e.DeferCreateMessage(true); err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		sub, err := b.Submissions.Submit(ctx, submissions.SubmitRequest{
			UserID:       e.User().ID.String(),
			QuestID:      int64(data.Int("quest")),
			ProofURL:     proof.URL,
			ProofIsImage: isImage(proof),
			Note:         note,
		})
		if err != nil {
			return utils.EH.FollowupError(e, err)
		}

		_, err = e.CreateFollowupMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Description: fmt.Sprintf("📮 Submission **#%d** received! Staff will review it soon.", sub.ID),
				Color:       utils.SuccessColor,
			}},
			Flags: discord.MessageFlagEphemeral,
		})
		return err
	}
}

// QuestAutocomplete suggests active quests matching what was typed.
func QuestAutocomplete(b *fortunebot.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		focused := e.Data.Focused()
		if focused.Name != "quest" {
			return e.AutocompleteResult(nil)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		found, err := b.Quests.Search(ctx, focusedText(focused.Value), quests.DefaultSearchLimit)
		if err != nil {
			slog.Error("Failed to search quests",
				slog.String("type", "db"),
				slog.Any("error", err),
			)
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}
		return e.AutocompleteResult(questChoices(found))
	}
}

func questChoices(list []*quests.Quest) []discord.AutocompleteChoice {
	choices := make([]discord.AutocompleteChoice, 0, min(len(list), quests.DefaultSearchLimit))
	for _, q := range list {
		if len(choices) == quests.DefaultSearchLimit {
			break
		}
		name := q.Label()
		if r := []rune(name); len(r) > 100 {
			name = string(r[:100])
		}
		choices = append(choices, discord.AutocompleteChoiceInt{
			Name:  name,
			Value: int(q.ID),
		})
	}
	return choices
}

func OpenHandler(b *fortunebot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if err := requireChannel(b.Cfg.Channels.Envelopes, e.ChannelID()); err != nil {
			return utils.EH.RespondError(e, err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		userID := e.User().ID.String()
		res, err := b.Draw.Open(ctx, userID)
		if err != nil {
			return utils.EH.RespondError(e, err)
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{drawEmbed(userID, res)},
		})
	}
}

func DailyHandler(b *fortunebot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		res, err := b.Daily.Claim(ctx, e.User().ID.String())
		if err != nil {
			return utils.EH.RespondError(e, err)
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: "🌅 Daily gift",
				Description: fmt.Sprintf("You received **%d** 🧧\n%s\nCome back <t:%d:R>.",
					res.Granted, balanceLine(res.Balance), res.Next.Unix()),
				Color: utils.FortuneColor,
			}},
			Flags: discord.MessageFlagEphemeral,
		})
	}
}

func BalanceHandler(b *fortunebot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		userID := e.User().ID.String()
		bal, err := b.Ledger.Balance(ctx, userID)
		if err != nil {
			return utils.EH.RespondError(e, err)
		}

		history, err := b.Submissions.ListByUser(ctx, userID, submissions.DefaultHistorySize)
		if err != nil {
			slog.Warn("Failed to load submission history",
				slog.String("type", "db"),
				slog.String("user_id", userID),
				slog.Any("error", err),
			)
		}

		var wait time.Duration
		if b.DrawCooldown != nil {
			wait = b.DrawCooldown.Remaining(userID)
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{balanceEmbed(userID, bal, history, wait)},
			Flags:  discord.MessageFlagEphemeral,
		})
	}
}

func LeaderboardHandler(b *fortunebot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		total, err := b.Ledger.Count(ctx)
		if err != nil {
			return utils.EH.RespondError(e, err)
		}
		pages := leaderboardPages(total)

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				pageCtx, cancel := commandContext()
				defer cancel()

				rows, err := b.Ledger.Top(pageCtx, leaderboardPageSize, page*leaderboardPageSize)
				if err != nil {
					slog.Error("Failed to load leaderboard page",
						slog.String("type", "db"),
						slog.Int("page", page),
						slog.Any("error", err),
					)
					embed.SetTitle("🏆 Fortune Leaderboard").
						SetDescription(utils.UserMessage(err)).
						SetColor(utils.ErrorColor)
					return
				}

				embed.
					SetTitle("🏆 Fortune Leaderboard").
					SetDescription(leaderboardDescription(rows)).
					SetColor(utils.GoldColor).
					SetFooterText("Page " + strconv.Itoa(page+1) + "/" + strconv.Itoa(pages))
			},
			Pages:      pages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

func QuestsHandler(b *fortunebot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		list, err := b.Quests.ListActive(ctx, 0)
		if err != nil {
			return utils.EH.RespondError(e, err)
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{questListEmbed(list)},
			Flags:  discord.MessageFlagEphemeral,
		})
	}
}
