package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/redlantern/fortunebot/fortunebot"
	"github.com/redlantern/fortunebot/fortunebot/utils"
	"github.com/redlantern/fortunebot/internal/domain/ledger"
	"github.com/redlantern/fortunebot/internal/domain/quests"
)

var fieldChoices = func() []discord.ApplicationCommandOptionChoiceString {
	choices := make([]discord.ApplicationCommandOptionChoiceString, 0, len(ledger.Fields))
	for _, f := range ledger.Fields {
		choices = append(choices, discord.ApplicationCommandOptionChoiceString{
			Name:  strings.ReplaceAll(string(f), "_", " "),
			Value: string(f),
		})
	}
	return choices
}()

var Staff = discord.SlashCommandCreate{
	Name:        "staff",
	Description: "Event staff tools",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "post-quest",
			Description: "Create and announce a quest",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "title",
					Description: "Quest title",
					Required:    true,
					MaxLength:   &[]int{200}[0],
				},
				discord.ApplicationCommandOptionString{
					Name:        "body",
					Description: "What players have to do",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "reward",
					Description: "Envelopes awarded on approval",
					Required:    true,
					MinValue:    &[]int{1}[0],
				},
				discord.ApplicationCommandOptionString{
					Name:        "bonus",
					Description: "Optional bonus text shown on the announcement",
					Required:    false,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "close-quest",
			Description: "Stop accepting submissions for a quest",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:         "quest",
					Description:  "The quest to close",
					Required:     true,
					Autocomplete: true,
					MinValue:     &[]int{1}[0],
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "revoke",
			Description: "Revoke an approved submission and recover its envelopes",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "submission",
					Description: "Submission ID",
					Required:    true,
					MinValue:    &[]int{1}[0],
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "adjust",
			Description: "Correct a player's ledger",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The player",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "field",
					Description: "Which balance to change",
					Required:    true,
					Choices:     fieldChoices,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "delta",
					Description: "Amount to add (negative to remove)",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "pending",
			Description: "List submissions waiting for review",
		},
	},
}

func PostQuestHandler(b *fortunebot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if err := b.RequireStaff(e.Member()); err != nil {
			return utils.EH.RespondError(e, err)
		}

		data := e.SlashCommandInteractionData()
		bonus, _ := data.OptString("bonus")

		if err := e.DeferCreateMessage(true); err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		quest, err := b.Quests.Create(ctx, quests.NewQuest{
			Title:           data.String("title"),
			Body:            data.String("body"),
			Bonus:           bonus,
			RewardEnvelopes: data.Int("reward"),
			CreatedBy:       e.User().ID.String(),
		})
		if err != nil {
			return utils.EH.FollowupError(e, err)
		}

		msg := fmt.Sprintf("📜 Quest **%s** created.", quest.Label())
		if b.QuestBoard != nil {
			channelID, messageID, err := b.QuestBoard.PostQuest(ctx, quest)
			if err != nil {
				slog.Error("Failed to announce quest",
					slog.String("type", "sys"),
					slog.Int64("quest_id", quest.ID),
					slog.Any("error", err),
				)
				msg += "\n⚠️ The announcement could not be posted."
			} else if err := b.Quests.SetOrigin(ctx, quest.ID, channelID, messageID); err != nil {
				slog.Error("Failed to store quest announcement",
					slog.String("type", "db"),
					slog.Int64("quest_id", quest.ID),
					slog.Any("error", err),
				)
			}
		}

		_, err = e.CreateFollowupMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{Description: msg, Color: utils.SuccessColor}},
			Flags:  discord.MessageFlagEphemeral,
		})
		return err
	}
}

// CloseQuestAutocomplete only offers quests to staff.
func CloseQuestAutocomplete(b *fortunebot.Bot) handler.AutocompleteHandler {
	search := QuestAutocomplete(b)
	return func(e *handler.AutocompleteEvent) error {
		if !b.IsStaff(e.Member()) {
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}
		return search(e)
	}
}

func CloseQuestHandler(b *fortunebot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if err := b.RequireStaff(e.Member()); err != nil {
			return utils.EH.RespondError(e, err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		quest, changed, err := b.Quests.Close(ctx, e.User().ID.String(), int64(e.SlashCommandInteractionData().Int("quest")))
		if err != nil {
			return utils.EH.RespondError(e, err)
		}

		if !changed {
			return utils.EH.CreateEphemeralInfo(e, fmt.Sprintf("Quest **%s** was already closed.", quest.Label()))
		}

		if b.QuestBoard != nil {
			if err := b.QuestBoard.CloseQuest(ctx, quest); err != nil {
				slog.Error("Failed to update quest announcement",
					slog.String("type", "sys"),
					slog.Int64("quest_id", quest.ID),
					slog.Any("error", err),
				)
			}
		}
		return utils.EH.CreateEphemeralInfo(e, fmt.Sprintf("🔒 Quest **%s** is closed.", quest.Label()))
	}
}

func RevokeHandler(b *fortunebot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if err := b.RequireStaff(e.Member()); err != nil {
			return utils.EH.RespondError(e, err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		res, err := b.Submissions.Revoke(ctx, int64(e.SlashCommandInteractionData().Int("submission")), e.User().ID.String())
		if err != nil {
			return utils.EH.RespondError(e, err)
		}
		return utils.EH.CreateEphemeralInfo(e, revokeMessage(res))
	}
}

func AdjustHandler(b *fortunebot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if err := b.RequireStaff(e.Member()); err != nil {
			return utils.EH.RespondError(e, err)
		}

		data := e.SlashCommandInteractionData()
		field, err := ledger.ParseField(data.String("field"))
		if err != nil {
			return utils.EH.RespondError(e, err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		adj, err := b.Ledger.Adjust(ctx, e.User().ID.String(), data.User("user").ID.String(), field, int64(data.Int("delta")))
		if err != nil {
			return utils.EH.RespondError(e, err)
		}
		return utils.EH.CreateEphemeralInfo(e, adjustmentMessage(adj))
	}
}

func PendingHandler(b *fortunebot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if err := b.RequireStaff(e.Member()); err != nil {
			return utils.EH.RespondError(e, err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		list, err := b.Submissions.ListPending(ctx)
		if err != nil {
			return utils.EH.RespondError(e, err)
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("🕒 Pending review (%d)", len(list)),
				Description: truncate(pendingDescription(list), 4000),
				Color:       utils.InfoColor,
			}},
			Flags: discord.MessageFlagEphemeral,
		})
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := strings.LastIndex(s[:n], "\n")
	if cut <= 0 {
		cut = n
	}
	return s[:cut] + "\n…"
}
