package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/redlantern/fortunebot/fortunebot/utils"
	"github.com/redlantern/fortunebot/internal/domain/draw"
	"github.com/redlantern/fortunebot/internal/domain/ledger"
	"github.com/redlantern/fortunebot/internal/domain/quests"
	"github.com/redlantern/fortunebot/internal/domain/submissions"
)

const leaderboardPageSize = 10

var medals = []string{"🥇", "🥈", "🥉"}

func balanceLine(bal ledger.Balance) string {
	return fmt.Sprintf("🧧 %d  •  ✨ %d points  •  🐉 %d", bal.Envelopes, bal.Points, bal.DragonMarks)
}

func drawEmbed(userID string, res *draw.Result) discord.Embed {
	tier := res.Tier
	color := utils.FortuneColor
	if tier.DragonMark {
		color = utils.GoldColor
	}

	builder := discord.NewEmbedBuilder().
		SetTitle("🧧 " + tier.Label()).
		SetDescription(fmt.Sprintf("%s opened a red envelope.\n*%s*", mention(userID), tier.Flavor)).
		SetColor(color).
		AddField("Reward", fmt.Sprintf("+%d points", tier.Points), true)

	if tier.DragonMark {
		builder.AddField("Dragon Mark", "🐉 +1", true)
	}
	builder.AddField("Balance", balanceLine(res.Balance), false)
	return builder.Build()
}

func balanceEmbed(userID string, bal ledger.Balance, history []*submissions.Submission, drawWait time.Duration) discord.Embed {
	builder := discord.NewEmbedBuilder().
		SetTitle("🏮 Your fortune").
		SetDescription(mention(userID) + "\n" + balanceLine(bal)).
		SetColor(utils.FortuneColor)

	if drawWait > 0 {
		builder.AddField("Next envelope", "in "+utils.FormatWait(drawWait), true)
	}

	if len(history) > 0 {
		var sb strings.Builder
		for _, sub := range history {
			sb.WriteString(fmt.Sprintf("`#%d` quest #%d • %s\n", sub.ID, sub.QuestID, statusBadge(sub.Status)))
		}
		builder.AddField("Recent submissions", sb.String(), false)
	}
	return builder.Build()
}

func statusBadge(s submissions.Status) string {
	switch s {
	case submissions.StatusApproved:
		return "✅ approved"
	case submissions.StatusRejected:
		return "❌ rejected"
	case submissions.StatusRevoked:
		return "↩️ revoked"
	default:
		return "🕒 pending"
	}
}

func leaderboardPages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + leaderboardPageSize - 1) / leaderboardPageSize
}

func leaderboardDescription(rows []ledger.Standing) string {
	if len(rows) == 0 {
		return "Nobody has opened an envelope yet."
	}

	var sb strings.Builder
	for _, row := range rows {
		rank := fmt.Sprintf("`#%d`", row.Rank)
		if row.Rank <= len(medals) {
			rank = medals[row.Rank-1]
		}
		sb.WriteString(fmt.Sprintf("%s %s • **%d** points • 🐉 %d • 🧧 %d\n",
			rank, mention(row.UserID), row.Points, row.DragonMarks, row.Envelopes))
	}
	return sb.String()
}

func questListEmbed(list []*quests.Quest) discord.Embed {
	builder := discord.NewEmbedBuilder().
		SetTitle("📜 Active quests").
		SetColor(utils.FortuneColor)

	if len(list) == 0 {
		return builder.SetDescription("No quests are open right now.").Build()
	}

	var sb strings.Builder
	for _, q := range list {
		sb.WriteString(fmt.Sprintf("**%s** • %d 🧧", q.Label(), q.RewardEnvelopes))
		if q.BonusText != "" {
			sb.WriteString(" • " + q.BonusText)
		}
		sb.WriteString("\n")
	}
	return builder.SetDescription(sb.String()).Build()
}

func pendingDescription(list []*submissions.Submission) string {
	if len(list) == 0 {
		return "The review queue is empty."
	}

	var sb strings.Builder
	for _, sub := range list {
		link := "not posted"
		if !sub.Origin.IsZero() {
			link = fmt.Sprintf("<#%s>", sub.Origin.ChannelID)
		}
		sb.WriteString(fmt.Sprintf("`#%d` %s • quest #%d • %s\n", sub.ID, mention(sub.UserID), sub.QuestID, link))
	}
	return sb.String()
}

func revokeMessage(res *submissions.RevokeResult) string {
	msg := fmt.Sprintf("↩️ Submission #%d revoked. Recovered %d of %d 🧧 from %s.",
		res.Submission.ID, res.Recovered, res.Awarded, mention(res.Submission.UserID))
	if res.Outcome == submissions.PartiallyOrNotRecovered {
		msg += "\n⚠️ The player had already opened some of those envelopes."
	}
	return msg
}

func adjustmentMessage(adj ledger.Adjustment) string {
	sign := "+"
	if adj.Delta < 0 {
		sign = ""
	}
	return fmt.Sprintf("🛠️ %s of %s: %d → %d (%s%d)",
		adj.Field, mention(adj.UserID), adj.Before, adj.After, sign, adj.Delta)
}
