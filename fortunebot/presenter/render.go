package presenter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/redlantern/fortunebot/fortunebot/utils"
	"github.com/redlantern/fortunebot/internal/domain/quests"
	"github.com/redlantern/fortunebot/internal/domain/submissions"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"

	closedColor = 0x2b2d31
)

// ReviewCustomID is the component ID of a review button.
func ReviewCustomID(action string, submissionID int64) string {
	return "/review/" + action + "/" + strconv.FormatInt(submissionID, 10)
}

func statusLine(sub *submissions.Submission) (string, int) {
	switch sub.Status {
	case submissions.StatusApproved:
		line := fmt.Sprintf("✅ Approved by <@%s> (+%d 🧧)", sub.ReviewerID, sub.RewardEnvelopesAwarded)
		return line, utils.SuccessColor
	case submissions.StatusRejected:
		return fmt.Sprintf("❌ Rejected by <@%s>", sub.ReviewerID), utils.ErrorColor
	case submissions.StatusRevoked:
		return fmt.Sprintf("↩️ Revoked by <@%s>", sub.RevokedBy), utils.WarningColor
	default:
		return "🕒 Pending review", utils.FortuneColor
	}
}

// ReviewEmbed renders a submission for the review channel. quest may be nil
// when it could not be loaded.
func ReviewEmbed(sub *submissions.Submission, quest *quests.Quest) discord.Embed {
	questLine := fmt.Sprintf("#%d", sub.QuestID)
	if quest != nil {
		questLine = quest.Label()
	}
	status, color := statusLine(sub)

	builder := discord.NewEmbedBuilder().
		SetTitle(fmt.Sprintf("📮 Submission #%d", sub.ID)).
		SetDescription(fmt.Sprintf("**Quest:** %s\n**Player:** <@%s>\n**Status:** %s", questLine, sub.UserID, status)).
		SetColor(color).
		SetImage(proofURL(sub))

	if !sub.CreatedAt.IsZero() {
		builder.SetTimestamp(sub.CreatedAt)
	}

	if note := strings.TrimSpace(sub.Note); note != "" {
		builder.AddField("Note", note, false)
	}
	if sub.ArchivedProofURL != "" {
		builder.AddField("Archived proof", sub.ArchivedProofURL, false)
	}
	return builder.Build()
}

func proofURL(sub *submissions.Submission) string {
	if sub.ArchivedProofURL != "" {
		return sub.ArchivedProofURL
	}
	return sub.ProofURL
}

// ReviewComponents are live only while the submission is pending.
func ReviewComponents(sub *submissions.Submission) []discord.ContainerComponent {
	settled := sub.Status != submissions.StatusPending
	return []discord.ContainerComponent{
		discord.NewActionRow(
			discord.NewSuccessButton("Approve", ReviewCustomID(ActionApprove, sub.ID)).WithDisabled(settled),
			discord.NewDangerButton("Reject", ReviewCustomID(ActionReject, sub.ID)).WithDisabled(settled),
		),
	}
}

// QuestEmbed renders a quest announcement.
func QuestEmbed(quest *quests.Quest) discord.Embed {
	builder := discord.NewEmbedBuilder().
		SetTitle("📜 " + quest.Label()).
		SetDescription(quest.Body).
		AddField("Reward", fmt.Sprintf("%d 🧧", quest.RewardEnvelopes), true)

	if !quest.CreatedAt.IsZero() {
		builder.SetTimestamp(quest.CreatedAt)
	}

	if quest.BonusText != "" {
		builder.AddField("Bonus", quest.BonusText, true)
	}

	if quest.Active {
		builder.SetColor(utils.FortuneColor).
			SetFooterText("Submit your proof with /event submit")
	} else {
		builder.SetColor(closedColor).
			AddField("Status", "🔒 Closed", true).
			SetFooterText("This quest no longer accepts submissions")
	}
	return builder.Build()
}
