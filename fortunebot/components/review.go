package components

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/redlantern/fortunebot/fortunebot"
	"github.com/redlantern/fortunebot/fortunebot/presenter"
	"github.com/redlantern/fortunebot/fortunebot/utils"
	"github.com/redlantern/fortunebot/internal/domain/errs"
)

const ReviewPrefix = "/review/"

// ParseReviewID splits "/review/{action}/{id}".
func ParseReviewID(customID string) (string, int64, error) {
	rest, ok := strings.CutPrefix(customID, ReviewPrefix)
	if !ok {
		return "", 0, errs.Newf(errs.Validation, "", "unknown review button %q", customID)
	}

	action, rawID, ok := strings.Cut(rest, "/")
	if !ok || (action != presenter.ActionApprove && action != presenter.ActionReject) {
		return "", 0, errs.Newf(errs.Validation, "", "unknown review button %q", customID)
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return "", 0, errs.Newf(errs.Validation, "", "unknown review button %q", customID)
	}
	return action, id, nil
}

// ReviewHandler handles the approve and reject buttons on review messages.
// The review message itself is re-rendered by the presenter; the clicking
// staff member gets a private confirmation.
func ReviewHandler(b *fortunebot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		action, id, err := ParseReviewID(e.Data.CustomID())
		if err != nil {
			return utils.EH.RespondError(e, err)
		}
		if err := b.RequireStaff(e.Member()); err != nil {
			return utils.EH.RespondError(e, err)
		}

		if err := e.DeferCreateMessage(true); err != nil {
			return err
		}

		// Approval also archives the proof, on a deadline of its own.
		ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()

		reviewerID := e.User().ID.String()
		var msg string
		switch action {
		case presenter.ActionApprove:
			res, err := b.Submissions.Approve(ctx, id, reviewerID)
			if err != nil {
				return utils.EH.FollowupError(e, err)
			}
			msg = fmt.Sprintf("✅ Approved submission #%d. <@%s> received %d 🧧 (now %d).",
				id, res.Submission.UserID, res.Awarded, res.Balance.Envelopes)
		default:
			sub, err := b.Submissions.Reject(ctx, id, reviewerID)
			if err != nil {
				return utils.EH.FollowupError(e, err)
			}
			msg = fmt.Sprintf("❌ Rejected submission #%d from <@%s>.", id, sub.UserID)
		}

		_, err = e.CreateFollowupMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{Description: msg, Color: utils.InfoColor}},
			Flags:  discord.MessageFlagEphemeral,
		})
		return err
	}
}
