// Package presenter renders the event onto Discord: review messages with
// their buttons, quest announcements and the ledger channel.
package presenter

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/redlantern/fortunebot/internal/domain/audit"
	"github.com/redlantern/fortunebot/internal/domain/quests"
	"github.com/redlantern/fortunebot/internal/domain/submissions"
)

// Messenger is the slice of the REST client the presenter needs.
type Messenger interface {
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
	UpdateMessage(channelID snowflake.ID, messageID snowflake.ID, messageUpdate discord.MessageUpdate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// QuestLookup resolves the quest a review message belongs to.
type QuestLookup interface {
	Get(ctx context.Context, id int64) (*quests.Quest, error)
}

type Channels struct {
	Quests snowflake.ID
	Review snowflake.ID
	// Ledger is optional; without it ledger events are only logged.
	Ledger snowflake.ID
}

type Presenter struct {
	messenger Messenger
	quests    QuestLookup
	channels  Channels
}

func New(messenger Messenger, lookup QuestLookup, channels Channels) *Presenter {
	return &Presenter{
		messenger: messenger,
		quests:    lookup,
		channels:  channels,
	}
}

// SetQuests breaks the construction cycle with the quest service, which
// needs the presenter as its recorder.
func (p *Presenter) SetQuests(lookup QuestLookup) {
	p.quests = lookup
}

// noPings keeps ledger and review lines from notifying the users they name.
var noPings = &discord.AllowedMentions{}

func (p *Presenter) PostReview(ctx context.Context, sub *submissions.Submission, quest *quests.Quest) (submissions.MessageRef, error) {
	if p.channels.Review == 0 {
		return submissions.MessageRef{}, fmt.Errorf("no review channel configured")
	}

	msg, err := p.messenger.CreateMessage(p.channels.Review, discord.MessageCreate{
		Embeds:          []discord.Embed{ReviewEmbed(sub, quest)},
		Components:      ReviewComponents(sub),
		AllowedMentions: noPings,
	}, rest.WithCtx(ctx))
	if err != nil {
		return submissions.MessageRef{}, fmt.Errorf("failed to post review message: %w", err)
	}

	return submissions.MessageRef{
		ChannelID: msg.ChannelID.String(),
		MessageID: msg.ID.String(),
	}, nil
}

// UpdateReview re-renders the review message for the submission's current
// status. Buttons are disabled once it leaves PENDING.
func (p *Presenter) UpdateReview(ctx context.Context, sub *submissions.Submission) error {
	channelID, messageID, err := parseRef(sub.Origin.ChannelID, sub.Origin.MessageID)
	if err != nil {
		return err
	}

	var quest *quests.Quest
	if p.quests != nil {
		if q, err := p.quests.Get(ctx, sub.QuestID); err == nil {
			quest = q
		}
	}

	embeds := []discord.Embed{ReviewEmbed(sub, quest)}
	components := ReviewComponents(sub)
	_, err = p.messenger.UpdateMessage(channelID, messageID, discord.MessageUpdate{
		Embeds:          &embeds,
		Components:      &components,
		AllowedMentions: noPings,
	}, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to update review message: %w", err)
	}
	return nil
}

func (p *Presenter) PostQuest(ctx context.Context, quest *quests.Quest) (string, string, error) {
	if p.channels.Quests == 0 {
		return "", "", fmt.Errorf("no quest channel configured")
	}

	msg, err := p.messenger.CreateMessage(p.channels.Quests, discord.MessageCreate{
		Embeds: []discord.Embed{QuestEmbed(quest)},
	}, rest.WithCtx(ctx))
	if err != nil {
		return "", "", fmt.Errorf("failed to post quest: %w", err)
	}
	return msg.ChannelID.String(), msg.ID.String(), nil
}

// CloseQuest marks the announcement closed. Quests that were never announced
// are left alone.
func (p *Presenter) CloseQuest(ctx context.Context, quest *quests.Quest) error {
	if !quest.HasOrigin() {
		return nil
	}
	channelID, messageID, err := parseRef(quest.ChannelID, quest.MessageID)
	if err != nil {
		return err
	}

	embeds := []discord.Embed{QuestEmbed(quest)}
	if _, err := p.messenger.UpdateMessage(channelID, messageID, discord.MessageUpdate{
		Embeds: &embeds,
	}, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to update quest announcement: %w", err)
	}
	return nil
}

// Record posts the event to the ledger channel.
func (p *Presenter) Record(ctx context.Context, event audit.Event) error {
	if p.channels.Ledger == 0 {
		return nil
	}

	_, err := p.messenger.CreateMessage(p.channels.Ledger, discord.MessageCreate{
		Content:         event.String(),
		AllowedMentions: noPings,
	}, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to post ledger line: %w", err)
	}
	return nil
}

func parseRef(channel, message string) (snowflake.ID, snowflake.ID, error) {
	channelID, err := snowflake.Parse(channel)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid channel id %q: %w", channel, err)
	}
	messageID, err := snowflake.Parse(message)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid message id %q: %w", message, err)
	}
	return channelID, messageID, nil
}
