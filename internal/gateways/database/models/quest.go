package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Quest struct {
	bun.BaseModel `bun:"table:event_quests,alias:q"`

	ID              int64        `bun:"id,pk,autoincrement"`
	Title           string       `bun:"title,notnull"`
	Body            string       `bun:"body,notnull"`
	BonusText       string       `bun:"bonus_text,nullzero"`
	RewardEnvelopes int          `bun:"reward_envelopes,notnull"`
	Active          bool         `bun:"active,notnull"`
	ChannelID       string       `bun:"channel_id,nullzero"`
	MessageID       string       `bun:"message_id,nullzero"`
	CreatedBy       string       `bun:"created_by,notnull"`
	CreatedAt       time.Time    `bun:"created_at,notnull,default:current_timestamp"`
	ClosedAt        bun.NullTime `bun:"closed_at"`
}
