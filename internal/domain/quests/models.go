package quests

import (
	"strconv"
	"time"

	"github.com/redlantern/fortunebot/internal/gateways/database/models"
)

// Bounds is the inclusive range a quest reward must fall in.
type Bounds struct {
	Min int
	Max int
}

var DefaultBounds = Bounds{Min: 1, Max: 10}

func (b Bounds) Contains(n int) bool {
	return n >= b.Min && n <= b.Max
}

type Quest struct {
	ID              int64
	Title           string
	Body            string
	BonusText       string
	RewardEnvelopes int
	Active          bool
	// ChannelID and MessageID point at the announcement, once posted.
	ChannelID string
	MessageID string
	CreatedBy string
	CreatedAt time.Time
	ClosedAt  time.Time
}

func (q *Quest) HasOrigin() bool {
	return q.ChannelID != "" && q.MessageID != ""
}

// Label is the short form used in autocomplete choices and ledger lines.
func (q *Quest) Label() string {
	return "#" + strconv.FormatInt(q.ID, 10) + " " + q.Title
}

type NewQuest struct {
	Title           string
	Body            string
	Bonus           string
	RewardEnvelopes int
	CreatedBy       string
}

func toQuest(m *models.Quest) *Quest {
	return &Quest{
		ID:              m.ID,
		Title:           m.Title,
		Body:            m.Body,
		BonusText:       m.BonusText,
		RewardEnvelopes: m.RewardEnvelopes,
		Active:          m.Active,
		ChannelID:       m.ChannelID,
		MessageID:       m.MessageID,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
		ClosedAt:        m.ClosedAt.Time,
	}
}

// searchItems adapts a quest list to fuzzy.Source.
type searchItems []*Quest

func (s searchItems) String(i int) string {
	return s[i].Label()
}

func (s searchItems) Len() int {
	return len(s)
}
