package submissions

import (
	"time"

	"github.com/redlantern/fortunebot/internal/domain/ledger"
	"github.com/redlantern/fortunebot/internal/domain/quests"
	"github.com/redlantern/fortunebot/internal/gateways/database/models"
)

type Status string

const (
	StatusPending  Status = models.SubmissionPending
	StatusApproved Status = models.SubmissionApproved
	StatusRejected Status = models.SubmissionRejected
	StatusRevoked  Status = models.SubmissionRevoked
)

// Terminal reports whether no further transition is legal.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusRevoked
}

// MessageRef is an opaque handle to a message posted by the presenter.
type MessageRef struct {
	ChannelID string
	MessageID string
}

func (r MessageRef) IsZero() bool {
	return r.ChannelID == "" || r.MessageID == ""
}

type Submission struct {
	ID               int64
	UserID           string
	QuestID          int64
	ProofURL         string
	ArchivedProofURL string
	Note             string
	Status           Status
	// RewardEnvelopesAwarded is what approval actually credited. Revocation
	// recovers exactly this amount.
	RewardEnvelopesAwarded int
	ReviewerID             string
	ReviewedAt             time.Time
	RevokedBy              string
	RevokedAt              time.Time
	Origin                 MessageRef
	CreatedAt              time.Time
}

type SubmitRequest struct {
	UserID       string
	QuestID      int64
	ProofURL     string
	ProofIsImage bool
	Note         string
}

type AwardResult struct {
	Submission *Submission
	Quest      *quests.Quest
	Awarded    int64
	Balance    ledger.Balance
}

type RecoveryOutcome string

const (
	FullyRecovered          RecoveryOutcome = "fully_recovered"
	PartiallyOrNotRecovered RecoveryOutcome = "partially_or_not_recovered"
)

type RevokeResult struct {
	Submission *Submission
	Awarded    int64
	Recovered  int64
	Outcome    RecoveryOutcome
}

func toSubmission(m *models.Submission) *Submission {
	return &Submission{
		ID:                     m.ID,
		UserID:                 m.UserID,
		QuestID:                m.QuestID,
		ProofURL:               m.ProofURL,
		ArchivedProofURL:       m.ArchivedProofURL,
		Note:                   m.Note,
		Status:                 Status(m.Status),
		RewardEnvelopesAwarded: m.RewardEnvelopesAwarded,
		ReviewerID:             m.ReviewerID,
		ReviewedAt:             m.ReviewedAt.Time,
		RevokedBy:              m.RevokedBy,
		RevokedAt:              m.RevokedAt.Time,
		Origin:                 MessageRef{ChannelID: m.ChannelID, MessageID: m.MessageID},
		CreatedAt:              m.CreatedAt,
	}
}

func toSubmissions(list []*models.Submission) []*Submission {
	out := make([]*Submission, 0, len(list))
	for _, m := range list {
		out = append(out, toSubmission(m))
	}
	return out
}
