package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	SubmissionPending  = "PENDING"
	SubmissionApproved = "APPROVED"
	SubmissionRejected = "REJECTED"
	SubmissionRevoked  = "REVOKED"
)

type Submission struct {
	bun.BaseModel `bun:"table:event_submissions,alias:s"`

	ID                     int64        `bun:"id,pk,autoincrement"`
	UserID                 string       `bun:"user_id,notnull"`
	QuestID                int64        `bun:"quest_id,notnull"`
	ProofURL               string       `bun:"proof_url,notnull"`
	ArchivedProofURL       string       `bun:"archived_proof_url,nullzero"`
	Note                   string       `bun:"note,nullzero"`
	Status                 string       `bun:"status,notnull"`
	RewardEnvelopesAwarded int          `bun:"reward_envelopes_awarded,notnull,default:0"`
	ReviewerID             string       `bun:"reviewer_id,nullzero"`
	ReviewedAt             bun.NullTime `bun:"reviewed_at"`
	RevokedBy              string       `bun:"revoked_by,nullzero"`
	RevokedAt              bun.NullTime `bun:"revoked_at"`
	ChannelID              string       `bun:"channel_id,nullzero"`
	MessageID              string       `bun:"message_id,nullzero"`
	CreatedAt              time.Time    `bun:"created_at,notnull,default:current_timestamp"`
}

// Open reports whether the submission still blocks a new one for the same quest.
func (s *Submission) Open() bool {
	return s.Status == SubmissionPending || s.Status == SubmissionApproved
}
