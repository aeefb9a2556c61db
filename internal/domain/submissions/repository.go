package submissions

import (
	"context"
	"time"

	"github.com/redlantern/fortunebot/internal/domain/ledger"
	"github.com/redlantern/fortunebot/internal/domain/quests"
	"github.com/redlantern/fortunebot/internal/gateways/database/models"
)

type Repository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	HasOpen(ctx context.Context, userID string, questID int64) (bool, error)
	Approve(ctx context.Context, id int64, reviewerID string, awarded int, at time.Time) (bool, error)
	Reject(ctx context.Context, id int64, reviewerID string, at time.Time) (bool, error)
	Revoke(ctx context.Context, id int64, actorID string, at time.Time) (bool, error)
	SetOrigin(ctx context.Context, id int64, channelID, messageID string) error
	SetArchivedProof(ctx context.Context, id int64, url string) error
	ListByStatus(ctx context.Context, status string, limit int) ([]*models.Submission, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.Submission, error)
}

type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Quests interface {
	Get(ctx context.Context, id int64) (*quests.Quest, error)
	Reload(ctx context.Context, id int64) (*quests.Quest, error)
}

// Ledger is the part of the ledger review decisions drive.
type Ledger interface {
	Balance(ctx context.Context, userID string) (ledger.Balance, error)
	CreditEnvelopes(ctx context.Context, userID string, amount int64) error
	DebitUpTo(ctx context.Context, userID string, amount int64) (int64, error)
}

// Presenter keeps the review message in step with the submission. It is
// called after every committed transition.
type Presenter interface {
	PostReview(ctx context.Context, submission *Submission, quest *quests.Quest) (MessageRef, error)
	UpdateReview(ctx context.Context, submission *Submission) error
}

// Archiver copies a proof somewhere durable and returns its new URL.
type Archiver interface {
	Archive(ctx context.Context, submission *Submission, quest *quests.Quest) (string, error)
}
