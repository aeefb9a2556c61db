package cooldown

import (
	"context"
	"time"

	"github.com/redlantern/fortunebot/internal/domain/ledger"
	"github.com/redlantern/fortunebot/internal/gateways/database/models"
)

type ClaimRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.DailyClaim, error)
	Upsert(ctx context.Context, userID string, at time.Time) error
	ClaimIfDue(ctx context.Context, userID string, at, cutoff time.Time) (bool, error)
}

// Ledger is the part of the ledger the daily claim credits.
type Ledger interface {
	Balance(ctx context.Context, userID string) (ledger.Balance, error)
	CreditEnvelopes(ctx context.Context, userID string, amount int64) error
}

type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
