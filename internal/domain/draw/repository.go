package draw

import (
	"context"
	"time"

	"github.com/redlantern/fortunebot/internal/domain/ledger"
)

// Ledger is what opening an envelope needs from the ledger.
type Ledger interface {
	Balance(ctx context.Context, userID string) (ledger.Balance, error)
	TryDebitEnvelope(ctx context.Context, userID string) (bool, error)
	ApplyReward(ctx context.Context, userID string, points int64, dragonMark bool) error
}

type Cooldown interface {
	Reserve(userID string) (bool, time.Duration)
	Release(userID string)
}

type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
