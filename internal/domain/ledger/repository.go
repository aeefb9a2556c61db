package ledger

import (
	"context"

	"github.com/redlantern/fortunebot/internal/gateways/database/models"
)

type Repository interface {
	Ensure(ctx context.Context, userID string) error
	GetByID(ctx context.Context, userID string) (*models.EventUser, error)
	AddEnvelopes(ctx context.Context, userID string, amount int64) error
	DebitEnvelopes(ctx context.Context, userID string, amount int64) (bool, error)
	DebitUpTo(ctx context.Context, userID string, amount int64) (int64, error)
	AddReward(ctx context.Context, userID string, points, dragonMarks int64) error
	AddClamped(ctx context.Context, userID, column string, delta int64) error
	Top(ctx context.Context, limit, offset int) ([]*models.EventUser, error)
	Count(ctx context.Context) (int, error)
}

// Transactor runs fn in one transaction carried on ctx.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
