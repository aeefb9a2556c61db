package repositories

import (
	"context"
	"time"

	"github.com/redlantern/fortunebot/internal/gateways/database/models"
	"github.com/uptrace/bun"
)

type DailyClaimRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.DailyClaim, error)
	Upsert(ctx context.Context, userID string, at time.Time) error
	ClaimIfDue(ctx context.Context, userID string, at, cutoff time.Time) (bool, error)
}

type dailyClaimRepository struct {
	*BaseRepository
}

func NewDailyClaimRepository(db *bun.DB) DailyClaimRepository {
	return &dailyClaimRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *dailyClaimRepository) GetByUserID(ctx context.Context, userID string) (*models.DailyClaim, error) {
	claim := new(models.DailyClaim)
	err := r.conn(ctx).NewSelect().
		Model(claim).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "daily_claim", userID, err)
	}
	return claim, nil
}

func (r *dailyClaimRepository) Upsert(ctx context.Context, userID string, at time.Time) error {
	_, err := r.conn(ctx).NewInsert().
		Model(&models.DailyClaim{UserID: userID, LastClaimAt: at.UTC()}).
		On("CONFLICT (user_id) DO UPDATE").
		Set("last_claim_at = EXCLUDED.last_claim_at").
		Exec(ctx)
	return r.HandleErrorWithID("upsert", "daily_claim", userID, err)
}

// ClaimIfDue stamps at as the user's last claim, but only when there is no
// previous claim or the previous one is not after cutoff. It reports whether
// the stamp was written; concurrent callers cannot both win.
func (r *dailyClaimRepository) ClaimIfDue(ctx context.Context, userID string, at, cutoff time.Time) (bool, error) {
	res, err := r.conn(ctx).NewInsert().
		Model(&models.DailyClaim{UserID: userID, LastClaimAt: at.UTC()}).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, r.HandleErrorWithID("claim", "daily_claim", userID, err)
	}
	if n, err := rowsAffected(res); err != nil {
		return false, r.HandleErrorWithID("claim", "daily_claim", userID, err)
	} else if n == 1 {
		return true, nil
	}

	res, err = r.conn(ctx).NewUpdate().
		Model((*models.DailyClaim)(nil)).
		Set("last_claim_at = ?", at.UTC()).
		Where("user_id = ?", userID).
		Where("last_claim_at <= ?", cutoff.UTC()).
		Exec(ctx)
	if err != nil {
		return false, r.HandleErrorWithID("claim", "daily_claim", userID, err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, r.HandleErrorWithID("claim", "daily_claim", userID, err)
	}
	return n == 1, nil
}
