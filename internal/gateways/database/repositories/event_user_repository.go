package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redlantern/fortunebot/internal/gateways/database/models"
	"github.com/uptrace/bun"
)

// debitRetries bounds the compare-and-swap loop of DebitUpTo.
const debitRetries = 3

type EventUserRepository interface {
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

type eventUserRepository struct {
	*BaseRepository
}

func NewEventUserRepository(db *bun.DB) EventUserRepository {
	return &eventUserRepository{BaseRepository: NewBaseRepository(db)}
}

// Ensure creates a zeroed ledger row unless one exists.
func (r *eventUserRepository) Ensure(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	user := &models.EventUser{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := r.conn(ctx).NewInsert().
		Model(user).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	return r.HandleErrorWithID("ensure", "event_user", userID, err)
}

func (r *eventUserRepository) GetByID(ctx context.Context, userID string) (*models.EventUser, error) {
	user := new(models.EventUser)
	err := r.conn(ctx).NewSelect().
		Model(user).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "event_user", userID, err)
	}
	return user, nil
}

func (r *eventUserRepository) AddEnvelopes(ctx context.Context, userID string, amount int64) error {
	_, err := r.conn(ctx).NewUpdate().
		Model((*models.EventUser)(nil)).
		Set("envelopes = envelopes + ?", amount).
		Set("updated_at = ?", time.Now().UTC()).
		Where("user_id = ?", userID).
		Exec(ctx)
	return r.HandleErrorWithID("add_envelopes", "event_user", userID, err)
}

// DebitEnvelopes removes amount envelopes in a single conditional update and
// reports false, without mutating, when the balance is short.
func (r *eventUserRepository) DebitEnvelopes(ctx context.Context, userID string, amount int64) (bool, error) {
	res, err := r.conn(ctx).NewUpdate().
		Model((*models.EventUser)(nil)).
		Set("envelopes = envelopes - ?", amount).
		Set("updated_at = ?", time.Now().UTC()).
		Where("user_id = ?", userID).
		Where("envelopes >= ?", amount).
		Exec(ctx)
	if err != nil {
		return false, r.HandleErrorWithID("debit_envelopes", "event_user", userID, err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, r.HandleErrorWithID("debit_envelopes", "event_user", userID, err)
	}
	return n == 1, nil
}

// DebitUpTo removes as many envelopes as the user holds, at most amount, and
// returns how many were taken.
func (r *eventUserRepository) DebitUpTo(ctx context.Context, userID string, amount int64) (int64, error) {
	for attempt := 0; attempt < debitRetries; attempt++ {
		user, err := r.GetByID(ctx, userID)
		if err != nil {
			if IsNotFound(err) {
				return 0, nil
			}
			return 0, err
		}

		take := min(amount, user.Envelopes)
		if take <= 0 {
			return 0, nil
		}

		res, err := r.conn(ctx).NewUpdate().
			Model((*models.EventUser)(nil)).
			Set("envelopes = envelopes - ?", take).
			Set("updated_at = ?", time.Now().UTC()).
			Where("user_id = ?", userID).
			Where("envelopes = ?", user.Envelopes).
			Exec(ctx)
		if err != nil {
			return 0, r.HandleErrorWithID("debit_up_to", "event_user", userID, err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return 0, r.HandleErrorWithID("debit_up_to", "event_user", userID, err)
		}
		if n == 1 {
			return take, nil
		}
	}
	return 0, &RepositoryError{
		Operation: "debit_up_to",
		Entity:    "event_user",
		Err:       fmt.Errorf("balance of %s kept changing", userID),
	}
}

func (r *eventUserRepository) AddReward(ctx context.Context, userID string, points, dragonMarks int64) error {
	_, err := r.conn(ctx).NewUpdate().
		Model((*models.EventUser)(nil)).
		Set("points = points + ?", points).
		Set("dragon_marks = dragon_marks + ?", dragonMarks).
		Set("updated_at = ?", time.Now().UTC()).
		Where("user_id = ?", userID).
		Exec(ctx)
	return r.HandleErrorWithID("add_reward", "event_user", userID, err)
}

// AddClamped adds delta to column, flooring the result at zero.
func (r *eventUserRepository) AddClamped(ctx context.Context, userID, column string, delta int64) error {
	switch column {
	case models.ColumnEnvelopes, models.ColumnPoints, models.ColumnDragonMarks:
	default:
		return fmt.Errorf("column %q cannot be adjusted", column)
	}

	col := bun.Ident(column)
	_, err := r.conn(ctx).NewUpdate().
		Model((*models.EventUser)(nil)).
		Set("? = CASE WHEN ? + ? < 0 THEN 0 ELSE ? + ? END", col, col, delta, col, delta).
		Set("updated_at = ?", time.Now().UTC()).
		Where("user_id = ?", userID).
		Exec(ctx)
	return r.HandleErrorWithID("adjust", "event_user", userID, err)
}

// Top returns ledger rows in leaderboard order. The user_id tiebreaker makes
// the order total, so pages never overlap.
func (r *eventUserRepository) Top(ctx context.Context, limit, offset int) ([]*models.EventUser, error) {
	var users []*models.EventUser
	err := r.conn(ctx).NewSelect().
		Model(&users).
		Order("points DESC", "dragon_marks DESC", "envelopes DESC", "user_id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("top", "event_user", err)
	}
	return users, nil
}

func (r *eventUserRepository) Count(ctx context.Context) (int, error) {
	n, err := r.conn(ctx).NewSelect().
		Model((*models.EventUser)(nil)).
		Count(ctx)
	return n, r.HandleError("count", "event_user", err)
}
