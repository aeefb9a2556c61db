package ledger

import (
	"context"
	"fmt"

	"github.com/redlantern/fortunebot/internal/domain/audit"
	"github.com/redlantern/fortunebot/internal/domain/errs"
)

const DefaultLeaderboardSize = 10

type Service interface {
	Balance(ctx context.Context, userID string) (Balance, error)
	CreditEnvelopes(ctx context.Context, userID string, amount int64) error
	TryDebitEnvelope(ctx context.Context, userID string) (bool, error)
	TryDebitEnvelopes(ctx context.Context, userID string, amount int64) (bool, error)
	DebitUpTo(ctx context.Context, userID string, amount int64) (int64, error)
	ApplyReward(ctx context.Context, userID string, points int64, dragonMark bool) error
	Adjust(ctx context.Context, actorID, userID string, field Field, delta int64) (Adjustment, error)
	Top(ctx context.Context, limit, offset int) ([]Standing, error)
	Count(ctx context.Context) (int, error)
}

type service struct {
	repository Repository
	tx         Transactor
	recorder   audit.Recorder
}

func NewService(repository Repository, tx Transactor, recorder audit.Recorder) *service {
	return &service{
		repository: repository,
		tx:         tx,
		recorder:   recorder,
	}
}

// Balance never fails for an unknown user: the row is created zeroed.
func (s *service) Balance(ctx context.Context, userID string) (Balance, error) {
	if err := s.repository.Ensure(ctx, userID); err != nil {
		return Balance{}, fmt.Errorf("failed to create ledger row: %w", err)
	}
	user, err := s.repository.GetByID(ctx, userID)
	if err != nil {
		return Balance{}, fmt.Errorf("failed to fetch balance: %w", err)
	}
	return balanceOf(user), nil
}

func (s *service) CreditEnvelopes(ctx context.Context, userID string, amount int64) error {
	if amount < 0 {
		return errs.Newf(errs.Validation, "", "cannot credit %d envelopes", amount)
	}
	if amount == 0 {
		return nil
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repository.Ensure(ctx, userID); err != nil {
			return fmt.Errorf("failed to create ledger row: %w", err)
		}
		if err := s.repository.AddEnvelopes(ctx, userID, amount); err != nil {
			return fmt.Errorf("failed to credit envelopes: %w", err)
		}
		return nil
	})
}

func (s *service) TryDebitEnvelope(ctx context.Context, userID string) (bool, error) {
	return s.TryDebitEnvelopes(ctx, userID, 1)
}

// TryDebitEnvelopes takes amount envelopes or nothing at all.
func (s *service) TryDebitEnvelopes(ctx context.Context, userID string, amount int64) (bool, error) {
	if amount < 0 {
		return false, errs.Newf(errs.Validation, "", "cannot debit %d envelopes", amount)
	}
	if amount == 0 {
		return true, nil
	}
	ok, err := s.repository.DebitEnvelopes(ctx, userID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to debit envelopes: %w", err)
	}
	return ok, nil
}

// DebitUpTo takes as many envelopes as the user still holds, capped at amount.
func (s *service) DebitUpTo(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, nil
	}
	n, err := s.repository.DebitUpTo(ctx, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to recover envelopes: %w", err)
	}
	return n, nil
}

func (s *service) ApplyReward(ctx context.Context, userID string, points int64, dragonMark bool) error {
	if points < 0 {
		return errs.Newf(errs.Validation, "", "cannot award %d points", points)
	}
	var marks int64
	if dragonMark {
		marks = 1
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repository.Ensure(ctx, userID); err != nil {
			return fmt.Errorf("failed to create ledger row: %w", err)
		}
		if err := s.repository.AddReward(ctx, userID, points, marks); err != nil {
			return fmt.Errorf("failed to apply reward: %w", err)
		}
		return nil
	})
}

// Adjust applies a signed staff correction. The result is floored at zero
// instead of failing, and both sides of the change are reported.
func (s *service) Adjust(ctx context.Context, actorID, userID string, field Field, delta int64) (Adjustment, error) {
	field, err := ParseField(string(field))
	if err != nil {
		return Adjustment{}, err
	}

	adj := Adjustment{UserID: userID, Field: field, Delta: delta}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repository.Ensure(ctx, userID); err != nil {
			return fmt.Errorf("failed to create ledger row: %w", err)
		}
		before, err := s.repository.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to fetch balance: %w", err)
		}
		if err := s.repository.AddClamped(ctx, userID, string(field), delta); err != nil {
			return fmt.Errorf("failed to adjust %s: %w", field, err)
		}
		after, err := s.repository.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to fetch balance: %w", err)
		}
		adj.Before = field.valueOf(before)
		adj.After = field.valueOf(after)
		return nil
	})
	if err != nil {
		return Adjustment{}, err
	}

	audit.Emit(ctx, s.recorder, audit.Event{
		Kind:    audit.KindAdjusted,
		ActorID: actorID,
		UserID:  userID,
		Field:   string(field),
		Before:  adj.Before,
		After:   adj.After,
	})
	return adj, nil
}

func (s *service) Top(ctx context.Context, limit, offset int) ([]Standing, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.repository.Top(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}

	standings := make([]Standing, 0, len(users))
	for i, u := range users {
		standings = append(standings, Standing{
			Rank:        offset + i + 1,
			UserID:      u.UserID,
			Points:      u.Points,
			Envelopes:   u.Envelopes,
			DragonMarks: u.DragonMarks,
		})
	}
	return standings, nil
}

func (s *service) Count(ctx context.Context) (int, error) {
	n, err := s.repository.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return n, nil
}
