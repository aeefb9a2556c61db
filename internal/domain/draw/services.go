package draw

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/redlantern/fortunebot/internal/domain/audit"
	"github.com/redlantern/fortunebot/internal/domain/errs"
	"github.com/redlantern/fortunebot/internal/domain/ledger"
)

var errNoEnvelopes = errs.New(errs.InsufficientBalance, errs.CodeNoEnvelopes, "you have no red envelopes, complete quests to earn more")

type Result struct {
	Tier    Tier
	Balance ledger.Balance
}

type Service interface {
	Open(ctx context.Context, userID string) (*Result, error)
	Table() Table
}

type service struct {
	ledger   Ledger
	tx       Transactor
	cooldown Cooldown
	table    Table
	recorder audit.Recorder

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService validates table. rng may be nil; a non-nil rng is guarded since
// rand.Rand is not safe for concurrent use.
func NewService(ledger Ledger, tx Transactor, cooldown Cooldown, table Table, rng *rand.Rand, recorder audit.Recorder) (*service, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &service{
		ledger:   ledger,
		tx:       tx,
		cooldown: cooldown,
		table:    table,
		recorder: recorder,
		rng:      rng,
	}, nil
}

func (s *service) Table() Table {
	return s.table
}

// Open spends one envelope on a draw. The cooldown is consumed before the
// balance is looked at. A debit lost to a concurrent spend reports no
// envelopes and awards nothing.
func (s *service) Open(ctx context.Context, userID string) (*Result, error) {
	if ok, remaining := s.cooldown.Reserve(userID); !ok {
		return nil, errs.Limited(errs.CodeDrawCooldown, remaining)
	}

	balance, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		s.cooldown.Release(userID)
		return nil, err
	}
	if balance.Envelopes <= 0 {
		return nil, errNoEnvelopes
	}

	tier := s.pick()

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := s.ledger.TryDebitEnvelope(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return errNoEnvelopes
		}
		if err := s.ledger.ApplyReward(ctx, userID, tier.Points, tier.DragonMark); err != nil {
			return err
		}
		balance, err = s.ledger.Balance(ctx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, errNoEnvelopes) {
			return nil, errNoEnvelopes
		}
		// Nothing was spent; let the player retry.
		s.cooldown.Release(userID)
		return nil, fmt.Errorf("failed to open envelope: %w", err)
	}

	audit.Emit(ctx, s.recorder, audit.Event{
		Kind:    audit.KindEnvelopeOpened,
		ActorID: userID,
		UserID:  userID,
		Amount:  1,
		Tier:    tier.Label(),
		Points:  tier.Points,
	})
	return &Result{Tier: tier, Balance: balance}, nil
}

func (s *service) pick() Tier {
	if s.rng == nil {
		return s.table.Pick(nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Pick(s.rng)
}
