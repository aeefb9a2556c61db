package cooldown

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redlantern/fortunebot/internal/domain/audit"
	"github.com/redlantern/fortunebot/internal/domain/errs"
	"github.com/redlantern/fortunebot/internal/domain/ledger"
)

const (
	DefaultDailyWindow = 24 * time.Hour
	DefaultDailyGrant  = 1
)

type DailyConfig struct {
	Window time.Duration
	// Grant is the number of envelopes a claim credits.
	Grant int64
}

type ClaimResult struct {
	Granted int64
	Balance ledger.Balance
	// Next is when the user may claim again.
	Next time.Time
}

// DailyClaims is the persisted cooldown behind the free daily envelope.
type DailyClaims struct {
	repository ClaimRepository
	ledger     Ledger
	tx         Transactor
	recorder   audit.Recorder
	cfg        DailyConfig
	clock      clockwork.Clock
}

func NewDailyClaims(repository ClaimRepository, ledger Ledger, tx Transactor, recorder audit.Recorder, cfg DailyConfig, clock clockwork.Clock) *DailyClaims {
	if cfg.Window <= 0 {
		cfg.Window = DefaultDailyWindow
	}
	if cfg.Grant <= 0 {
		cfg.Grant = DefaultDailyGrant
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DailyClaims{
		repository: repository,
		ledger:     ledger,
		tx:         tx,
		recorder:   recorder,
		cfg:        cfg,
		clock:      clock,
	}
}

// CanClaim is a pure query: it reports whether the user may claim now and,
// if not, how long until they may.
func (d *DailyClaims) CanClaim(ctx context.Context, userID string) (bool, time.Duration, error) {
	claim, err := d.repository.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return true, 0, nil
		}
		return false, 0, fmt.Errorf("failed to fetch daily claim: %w", err)
	}

	remaining := claim.LastClaimAt.Add(d.cfg.Window).Sub(d.clock.Now())
	if remaining <= 0 {
		return true, 0, nil
	}
	return false, remaining, nil
}

// RecordClaim stamps now as the user's last claim.
func (d *DailyClaims) RecordClaim(ctx context.Context, userID string) error {
	if err := d.repository.Upsert(ctx, userID, d.clock.Now()); err != nil {
		return fmt.Errorf("failed to record daily claim: %w", err)
	}
	return nil
}

// Claim credits the daily grant if the cooldown has elapsed. The stamp and
// the credit commit together; a refused claim mutates nothing.
func (d *DailyClaims) Claim(ctx context.Context, userID string) (*ClaimResult, error) {
	now := d.clock.Now()

	var (
		claimed bool
		balance ledger.Balance
	)
	err := d.tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := d.repository.ClaimIfDue(ctx, userID, now, now.Add(-d.cfg.Window))
		if err != nil {
			return fmt.Errorf("failed to stamp daily claim: %w", err)
		}
		if !ok {
			return nil
		}
		if err := d.ledger.CreditEnvelopes(ctx, userID, d.cfg.Grant); err != nil {
			return err
		}
		if balance, err = d.ledger.Balance(ctx, userID); err != nil {
			return err
		}
		claimed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !claimed {
		_, remaining, err := d.CanClaim(ctx, userID)
		if err != nil {
			return nil, err
		}
		return nil, errs.Limited(errs.CodeDailyCooldown, remaining)
	}

	audit.Emit(ctx, d.recorder, audit.Event{
		Kind:    audit.KindDailyClaimed,
		ActorID: userID,
		UserID:  userID,
		Amount:  d.cfg.Grant,
	})
	return &ClaimResult{
		Granted: d.cfg.Grant,
		Balance: balance,
		Next:    now.Add(d.cfg.Window),
	}, nil
}
