package cooldown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redlantern/fortunebot/internal/domain/audit"
	"github.com/redlantern/fortunebot/internal/domain/cooldown/mock"
	"github.com/redlantern/fortunebot/internal/domain/errs"
	"github.com/redlantern/fortunebot/internal/domain/ledger"
	"github.com/redlantern/fortunebot/internal/gateways/database/models"
	"github.com/redlantern/fortunebot/internal/gateways/database/repositories"
	"go.uber.org/mock/gomock"
)

var epoch = time.Date(2026, 2, 17, 12, 0, 0, 0, time.UTC)

func txMock(t *testing.T) *mock.MockTransactor {
	tx := mock.NewMockTransactor(gomock.NewController(t))
	tx.EXPECT().
		RunInTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).
		AnyTimes()
	return tx
}

func TestDailyClaims_CanClaim(t *testing.T) {
	tests := []struct {
		name          string
		claim         *models.DailyClaim
		err           error
		wantAllowed   bool
		wantRemaining time.Duration
		wantErr       bool
	}{
		{
			name:        "never claimed",
			err:         &repositories.NotFoundError{Entity: "daily_claim", ID: "123"},
			wantAllowed: true,
		},
		{
			name:          "claimed an hour ago",
			claim:         &models.DailyClaim{UserID: "123", LastClaimAt: epoch.Add(-time.Hour)},
			wantAllowed:   false,
			wantRemaining: 23 * time.Hour,
		},
		{
			name:        "window elapsed",
			claim:       &models.DailyClaim{UserID: "123", LastClaimAt: epoch.Add(-24 * time.Hour)},
			wantAllowed: true,
		},
		{
			name:    "storage failure",
			err:     errors.New("connection reset"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mock.NewMockClaimRepository(ctrl)
			repo.EXPECT().GetByUserID(gomock.Any(), "123").Return(tt.claim, tt.err)

			d := NewDailyClaims(repo, mock.NewMockLedger(ctrl), txMock(t), audit.Nop{}, DailyConfig{}, clockwork.NewFakeClockAt(epoch))
			allowed, remaining, err := d.CanClaim(context.Background(), "123")
			if (err != nil) != tt.wantErr {
				t.Fatalf("CanClaim() error = %v, wantErr %v", err, tt.wantErr)
			}
			if allowed != tt.wantAllowed || remaining != tt.wantRemaining {
				t.Errorf("CanClaim() = %v, %v; want %v, %v", allowed, remaining, tt.wantAllowed, tt.wantRemaining)
			}
		})
	}
}

func TestDailyClaims_Claim(t *testing.T) {
	t.Run("grants when due", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockClaimRepository(ctrl)
		led := mock.NewMockLedger(ctrl)
		gomock.InOrder(
			repo.EXPECT().ClaimIfDue(gomock.Any(), "123", epoch, epoch.Add(-24*time.Hour)).Return(true, nil),
			led.EXPECT().CreditEnvelopes(gomock.Any(), "123", int64(1)).Return(nil),
			led.EXPECT().Balance(gomock.Any(), "123").Return(ledger.Balance{Envelopes: 1}, nil),
		)

		d := NewDailyClaims(repo, led, txMock(t), audit.Nop{}, DailyConfig{}, clockwork.NewFakeClockAt(epoch))
		got, err := d.Claim(context.Background(), "123")
		if err != nil {
			t.Fatalf("Claim() error = %v", err)
		}
		if got.Granted != 1 || got.Balance.Envelopes != 1 || !got.Next.Equal(epoch.Add(24*time.Hour)) {
			t.Errorf("Claim() = %+v", got)
		}
	})

	t.Run("refused claim mutates nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockClaimRepository(ctrl)
		led := mock.NewMockLedger(ctrl)
		gomock.InOrder(
			repo.EXPECT().ClaimIfDue(gomock.Any(), "123", gomock.Any(), gomock.Any()).Return(false, nil),
			repo.EXPECT().GetByUserID(gomock.Any(), "123").
				Return(&models.DailyClaim{UserID: "123", LastClaimAt: epoch.Add(-20 * time.Hour)}, nil),
		)

		d := NewDailyClaims(repo, led, txMock(t), audit.Nop{}, DailyConfig{}, clockwork.NewFakeClockAt(epoch))
		_, err := d.Claim(context.Background(), "123")
		if !errors.Is(err, errs.RateLimited) {
			t.Fatalf("Claim() error = %v, want RateLimited", err)
		}
		if d, _ := errs.RetryAfter(err); d != 4*time.Hour {
			t.Errorf("RetryAfter = %v, want 4h", d)
		}
	})

	t.Run("balance read fails before commit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockClaimRepository(ctrl)
		led := mock.NewMockLedger(ctrl)
		gomock.InOrder(
			repo.EXPECT().ClaimIfDue(gomock.Any(), "123", gomock.Any(), gomock.Any()).Return(true, nil),
			led.EXPECT().CreditEnvelopes(gomock.Any(), "123", int64(1)).Return(nil),
			led.EXPECT().Balance(gomock.Any(), "123").Return(ledger.Balance{}, errors.New("conn reset")),
		)

		rec := &countingRecorder{}
		d := NewDailyClaims(repo, led, txMock(t), rec, DailyConfig{}, clockwork.NewFakeClockAt(epoch))
		if got, err := d.Claim(context.Background(), "123"); err == nil || got != nil {
			t.Fatalf("Claim() = %+v, %v, want an error", got, err)
		}
		if rec.n != 0 {
			t.Error("rolled back claim was audited")
		}
	})

	t.Run("credit failure surfaces", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockClaimRepository(ctrl)
		led := mock.NewMockLedger(ctrl)
		repo.EXPECT().ClaimIfDue(gomock.Any(), "123", gomock.Any(), gomock.Any()).Return(true, nil)
		led.EXPECT().CreditEnvelopes(gomock.Any(), "123", int64(3)).Return(errors.New("disk full"))

		d := NewDailyClaims(repo, led, txMock(t), audit.Nop{}, DailyConfig{Grant: 3}, clockwork.NewFakeClockAt(epoch))
		if _, err := d.Claim(context.Background(), "123"); err == nil || errs.IsExpected(err) {
			t.Errorf("Claim() error = %v, want an unexpected failure", err)
		}
	})
}

type countingRecorder struct {
	n int
}

func (r *countingRecorder) Record(context.Context, audit.Event) error {
	r.n++
	return nil
}
