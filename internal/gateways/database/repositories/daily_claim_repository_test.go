package repositories

import (
	"context"
	"testing"
	"time"
)

func Test_dailyClaimRepository_ClaimIfDue(t *testing.T) {
	repo := NewDailyClaimRepository(setupTestDB(t))
	ctx := context.Background()
	cooldown := 24 * time.Hour
	t0 := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "first claim", at: t0, want: true},
		{name: "one hour later", at: t0.Add(time.Hour), want: false},
		{name: "just before cooldown", at: t0.Add(cooldown - time.Second), want: false},
		{name: "after cooldown", at: t0.Add(cooldown + time.Minute), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ClaimIfDue(ctx, "1", tt.at, tt.at.Add(-cooldown))
			if err != nil {
				t.Fatalf("ClaimIfDue() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ClaimIfDue() = %v, want %v", got, tt.want)
			}
		})
	}

	claim, err := repo.GetByUserID(ctx, "1")
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}
	if !claim.LastClaimAt.Equal(t0.Add(cooldown + time.Minute)) {
		t.Errorf("LastClaimAt = %v", claim.LastClaimAt)
	}
}

func Test_dailyClaimRepository_Upsert(t *testing.T) {
	repo := NewDailyClaimRepository(setupTestDB(t))
	ctx := context.Background()
	t0 := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	if _, err := repo.GetByUserID(ctx, "1"); !IsNotFound(err) {
		t.Fatalf("GetByUserID() before claim error = %v, want NotFoundError", err)
	}
	for _, at := range []time.Time{t0, t0.Add(2 * time.Hour)} {
		if err := repo.Upsert(ctx, "1", at); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}
	claim, err := repo.GetByUserID(ctx, "1")
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}
	if !claim.LastClaimAt.Equal(t0.Add(2 * time.Hour)) {
		t.Errorf("LastClaimAt = %v, want %v", claim.LastClaimAt, t0.Add(2*time.Hour))
	}
}
