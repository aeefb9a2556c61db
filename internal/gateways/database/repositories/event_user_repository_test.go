package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/redlantern/fortunebot/internal/gateways/database/models"
)

func seedUser(t *testing.T, repo EventUserRepository, userID string, envelopes, points, dragons int64) {
	t.Helper()
	ctx := context.Background()
	if err := repo.Ensure(ctx, userID); err != nil {
		t.Fatalf("Ensure(%s): %v", userID, err)
	}
	if err := repo.AddEnvelopes(ctx, userID, envelopes); err != nil {
		t.Fatalf("AddEnvelopes(%s): %v", userID, err)
	}
	if err := repo.AddReward(ctx, userID, points, dragons); err != nil {
		t.Fatalf("AddReward(%s): %v", userID, err)
	}
}

func Test_eventUserRepository_Ensure(t *testing.T) {
	repo := NewEventUserRepository(setupTestDB(t))
	ctx := context.Background()

	seedUser(t, repo, "1", 3, 0, 0)
	if err := repo.Ensure(ctx, "1"); err != nil {
		t.Fatalf("second Ensure() error = %v", err)
	}

	user, err := repo.GetByID(ctx, "1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if user.Envelopes != 3 {
		t.Errorf("Ensure() reset the row: envelopes = %d, want 3", user.Envelopes)
	}

	if _, err := repo.GetByID(ctx, "missing"); !IsNotFound(err) {
		t.Errorf("GetByID(missing) error = %v, want NotFoundError", err)
	}
}

func Test_eventUserRepository_DebitEnvelopes(t *testing.T) {
	repo := NewEventUserRepository(setupTestDB(t))
	ctx := context.Background()
	seedUser(t, repo, "1", 2, 0, 0)

	tests := []struct {
		name   string
		amount int64
		want   bool
		left   int64
	}{
		{name: "exact one", amount: 1, want: true, left: 1},
		{name: "more than held", amount: 2, want: false, left: 1},
		{name: "last one", amount: 1, want: true, left: 0},
		{name: "empty", amount: 1, want: false, left: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.DebitEnvelopes(ctx, "1", tt.amount)
			if err != nil {
				t.Fatalf("DebitEnvelopes() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DebitEnvelopes() = %v, want %v", got, tt.want)
			}
			user, _ := repo.GetByID(ctx, "1")
			if user.Envelopes != tt.left {
				t.Errorf("envelopes = %d, want %d", user.Envelopes, tt.left)
			}
		})
	}

	ok, err := repo.DebitEnvelopes(ctx, "nobody", 1)
	if err != nil || ok {
		t.Errorf("DebitEnvelopes(nobody) = %v, %v; want false, nil", ok, err)
	}
}

func Test_eventUserRepository_DebitUpTo(t *testing.T) {
	repo := NewEventUserRepository(setupTestDB(t))
	ctx := context.Background()
	seedUser(t, repo, "1", 2, 0, 0)

	got, err := repo.DebitUpTo(ctx, "1", 5)
	if err != nil {
		t.Fatalf("DebitUpTo() error = %v", err)
	}
	if got != 2 {
		t.Errorf("DebitUpTo() = %d, want 2", got)
	}

	got, err = repo.DebitUpTo(ctx, "1", 5)
	if err != nil || got != 0 {
		t.Errorf("DebitUpTo() on empty = %d, %v; want 0, nil", got, err)
	}

	got, err = repo.DebitUpTo(ctx, "nobody", 1)
	if err != nil || got != 0 {
		t.Errorf("DebitUpTo(nobody) = %d, %v; want 0, nil", got, err)
	}
}

func Test_eventUserRepository_AddClamped(t *testing.T) {
	repo := NewEventUserRepository(setupTestDB(t))
	ctx := context.Background()
	seedUser(t, repo, "1", 4, 10, 1)

	tests := []struct {
		name   string
		column string
		delta  int64
		want   func(*models.EventUser) int64
		value  int64
	}{
		{
			name:   "add points",
			column: models.ColumnPoints,
			delta:  5,
			want:   func(u *models.EventUser) int64 { return u.Points },
			value:  15,
		},
		{
			name:   "clamp envelopes",
			column: models.ColumnEnvelopes,
			delta:  -9,
			want:   func(u *models.EventUser) int64 { return u.Envelopes },
			value:  0,
		},
		{
			name:   "exact zero dragon marks",
			column: models.ColumnDragonMarks,
			delta:  -1,
			want:   func(u *models.EventUser) int64 { return u.DragonMarks },
			value:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.AddClamped(ctx, "1", tt.column, tt.delta); err != nil {
				t.Fatalf("AddClamped() error = %v", err)
			}
			user, err := repo.GetByID(ctx, "1")
			if err != nil {
				t.Fatalf("GetByID() error = %v", err)
			}
			if got := tt.want(user); got != tt.value {
				t.Errorf("%s = %d, want %d", tt.column, got, tt.value)
			}
		})
	}

	if err := repo.AddClamped(ctx, "1", "user_id", 1); err == nil {
		t.Error("AddClamped(user_id) succeeded, want error")
	}
}

func Test_eventUserRepository_Top(t *testing.T) {
	repo := NewEventUserRepository(setupTestDB(t))
	ctx := context.Background()

	seedUser(t, repo, "a", 0, 10, 1)
	seedUser(t, repo, "b", 0, 10, 2)
	seedUser(t, repo, "c", 0, 5, 9)
	seedUser(t, repo, "d", 3, 5, 9)
	seedUser(t, repo, "e", 3, 5, 9)

	got, err := repo.Top(ctx, 10, 0)
	if err != nil {
		t.Fatalf("Top() error = %v", err)
	}

	want := []string{"b", "a", "d", "e", "c"}
	if len(got) != len(want) {
		t.Fatalf("Top() returned %d rows, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].UserID != id {
			t.Errorf("Top()[%d] = %s, want %s", i, got[i].UserID, id)
		}
	}

	page, err := repo.Top(ctx, 2, 2)
	if err != nil {
		t.Fatalf("Top(page 2) error = %v", err)
	}
	if len(page) != 2 || page[0].UserID != "d" || page[1].UserID != "e" {
		t.Errorf("Top(page 2) = %v", page)
	}

	n, err := repo.Count(ctx)
	if err != nil || n != 5 {
		t.Errorf("Count() = %d, %v; want 5", n, err)
	}
}

func Test_Transactor_RunInTx(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventUserRepository(db)
	tx := NewTransactor(db)
	ctx := context.Background()
	seedUser(t, repo, "1", 1, 0, 0)

	boom := errors.New("boom")
	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := repo.AddEnvelopes(ctx, "1", 5); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return tx.RunInTx(ctx, func(ctx context.Context) error {
			if err := repo.AddReward(ctx, "1", 3, 0); err != nil {
				return err
			}
			return boom
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("RunInTx() error = %v, want boom", err)
	}

	user, _ := repo.GetByID(ctx, "1")
	if user.Envelopes != 1 || user.Points != 0 {
		t.Errorf("rolled back balance = %d envelopes, %d points; want 1, 0", user.Envelopes, user.Points)
	}

	err = tx.RunInTx(ctx, func(ctx context.Context) error {
		return repo.AddEnvelopes(ctx, "1", 2)
	})
	if err != nil {
		t.Fatalf("RunInTx() error = %v", err)
	}
	user, _ = repo.GetByID(ctx, "1")
	if user.Envelopes != 3 {
		t.Errorf("committed envelopes = %d, want 3", user.Envelopes)
	}
}
