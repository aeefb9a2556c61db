package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/redlantern/fortunebot/internal/gateways/database/models"
)

func newPending(userID string, questID int64) *models.Submission {
	return &models.Submission{
		UserID:   userID,
		QuestID:  questID,
		ProofURL: "https://cdn.example/proof.png",
		Status:   models.SubmissionPending,
	}
}

func Test_submissionRepository_OpenUniqueness(t *testing.T) {
	repo := NewSubmissionRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now()

	first := newPending("1", 7)
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if first.ID == 0 {
		t.Fatal("Create() did not assign an id")
	}

	if err := repo.Create(ctx, newPending("1", 7)); !IsConflict(err) {
		t.Fatalf("duplicate Create() error = %v, want ConflictError", err)
	}

	// other user, other quest: no conflict
	if err := repo.Create(ctx, newPending("2", 7)); err != nil {
		t.Fatalf("Create(other user) error = %v", err)
	}
	if err := repo.Create(ctx, newPending("1", 8)); err != nil {
		t.Fatalf("Create(other quest) error = %v", err)
	}

	open, err := repo.HasOpen(ctx, "1", 7)
	if err != nil || !open {
		t.Fatalf("HasOpen() = %v, %v; want true", open, err)
	}

	ok, err := repo.Reject(ctx, first.ID, "staff", now)
	if err != nil || !ok {
		t.Fatalf("Reject() = %v, %v", ok, err)
	}

	open, _ = repo.HasOpen(ctx, "1", 7)
	if open {
		t.Error("HasOpen() after reject = true")
	}
	if err := repo.Create(ctx, newPending("1", 7)); err != nil {
		t.Fatalf("Create() after reject error = %v", err)
	}
}

func Test_submissionRepository_Transitions(t *testing.T) {
	repo := NewSubmissionRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now()

	s := newPending("1", 1)
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	steps := []struct {
		name string
		run  func() (bool, error)
		want bool
	}{
		{name: "revoke pending", run: func() (bool, error) { return repo.Revoke(ctx, s.ID, "staff", now) }, want: false},
		{name: "approve", run: func() (bool, error) { return repo.Approve(ctx, s.ID, "staff", 3, now) }, want: true},
		{name: "approve again", run: func() (bool, error) { return repo.Approve(ctx, s.ID, "staff", 3, now) }, want: false},
		{name: "reject approved", run: func() (bool, error) { return repo.Reject(ctx, s.ID, "staff", now) }, want: false},
		{name: "revoke", run: func() (bool, error) { return repo.Revoke(ctx, s.ID, "staff", now) }, want: true},
		{name: "revoke again", run: func() (bool, error) { return repo.Revoke(ctx, s.ID, "staff", now) }, want: false},
	}

	for _, step := range steps {
		got, err := step.run()
		if err != nil {
			t.Fatalf("%s: error = %v", step.name, err)
		}
		if got != step.want {
			t.Errorf("%s = %v, want %v", step.name, got, step.want)
		}
	}

	stored, err := repo.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Status != models.SubmissionRevoked {
		t.Errorf("status = %s, want REVOKED", stored.Status)
	}
	if stored.RewardEnvelopesAwarded != 3 {
		t.Errorf("awarded = %d, want 3", stored.RewardEnvelopesAwarded)
	}
	if stored.ReviewerID != "staff" || stored.RevokedBy != "staff" {
		t.Errorf("reviewer = %q, revoked_by = %q", stored.ReviewerID, stored.RevokedBy)
	}
	if stored.ReviewedAt.IsZero() || stored.RevokedAt.IsZero() {
		t.Error("review timestamps not stamped")
	}
}

func Test_submissionRepository_Lists(t *testing.T) {
	repo := NewSubmissionRepository(setupTestDB(t))
	ctx := context.Background()

	for _, q := range []int64{1, 2, 3} {
		if err := repo.Create(ctx, newPending("1", q)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if _, err := repo.Approve(ctx, 2, "staff", 1, time.Now()); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if err := repo.SetOrigin(ctx, 1, "10", "20"); err != nil {
		t.Fatalf("SetOrigin() error = %v", err)
	}
	if err := repo.SetArchivedProof(ctx, 1, "https://bucket/proof.png"); err != nil {
		t.Fatalf("SetArchivedProof() error = %v", err)
	}

	pending, err := repo.ListByStatus(ctx, models.SubmissionPending, 0)
	if err != nil {
		t.Fatalf("ListByStatus() error = %v", err)
	}
	if len(pending) != 2 || pending[0].ID != 1 || pending[1].ID != 3 {
		t.Errorf("ListByStatus() = %v", pending)
	}
	if pending[0].MessageID != "20" || pending[0].ArchivedProofURL == "" {
		t.Errorf("origin not stored: %+v", pending[0])
	}

	mine, err := repo.ListByUser(ctx, "1", 2)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(mine) != 2 || mine[0].ID != 3 {
		t.Errorf("ListByUser() = %v", mine)
	}
}
