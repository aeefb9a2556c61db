package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/redlantern/fortunebot/internal/gateways/database/models"
)

func Test_questRepository(t *testing.T) {
	repo := NewQuestRepository(setupTestDB(t))
	ctx := context.Background()

	var ids []int64
	for _, title := range []string{"Lantern walk", "Dumpling feast", "Dragon dance"} {
		q := &models.Quest{
			Title:           title,
			Body:            "do the thing",
			RewardEnvelopes: 2,
			Active:          true,
			CreatedBy:       "staff",
		}
		if err := repo.Create(ctx, q); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		ids = append(ids, q.ID)
	}

	closed, err := repo.Close(ctx, ids[1], time.Now())
	if err != nil || !closed {
		t.Fatalf("Close() = %v, %v; want true", closed, err)
	}
	closed, err = repo.Close(ctx, ids[1], time.Now())
	if err != nil || closed {
		t.Errorf("second Close() = %v, %v; want false, nil", closed, err)
	}

	active, err := repo.ListActive(ctx, 10)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(active) != 2 || active[0].ID != ids[2] || active[1].ID != ids[0] {
		t.Errorf("ListActive() = %v, want newest first without the closed quest", active)
	}

	if err := repo.SetOrigin(ctx, ids[0], "100", "200"); err != nil {
		t.Fatalf("SetOrigin() error = %v", err)
	}
	q, err := repo.GetByID(ctx, ids[0])
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if q.ChannelID != "100" || q.MessageID != "200" || !q.Active {
		t.Errorf("GetByID() = %+v", q)
	}

	gone, err := repo.GetByID(ctx, ids[1])
	if err != nil {
		t.Fatalf("GetByID(closed) error = %v", err)
	}
	if gone.Active || gone.ClosedAt.IsZero() {
		t.Errorf("closed quest = %+v", gone)
	}

	if _, err := repo.GetByID(ctx, 999); !IsNotFound(err) {
		t.Errorf("GetByID(999) error = %v, want NotFoundError", err)
	}
}
