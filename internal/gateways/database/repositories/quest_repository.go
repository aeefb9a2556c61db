package repositories

import (
	"context"
	"time"

	"github.com/redlantern/fortunebot/internal/gateways/database/models"
	"github.com/uptrace/bun"
)

type QuestRepository interface {
	Create(ctx context.Context, quest *models.Quest) error
	GetByID(ctx context.Context, id int64) (*models.Quest, error)
	ListActive(ctx context.Context, limit int) ([]*models.Quest, error)
	Close(ctx context.Context, id int64, at time.Time) (bool, error)
	SetOrigin(ctx context.Context, id int64, channelID, messageID string) error
}

type questRepository struct {
	*BaseRepository
}

func NewQuestRepository(db *bun.DB) QuestRepository {
	return &questRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *questRepository) Create(ctx context.Context, quest *models.Quest) error {
	if quest.CreatedAt.IsZero() {
		quest.CreatedAt = time.Now().UTC()
	}
	_, err := r.conn(ctx).NewInsert().
		Model(quest).
		Returning("id").
		Exec(ctx)
	return r.HandleError("create", "quest", err)
}

func (r *questRepository) GetByID(ctx context.Context, id int64) (*models.Quest, error) {
	quest := new(models.Quest)
	err := r.conn(ctx).NewSelect().
		Model(quest).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "quest", id, err)
	}
	return quest, nil
}

// ListActive returns open quests, newest first.
func (r *questRepository) ListActive(ctx context.Context, limit int) ([]*models.Quest, error) {
	var quests []*models.Quest
	q := r.conn(ctx).NewSelect().
		Model(&quests).
		Where("active = ?", true).
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, r.HandleError("list_active", "quest", err)
	}
	return quests, nil
}

// Close deactivates the quest and reports whether this call closed it.
func (r *questRepository) Close(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := r.conn(ctx).NewUpdate().
		Model((*models.Quest)(nil)).
		Set("active = ?", false).
		Set("closed_at = ?", at).
		Where("id = ?", id).
		Where("active = ?", true).
		Exec(ctx)
	if err != nil {
		return false, r.HandleErrorWithID("close", "quest", id, err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, r.HandleErrorWithID("close", "quest", id, err)
	}
	return n == 1, nil
}

func (r *questRepository) SetOrigin(ctx context.Context, id int64, channelID, messageID string) error {
	_, err := r.conn(ctx).NewUpdate().
		Model((*models.Quest)(nil)).
		Set("channel_id = ?", channelID).
		Set("message_id = ?", messageID).
		Where("id = ?", id).
		Exec(ctx)
	return r.HandleErrorWithID("set_origin", "quest", id, err)
}
