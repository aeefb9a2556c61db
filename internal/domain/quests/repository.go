package quests

import (
	"context"
	"time"

	"github.com/redlantern/fortunebot/internal/gateways/database/models"
)

type Repository interface {
	Create(ctx context.Context, quest *models.Quest) error
	GetByID(ctx context.Context, id int64) (*models.Quest, error)
	ListActive(ctx context.Context, limit int) ([]*models.Quest, error)
	Close(ctx context.Context, id int64, at time.Time) (bool, error)
	SetOrigin(ctx context.Context, id int64, channelID, messageID string) error
}
