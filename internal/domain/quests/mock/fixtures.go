package mock

import (
	"time"

	"github.com/redlantern/fortunebot/internal/gateways/database/models"
)

var Quests = []*models.Quest{
	{ID: 3, Title: "Hang a paper lantern", Body: "Share a photo of your lantern.", RewardEnvelopes: 2, Active: true, CreatedBy: "staff", CreatedAt: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)},
	{ID: 2, Title: "Cook dumplings", Body: "Fold at least ten.", RewardEnvelopes: 3, Active: true, CreatedBy: "staff", CreatedAt: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)},
	{ID: 1, Title: "Sweep the house", Body: "Out with the old year.", RewardEnvelopes: 1, Active: true, CreatedBy: "staff", CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
}
