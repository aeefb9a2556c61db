package mock

import "github.com/redlantern/fortunebot/internal/gateways/database/models"

var Users = []*models.EventUser{
	{UserID: "123", Envelopes: 2, Points: 10, DragonMarks: 2},
	{UserID: "456", Envelopes: 0, Points: 10, DragonMarks: 1},
	{UserID: "789", Envelopes: 5, Points: 5, DragonMarks: 9},
}
