package ledger

import (
	"strings"

	"github.com/redlantern/fortunebot/internal/domain/errs"
	"github.com/redlantern/fortunebot/internal/gateways/database/models"
)

type Balance struct {
	Envelopes   int64
	Points      int64
	DragonMarks int64
}

// Field is a ledger column staff may adjust.
type Field string

const (
	FieldEnvelopes   Field = models.ColumnEnvelopes
	FieldPoints      Field = models.ColumnPoints
	FieldDragonMarks Field = models.ColumnDragonMarks
)

var Fields = []Field{FieldEnvelopes, FieldPoints, FieldDragonMarks}

func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldEnvelopes, FieldPoints, FieldDragonMarks:
		return f, nil
	case "dragon", "dragons", "marks":
		return FieldDragonMarks, nil
	}
	return "", errs.Newf(errs.Validation, "", "unknown ledger field %q", s)
}

// Adjustment is the outcome of a staff correction.
type Adjustment struct {
	UserID string
	Field  Field
	Delta  int64
	Before int64
	After  int64
}

// Standing is one leaderboard row. Rank starts at 1.
type Standing struct {
	Rank        int
	UserID      string
	Points      int64
	Envelopes   int64
	DragonMarks int64
}

func balanceOf(u *models.EventUser) Balance {
	return Balance{
		Envelopes:   u.Envelopes,
		Points:      u.Points,
		DragonMarks: u.DragonMarks,
	}
}

func (f Field) valueOf(u *models.EventUser) int64 {
	switch f {
	case FieldEnvelopes:
		return u.Envelopes
	case FieldPoints:
		return u.Points
	default:
		return u.DragonMarks
	}
}
