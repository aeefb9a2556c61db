package models

import (
	"time"

	"github.com/uptrace/bun"
)

type EventUser struct {
	bun.BaseModel `bun:"table:event_users,alias:eu"`

	UserID      string    `bun:"user_id,pk"`
	Envelopes   int64     `bun:"envelopes,notnull,default:0"`
	Points      int64     `bun:"points,notnull,default:0"`
	DragonMarks int64     `bun:"dragon_marks,notnull,default:0"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Ledger columns that can be adjusted by staff.
const (
	ColumnEnvelopes   = "envelopes"
	ColumnPoints      = "points"
	ColumnDragonMarks = "dragon_marks"
)
