package models

import (
	"time"

	"github.com/uptrace/bun"
)

type DailyClaim struct {
	bun.BaseModel `bun:"table:event_daily_claims,alias:dc"`

	UserID      string    `bun:"user_id,pk"`
	LastClaimAt time.Time `bun:"last_claim_at,notnull"`
}
