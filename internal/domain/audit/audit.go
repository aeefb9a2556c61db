// Package audit describes the ledger trail: one event per state change of the
// event economy, fanned out to whatever sinks are configured.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

type Kind string

const (
	KindSubmitted      Kind = "submitted"
	KindApproved       Kind = "approved"
	KindRejected       Kind = "rejected"
	KindRevoked        Kind = "revoked"
	KindAdjusted       Kind = "adjusted"
	KindEnvelopeOpened Kind = "envelope_opened"
	KindDailyClaimed   Kind = "daily_claimed"
	KindQuestPosted    Kind = "quest_posted"
	KindQuestClosed    Kind = "quest_closed"
)

type Event struct {
	Kind         Kind
	ActorID      string
	UserID       string
	SubmissionID int64
	QuestID      int64
	// Amount is the envelope count moved by the event.
	Amount int64
	// Recovered is set on revocations.
	Recovered int64
	Field     string
	Before    int64
	After     int64
	Tier      string
	Points    int64
	At        time.Time
}

// String renders the event as a single ledger line.
func (e Event) String() string {
	switch e.Kind {
	case KindSubmitted:
		return fmt.Sprintf("📮 New submission #%d (quest #%d) by <@%s>", e.SubmissionID, e.QuestID, e.UserID)
	case KindApproved:
		return fmt.Sprintf("✅ <@%s> approved submission #%d (quest #%d) → <@%s> +%d 🧧",
			e.ActorID, e.SubmissionID, e.QuestID, e.UserID, e.Amount)
	case KindRejected:
		return fmt.Sprintf("❌ <@%s> rejected submission #%d (quest #%d) → <@%s>",
			e.ActorID, e.SubmissionID, e.QuestID, e.UserID)
	case KindRevoked:
		return fmt.Sprintf("↩️ <@%s> revoked submission #%d (quest #%d) → <@%s> -%d/%d 🧧 recovered",
			e.ActorID, e.SubmissionID, e.QuestID, e.UserID, e.Recovered, e.Amount)
	case KindAdjusted:
		return fmt.Sprintf("🛠️ <@%s> adjusted %s of <@%s>: %d → %d", e.ActorID, e.Field, e.UserID, e.Before, e.After)
	case KindEnvelopeOpened:
		return fmt.Sprintf("🎁 <@%s> opened an envelope → %s (+%d points)", e.UserID, e.Tier, e.Points)
	case KindDailyClaimed:
		return fmt.Sprintf("🌅 <@%s> claimed the daily gift +%d 🧧", e.UserID, e.Amount)
	case KindQuestPosted:
		return fmt.Sprintf("📜 <@%s> posted quest #%d (%d 🧧)", e.ActorID, e.QuestID, e.Amount)
	case KindQuestClosed:
		return fmt.Sprintf("🔒 <@%s> closed quest #%d", e.ActorID, e.QuestID)
	default:
		return fmt.Sprintf("%s by <@%s>", e.Kind, e.ActorID)
	}
}

// Recorder receives ledger events after the state change committed.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// Emit stamps and records the event. Failures are logged and swallowed: the
// state change they describe already happened.
func Emit(ctx context.Context, r Recorder, event Event) {
	if r == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	if err := r.Record(ctx, event); err != nil {
		slog.Error("Failed to record ledger event",
			slog.String("type", "error"),
			slog.String("kind", string(event.Kind)),
			slog.String("user_id", event.UserID),
			slog.Any("error", err),
		)
	}
}

// Multi fans an event out to several recorders and joins their errors.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, event Event) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogRecorder writes events to the structured log.
type LogRecorder struct{}

func (LogRecorder) Record(ctx context.Context, event Event) error {
	slog.InfoContext(ctx, "Ledger",
		slog.String("type", "sys"),
		slog.String("kind", string(event.Kind)),
		slog.String("actor_id", event.ActorID),
		slog.String("user_id", event.UserID),
		slog.Int64("submission_id", event.SubmissionID),
		slog.Int64("quest_id", event.QuestID),
		slog.Int64("amount", event.Amount),
		slog.String("line", event.String()),
	)
	return nil
}

// Nop discards events.
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }
