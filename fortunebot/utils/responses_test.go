package utils

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/redlantern/fortunebot/internal/domain/errs"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorType
	}{
		{err: errs.New(errs.Validation, errs.CodeNotImage, "x"), want: UserError},
		{err: errs.New(errs.NotFound, "", "x"), want: NotFoundError},
		{err: errs.New(errs.Unauthorized, errs.CodeNotStaff, "x"), want: PermissionError},
		{err: errs.New(errs.InvalidState, errs.CodeAlreadyReviewed, "x"), want: BusinessLogicError},
		{err: errs.New(errs.InsufficientBalance, errs.CodeNoEnvelopes, "x"), want: BusinessLogicError},
		{err: errs.Limited(errs.CodeDrawCooldown, time.Second), want: BusinessLogicError},
		{err: fmt.Errorf("wrapped: %w", errs.New(errs.NotFound, "", "x")), want: NotFoundError},
		{err: errors.New("connection reset"), want: SystemError},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "domain message",
			err:  errs.New(errs.InvalidState, errs.CodeDuplicateSubmission, "you already have an open submission for this quest"),
			want: "you already have an open submission for this quest",
		},
		{
			name: "draw cooldown",
			err:  errs.Limited(errs.CodeDrawCooldown, 6500*time.Millisecond),
			want: "The lanterns are still settling. Try again in 7s.",
		},
		{
			name: "daily cooldown",
			err:  errs.Limited(errs.CodeDailyCooldown, 3*time.Hour+4*time.Minute),
			want: "You already claimed today's gift. Come back in 3h 4m.",
		},
		{
			name: "storage failure is hidden",
			err:  errors.New("pq: relation does not exist"),
			want: genericFailure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatWait(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{d: 0, want: "1s"},
		{d: 400 * time.Millisecond, want: "1s"},
		{d: 59 * time.Second, want: "59s"},
		{d: 90 * time.Second, want: "1m 30s"},
		{d: 24 * time.Hour, want: "24h 0m"},
	}
	for _, tt := range tests {
		if got := FormatWait(tt.d); got != tt.want {
			t.Errorf("FormatWait(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestErrorEmbed(t *testing.T) {
	embed := ErrorEmbed(errs.New(errs.Unauthorized, errs.CodeNotStaff, "staff only"))
	if !strings.HasPrefix(embed.Description, "🚫 ") || embed.Color != ErrorColor {
		t.Errorf("ErrorEmbed() = %+v", embed)
	}
}

func TestUnhandled(t *testing.T) {
	expected := errs.New(errs.NotFound, "", "x")
	if err := unhandled(expected, nil); err != nil {
		t.Errorf("unhandled(expected) = %v, want nil", err)
	}
	storage := errors.New("db down")
	if err := unhandled(storage, nil); !errors.Is(err, storage) {
		t.Errorf("unhandled(storage) = %v", err)
	}
	if err := unhandled(expected, errors.New("401")); err == nil {
		t.Error("unhandled() swallowed a send failure")
	}
}
