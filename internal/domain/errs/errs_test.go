package errs

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "matches kind",
			err:    New(InvalidState, CodeAlreadyReviewed, "already reviewed"),
			target: InvalidState,
			want:   true,
		},
		{
			name:   "other kind",
			err:    New(InvalidState, CodeAlreadyReviewed, "already reviewed"),
			target: NotFound,
			want:   false,
		},
		{
			name:   "wrapped with fmt",
			err:    fmt.Errorf("approve: %w", New(NotFound, CodeQuestMissing, "quest gone")),
			target: NotFound,
			want:   true,
		},
		{
			name:   "matches kind and code",
			err:    New(InvalidState, CodeAlreadyRevoked, ""),
			target: &Error{Kind: InvalidState, Code: CodeAlreadyRevoked},
			want:   true,
		},
		{
			name:   "code mismatch",
			err:    New(InvalidState, CodeAlreadyRevoked, ""),
			target: &Error{Kind: InvalidState, Code: CodeNotApproved},
			want:   false,
		},
		{
			name:   "plain error",
			err:    errors.New("connection reset"),
			target: NotFound,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("submit: %w", New(InvalidState, CodeDuplicateSubmission, "already submitted"))
	if got := CodeOf(err); got != CodeDuplicateSubmission {
		t.Errorf("CodeOf() = %q, want %q", got, CodeDuplicateSubmission)
	}
	if got := KindOf(err); got != InvalidState {
		t.Errorf("KindOf() = %q, want %q", got, InvalidState)
	}
	if IsExpected(errors.New("boom")) {
		t.Error("IsExpected() = true for a plain error")
	}
}

func TestLimited(t *testing.T) {
	err := Limited(CodeDrawCooldown, 7400*time.Millisecond)
	if !errors.Is(err, RateLimited) {
		t.Fatalf("Limited() is not RateLimited: %v", err)
	}
	d, ok := RetryAfter(err)
	if !ok || d != 7400*time.Millisecond {
		t.Errorf("RetryAfter() = %v, %v", d, ok)
	}
	if err.Message != "try again in 7s" {
		t.Errorf("Message = %q", err.Message)
	}

	if got := Limited(CodeDrawCooldown, 10*time.Millisecond).Message; got != "try again in 1s" {
		t.Errorf("sub-second Message = %q", got)
	}
}
