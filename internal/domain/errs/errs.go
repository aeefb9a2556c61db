package errs

import (
	"errors"
	"fmt"
	"time"
)

// Kind is the category of an expected, recoverable failure. Kinds double as
// sentinels so callers can write errors.Is(err, errs.NotFound).
type Kind string

const (
	NotFound            Kind = "not_found"
	InvalidState        Kind = "invalid_state"
	InsufficientBalance Kind = "insufficient_balance"
	Unauthorized        Kind = "unauthorized"
	Validation          Kind = "validation"
	RateLimited         Kind = "rate_limited"
)

func (k Kind) Error() string { return string(k) }

// Codes narrow a kind down to the exact precondition that failed.
const (
	CodeQuestClosed         = "quest_closed"
	CodeDuplicateSubmission = "duplicate_submission"
	CodeAlreadyReviewed     = "already_reviewed"
	CodeNotApproved         = "not_approved"
	CodeAlreadyRevoked      = "already_revoked"
	CodeQuestMissing        = "quest_missing"
	CodeNoEnvelopes         = "no_envelopes"
	CodeDrawCooldown        = "draw_cooldown"
	CodeDailyCooldown       = "daily_cooldown"
	CodeNotStaff            = "not_staff"
	CodeRewardRange         = "reward_out_of_range"
	CodeNotImage            = "proof_not_image"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	// RetryAfter is only set for RateLimited.
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return e.Kind == k
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Code == "" || e.Code == t.Code)
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Newf(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// Limited builds a RateLimited error carrying the time left on the cooldown.
func Limited(code string, remaining time.Duration) *Error {
	secs := int(remaining.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return &Error{
		Kind:       RateLimited,
		Code:       code,
		Message:    fmt.Sprintf("try again in %ds", secs),
		RetryAfter: remaining,
	}
}

// KindOf returns the kind of err, or "" for unexpected (storage) failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// RetryAfter reports the remaining cooldown of a RateLimited error.
func RetryAfter(err error) (time.Duration, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == RateLimited {
		return e.RetryAfter, true
	}
	return 0, false
}

// IsExpected reports whether err belongs to the taxonomy, as opposed to a
// storage or transport failure.
func IsExpected(err error) bool {
	return KindOf(err) != ""
}
