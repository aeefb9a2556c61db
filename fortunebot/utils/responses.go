package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/redlantern/fortunebot/internal/domain/errs"
)

// ResponseHandler renders command and component outcomes consistently.
type ResponseHandler struct{}

var EH = &ResponseHandler{}

// ErrorType groups errors for their prefix and colour.
type ErrorType int

const (
	// UserError covers bad input and validation failures.
	UserError ErrorType = iota
	// SystemError covers storage and transport failures.
	SystemError
	NotFoundError
	PermissionError
	// BusinessLogicError covers cooldowns, empty balances and illegal transitions.
	BusinessLogicError
)

const genericFailure = "Something went wrong on our side. Please try again later."

// Classify maps an error onto its ErrorType.
func Classify(err error) ErrorType {
	switch errs.KindOf(err) {
	case errs.Validation:
		return UserError
	case errs.NotFound:
		return NotFoundError
	case errs.Unauthorized:
		return PermissionError
	case errs.InvalidState, errs.InsufficientBalance, errs.RateLimited:
		return BusinessLogicError
	default:
		return SystemError
	}
}

func getErrorPrefix(errorType ErrorType) string {
	switch errorType {
	case UserError:
		return "⚠️"
	case SystemError:
		return "🔧"
	case NotFoundError:
		return "🔍"
	case PermissionError:
		return "🚫"
	case BusinessLogicError:
		return "⏰"
	default:
		return "❌"
	}
}

func getErrorColor(errorType ErrorType) int {
	switch errorType {
	case UserError, BusinessLogicError:
		return WarningColor
	case NotFoundError:
		return InfoColor
	default:
		return ErrorColor
	}
}

// UserMessage is what a player sees for err. Unexpected failures never leak
// their details.
func UserMessage(err error) string {
	var e *errs.Error
	if !errors.As(err, &e) {
		return genericFailure
	}

	if wait, ok := errs.RetryAfter(err); ok {
		switch e.Code {
		case errs.CodeDrawCooldown:
			return fmt.Sprintf("The lanterns are still settling. Try again in %s.", FormatWait(wait))
		case errs.CodeDailyCooldown:
			return fmt.Sprintf("You already claimed today's gift. Come back in %s.", FormatWait(wait))
		}
		return fmt.Sprintf("Slow down! Try again in %s.", FormatWait(wait))
	}

	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

// FormatWait renders a cooldown rounded up to the second.
func FormatWait(d time.Duration) string {
	if d < time.Second {
		d = time.Second
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// ErrorEmbed builds the ephemeral embed shown for err.
func ErrorEmbed(err error) discord.Embed {
	errorType := Classify(err)
	return discord.Embed{
		Description: getErrorPrefix(errorType) + " " + UserMessage(err),
		Color:       getErrorColor(errorType),
	}
}

// RespondError answers the interaction with an ephemeral error. Expected
// errors are fully handled and nil is returned; anything else is returned so
// the logging wrapper records it.
func (h *ResponseHandler) RespondError(event interface{}, err error) error {
	msg := discord.MessageCreate{
		Embeds: []discord.Embed{ErrorEmbed(err)},
		Flags:  discord.MessageFlagEphemeral,
	}

	var sendErr error
	switch e := event.(type) {
	case *handler.CommandEvent:
		sendErr = e.CreateMessage(msg)
	case *handler.ComponentEvent:
		sendErr = e.CreateMessage(msg)
	default:
		return fmt.Errorf("unsupported event type for error handling")
	}
	return unhandled(err, sendErr)
}

// FollowupError is RespondError for interactions that were already deferred.
func (h *ResponseHandler) FollowupError(event interface{}, err error) error {
	msg := discord.MessageCreate{
		Embeds: []discord.Embed{ErrorEmbed(err)},
		Flags:  discord.MessageFlagEphemeral,
	}

	var sendErr error
	switch e := event.(type) {
	case *handler.CommandEvent:
		_, sendErr = e.CreateFollowupMessage(msg)
	case *handler.ComponentEvent:
		_, sendErr = e.CreateFollowupMessage(msg)
	default:
		return fmt.Errorf("unsupported event type for error handling")
	}
	return unhandled(err, sendErr)
}

func unhandled(err, sendErr error) error {
	if sendErr != nil {
		return errors.Join(err, fmt.Errorf("failed to send error response: %w", sendErr))
	}
	if errs.IsExpected(err) {
		return nil
	}
	return err
}

// CreateSuccessEmbed answers a command publicly.
func (h *ResponseHandler) CreateSuccessEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: message,
			Color:       SuccessColor,
		}},
	})
}

// CreateEphemeralInfo answers privately with an informational line.
func (h *ResponseHandler) CreateEphemeralInfo(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: "ℹ️ " + message,
			Color:       InfoColor,
		}},
		Flags: discord.MessageFlagEphemeral,
	})
}
