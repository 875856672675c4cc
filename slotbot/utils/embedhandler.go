package utils

import (
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot/config"
)

// ResponseHandler provides standardized response methods for commands and components
type ResponseHandler struct{}

var EH = &ResponseHandler{}

// ErrorType represents different categories of errors for consistent handling
type ErrorType int

const (
	// UserError - bad input, out of range values
	UserError ErrorType = iota
	// SystemError - store or platform failures
	SystemError
	// NotFoundError - no slot, no claim slot, unknown config key
	NotFoundError
	// PermissionError - staff-only actions, blacklisted members
	PermissionError
	// BusinessLogicError - cooldowns, limits, one-shot actions already used
	BusinessLogicError
)

func getErrorColor(errorType ErrorType) int {
	switch errorType {
	case UserError, BusinessLogicError:
		return config.WarningColor
	case NotFoundError:
		return config.InfoColor
	}
	return config.ErrorColor
}

// ClassifyError maps a domain error onto a response category.
func ClassifyError(err error) ErrorType {
	switch slots.Reason(err) {
	case "out-of-range":
		return UserError
	case "not-found":
		return NotFoundError
	case "not-permitted", "blacklisted":
		return PermissionError
	case "already-used", "limit-reached", "on-cooldown":
		return BusinessLogicError
	}
	return SystemError
}

func errorEmbed(err error) discord.Embed {
	return discord.Embed{
		Description: slots.UserMessage(err),
		Color:       getErrorColor(ClassifyError(err)),
	}
}

func logUnexpected(err error) {
	if slots.Reason(err) == "internal" || slots.Reason(err) == "external-failure" {
		slog.Error("Command error",
			slog.String("type", "error"),
			slog.Any("error", err),
		)
	}
}

// CreateInfoEmbed creates a standard info embed for command events
func (h *ResponseHandler) CreateInfoEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: message,
			Color:       config.InfoColor,
		}},
	})
}

// CreateDomainError replies with the user-facing rendering of err. Internal
// failures are logged and replaced with a generic message.
func (h *ResponseHandler) CreateDomainError(event *handler.CommandEvent, err error) error {
	logUnexpected(err)
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{errorEmbed(err)},
		Flags:  discord.MessageFlagEphemeral,
	})
}

// UpdateDomainError is CreateDomainError for deferred responses.
func (h *ResponseHandler) UpdateDomainError(event *handler.CommandEvent, err error) error {
	logUnexpected(err)
	_, uerr := event.UpdateInteractionResponse(discord.MessageUpdate{
		Embeds: &[]discord.Embed{errorEmbed(err)},
	})
	return uerr
}

// UpdateSuccess replaces a deferred response with a success embed
func (h *ResponseHandler) UpdateSuccess(event *handler.CommandEvent, message string) error {
	_, err := event.UpdateInteractionResponse(discord.MessageUpdate{
		Embeds: &[]discord.Embed{{
			Description: message,
			Color:       config.SuccessColor,
		}},
	})
	return err
}

// CreateEphemeralError creates an ephemeral error message for component events
func (h *ResponseHandler) CreateEphemeralError(event *handler.ComponentEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Content: message,
		Flags:   discord.MessageFlagEphemeral,
	})
}

// CreateEphemeralSuccess creates an ephemeral success message for component events
func (h *ResponseHandler) CreateEphemeralSuccess(event *handler.ComponentEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Content: "✅ " + message,
		Flags:   discord.MessageFlagEphemeral,
	})
}

// CreateComponentDomainError is CreateDomainError for component events.
func (h *ResponseHandler) CreateComponentDomainError(event *handler.ComponentEvent, err error) error {
	logUnexpected(err)
	return h.CreateEphemeralError(event, slots.UserMessage(err))
}
