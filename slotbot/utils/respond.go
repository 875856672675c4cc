package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/handler"
	"github.com/slotkeeper/slotbot/internal/domain/slots"
)

// GuildID returns the guild of a command, failing for commands used in DMs.
func GuildID(e *handler.CommandEvent) (string, error) {
	if e.GuildID() == nil {
		return "", fmt.Errorf("%w: this command only works inside a server", slots.ErrInvalidArgument)
	}
	return e.GuildID().String(), nil
}

// Deferred acknowledges the command, runs fn with a timeout and replaces the
// acknowledgement with either the success text or the rendered error.
func Deferred(e *handler.CommandEvent, timeout time.Duration, fn func(ctx context.Context) (string, error)) error {
	if err := e.DeferCreateMessage(false); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	msg, err := fn(ctx)
	if err != nil {
		return EH.UpdateDomainError(e, err)
	}
	return EH.UpdateSuccess(e, msg)
}
