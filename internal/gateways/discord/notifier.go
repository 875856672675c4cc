package discord

import (
	"context"
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/slotkeeper/slotbot/internal/domain/slots"
)

// Notifier sends direct messages. Members with closed DMs are logged and skipped.
type Notifier struct {
	client bot.Client
}

var _ slots.Notifier = (*Notifier)(nil)

func NewNotifier(client bot.Client) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) DirectMessage(ctx context.Context, userID, content string) {
	uid, err := parseID("user", userID)
	if err != nil {
		slog.Warn("Skipping direct message", slog.String("component", "gateway"), slog.Any("error", err))
		return
	}

	dmChannel, err := n.client.Rest().CreateDMChannel(uid, rest.WithCtx(ctx))
	if err != nil {
		slog.Warn("Failed to create DM channel",
			slog.String("component", "gateway"),
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return
	}

	_, err = n.client.Rest().CreateMessage(dmChannel.ID(), discord.NewMessageCreateBuilder().
		SetContent(content).
		Build(), rest.WithCtx(ctx))
	if err != nil {
		slog.Warn("Failed to send direct message",
			slog.String("component", "gateway"),
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
	}
}
