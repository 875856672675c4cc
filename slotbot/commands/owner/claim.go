package owner

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot"
	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/utils"
)

var Claim = discord.SlashCommandCreate{
	Name:        "claim",
	Description: "Claim the free slot of this channel",
}

func claim(ctx context.Context, b *slotbot.Bot, actor slots.Actor, channelID string) (string, error) {
	result, err := b.Engine.Claim(ctx, actor, channelID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🎟️ %s is yours until %s", utils.ChannelMention(result.Slot.ChannelID),
		utils.Timestamp(result.ExpiresAt, "f")), nil
}

func ClaimHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.CommandExecutionTimeout, func(ctx context.Context) (string, error) {
			if _, err := utils.GuildID(e); err != nil {
				return "", err
			}
			return claim(ctx, b, utils.ActorFrom(e), e.ChannelID().String())
		})
	}
}

// ClaimButtonHandler is the button posted with every new claim slot.
func ClaimButtonHandler(b *slotbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()

		message, err := claim(ctx, b, utils.ActorFrom(e), e.ChannelID().String())
		if err != nil {
			return utils.EH.CreateComponentDomainError(e, err)
		}
		return e.CreateMessage(discord.MessageCreate{Content: message})
	}
}
