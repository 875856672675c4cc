package owner

import (
	"context"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/slotkeeper/slotbot/slotbot"
	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/utils"
)

var MySlot = discord.SlashCommandCreate{
	Name:        "myslot",
	Description: "Show your slot",
}

func MySlotHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := utils.GuildID(e)
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		details, err := b.Engine.UserSlot(ctx, guildID, e.User().ID.String())
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{utils.SlotEmbed(details)},
			Flags:  discord.MessageFlagEphemeral,
		})
	}
}
