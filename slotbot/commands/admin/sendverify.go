package admin

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot"
	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/handlers"
	"github.com/slotkeeper/slotbot/slotbot/utils"
)

var SendVerify = discord.SlashCommandCreate{
	Name:        "sendverify",
	Description: "Post the verify button",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionChannel{
			Name:         "channel",
			Description:  "Channel to post in (defaults to this one)",
			Required:     false,
			ChannelTypes: []discord.ChannelType{discord.ChannelTypeGuildText},
		},
	},
}

func SendVerifyHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.CommandExecutionTimeout, func(ctx context.Context) (string, error) {
			guildID, err := utils.GuildID(e)
			if err != nil {
				return "", err
			}
			if err := slots.RequireStaff(utils.ActorFrom(e)); err != nil {
				return "", err
			}

			channelID := e.ChannelID().String()
			if channel, ok := e.SlashCommandInteractionData().OptChannel("channel"); ok {
				channelID = channel.ID.String()
			}

			stored, err := handlers.SendVerifyPanel(ctx, b, guildID, channelID)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("✅ Verify panel posted in %s", utils.ChannelMention(stored.ChannelID)), nil
		})
	}
}
