package owner

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/slotkeeper/slotbot/slotbot"
	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/utils"
)

var Remind = discord.SlashCommandCreate{
	Name:        "remind",
	Description: "Get a direct message before your slot expires",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "on",
			Description: fmt.Sprintf("Send me a reminder %d days before my slot expires", config.ReminderDays),
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "off",
			Description: "Stop expiry reminders",
		},
	},
}

func RemindHandler(b *slotbot.Bot, on bool) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := utils.GuildID(e)
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		if err := b.Engine.SetReminder(ctx, utils.ActorFrom(e), guildID, on); err != nil {
			return utils.EH.CreateDomainError(e, err)
		}

		message := "🔕 Expiry reminders are off."
		if on {
			message = fmt.Sprintf("🔔 You will get a direct message %d days before your slot expires.", config.ReminderDays)
		}
		return e.CreateMessage(discord.MessageCreate{
			Content: message,
			Flags:   discord.MessageFlagEphemeral,
		})
	}
}
