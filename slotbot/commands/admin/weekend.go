package admin

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

var Weekend = discord.SlashCommandCreate{
	Name:        "weekend",
	Description: "Run the weekend slot event by hand",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "open",
			Description: "Give every member without a slot a weekend slot",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "close",
			Description: "Remove every weekend slot",
		},
	},
}

var StaffSlots = discord.SlashCommandCreate{
	Name:        "staffslots",
	Description: "Create owner and admin slots for staff members that lack one",
}

func WeekendOpenHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.SweepTimeout, func(ctx context.Context) (string, error) {
			guildID, err := utils.GuildID(e)
			if err != nil {
				return "", err
			}
			report, err := b.Engine.OpenWeekend(ctx, utils.ActorFrom(e), guildID)
			if err != nil {
				return "", err
			}
			return weekendOpenedReply(report), nil
		})
	}
}

// Skipped covers members who already hold a slot and members failing any
// eligibility check.
func weekendOpenedReply(report slots.WeekendReport) string {
	if report.Skipped == 0 {
		return fmt.Sprintf("🎉 Weekend opened: %d slot(s) created", report.Opened)
	}
	return fmt.Sprintf("🎉 Weekend opened: %d slot(s) created, %d member(s) skipped", report.Opened, report.Skipped)
}

func WeekendCloseHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.SweepTimeout, func(ctx context.Context) (string, error) {
			guildID, err := utils.GuildID(e)
			if err != nil {
				return "", err
			}
			report, err := b.Engine.CloseWeekend(ctx, utils.ActorFrom(e), guildID)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("🌙 Weekend closed: %d slot(s) removed", report.Closed), nil
		})
	}
}

func StaffSlotsHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.SweepTimeout, func(ctx context.Context) (string, error) {
			guildID, err := utils.GuildID(e)
			if err != nil {
				return "", err
			}
			if err := slots.RequireStaff(utils.ActorFrom(e)); err != nil {
				return "", err
			}
			created, err := b.Engine.ProvisionStaff(ctx, guildID)
			if err != nil {
				return "", err
			}
			if created == 0 {
				return "👑 Every staff member already has a slot", nil
			}
			return fmt.Sprintf("👑 Created %d staff slot(s)", created), nil
		})
	}
}
