package owner

import (
	"context"
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot"
	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/utils"
)

var Talk = discord.SlashCommandCreate{
	Name:        "talk",
	Description: "Choose who can chat in your slot",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "add",
			Description: "Let a member chat in your slot",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{Name: "user", Description: "Member to invite", Required: true},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "remove",
			Description: "Take chat access away from a member",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{Name: "user", Description: "Member to remove", Required: true},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "clear",
			Description: "Remove everyone you invited",
		},
	},
}

// ownSlot is the actor's own slot, or for staff without one the slot of the
// current channel.
func ownSlot(ctx context.Context, b *slotbot.Bot, e *handler.CommandEvent, actor slots.Actor) (*slots.SlotDetails, error) {
	guildID, err := utils.GuildID(e)
	if err != nil {
		return nil, err
	}
	details, err := b.Engine.UserSlot(ctx, guildID, actor.ID)
	if err == nil || !actor.Staff || !errors.Is(err, slots.ErrNotFound) {
		return details, err
	}
	return b.Engine.Slot(ctx, e.ChannelID().String())
}

func TalkAddHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.CommandExecutionTimeout, func(ctx context.Context) (string, error) {
			actor := utils.ActorFrom(e)
			details, err := ownSlot(ctx, b, e, actor)
			if err != nil {
				return "", err
			}
			targetID, _, _ := utils.OptionMember(e.SlashCommandInteractionData(), "user")

			added, err := b.Engine.InviteTalker(ctx, actor, details.Slot.ChannelID, targetID)
			if err != nil {
				return "", err
			}
			if !added {
				return fmt.Sprintf("ℹ️ %s can already chat in %s", utils.Mention(targetID), utils.ChannelMention(details.Slot.ChannelID)), nil
			}
			return fmt.Sprintf("👥 %s can now chat in %s", utils.Mention(targetID), utils.ChannelMention(details.Slot.ChannelID)), nil
		})
	}
}

func TalkRemoveHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.CommandExecutionTimeout, func(ctx context.Context) (string, error) {
			actor := utils.ActorFrom(e)
			details, err := ownSlot(ctx, b, e, actor)
			if err != nil {
				return "", err
			}
			targetID, _, _ := utils.OptionMember(e.SlashCommandInteractionData(), "user")

			removed, err := b.Engine.RemoveTalker(ctx, actor, details.Slot.ChannelID, targetID)
			if err != nil {
				return "", err
			}
			if !removed {
				return fmt.Sprintf("ℹ️ %s was not invited to %s", utils.Mention(targetID), utils.ChannelMention(details.Slot.ChannelID)), nil
			}
			return fmt.Sprintf("👋 %s can no longer chat in %s", utils.Mention(targetID), utils.ChannelMention(details.Slot.ChannelID)), nil
		})
	}
}

func TalkClearHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.CommandExecutionTimeout, func(ctx context.Context) (string, error) {
			actor := utils.ActorFrom(e)
			details, err := ownSlot(ctx, b, e, actor)
			if err != nil {
				return "", err
			}

			removed, err := b.Engine.RevokeAllTalkers(ctx, actor, details.Slot.ChannelID)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("🧹 Removed %d talker(s) from %s", removed, utils.ChannelMention(details.Slot.ChannelID)), nil
		})
	}
}
