package staff

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot"
	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/slotkeeper/slotbot/slotbot/utils"
)

var targetOption = discord.ApplicationCommandOptionUser{
	Name:        "user",
	Description: "Owner of the slot (defaults to the slot of this channel)",
	Required:    false,
}

var daysOption = discord.ApplicationCommandOptionInt{
	Name:        "days",
	Description: "Number of days",
	Required:    true,
	MinValue:    utils.Ptr(1),
}

func subcommand(name, description string, options ...discord.ApplicationCommandOption) discord.ApplicationCommandOptionSubCommand {
	return discord.ApplicationCommandOptionSubCommand{
		Name:        name,
		Description: description,
		Options:     options,
	}
}

var Slot = discord.SlashCommandCreate{
	Name:        "slot",
	Description: "Manage slot channels",
	Options: []discord.ApplicationCommandOption{
		subcommand("create", "Open a slot for a member",
			discord.ApplicationCommandOptionUser{
				Name:        "user",
				Description: "Member receiving the slot",
				Required:    true,
			},
			discord.ApplicationCommandOptionString{
				Name:        "category",
				Description: "Slot category",
				Required:    true,
				Choices: []discord.ApplicationCommandOptionChoiceString{
					{Name: "🎲 Free", Value: string(models.CategoryFree)},
					{Name: "🎰 Week", Value: string(models.CategoryWeek)},
					{Name: "💎 Month", Value: string(models.CategoryMonth)},
					{Name: "⚜️ Permanent", Value: string(models.CategoryPermanent)},
					{Name: "👑 Owner", Value: string(models.CategoryOwner)},
					{Name: "🛡️ Admin", Value: string(models.CategoryAdmin)},
				},
			},
			discord.ApplicationCommandOptionInt{
				Name:        "duration",
				Description: "Weeks for week slots, months for month slots",
				Required:    false,
				MinValue:    utils.Ptr(1),
			},
		),
		subcommand("remove", "Delete a slot",
			targetOption,
			discord.ApplicationCommandOptionString{
				Name:        "reason",
				Description: "Why the slot is removed",
				Required:    false,
			},
		),
		subcommand("extend", "Add days to a slot", daysOption, targetOption),
		subcommand("reduce", "Remove days from a slot", daysOption, targetOption),
		subcommand("setexpiry", "Set the exact expiry of a slot",
			discord.ApplicationCommandOptionString{
				Name:        "date",
				Description: "UTC date as YYYY-MM-DD or YYYY-MM-DD HH:MM",
				Required:    true,
			},
			targetOption,
		),
		subcommand("transfer", "Give a slot to another member",
			discord.ApplicationCommandOptionUser{Name: "from", Description: "Current owner", Required: true},
			discord.ApplicationCommandOptionUser{Name: "to", Description: "New owner", Required: true},
		),
		subcommand("swap", "Swap the slots of two members",
			discord.ApplicationCommandOptionUser{Name: "first", Description: "First member", Required: true},
			discord.ApplicationCommandOptionUser{Name: "second", Description: "Second member", Required: true},
		),
		subcommand("lock", "Stop the owner from posting", targetOption),
		subcommand("unlock", "Let the owner post again", targetOption),
		subcommand("mute", "Hide a slot from everyone", targetOption),
		subcommand("unmute", "Make a slot visible again", targetOption),
		subcommand("suspend", "Lock and hide a slot for some days", daysOption, targetOption),
		subcommand("appeal", "Mark or clear a pending appeal",
			discord.ApplicationCommandOptionBool{
				Name:        "active",
				Description: "Whether the slot is under appeal",
				Required:    true,
			},
			targetOption,
		),
		subcommand("resetmentions", "Give back the @here and @everyone uses", targetOption),
		subcommand("talklimit", "Limit how many people the owner can invite",
			discord.ApplicationCommandOptionInt{
				Name:        "limit",
				Description: "Maximum talkers, 0 for no limit",
				Required:    true,
				MinValue:    utils.Ptr(0),
			},
			targetOption,
		),
		subcommand("info", "Show a slot", targetOption),
		subcommand("list", "List every slot of this server"),
	},
}

// resolveSlot finds the slot named by the user option, or the slot of the
// channel the command was used in.
func resolveSlot(ctx context.Context, b *slotbot.Bot, e *handler.CommandEvent) (*slots.SlotDetails, error) {
	guildID, err := utils.GuildID(e)
	if err != nil {
		return nil, err
	}
	if userID, _, ok := utils.OptionMember(e.SlashCommandInteractionData(), "user"); ok {
		return b.Engine.UserSlot(ctx, guildID, userID)
	}
	return b.Engine.Slot(ctx, e.ChannelID().String())
}

// onSlot resolves the target slot and runs a mutation against its channel.
func onSlot(b *slotbot.Bot, fn func(ctx context.Context, actor slots.Actor, slot *models.Slot, data discord.SlashCommandInteractionData) (string, error)) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.CommandExecutionTimeout, func(ctx context.Context) (string, error) {
			details, err := resolveSlot(ctx, b, e)
			if err != nil {
				return "", err
			}
			return fn(ctx, utils.ActorFrom(e), details.Slot, e.SlashCommandInteractionData())
		})
	}
}

func SlotCreateHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.CommandExecutionTimeout, func(ctx context.Context) (string, error) {
			guildID, err := utils.GuildID(e)
			if err != nil {
				return "", err
			}
			data := e.SlashCommandInteractionData()
			userID, name, _ := utils.OptionMember(data, "user")
			category := models.SlotCategory(data.String("category"))
			units, ok := data.OptInt("duration")
			if !ok {
				units = 1
			}

			slot, err := b.Engine.Create(ctx, utils.ActorFrom(e), slots.CreateRequest{
				GuildID:  guildID,
				UserID:   userID,
				UserName: name,
				Category: category,
				Units:    units,
			})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("✅ Created %s %s slot %s for %s", slot.Emoji, slot.Category,
				utils.ChannelMention(slot.ChannelID), utils.Mention(slot.UserID)), nil
		})
	}
}

func SlotRemoveHandler(b *slotbot.Bot) handler.CommandHandler {
	return onSlot(b, func(ctx context.Context, actor slots.Actor, slot *models.Slot, data discord.SlashCommandInteractionData) (string, error) {
		reason := data.String("reason")
		if reason == "" {
			reason = "removed by staff"
		}
		if err := b.Engine.Destroy(ctx, actor, slot.ChannelID, reason); err != nil {
			return "", err
		}
		return fmt.Sprintf("🗑️ Removed the slot of %s", utils.Mention(slot.UserID)), nil
	})
}

func SlotExtendHandler(b *slotbot.Bot) handler.CommandHandler {
	return onSlot(b, func(ctx context.Context, actor slots.Actor, slot *models.Slot, data discord.SlashCommandInteractionData) (string, error) {
		updated, err := b.Engine.Extend(ctx, actor, slot.ChannelID, data.Int("days"))
		if err != nil {
			return "", err
		}
		return expiryReply("⏫ Extended", updated, b.Engine.Now()), nil
	})
}

func SlotReduceHandler(b *slotbot.Bot) handler.CommandHandler {
	return onSlot(b, func(ctx context.Context, actor slots.Actor, slot *models.Slot, data discord.SlashCommandInteractionData) (string, error) {
		updated, err := b.Engine.Reduce(ctx, actor, slot.ChannelID, data.Int("days"))
		if err != nil {
			return "", err
		}
		return expiryReply("⏬ Reduced", updated, b.Engine.Now()), nil
	})
}

func SlotSetExpiryHandler(b *slotbot.Bot) handler.CommandHandler {
	return onSlot(b, func(ctx context.Context, actor slots.Actor, slot *models.Slot, data discord.SlashCommandInteractionData) (string, error) {
		at, err := parseExpiry(data.String("date"))
		if err != nil {
			return "", err
		}
		updated, err := b.Engine.SetExpiry(ctx, actor, slot.ChannelID, at)
		if err != nil {
			return "", err
		}
		return expiryReply("📅 Updated", updated, b.Engine.Now()), nil
	})
}

var expiryLayouts = []string{"2006-01-02 15:04", "2006-01-02"}

func parseExpiry(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range expiryLayouts {
		if at, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return at, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a date, use YYYY-MM-DD or YYYY-MM-DD HH:MM", slots.ErrInvalidArgument, value)
}

func expiryReply(verb string, slot *models.Slot, now time.Time) string {
	label := slots.ComputeExpiryLabel(slot.ExpiresAt, now)
	return fmt.Sprintf("%s %s: expires %s", verb, utils.ChannelMention(slot.ChannelID), utils.FormatExpiry(slot.ExpiresAt, label))
}

func SlotTransferHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.CommandExecutionTimeout, func(ctx context.Context) (string, error) {
			guildID, err := utils.GuildID(e)
			if err != nil {
				return "", err
			}
			data := e.SlashCommandInteractionData()
			fromID, _, _ := utils.OptionMember(data, "from")
			toID, toName, _ := utils.OptionMember(data, "to")

			slot, err := b.Engine.Transfer(ctx, utils.ActorFrom(e), slots.TransferRequest{
				GuildID:    guildID,
				FromUserID: fromID,
				ToUserID:   toID,
				ToName:     toName,
			})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("🔁 %s now belongs to %s", utils.ChannelMention(slot.ChannelID), utils.Mention(slot.UserID)), nil
		})
	}
}

func SlotSwapHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.CommandExecutionTimeout, func(ctx context.Context) (string, error) {
			guildID, err := utils.GuildID(e)
			if err != nil {
				return "", err
			}
			data := e.SlashCommandInteractionData()
			firstID, firstName, _ := utils.OptionMember(data, "first")
			secondID, secondName, _ := utils.OptionMember(data, "second")

			a, c, err := b.Engine.Swap(ctx, utils.ActorFrom(e), guildID, firstID, firstName, secondID, secondName)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("🔀 Swapped: %s → %s, %s → %s",
				utils.ChannelMention(a.ChannelID), utils.Mention(a.UserID),
				utils.ChannelMention(c.ChannelID), utils.Mention(c.UserID)), nil
		})
	}
}

func SlotLockHandler(b *slotbot.Bot) handler.CommandHandler {
	return onSlot(b, func(ctx context.Context, actor slots.Actor, slot *models.Slot, _ discord.SlashCommandInteractionData) (string, error) {
		if err := b.Engine.Lock(ctx, actor, slot.ChannelID); err != nil {
			return "", err
		}
		return fmt.Sprintf("🔒 Locked %s", utils.ChannelMention(slot.ChannelID)), nil
	})
}

func SlotUnlockHandler(b *slotbot.Bot) handler.CommandHandler {
	return onSlot(b, func(ctx context.Context, actor slots.Actor, slot *models.Slot, _ discord.SlashCommandInteractionData) (string, error) {
		if err := b.Engine.Unlock(ctx, actor, slot.ChannelID); err != nil {
			return "", err
		}
		return fmt.Sprintf("🔓 Unlocked %s", utils.ChannelMention(slot.ChannelID)), nil
	})
}

func SlotMuteHandler(b *slotbot.Bot) handler.CommandHandler {
	return onSlot(b, func(ctx context.Context, actor slots.Actor, slot *models.Slot, _ discord.SlashCommandInteractionData) (string, error) {
		if err := b.Engine.Mute(ctx, actor, slot.ChannelID); err != nil {
			return "", err
		}
		return fmt.Sprintf("🔇 Muted %s", utils.ChannelMention(slot.ChannelID)), nil
	})
}

func SlotUnmuteHandler(b *slotbot.Bot) handler.CommandHandler {
	return onSlot(b, func(ctx context.Context, actor slots.Actor, slot *models.Slot, _ discord.SlashCommandInteractionData) (string, error) {
		if err := b.Engine.Unmute(ctx, actor, slot.ChannelID); err != nil {
			return "", err
		}
		return fmt.Sprintf("🔊 Unmuted %s", utils.ChannelMention(slot.ChannelID)), nil
	})
}

func SlotSuspendHandler(b *slotbot.Bot) handler.CommandHandler {
	return onSlot(b, func(ctx context.Context, actor slots.Actor, slot *models.Slot, data discord.SlashCommandInteractionData) (string, error) {
		updated, err := b.Engine.Suspend(ctx, actor, slot.ChannelID, data.Int("days"))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("⛔ Suspended %s until %s", utils.ChannelMention(updated.ChannelID),
			utils.Timestamp(*updated.SuspendedUntil, "f")), nil
	})
}

func SlotAppealHandler(b *slotbot.Bot) handler.CommandHandler {
	return onSlot(b, func(ctx context.Context, actor slots.Actor, slot *models.Slot, data discord.SlashCommandInteractionData) (string, error) {
		active := data.Bool("active")
		if err := b.Engine.SetAppeal(ctx, actor, slot.ChannelID, active); err != nil {
			return "", err
		}
		if active {
			return fmt.Sprintf("⚖️ %s is now under appeal", utils.ChannelMention(slot.ChannelID)), nil
		}
		return fmt.Sprintf("⚖️ Appeal cleared for %s", utils.ChannelMention(slot.ChannelID)), nil
	})
}

func SlotResetMentionsHandler(b *slotbot.Bot) handler.CommandHandler {
	return onSlot(b, func(ctx context.Context, actor slots.Actor, slot *models.Slot, _ discord.SlashCommandInteractionData) (string, error) {
		if err := b.Engine.ResetMentions(ctx, actor, slot.ChannelID); err != nil {
			return "", err
		}
		return fmt.Sprintf("📢 Reset the @here and @everyone uses of %s", utils.ChannelMention(slot.ChannelID)), nil
	})
}

func SlotTalkLimitHandler(b *slotbot.Bot) handler.CommandHandler {
	return onSlot(b, func(ctx context.Context, actor slots.Actor, slot *models.Slot, data discord.SlashCommandInteractionData) (string, error) {
		limit := data.Int("limit")
		if err := b.Engine.SetTalkLimit(ctx, actor, slot.ChannelID, limit); err != nil {
			return "", err
		}
		if limit == 0 {
			return fmt.Sprintf("👥 Removed the talker limit of %s", utils.ChannelMention(slot.ChannelID)), nil
		}
		return fmt.Sprintf("👥 %s can now have up to %d talkers", utils.ChannelMention(slot.ChannelID), limit), nil
	})
}

func SlotInfoHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		details, err := resolveSlot(ctx, b, e)
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{utils.SlotEmbed(details)},
		})
	}
}

func SlotListHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := utils.GuildID(e)
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		list, err := b.Engine.ListSlots(ctx, guildID)
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}
		if len(list) == 0 {
			return utils.EH.CreateInfoEmbed(e, "📭 No slots are open on this server.")
		}

		now := b.Engine.Now()
		lines := make([]string, len(list))
		for i, slot := range list {
			lines[i] = SlotLine(slot, now)
		}
		return listPages(b, e, "🎰 Slots", lines, config.SlotsPerPage)
	}
}

// SlotLine is the one-line summary used in slot listings.
func SlotLine(slot *models.Slot, now time.Time) string {
	label := slots.ComputeExpiryLabel(slot.ExpiresAt, now)
	line := fmt.Sprintf("%s %s • %s • %s", slot.Emoji, utils.ChannelMention(slot.ChannelID), utils.Mention(slot.UserID), label)
	if flags := utils.FormatFlags(slot); flags != "none" {
		line += " • " + flags
	}
	return line
}
