package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/slotkeeper/slotbot/slotbot"
	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/slotkeeper/slotbot/slotbot/utils"
)

var ClaimSlot = discord.SlashCommandCreate{
	Name:        "claimslot",
	Description: "Manage first-come claim slots",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "create",
			Description: "Open a channel members can claim",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "days",
					Description: "How long the slot lasts once claimed",
					Required:    true,
					MinValue:    utils.Ptr(1),
				},
				discord.ApplicationCommandOptionString{
					Name:        "label",
					Description: "Channel label shown before it is claimed",
					Required:    false,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "reset",
			Description: "Release the claim of this channel",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "Show every claim slot",
		},
	},
}

func claimPanel(days int) discord.MessageCreate {
	return discord.NewMessageCreateBuilder().
		SetContent(fmt.Sprintf("🎟️ First come, first served: this slot lasts **%d day(s)** once claimed.", days)).
		AddActionRow(discord.NewPrimaryButton("Claim", config.ClaimButtonID)).
		Build()
}

func ClaimSlotCreateHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.CommandExecutionTimeout, func(ctx context.Context) (string, error) {
			guildID, err := utils.GuildID(e)
			if err != nil {
				return "", err
			}
			data := e.SlashCommandInteractionData()
			days := data.Int("days")

			claim, err := b.Engine.CreateClaimSlot(ctx, utils.ActorFrom(e), guildID, data.String("label"), days)
			if err != nil {
				return "", err
			}

			if cid, err := snowflake.Parse(claim.ChannelID); err == nil {
				if _, err := b.Client.Rest().CreateMessage(cid, claimPanel(days), rest.WithCtx(ctx)); err != nil {
					slog.Warn("Failed to post claim button",
						slog.String("component", "gateway"),
						slog.String("channel_id", claim.ChannelID),
						slog.Any("error", err),
					)
				}
			}
			return fmt.Sprintf("🎟️ Claim slot %s is open", utils.ChannelMention(claim.ChannelID)), nil
		})
	}
}

func ClaimSlotResetHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return utils.Deferred(e, config.CommandExecutionTimeout, func(ctx context.Context) (string, error) {
			if _, err := utils.GuildID(e); err != nil {
				return "", err
			}
			channelID := e.ChannelID().String()
			if err := b.Engine.Unclaim(ctx, utils.ActorFrom(e), channelID); err != nil {
				return "", err
			}
			return fmt.Sprintf("🔄 %s can be claimed again", utils.ChannelMention(channelID)), nil
		})
	}
}

func ClaimSlotListHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := utils.GuildID(e)
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		claims, err := b.Engine.ClaimSlots(ctx, guildID)
		if err != nil {
			return utils.EH.CreateDomainError(e, err)
		}
		if len(claims) == 0 {
			return utils.EH.CreateInfoEmbed(e, "📭 No claim slots on this server.")
		}

		now := b.Engine.Now()
		embed := discord.NewEmbedBuilder().
			SetTitle("🎟️ Claim slots").
			SetColor(config.InfoColor)
		for i, claim := range claims {
			if i == 25 {
				break
			}
			embed.AddField(claim.Label, ClaimStatusLine(claim, now), false)
		}
		return e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{embed.Build()}})
	}
}

// ClaimStatusLine summarizes who holds a claim slot and until when.
func ClaimStatusLine(claim *models.ClaimSlot, now time.Time) string {
	switch claim.Status(now) {
	case models.ClaimStatusAvailable:
		return fmt.Sprintf("%s • available • %d day(s)", utils.ChannelMention(claim.ChannelID), claim.DurationDays)
	case models.ClaimStatusExpired:
		return fmt.Sprintf("%s • expired, waiting for the sweep", utils.ChannelMention(claim.ChannelID))
	}
	return fmt.Sprintf("%s • claimed by %s until %s", utils.ChannelMention(claim.ChannelID),
		utils.Mention(claim.ClaimedBy), utils.Timestamp(*claim.ExpiresAt, "f"))
}
