package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/slotkeeper/slotbot/slotbot"
	"github.com/slotkeeper/slotbot/slotbot/config"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
	"github.com/slotkeeper/slotbot/slotbot/utils"
)

func verifyPanel() discord.MessageCreate {
	return discord.NewMessageCreateBuilder().
		SetEmbeds(discord.NewEmbedBuilder().
			SetTitle("✅ Verification").
			SetDescription("Click the button below to verify yourself and unlock the server.").
			SetColor(config.SuccessColor).
			Build()).
		AddActionRow(discord.NewSuccessButton("Verify", config.VerifyButtonID)).
		Build()
}

// SendVerifyPanel posts the verify button into channelID and remembers it for the guild.
func SendVerifyPanel(ctx context.Context, b *slotbot.Bot, guildID, channelID string) (*models.VerifyMessage, error) {
	cid, err := snowflake.Parse(channelID)
	if err != nil {
		return nil, fmt.Errorf("invalid channel id %q: %w", channelID, err)
	}
	msg, err := b.Client.Rest().CreateMessage(cid, verifyPanel(), rest.WithCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to send verify panel: %w", err)
	}

	stored := &models.VerifyMessage{
		GuildID:   guildID,
		ChannelID: channelID,
		MessageID: msg.ID.String(),
	}
	if err := b.Engine.SaveVerifyMessage(ctx, stored); err != nil {
		return nil, fmt.Errorf("failed to save verify panel: %w", err)
	}
	return stored, nil
}

// RestoreVerifyPanel resends the verify panel when the stored message is gone,
// or posts a first one when the guild has a verify channel but no panel.
func RestoreVerifyPanel(ctx context.Context, b *slotbot.Bot, guildID string) error {
	stored, err := b.Engine.VerifyMessage(ctx, guildID)
	if err != nil {
		return err
	}

	if stored == nil {
		cfg, err := b.Engine.Config(ctx, guildID)
		if err != nil {
			return err
		}
		if cfg.VerifyChannelID == "" {
			return nil
		}
		_, err = SendVerifyPanel(ctx, b, guildID, cfg.VerifyChannelID)
		return err
	}

	cid, err := snowflake.Parse(stored.ChannelID)
	if err != nil {
		return fmt.Errorf("invalid stored channel id %q: %w", stored.ChannelID, err)
	}
	mid, err := snowflake.Parse(stored.MessageID)
	if err != nil {
		return fmt.Errorf("invalid stored message id %q: %w", stored.MessageID, err)
	}
	if _, err := b.Client.Rest().GetMessage(cid, mid, rest.WithCtx(ctx)); err == nil {
		return nil
	}

	slog.Info("Verify panel missing, resending",
		slog.String("type", "sys"),
		slog.String("guild_id", guildID),
		slog.String("channel_id", stored.ChannelID),
	)
	_, err = SendVerifyPanel(ctx, b, guildID, stored.ChannelID)
	return err
}

// VerifyButtonHandler grants the member role and drops the newbie role.
func VerifyButtonHandler(b *slotbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		if e.GuildID() == nil {
			return utils.EH.CreateEphemeralError(e, "❌ Verification only works inside a server.")
		}
		gid := e.GuildID().String()
		uid := e.User().ID.String()

		ctx, cancel := context.WithTimeout(context.Background(), config.GatewayCallTimeout)
		defer cancel()

		cfg, err := b.Engine.Config(ctx, gid)
		if err != nil {
			slog.Error("Failed to load guild config", slog.String("guild_id", gid), slog.Any("error", err))
			return utils.EH.CreateEphemeralError(e, "❌ Something went wrong. Please contact an admin.")
		}
		if cfg.MemberRoleID == "" {
			return utils.EH.CreateEphemeralError(e, "❌ Verification is not set up on this server.")
		}

		member := e.Member()
		if member != nil && hasRole(member.RoleIDs, cfg.MemberRoleID) {
			return utils.EH.CreateEphemeralError(e, "ℹ️ You are already verified.")
		}

		if err := b.Gateway.AddRole(ctx, gid, uid, cfg.MemberRoleID); err != nil {
			slog.Warn("Failed to assign member role",
				slog.String("component", "gateway"),
				slog.String("guild_id", gid),
				slog.String("user_id", uid),
				slog.Any("error", err),
			)
			return utils.EH.CreateEphemeralError(e, "❌ I could not give you the member role. Please contact an admin.")
		}
		if cfg.NewbieRoleID != "" && member != nil && hasRole(member.RoleIDs, cfg.NewbieRoleID) {
			if err := b.Gateway.RemoveRole(ctx, gid, uid, cfg.NewbieRoleID); err != nil {
				slog.Warn("Failed to remove newbie role",
					slog.String("component", "gateway"),
					slog.String("guild_id", gid),
					slog.String("user_id", uid),
					slog.Any("error", err),
				)
			}
		}

		return utils.EH.CreateEphemeralSuccess(e, "You are verified. Welcome!")
	}
}

func hasRole(roles []snowflake.ID, roleID string) bool {
	for _, r := range roles {
		if r.String() == roleID {
			return true
		}
	}
	return false
}
